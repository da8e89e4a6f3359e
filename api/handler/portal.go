package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/api/transport"
	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/pkg/httpcontext"
	intakeUC "github.com/pegrio/portal-backend/usecase/intake"
	portalUC "github.com/pegrio/portal-backend/usecase/portal"
	reviewUC "github.com/pegrio/portal-backend/usecase/review"
)

// PortalHandler exposes the customer-facing portal operations, all keyed by
// the opaque portal token.
type PortalHandler struct {
	baseHandler
	portal *portalUC.UseCase
	intake *intakeUC.UseCase
	review *reviewUC.UseCase
}

func NewPortalHandler(portal *portalUC.UseCase, intake *intakeUC.UseCase, review *reviewUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger, development bool) *PortalHandler {
	return &PortalHandler{
		baseHandler: newBaseHandler(adapter, logger, development),
		portal:      portal,
		intake:      intake,
		review:      review,
	}
}

// @Summary Verify a portal token
// @Tags portal
// @Router /api/v1/portal/verify-token [get]
func (h *PortalHandler) VerifyToken(ctx *fasthttp.RequestCtx) {
	token := string(ctx.QueryArgs().Peek("token"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.portal.VerifyToken(stdCtx, token)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			h.respondJSON(ctx, http.StatusNotFound, transport.ErrorResponse{Error: domain.ErrTokenNotFound.Message})
			return
		}
		h.respondPortalError(ctx, err, "Failed to verify token")
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.OrderResponse{Success: true, Order: order})
}

// @Summary Get order with timeline
// @Tags portal
// @Router /api/v1/portal/get-order [get]
func (h *PortalHandler) GetOrder(ctx *fasthttp.RequestCtx) {
	token := string(ctx.QueryArgs().Peek("token"))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, events, err := h.portal.GetOrder(stdCtx, token)
	if err != nil {
		h.respondPortalError(ctx, err, "Failed to fetch order")
		return
	}
	if events == nil {
		events = []domain.OrderEvent{}
	}
	h.respondJSON(ctx, http.StatusOK, transport.OrderWithEventsResponse{
		Success: true,
		Order:   order,
		Events:  events,
	})
}

// @Summary Save intake questionnaire answers
// @Tags portal
// @Router /api/v1/portal/save-intake [post]
func (h *PortalHandler) SaveIntake(ctx *fasthttp.RequestCtx) {
	var req transport.SaveIntakeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{Error: "Invalid request body"})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.intake.SaveIntake(stdCtx, req.Token, req.Answers, req.Submit)
	if err != nil {
		h.respondPortalError(ctx, err, "Failed to save intake")
		return
	}
	h.respondJSON(ctx, http.StatusOK, transport.SaveIntakeResponse{
		Success:   true,
		Submitted: result.Submitted,
		Message:   result.Message,
	})
}

// @Summary Submit a review decision
// @Tags portal
// @Router /api/v1/portal/submit-review [post]
func (h *PortalHandler) SubmitReview(ctx *fasthttp.RequestCtx) {
	var req transport.SubmitReviewRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{Error: "Invalid request body"})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.review.SubmitReview(stdCtx, req.Token, domain.ReviewAction(req.Action), req.Notes, req.ReferenceURL)
	if err != nil {
		h.respondPortalError(ctx, err, "Failed to submit review")
		return
	}

	resp := transport.SubmitReviewResponse{
		Success:   true,
		Action:    string(result.Action),
		NewStatus: string(result.NewStatus),
		Message:   result.Message,
	}
	if result.Action != domain.ActionApprove {
		resp.RevisionCount = &result.RevisionCount
		resp.MaxRevisions = &result.MaxRevisions
		resp.Remaining = &result.Remaining
	}
	h.respondJSON(ctx, http.StatusOK, resp)
}
