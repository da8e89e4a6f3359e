package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/api/transport"
	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/pkg/httpcontext"
)

type baseHandler struct {
	adapter     *httpcontext.Adapter
	logger      *zap.Logger
	development bool
}

func newBaseHandler(adapter *httpcontext.Adapter, logger *zap.Logger, development bool) baseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return baseHandler{adapter: adapter, logger: logger, development: development}
}

func (h baseHandler) requestContext(ctx *fasthttp.RequestCtx) (context.Context, context.CancelFunc) {
	if h.adapter != nil {
		return h.adapter.Attach(ctx)
	}
	return context.WithCancel(context.Background())
}

func (h baseHandler) respondJSON(ctx *fasthttp.RequestCtx, status int, payload interface{}) {
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	body, _ := json.Marshal(payload)
	ctx.SetBody(body)
}

// respondPortalError maps a workflow error onto the portal's flat error shape.
// Validation and state errors carry their structured extras; anything
// unclassified becomes a 500 with the fallback message, with the underlying
// detail exposed only in development mode.
func (h baseHandler) respondPortalError(ctx *fasthttp.RequestCtx, err error, fallback string) {
	var stateErr *domain.StateError
	if errors.As(err, &stateErr) {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{
			Error:         stateErr.Error(),
			CurrentStatus: string(stateErr.Status),
		})
		return
	}

	var limitErr *domain.RevisionLimitError
	if errors.As(err, &limitErr) {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{
			Error:         limitErr.Error(),
			RevisionCount: &limitErr.Count,
			MaxRevisions:  &limitErr.Limit,
			Message:       limitErr.Message,
		})
		return
	}

	var dErr *domain.Error
	if errors.As(err, &dErr) {
		switch dErr.Code {
		case domain.ErrCodeNotFound:
			h.respondJSON(ctx, http.StatusNotFound, transport.ErrorResponse{Error: dErr.Message})
			return
		case domain.ErrCodeInvalid:
			h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{Error: dErr.Message})
			return
		case domain.ErrCodeConflict:
			h.respondJSON(ctx, http.StatusConflict, transport.ErrorResponse{Error: dErr.Message})
			return
		case domain.ErrCodeUnauthorized:
			h.respondJSON(ctx, http.StatusUnauthorized, transport.ErrorResponse{Error: dErr.Message})
			return
		}
	}

	h.logger.Error("request failed", zap.String("fallback", fallback), zap.Error(err))
	resp := transport.ErrorResponse{Error: fallback}
	if h.development {
		resp.Details = err.Error()
	}
	h.respondJSON(ctx, http.StatusInternalServerError, resp)
}

// respondEnvelope helpers for the admin API, which keeps the enveloped shape.

func (h baseHandler) respondSuccess(ctx *fasthttp.RequestCtx, status int, data interface{}) {
	h.respondJSON(ctx, status, transport.NewSuccess(data, nil))
}

func (h baseHandler) respondError(ctx *fasthttp.RequestCtx, err error) {
	status, code := mapError(err)
	h.respondJSON(ctx, status, transport.NewError(code, err.Error(), nil))
}

func mapError(err error) (int, string) {
	switch {
	case domain.IsDomainError(err, domain.ErrCodeUnauthorized):
		return http.StatusUnauthorized, string(domain.ErrCodeUnauthorized)
	case domain.IsDomainError(err, domain.ErrCodeInvalid):
		return http.StatusBadRequest, string(domain.ErrCodeInvalid)
	case domain.IsDomainError(err, domain.ErrCodeNotFound):
		return http.StatusNotFound, string(domain.ErrCodeNotFound)
	case domain.IsDomainError(err, domain.ErrCodeConflict):
		return http.StatusConflict, string(domain.ErrCodeConflict)
	default:
		return http.StatusInternalServerError, string(domain.ErrCodeInternal)
	}
}
