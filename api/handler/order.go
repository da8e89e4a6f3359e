package handler

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pegrio/portal-backend/api/transport"
	"github.com/pegrio/portal-backend/domain"
	"github.com/pegrio/portal-backend/pkg/httpcontext"
	"github.com/pegrio/portal-backend/repository"
	orderUC "github.com/pegrio/portal-backend/usecase/order"
)

// OrderHandler serves order creation (internal, called by the payment
// webhook) and the admin listing endpoints.
type OrderHandler struct {
	baseHandler
	orders         *orderUC.UseCase
	reader         repository.OrderRepository
	internalSecret string
}

func NewOrderHandler(orders *orderUC.UseCase, reader repository.OrderRepository, internalSecret string, adapter *httpcontext.Adapter, logger *zap.Logger, development bool) *OrderHandler {
	return &OrderHandler{
		baseHandler:    newBaseHandler(adapter, logger, development),
		orders:         orders,
		reader:         reader,
		internalSecret: internalSecret,
	}
}

// @Summary Create an order after payment
// @Tags orders
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(ctx *fasthttp.RequestCtx) {
	secret := string(ctx.Request.Header.Peek("X-Internal-Secret"))
	if h.internalSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.internalSecret)) != 1 {
		h.respondJSON(ctx, http.StatusUnauthorized, transport.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req transport.CreateOrderRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondJSON(ctx, http.StatusBadRequest, transport.ErrorResponse{Error: "Invalid request body"})
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.orders.CreateOrder(stdCtx, orderUC.NewOrder{
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		BusinessName:    req.BusinessName,
		Phone:           req.Phone,
		Tier:            req.Tier,
		MaintenancePlan: req.MaintenancePlan,
		AddOns:          req.AddOns,
		TotalAmount:     req.TotalAmount,
		DepositAmount:   req.DepositAmount,
		PortalToken:     req.PortalToken,
	})
	if err != nil {
		h.respondPortalError(ctx, err, "Failed to create order")
		return
	}
	h.respondJSON(ctx, http.StatusCreated, transport.OrderResponse{Success: true, Order: created})
}

// @Summary List orders
// @Tags admin
// @Router /api/v1/admin/orders [get]
func (h *OrderHandler) ListOrders(ctx *fasthttp.RequestCtx) {
	filter := repository.OrderFilter{
		Status: string(ctx.QueryArgs().Peek("status")),
		Limit:  parseInt(string(ctx.QueryArgs().Peek("limit")), 50),
		Offset: parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.reader.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, orders)
}

// @Summary Order event timeline
// @Tags admin
// @Router /api/v1/admin/orders/{id}/events [get]
func (h *OrderHandler) ListOrderEvents(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondJSON(ctx, http.StatusBadRequest, transport.NewError(string(domain.ErrCodeInvalid), "missing order id", nil))
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if _, err := h.reader.GetByID(stdCtx, id); err != nil {
		h.respondError(ctx, err)
		return
	}

	events, err := h.reader.ListEvents(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, events)
}
