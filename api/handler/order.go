package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/simhub/backend/api/transport"
	"github.com/simhub/backend/domain"
	"github.com/simhub/backend/pkg/httpcontext"
	"github.com/simhub/backend/repository"
	orderUC "github.com/simhub/backend/usecase/order"
)

type OrderHandler struct {
	baseHandler
	uc *orderUC.UseCase
}

func NewOrderHandler(uc *orderUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Place an order
// @Tags orders
// @Router /api/v1/orders [post]
func (h *OrderHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.OrderCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Email == "" || len(req.Items) == 0 {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	items := make([]orderUC.ItemInput, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderUC.ItemInput{
			VariantCode: item.VariantCode,
			Quantity:    item.Quantity,
		})
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.Create(stdCtx, orderUC.CreateInput{
		Email:           req.Email,
		Phone:           req.Phone,
		ShippingAddress: req.ShippingAddress,
		Note:            req.Note,
		Items:           items,
		DiscountCode:    req.DiscountCode,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, order)
}

// @Summary Track an order by code or trailing digits
// @Tags orders
// @Router /api/v1/orders/track [get]
func (h *OrderHandler) Track(ctx *fasthttp.RequestCtx) {
	query := string(ctx.QueryArgs().Peek("code"))
	if query == "" {
		h.respondInvalid(ctx, "missing order code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.Track(stdCtx, query)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, order)
}

// @Summary List orders
// @Tags orders
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(ctx *fasthttp.RequestCtx) {
	filter := repository.OrderFilter{
		OrderStatus:   domain.OrderStatus(ctx.QueryArgs().Peek("order_status")),
		PaymentStatus: domain.PaymentStatus(ctx.QueryArgs().Peek("payment_status")),
		Limit:         parseInt(string(ctx.QueryArgs().Peek("limit")), 20),
		Offset:        parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, total, err := h.uc.List(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, orders, transport.ListMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// @Summary Get an order
// @Tags orders
// @Router /api/v1/orders/{code} [get]
func (h *OrderHandler) Get(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing order code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.Get(stdCtx, code)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, order)
}

// @Summary Update order status and shipping details
// @Tags orders
// @Router /api/v1/orders/{code} [put]
func (h *OrderHandler) Update(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing order code")
		return
	}

	var req transport.OrderUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	input := orderUC.UpdateInput{
		ShippingAddress: req.ShippingAddress,
		Note:            req.Note,
	}
	if req.OrderStatus != nil {
		status := domain.OrderStatus(*req.OrderStatus)
		input.OrderStatus = &status
	}
	if req.PaymentStatus != nil {
		status := domain.PaymentStatus(*req.PaymentStatus)
		input.PaymentStatus = &status
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.Update(stdCtx, code, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, order)
}

// @Summary Delete an order
// @Tags orders
// @Router /api/v1/orders/{code} [delete]
func (h *OrderHandler) Delete(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing order code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, code); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
