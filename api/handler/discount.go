package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/simhub/backend/api/transport"
	"github.com/simhub/backend/pkg/httpcontext"
	discountUC "github.com/simhub/backend/usecase/discount"
)

type DiscountHandler struct {
	baseHandler
	uc *discountUC.UseCase
}

func NewDiscountHandler(uc *discountUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *DiscountHandler {
	return &DiscountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List discounts
// @Tags discounts
// @Router /api/v1/discounts [get]
func (h *DiscountHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	discounts, err := h.uc.List(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, discounts)
}

// @Summary Look up a discount at checkout
// @Tags discounts
// @Router /api/v1/discounts/{code} [get]
func (h *DiscountHandler) Get(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing discount code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	percent, err := h.uc.PercentByCode(stdCtx, code)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int{"discount_percent": percent})
}

// @Summary Create a discount
// @Tags discounts
// @Router /api/v1/discounts [post]
func (h *DiscountHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.DiscountCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	discount, err := h.uc.Create(stdCtx, req.DiscountPercent)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, discount)
}

// @Summary Delete a discount
// @Tags discounts
// @Router /api/v1/discounts/{code} [delete]
func (h *DiscountHandler) Delete(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing discount code")
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
