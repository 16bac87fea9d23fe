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
	catalogUC "github.com/simhub/backend/usecase/catalog"
)

type CatalogHandler struct {
	baseHandler
	uc *catalogUC.UseCase
}

func NewCatalogHandler(uc *catalogUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List products
// @Tags catalog
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(ctx *fasthttp.RequestCtx) {
	filter := repository.ProductFilter{
		CategoryCode: string(ctx.QueryArgs().Peek("category")),
		Token:        string(ctx.QueryArgs().Peek("search")),
		Limit:        parseInt(string(ctx.QueryArgs().Peek("limit")), 20),
		Offset:       parseInt(string(ctx.QueryArgs().Peek("offset")), 0),
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	products, total, err := h.uc.ListProducts(stdCtx, filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, products, transport.ListMeta{Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// @Summary Get a product by code
// @Tags catalog
// @Router /api/v1/products/{code} [get]
func (h *CatalogHandler) GetProduct(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing product code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	product, err := h.uc.GetProduct(stdCtx, code)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, product)
}

// @Summary Create a product
// @Tags catalog
// @Router /api/v1/products [post]
func (h *CatalogHandler) CreateProduct(ctx *fasthttp.RequestCtx) {
	var req transport.ProductCreateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Name.En == "" || req.CategoryCode == "" {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	product, err := h.uc.CreateProduct(stdCtx, catalogUC.CreateProductInput{
		CategoryCode: req.CategoryCode,
		Name:         localized(req.Name),
		Description:  localized(req.Description),
		Cover:        media(req.Cover),
		Gallery:      mediaList(req.Gallery),
		Capacities:   req.Capacities,
		Durations:    req.Durations,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, product)
}

// @Summary Update a product
// @Tags catalog
// @Router /api/v1/products/{code} [put]
func (h *CatalogHandler) UpdateProduct(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing product code")
		return
	}

	var req transport.ProductUpdateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	input := catalogUC.UpdateProductInput{CategoryCode: req.CategoryCode}
	if req.Name != nil {
		name := localized(*req.Name)
		input.Name = &name
	}
	if req.Description != nil {
		desc := localized(*req.Description)
		input.Description = &desc
	}
	if req.Cover != nil {
		cover := media(*req.Cover)
		input.Cover = &cover
	}
	if req.Gallery != nil {
		input.Gallery = mediaList(req.Gallery)
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	product, err := h.uc.UpdateProduct(stdCtx, code, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, product)
}

// @Summary Delete a product
// @Tags catalog
// @Router /api/v1/products/{code} [delete]
func (h *CatalogHandler) DeleteProduct(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing product code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteProduct(stdCtx, code); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List categories
// @Tags catalog
// @Router /api/v1/categories [get]
func (h *CatalogHandler) ListCategories(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	categories, err := h.uc.ListCategories(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, categories)
}

// @Summary Create a category
// @Tags catalog
// @Router /api/v1/categories [post]
func (h *CatalogHandler) CreateCategory(ctx *fasthttp.RequestCtx) {
	var req transport.CategoryRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || (req.Code == "" && req.Name.En == "") {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	category, err := h.uc.CreateCategory(stdCtx, &domain.Category{
		Code: req.Code,
		Name: localized(req.Name),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, category)
}

// @Summary Update a category
// @Tags catalog
// @Router /api/v1/categories/{code} [put]
func (h *CatalogHandler) UpdateCategory(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing category code")
		return
	}

	var req transport.CategoryRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	category, err := h.uc.UpdateCategory(stdCtx, &domain.Category{
		Code: code,
		Name: localized(req.Name),
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, category)
}

// @Summary Delete a category
// @Tags catalog
// @Router /api/v1/categories/{code} [delete]
func (h *CatalogHandler) DeleteCategory(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing category code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteCategory(stdCtx, code); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary List product variants
// @Tags catalog
// @Router /api/v1/products/{code}/variants [get]
func (h *CatalogHandler) ListVariants(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing product code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	variants, err := h.uc.ListVariants(stdCtx, code)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, variants)
}

// @Summary Add a product variant
// @Tags catalog
// @Router /api/v1/products/{code}/variants [post]
func (h *CatalogHandler) CreateVariant(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing product code")
		return
	}

	req, ok := h.parseVariant(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	variant, err := h.uc.CreateVariant(stdCtx, code, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, variant)
}

// @Summary Update a variant
// @Tags catalog
// @Router /api/v1/variants/{code} [put]
func (h *CatalogHandler) UpdateVariant(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing variant code")
		return
	}

	req, ok := h.parseVariant(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	variant, err := h.uc.UpdateVariant(stdCtx, code, req)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, variant)
}

// @Summary Delete a variant
// @Tags catalog
// @Router /api/v1/variants/{code} [delete]
func (h *CatalogHandler) DeleteVariant(ctx *fasthttp.RequestCtx) {
	code, _ := ctx.UserValue("code").(string)
	if code == "" {
		h.respondInvalid(ctx, "missing variant code")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.DeleteVariant(stdCtx, code); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func (h *CatalogHandler) parseVariant(ctx *fasthttp.RequestCtx) (catalogUC.VariantInput, bool) {
	var req transport.VariantRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return catalogUC.VariantInput{}, false
	}
	return catalogUC.VariantInput{
		Capacity: req.Capacity,
		Duration: req.Duration,
		VND:      domain.VariantPrice{Original: req.VND.Original, DiscountPercent: req.VND.DiscountPercent},
		USD:      domain.VariantPrice{Original: req.USD.Original, DiscountPercent: req.USD.DiscountPercent},
	}, true
}

func localized(t transport.LocalizedText) domain.LocalizedString {
	return domain.LocalizedString{Vi: t.Vi, En: t.En}
}

func media(m transport.MediaPayload) domain.Media {
	return domain.Media{URL: m.URL, MediaCode: m.MediaCode}
}

func mediaList(ms []transport.MediaPayload) []domain.Media {
	out := make([]domain.Media, 0, len(ms))
	for _, m := range ms {
		out = append(out, media(m))
	}
	return out
}
