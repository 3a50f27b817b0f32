package api

import (
	"net/http"

	"storefront-service/internal/service"
	"storefront-service/internal/store"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) listProducts(c *gin.Context) {
	filter := store.ProductFilter{
		Categories: store.SplitSlugs(c.Query("category")),
		Brands:     store.SplitSlugs(c.Query("brand")),
		Sort:       store.ParseSortKey(c.Query("sortBy")),
	}

	products, err := h.catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products, "")
}

func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product, "")
}

func (h *Handler) searchProducts(c *gin.Context) {
	products, err := h.catalog.SearchProducts(c.Request.Context(), c.Param("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products, "")
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, categories, "")
}

func (h *Handler) listBrands(c *gin.Context) {
	brands, err := h.catalog.ListBrands(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, brands, "")
}

func (h *Handler) createProduct(c *gin.Context) {
	var in service.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product, "")
}

func (h *Handler) updateProduct(c *gin.Context) {
	var in service.ProductInput
	if !bindJSON(c, &in) {
		return
	}

	product, err := h.catalog.UpdateProduct(c.Request.Context(), c.Param("id"), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product, "")
}

func (h *Handler) deleteProduct(c *gin.Context) {
	if err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, http.StatusOK, true, "Product deleted successfully")
}

// exportProducts streams the catalog as an xlsx attachment
func (h *Handler) exportProducts(c *gin.Context) {
	file, err := h.catalog.ExportProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=products.xlsx")
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := file.Write(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handler) listReviews(c *gin.Context) {
	reviews, err := h.reviews.ListReviews(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, reviews, "")
}

func (h *Handler) addReview(c *gin.Context) {
	var req service.AddReviewRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := authorizeUser(c, req.UserID); err != nil {
		respondError(c, err)
		return
	}

	review, err := h.reviews.AddReview(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, review, "")
}
