package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/auth"
	"storefront-service/internal/products"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

func (h *Handler) CreateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var newProduct products.NewProduct
	if err := c.ShouldBindJSON(&newProduct); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(newProduct); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := h.p.InsertProduct(c.Request.Context(), claims.Subject, newProduct)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("product created", slog.String(logkey.TraceID, traceId),
		slog.String("product_id", product.ID), slog.String(logkey.UserID, claims.Subject))
	c.JSON(http.StatusOK, product)
}

func (h *Handler) GetProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	product, err := h.p.GetProductByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

func (h *Handler) ListProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	list, err := h.p.ListProductsFromDB(c.Request.Context(), c.Query("name"), c.Query("category_id"), limit, offset)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": list})
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var up products.UpdateProduct
	if err := c.ShouldBindJSON(&up); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(up); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Admins may edit any product; sellers only their own.
	sellerID := claims.Subject
	if hasAuthority(c, auth.RoleAdmin) {
		sellerID = ""
	}

	product, err := h.p.UpdateProductInDB(c.Request.Context(), c.Param("id"), sellerID, up)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("product updated", slog.String(logkey.TraceID, traceId), slog.String("product_id", product.ID))
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	sellerID := claims.Subject
	if hasAuthority(c, auth.RoleAdmin) {
		sellerID = ""
	}

	if err := h.p.DeleteProductFromDB(c.Request.Context(), c.Param("id"), sellerID); err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("product deleted", slog.String(logkey.TraceID, traceId), slog.String("product_id", c.Param("id")))
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *Handler) CreateCategory(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Name string `json:"name" validate:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(request); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Category name is required"})
		return
	}

	category, err := h.p.InsertCategory(c.Request.Context(), request.Name)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

func (h *Handler) ListCategories(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.p.ListCategories(c.Request.Context())
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": list})
}
