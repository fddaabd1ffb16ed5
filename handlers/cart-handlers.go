package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var request struct {
		ProductID string `json:"product_id" validate:"required"`
		Quantity  int    `json:"quantity" validate:"required,min=1"`
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
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Product ID and quantity must be valid"})
		return
	}

	item, err := h.ct.AddToCartDB(c.Request.Context(), claims.Subject, request.ProductID, request.Quantity)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("product added to cart", slog.String(logkey.TraceID, traceId),
		slog.String("product_id", request.ProductID), slog.Int("quantity", item.Quantity),
		slog.String(logkey.UserID, claims.Subject))
	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart successfully", "item": item})
}

func (h *Handler) GetCartItems(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cartResponse, err := h.ct.GetCartItems(c.Request.Context(), claims.Subject)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": cartResponse.Items})
}

func (h *Handler) UpdateCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID := c.Param("productID")

	var request struct {
		Quantity int `json:"quantity" validate:"required,min=1"`
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
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Quantity must be at least 1"})
		return
	}

	item, err := h.ct.UpdateQuantity(c.Request.Context(), claims.Subject, productID, request.Quantity)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated", "item": item})
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	productID := c.Param("productID")

	if err := h.ct.RemoveFromCart(c.Request.Context(), claims.Subject, productID); err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item removed"})
}
