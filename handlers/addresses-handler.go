package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/users"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

func (h *Handler) CreateAddress(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var na users.NewShippingAddress
	if err := c.ShouldBindJSON(&na); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(na); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	address, err := h.u.InsertAddress(c.Request.Context(), claims.Subject, na)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("shipping address created", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.UserID, claims.Subject), slog.String("address_id", address.ID))
	c.JSON(http.StatusOK, address)
}

func (h *Handler) ListAddresses(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.u.ListAddresses(c.Request.Context(), claims.Subject)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"addresses": list})
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.u.DeleteAddress(c.Request.Context(), claims.Subject, c.Param("id")); err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address deleted successfully"})
}
