package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/auth"
	"storefront-service/internal/orders"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

// PlaceOrder runs the cart-to-order placement against the shipping address
// named in the shippingAddressId query parameter.
func (h *Handler) PlaceOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	shippingAddressID := c.Query("shippingAddressId")
	if shippingAddressID == "" {
		slog.Error("missing shippingAddressId", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "shippingAddressId is required"})
		return
	}

	order, err := h.o.PlaceOrder(c.Request.Context(), claims.Subject, shippingAddressID)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("order placed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, order.ID), slog.String(logkey.UserID, claims.Subject),
		slog.Int64("total_price", order.TotalPrice))
	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	list, err := h.o.GetOrdersForUser(c.Request.Context(), claims.Subject, hasAuthority(c, auth.RoleAdmin))
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) GetOrderByID(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	order, err := h.o.GetOrderByID(c.Request.Context(), c.Param("id"), claims.Subject, hasAuthority(c, auth.RoleAdmin))
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.Status == "" {
		slog.Error("missing status in request", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	target, err := orders.ParseStatus(request.Status)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	order, err := h.o.UpdateStatus(c.Request.Context(), c.Param("id"), target)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("order status updated", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, order.ID), slog.String("status", string(order.Status)))
	c.JSON(http.StatusOK, order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.o.DeleteOrder(c.Request.Context(), c.Param("id"), claims.Subject, hasAuthority(c, auth.RoleAdmin))
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}

// Dashboard is the admin aggregate over existing orders.
func (h *Handler) Dashboard(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	stats, err := h.o.DashboardStats(c.Request.Context())
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
