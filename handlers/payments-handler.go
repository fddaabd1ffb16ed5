package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/stores/kafka"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

func (h *Handler) ProcessPayment(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var request struct {
		OrderID       string `json:"orderId" validate:"required"`
		Amount        int64  `json:"amount" validate:"required,min=1"`
		PaymentMethod string `json:"paymentMethod" validate:"required,oneof=CARD UPI NET_BANKING WALLET COD"`
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
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	payment, err := h.pay.ProcessPayment(c.Request.Context(), claims.Subject,
		request.OrderID, request.Amount, request.PaymentMethod)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("payment recorded", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, payment.OrderID), slog.String("payment_id", payment.ID))

	// Best effort: a broker hiccup must not undo a committed payment.
	if h.k != nil {
		event := kafka.OrderPaidEvent{
			OrderID:   payment.OrderID,
			UserID:    payment.UserID,
			PaymentID: payment.ID,
			Amount:    payment.Amount,
			PaidAt:    payment.TransactionDate,
		}
		jsonData, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal order-paid event", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
		} else if err := h.k.ProduceMessage(kafka.TopicOrderPaid, []byte(payment.OrderID), jsonData); err != nil {
			slog.Error("failed to produce order-paid event", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
		}
	}

	c.JSON(http.StatusOK, payment)
}
