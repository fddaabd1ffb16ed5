package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/cart"
	"storefront-service/internal/orders"
	"storefront-service/internal/payments"
	"storefront-service/internal/products"
	"storefront-service/internal/users"
	"storefront-service/pkg/logkey"
)

// respondDomainError translates a typed domain error into its HTTP status.
// Anything unrecognized is an internal failure and keeps its details out of
// the response.
func respondDomainError(c *gin.Context, traceId string, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, users.ErrUserNotFound),
		errors.Is(err, users.ErrAddressNotFound),
		errors.Is(err, products.ErrProductNotFound),
		errors.Is(err, products.ErrCategoryNotFound),
		errors.Is(err, cart.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, orders.ErrOrderNotFound),
		errors.Is(err, orders.ErrAddressNotFound),
		errors.Is(err, orders.ErrProductNotFound),
		errors.Is(err, payments.ErrOrderNotFound):
		status = http.StatusNotFound
		message = err.Error()

	case errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, cart.ErrInsufficientStock),
		errors.Is(err, orders.ErrEmptyCart),
		errors.Is(err, orders.ErrInsufficientStock),
		errors.Is(err, orders.ErrInvalidStatus),
		errors.Is(err, orders.ErrIllegalTransition),
		errors.Is(err, payments.ErrAmountMismatch),
		errors.Is(err, payments.ErrOrderAlreadyPaid),
		errors.Is(err, payments.ErrOrderNotPayable):
		status = http.StatusConflict
		message = err.Error()

	case errors.Is(err, users.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()

	case errors.Is(err, orders.ErrNotOwner),
		errors.Is(err, payments.ErrNotOwner),
		errors.Is(err, products.ErrNotProductOwner):
		status = http.StatusForbidden
		message = err.Error()

	case errors.Is(err, users.ErrInvalidRole):
		status = http.StatusBadRequest
		message = err.Error()
	}

	if status == http.StatusInternalServerError {
		slog.Error("unexpected error", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
	} else {
		slog.Error("request failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
	}
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
