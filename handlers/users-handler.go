package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/users"
	"storefront-service/middleware"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

func (h *Handler) GetMyProfile(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	user, err := h.u.GetUserByID(c.Request.Context(), claims.Subject)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateMyProfile(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var uu users.UpdateUser
	if err := c.ShouldBindJSON(&uu); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.validate.Struct(uu); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.u.UpdateUser(c.Request.Context(), claims.Subject, uu)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("profile updated", slog.String(logkey.TraceID, traceId), slog.String(logkey.UserID, user.ID))
	c.JSON(http.StatusOK, user)
}

func (h *Handler) DeleteMyAccount(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	claims, ok := requestClaims(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.u.DeleteUser(c.Request.Context(), claims.Subject); err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	// The presented token would otherwise stay valid until it expires.
	if token, ok := middleware.BearerToken(c.Request.Header.Get("Authorization")); ok {
		h.blacklist.Revoke(token, h.a.TokenExpiry(token))
	}

	slog.Info("account deleted", slog.String(logkey.TraceID, traceId), slog.String(logkey.UserID, claims.Subject))
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	list, err := h.u.ListUsers(c.Request.Context())
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": list})
}

// UpdateUserRole lets an admin promote or demote an account.
func (h *Handler) UpdateUserRole(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Role string `json:"role" validate:"required"`
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
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Role is required"})
		return
	}

	user, err := h.u.UpdateRole(c.Request.Context(), c.Param("id"), strings.ToUpper(request.Role))
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("user role updated", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.UserID, user.ID), slog.String("role", user.Role))
	c.JSON(http.StatusOK, user)
}
