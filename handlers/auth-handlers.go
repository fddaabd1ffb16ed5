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

func (h *Handler) Signup(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var newUser users.NewUser
	if err := c.ShouldBindJSON(&newUser); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// Self-assigned admin accounts are never allowed; checked before the
	// struct validation so the caller gets the specific message.
	if strings.EqualFold(newUser.Role, "ADMIN") {
		slog.Error("admin registration attempt denied", slog.String(logkey.TraceID, traceId),
			slog.String("email", newUser.Email))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Admin registration is not allowed"})
		return
	}
	newUser.Role = strings.ToUpper(newUser.Role)

	if err := h.validate.Struct(newUser); err != nil {
		slog.Error("validation failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.u.InsertUser(c.Request.Context(), newUser)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("user registered", slog.String(logkey.TraceID, traceId), slog.String(logkey.UserID, user.ID))
	c.JSON(http.StatusOK, gin.H{"message": "Registered Successfully", "user": user})
}

func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
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

	user, err := h.u.Authenticate(c.Request.Context(), request.Email, request.Password)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	token, err := h.a.GenerateToken(user.ID, user.Role)
	if err != nil {
		respondDomainError(c, traceId, err)
		return
	}

	slog.Info("user logged in", slog.String(logkey.TraceID, traceId), slog.String(logkey.UserID, user.ID))
	c.JSON(http.StatusOK, gin.H{
		"token": "Bearer " + token,
		"user":  user,
	})
}

// Logout revokes the presented token. The route sits outside the
// authentication gate, so even an expired or unverifiable token lands on
// the blacklist.
func (h *Handler) Logout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	token, ok := middleware.BearerToken(c.Request.Header.Get("Authorization"))
	if !ok {
		slog.Error("logout without bearer token", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "No valid token provided"})
		return
	}

	h.blacklist.Revoke(token, h.a.TokenExpiry(token))

	slog.Info("token revoked", slog.String(logkey.TraceID, traceId))
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
