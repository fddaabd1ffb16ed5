package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/auth"
	"storefront-service/internal/users"
	"storefront-service/pkg/ctxmanage"
	"storefront-service/pkg/logkey"
)

// AccountLookup resolves a token subject to its stored account so the gate
// can fall back to the account's own role when the token carries none.
type AccountLookup interface {
	GetUserByID(ctx context.Context, id string) (users.User, error)
}

type Mid struct {
	keys      *auth.Keys
	blacklist *auth.Blacklist
	accounts  AccountLookup
}

func NewMid(keys *auth.Keys, blacklist *auth.Blacklist, accounts AccountLookup) (*Mid, error) {
	if keys == nil || blacklist == nil || accounts == nil {
		return nil, fmt.Errorf("missing middleware dependency")
	}
	return &Mid{keys: keys, blacklist: blacklist, accounts: accounts}, nil
}

// Authentication establishes the request principal when it can. A revoked
// token fails the request immediately with 401, before any signature check,
// so a revoked-but-still-valid token never authenticates. Every other
// verification failure is swallowed: the request continues without a
// principal and the per-route Authorize check does the rejecting.
func (m *Mid) Authentication() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		token, ok := BearerToken(c.Request.Header.Get("Authorization"))
		if !ok {
			c.Next()
			return
		}

		if m.blacklist.IsRevoked(token) {
			slog.Error("revoked token presented", slog.String(logkey.TraceID, traceId))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has been invalidated"})
			return
		}

		claims, err := m.keys.VerifyToken(token)
		if err != nil {
			slog.Warn("token verification failed", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			c.Next()
			return
		}

		account, err := m.accounts.GetUserByID(c.Request.Context(), claims.Subject)
		if err != nil {
			slog.Warn("token subject has no account", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.UserID, claims.Subject))
			c.Next()
			return
		}

		// Baseline authorities come from the stored account; the token's
		// role claim is merged in, never substituted wholesale.
		authorities := []string{roleAuthority(account.Role)}
		claimRole := claims.Role
		if claimRole == "" {
			claimRole = account.Role
		}
		effective := roleAuthority(claimRole)
		if !contains(authorities, effective) {
			authorities = append(authorities, effective)
		}

		ctx := context.WithValue(c.Request.Context(), auth.ClaimsKey, claims)
		ctx = context.WithValue(ctx, auth.AuthoritiesKey, authorities)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// Authorize wraps a handler so it only runs for callers holding one of the
// given roles: no principal means 401, a principal without the role 403.
func (m *Mid) Authorize(next gin.HandlerFunc, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := ctxmanage.GetTraceIdOfRequest(c)

		_, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		if !ok {
			slog.Error("unauthenticated request on protected route", slog.String(logkey.TraceID, traceId),
				slog.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		authorities, _ := c.Request.Context().Value(auth.AuthoritiesKey).([]string)
		for _, role := range roles {
			if contains(authorities, roleAuthority(role)) {
				next(c)
				return
			}
		}

		slog.Error("role not allowed on route", slog.String(logkey.TraceID, traceId),
			slog.String("path", c.Request.URL.Path))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}

// Logger assigns each request a trace id and logs method, path, status and
// latency once the handler chain finishes.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceId := uuid.NewString()
		c.Set(ctxmanage.TraceIdKey, traceId)

		start := time.Now()
		c.Next()

		slog.Info("request completed",
			slog.String(logkey.TraceID, traceId),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
		)
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func roleAuthority(role string) string {
	return "ROLE_" + strings.ToUpper(role)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
