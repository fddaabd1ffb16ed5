package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/auth"
)

// requestClaims returns the verified claims the authentication gate stored
// on the request, if any.
func requestClaims(c *gin.Context) (auth.Claims, bool) {
	claims, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
	return claims, ok
}

// hasAuthority reports whether the caller's merged authority set contains
// the given role.
func hasAuthority(c *gin.Context, role string) bool {
	authorities, _ := c.Request.Context().Value(auth.AuthoritiesKey).([]string)
	want := "ROLE_" + strings.ToUpper(role)
	for _, a := range authorities {
		if a == want {
			return true
		}
	}
	return false
}
