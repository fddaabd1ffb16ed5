package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/auth"
	"storefront-service/internal/users"
)

type fakeAccounts struct {
	users map[string]users.User
}

func (f *fakeAccounts) GetUserByID(_ context.Context, id string) (users.User, error) {
	u, ok := f.users[id]
	if !ok {
		return users.User{}, fmt.Errorf("no such user")
	}
	return u, nil
}

func testRouter(t *testing.T, keys *auth.Keys, blacklist *auth.Blacklist, accounts AccountLookup) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := NewMid(keys, blacklist, accounts)
	require.NoError(t, err)

	r := gin.New()
	r.Use(m.Authentication())
	r.GET("/open", func(c *gin.Context) {
		_, ok := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	r.GET("/buyer", m.Authorize(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}, auth.RoleBuyer))
	r.GET("/admin", m.Authorize(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}, auth.RoleAdmin))
	return r
}

func doRequest(r *gin.Engine, path string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticationNoToken(t *testing.T) {
	keys, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	r := testRouter(t, keys, auth.NewBlacklist(), &fakeAccounts{})

	w := doRequest(r, "/open", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = doRequest(r, "/buyer", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationRevokedTokenRejectedBeforeVerify(t *testing.T) {
	keys, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	blacklist := auth.NewBlacklist()
	r := testRouter(t, keys, blacklist, &fakeAccounts{})

	// The token never verifies with these keys, but revocation wins anyway.
	blacklist.Revoke("some-opaque-token", time.Now().UTC().Add(time.Hour))

	w := doRequest(r, "/open", "some-opaque-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthenticationInvalidTokenContinuesUnauthenticated(t *testing.T) {
	keys, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	other, err := auth.NewKeys("other-secret", time.Hour)
	require.NoError(t, err)
	r := testRouter(t, keys, auth.NewBlacklist(), &fakeAccounts{})

	token, err := other.GenerateToken("user-1", auth.RoleBuyer)
	require.NoError(t, err)

	w := doRequest(r, "/open", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authenticated":false`)

	w = doRequest(r, "/buyer", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthorizeValidToken(t *testing.T) {
	keys, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	accounts := &fakeAccounts{users: map[string]users.User{
		"user-1": {ID: "user-1", Role: auth.RoleBuyer},
	}}
	r := testRouter(t, keys, auth.NewBlacklist(), accounts)

	token, err := keys.GenerateToken("user-1", auth.RoleBuyer)
	require.NoError(t, err)

	w := doRequest(r, "/buyer", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, "/admin", token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthorizeMergesClaimRoleWithStoredRole(t *testing.T) {
	keys, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	accounts := &fakeAccounts{users: map[string]users.User{
		"user-1": {ID: "user-1", Role: auth.RoleBuyer},
	}}
	r := testRouter(t, keys, auth.NewBlacklist(), accounts)

	// Stored role BUYER plus claim role ADMIN yields both authorities.
	token, err := keys.GenerateToken("user-1", auth.RoleAdmin)
	require.NoError(t, err)

	w := doRequest(r, "/buyer", token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, "/admin", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthenticationUnknownSubjectContinuesUnauthenticated(t *testing.T) {
	keys, err := auth.NewKeys("test-secret", time.Hour)
	require.NoError(t, err)
	r := testRouter(t, keys, auth.NewBlacklist(), &fakeAccounts{})

	token, err := keys.GenerateToken("ghost", auth.RoleBuyer)
	require.NoError(t, err)

	w := doRequest(r, "/buyer", token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerToken(t *testing.T) {
	token, ok := BearerToken("Bearer abc.def.ghi")
	assert.True(t, ok)
	assert.Equal(t, "abc.def.ghi", token)

	token, ok = BearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = BearerToken("")
	assert.False(t, ok)

	_, ok = BearerToken("Basic abc")
	assert.False(t, ok)

	_, ok = BearerToken("Bearer ")
	assert.False(t, ok)
}
