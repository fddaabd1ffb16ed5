package handlers

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"storefront-service/internal/auth"
	"storefront-service/internal/cart"
	"storefront-service/internal/orders"
	"storefront-service/internal/payments"
	"storefront-service/internal/products"
	"storefront-service/internal/stores/kafka"
	"storefront-service/internal/users"
	"storefront-service/middleware"
	"storefront-service/pkg/ctxmanage"
)

type Handler struct {
	a         *auth.Keys
	blacklist *auth.Blacklist
	u         *users.Conf
	p         *products.Conf
	ct        *cart.Conf
	o         *orders.Conf
	pay       *payments.Conf
	k         *kafka.Conf // nil when kafka is not configured
	validate  *validator.Validate
}

func NewHandler(a *auth.Keys, blacklist *auth.Blacklist, u *users.Conf, p *products.Conf,
	ct *cart.Conf, o *orders.Conf, pay *payments.Conf, k *kafka.Conf) *Handler {
	return &Handler{
		a:         a,
		blacklist: blacklist,
		u:         u,
		p:         p,
		ct:        ct,
		o:         o,
		pay:       pay,
		k:         k,
		validate:  validator.New(),
	}
}

func API(a *auth.Keys, blacklist *auth.Blacklist, u *users.Conf, p *products.Conf,
	ct *cart.Conf, o *orders.Conf, pay *payments.Conf, k *kafka.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := middleware.NewMid(a, blacklist, u)
	if err != nil {
		panic(err)
	}
	h := NewHandler(a, blacklist, u, p, ct, o, pay, k)

	r.Use(middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", h.Signup)
		authGroup.POST("/login", h.Login)
		// Logout stays outside the authentication gate: it must accept
		// the very token it is about to revoke.
		authGroup.POST("/logout", h.Logout)
	}

	anyRole := []string{auth.RoleBuyer, auth.RoleSeller, auth.RoleAdmin}

	v1 := r.Group("/")
	v1.Use(m.Authentication())
	{
		// Catalog reads are public; the gate only establishes identity
		// when a token is present, it never rejects its absence.
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:id", h.GetProduct)
		v1.GET("/categories", h.ListCategories)

		v1.POST("/products", m.Authorize(h.CreateProduct, auth.RoleSeller))
		v1.PUT("/products/:id", m.Authorize(h.UpdateProduct, auth.RoleSeller, auth.RoleAdmin))
		v1.DELETE("/products/:id", m.Authorize(h.DeleteProduct, auth.RoleSeller, auth.RoleAdmin))
		v1.POST("/categories", m.Authorize(h.CreateCategory, auth.RoleAdmin))

		v1.GET("/users/me", m.Authorize(h.GetMyProfile, anyRole...))
		v1.PUT("/users/me", m.Authorize(h.UpdateMyProfile, anyRole...))
		v1.DELETE("/users/me", m.Authorize(h.DeleteMyAccount, anyRole...))
		v1.GET("/users", m.Authorize(h.ListUsers, auth.RoleAdmin))

		v1.POST("/addresses", m.Authorize(h.CreateAddress, anyRole...))
		v1.GET("/addresses", m.Authorize(h.ListAddresses, anyRole...))
		v1.DELETE("/addresses/:id", m.Authorize(h.DeleteAddress, anyRole...))

		v1.POST("/cart/items", m.Authorize(h.AddToCart, auth.RoleBuyer))
		v1.GET("/cart/items", m.Authorize(h.GetCartItems, auth.RoleBuyer))
		v1.PUT("/cart/items/:productID", m.Authorize(h.UpdateCartItem, auth.RoleBuyer))
		v1.DELETE("/cart/items/:productID", m.Authorize(h.RemoveCartItem, auth.RoleBuyer))

		v1.POST("/orders", m.Authorize(h.PlaceOrder, auth.RoleBuyer))
		v1.GET("/orders", m.Authorize(h.GetOrders, anyRole...))
		v1.GET("/orders/:id", m.Authorize(h.GetOrderByID, anyRole...))
		v1.PUT("/orders/:id/status", m.Authorize(h.UpdateOrderStatus, auth.RoleSeller, auth.RoleAdmin))
		v1.DELETE("/orders/:id", m.Authorize(h.DeleteOrder, anyRole...))

		v1.POST("/payments", m.Authorize(h.ProcessPayment, auth.RoleBuyer))

		v1.GET("/admin/dashboard", m.Authorize(h.Dashboard, auth.RoleAdmin))
		v1.PUT("/admin/users/:id/role", m.Authorize(h.UpdateUserRole, auth.RoleAdmin))
	}

	return r
}

func healthCheck(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	fmt.Println("healthCheck handler ", traceId)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
