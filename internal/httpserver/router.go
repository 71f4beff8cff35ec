package httpserver

import (
	"context"
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"marketplace-backend/internal/domain"
	ordersvc "marketplace-backend/internal/service/order"
	productsvc "marketplace-backend/internal/service/product"
	usersvc "marketplace-backend/internal/service/user"
)

// AuthService covers signup, login and token resolution.
type AuthService interface {
	Signup(ctx context.Context, in usersvc.SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	AccessTTLSeconds() int
}

// ProductService is the catalog surface the handlers need.
type ProductService interface {
	List(ctx context.Context) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	Create(ctx context.Context, actor *domain.User, in productsvc.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, actor *domain.User, id string, in productsvc.UpdateInput) (*domain.Product, error)
	AdjustStock(ctx context.Context, actor *domain.User, id string, delta int) (*domain.Product, error)
}

// CartService is the per-customer cart surface.
type CartService interface {
	Get(ctx context.Context, customerID string) (*domain.Cart, error)
	AddItem(ctx context.Context, customerID, productID string, quantity int) (*domain.Cart, error)
	UpdateItem(ctx context.Context, customerID, itemID string, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, customerID, itemID string) (*domain.Cart, error)
	Clear(ctx context.Context, customerID string) (*domain.Cart, error)
}

// OrderService covers checkout and the order lifecycle.
type OrderService interface {
	Checkout(ctx context.Context, customer *domain.User, in ordersvc.CheckoutInput) (*domain.Order, error)
	Get(ctx context.Context, actor *domain.User, id string) (*domain.Order, error)
	List(ctx context.Context, actor *domain.User) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, actor *domain.User, id string, in ordersvc.StatusPatch) (*domain.Order, error)
	Cancel(ctx context.Context, actor *domain.User, id string) (*domain.Order, error)
}

// Deps carries the services the router wires into handlers.
type Deps struct {
	AuthSvc    AuthService
	ProductSvc ProductService
	CartSvc    CartService
	OrderSvc   OrderService
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	auth := router.Group("/auth")
	{
		auth.POST("/signup", signupHandler(deps.AuthSvc, logger))
		auth.POST("/login", loginHandler(deps.AuthSvc, logger))
	}

	requireAuth := authMiddleware(deps.AuthSvc)

	products := router.Group("/products")
	{
		products.GET("", listProductsHandler(deps.ProductSvc, logger))
		products.GET("/:id", getProductHandler(deps.ProductSvc, logger))
		products.POST("", requireAuth, createProductHandler(deps.ProductSvc, logger))
		products.PATCH("/:id", requireAuth, updateProductHandler(deps.ProductSvc, logger))
		products.POST("/:id/adjust_stock", requireAuth, adjustStockHandler(deps.ProductSvc, logger))
	}

	cart := router.Group("/cart", requireAuth)
	{
		cart.GET("", getCartHandler(deps.CartSvc, logger))
		cart.POST("/add_item", addCartItemHandler(deps.CartSvc, logger))
		cart.POST("/update_item", updateCartItemHandler(deps.CartSvc, logger))
		cart.POST("/remove_item", removeCartItemHandler(deps.CartSvc, logger))
		cart.POST("/clear", clearCartHandler(deps.CartSvc, logger))
	}

	orders := router.Group("/orders", requireAuth)
	{
		orders.GET("", listOrdersHandler(deps.OrderSvc, logger))
		orders.POST("/checkout", checkoutHandler(deps.OrderSvc, logger))
		orders.GET("/:id", getOrderHandler(deps.OrderSvc, logger))
		orders.PATCH("/:id/update_status", updateOrderStatusHandler(deps.OrderSvc, logger))
		orders.POST("/:id/cancel", cancelOrderHandler(deps.OrderSvc, logger))
	}

	return router
}
