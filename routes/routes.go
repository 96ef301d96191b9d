package routes

import (
	"net/http"

	"saif-gifts/controllers"
	"saif-gifts/handler"
	"saif-gifts/middleware"
	"saif-gifts/services"
	"saif-gifts/utils"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Services is everything the HTTP layer needs, built once in main.
type Services struct {
	Tokens       *utils.TokenIssuer
	Auth         *services.AuthService
	Users        *services.UserService
	Products     *services.ProductService
	Carts        *services.CartService
	Checkout     *services.CheckoutService
	Orders       *services.OrderService
	Reports      *services.ReportService
	POS          *services.POSService
	Log          *zap.Logger
	SecureCookie bool
}

func SetupRoutes(router *gin.Engine, s Services) {
	authCtrl := controllers.NewAuthController(s.Auth)
	profileCtrl := controllers.NewProfileController(s.Auth)
	userCtrl := controllers.NewUserController(s.Users)
	categoryCtrl := controllers.NewCategoryController(s.Products)
	productCtrl := controllers.NewProductController(s.Products)
	productDetailCtrl := controllers.NewProductDetailController(s.Products)
	cartCtrl := controllers.NewCartController(s.Carts)
	transactionCtrl := controllers.NewTransactionController(s.Checkout)
	orderDetailCtrl := controllers.NewOrderDetailController(s.Checkout)
	historyCtrl := controllers.NewHistoryController(s.Orders)
	orderCtrl := controllers.NewOrderController(s.Orders)
	reportCtrl := controllers.NewReportController(s.Reports)
	posCtrl := controllers.NewPOSController(s.POS)

	identity := middleware.Identity(s.Log, s.SecureCookie)

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, handler.Health(c.Request.URL.Path)) })

	router.POST("/auth/register", authCtrl.Register)
	router.POST("/auth/login", authCtrl.Login)
	router.GET("/categories", categoryCtrl.GetCategories)
	router.GET("/products", productCtrl.GetAllProducts)
	router.GET("/products/:id", productDetailCtrl.GetProductDetail)

	// Guests and signed-in users share the cart and checkout routes.
	shop := router.Group("/")
	shop.Use(middleware.OptionalAuth(s.Tokens), identity)
	{
		shop.GET("/cart", cartCtrl.GetCart)
		shop.DELETE("/cart", cartCtrl.Clear)
		shop.POST("/cart/items", cartCtrl.AddItem)
		shop.PATCH("/cart/items/:productId", cartCtrl.SetQuantity)
		shop.DELETE("/cart/items/:productId", cartCtrl.RemoveItem)
		shop.POST("/cart/items/:productId/increment", cartCtrl.Increment)
		shop.POST("/cart/items/:productId/decrement", cartCtrl.Decrement)

		shop.POST("/checkout", transactionCtrl.Checkout)
		shop.GET("/orders/current", orderDetailCtrl.GetCurrentOrder)
		shop.GET("/orders/current/invoice", orderDetailCtrl.DownloadInvoice)
	}

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware(s.Tokens), identity)
	{
		auth.GET("/auth/me", profileCtrl.GetProfile)
		auth.POST("/cart/merge", cartCtrl.Merge)
		auth.POST("/orders/current/sync", transactionCtrl.RetrySync)
		auth.GET("/orders", historyCtrl.GetHistory)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(s.Tokens), middleware.AdminMiddleware(), identity)
	{
		admin.GET("/products", productCtrl.GetAllProducts)
		admin.POST("/products", productCtrl.CreateProduct)
		admin.PATCH("/products/:id", productCtrl.UpdateProduct)
		admin.DELETE("/products/:id", productCtrl.DeleteProduct)
		admin.GET("/products/:id/qrcode", productDetailCtrl.GetQRCode)

		admin.POST("/pos/scan", posCtrl.Scan)

		admin.GET("/orders", orderCtrl.GetAllOrders)
		admin.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)

		admin.GET("/users", userCtrl.GetAllUsers)
		admin.PATCH("/users/:id/role", userCtrl.UpdateRole)

		admin.GET("/reports/sales", reportCtrl.SalesReport)
	}
}
