// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marketloop/shop-backend/internal/config"
	"github.com/marketloop/shop-backend/internal/handlers"
	"github.com/marketloop/shop-backend/internal/middleware"
	"github.com/marketloop/shop-backend/internal/services"
	"github.com/marketloop/shop-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	inventoryService := services.NewInventoryService(db)
	catalogService := services.NewCatalogService(db)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db, inventoryService)
	reviewService := services.NewReviewService(db)
	wishlistService := services.NewWishlistService(db)
	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	paymentService := services.NewPaymentService(db, cfg)
	imageService := services.NewImageService(cfg)
	storageService, _ := services.NewStorageService(cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(catalogService)
	productHandler := handlers.NewProductHandler(catalogService, reviewService, imageService, storageService)
	cartHandler := handlers.NewCartHandler(cartService, orderService)
	orderHandler := handlers.NewOrderHandler(orderService, paymentService)
	reviewHandler := handlers.NewReviewHandler(reviewService, imageService, storageService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	adminHandler := handlers.NewAdminHandler(inventoryService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
		}

		// Public catalog
		v1.GET("/categories", categoryHandler.ListCategories)
		v1.GET("/categories/:slug", categoryHandler.GetCategory)
		v1.GET("/products", productHandler.ListProducts)
		v1.GET("/products/:slug", productHandler.GetProduct)
		v1.GET("/products/:slug/reviews", productHandler.ListProductReviews)

		// User profile and addresses
		users := v1.Group("/users/me", middleware.AuthRequired())
		{
			users.PUT("/profile", userHandler.UpdateProfile)
			users.GET("/addresses", userHandler.ListAddresses)
			users.POST("/addresses", userHandler.CreateAddress)
			users.PUT("/addresses/:id/default", userHandler.SetDefaultAddress)
			users.DELETE("/addresses/:id", userHandler.DeleteAddress)
		}

		// Cart and checkout
		cart := v1.Group("/cart", middleware.AuthRequired())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.Clear)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:id", cartHandler.UpdateItem)
			cart.DELETE("/items/:id", cartHandler.RemoveItem)
			cart.POST("/checkout", cartHandler.Checkout)
		}

		// Orders and payments
		orders := v1.Group("/orders", middleware.AuthRequired())
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
			orders.POST("/:id/payment-intent", orderHandler.CreatePaymentIntent)
			orders.POST("/payments/confirm", orderHandler.ConfirmPayment)
		}

		// Reviews
		reviews := v1.Group("/reviews")
		{
			reviews.GET("/:id", middleware.OptionalAuth(), reviewHandler.GetReview)

			authed := reviews.Group("", middleware.AuthRequired())
			{
				authed.POST("", reviewHandler.CreateReview)
				authed.PUT("/:id", reviewHandler.UpdateReview)
				authed.DELETE("/:id", reviewHandler.DeleteReview)
				authed.POST("/:id/helpful", reviewHandler.MarkHelpful)
				authed.POST("/:id/report", reviewHandler.Report)
				authed.POST("/:id/images", middleware.UploadRateLimit(), reviewHandler.UploadReviewImage)
			}
		}

		// Wishlist
		wishlist := v1.Group("/wishlist", middleware.AuthRequired())
		{
			wishlist.GET("", wishlistHandler.List)
			wishlist.POST("", wishlistHandler.Add)
			wishlist.DELETE("/:id", wishlistHandler.Remove)
			wishlist.POST("/toggle/:productId", wishlistHandler.Toggle)
			wishlist.GET("/contains/:productId", wishlistHandler.Contains)
		}

		// Admin
		admin := v1.Group("/admin", middleware.AuthRequired(), middleware.AdminRequired())
		{
			admin.POST("/categories", categoryHandler.CreateCategory)
			admin.PUT("/categories/:slug", categoryHandler.UpdateCategory)
			admin.DELETE("/categories/:slug", categoryHandler.DeleteCategory)

			admin.POST("/products", productHandler.CreateProduct)
			admin.PUT("/products/:slug", productHandler.UpdateProduct)
			admin.DELETE("/products/:slug", productHandler.DeleteProduct)
			admin.POST("/products/:slug/images", middleware.UploadRateLimit(), productHandler.UploadProductImage)
			admin.PUT("/products/:slug/images/:id/primary", productHandler.SetPrimaryImage)

			admin.POST("/stock/adjust", adminHandler.AdjustStock)
			admin.GET("/stock/movements", adminHandler.ListStockMovements)

			admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)

			admin.GET("/users", userHandler.ListUsers)
			admin.PUT("/users/:id/status", userHandler.UpdateUserStatus)
		}
	}

	return r
}
