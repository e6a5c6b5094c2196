package router

import (
	"net/http"

	"github.com/SteveKibs/cake-backend-app/controllers"
	"github.com/SteveKibs/cake-backend-app/feed"
	"github.com/SteveKibs/cake-backend-app/middlewares"
	"github.com/SteveKibs/cake-backend-app/models"
	"github.com/SteveKibs/cake-backend-app/pricing"
	"github.com/SteveKibs/cake-backend-app/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Options carries the collaborators SetupRouter cannot build from the
// database handle alone. Zero values fall back to sensible defaults.
type Options struct {
	OrderService  *services.OrderService
	Clock         pricing.Clock
	Feed          *feed.Hub
	Limiter       *middlewares.RateLimiter
	UploadDir     string
	PublicBaseURL string
	CORSOrigins   []string
}

func (o *Options) defaults(db *gorm.DB) {
	if o.Clock == nil {
		o.Clock = pricing.SystemClock
	}
	if o.OrderService == nil {
		o.OrderService = services.NewOrderService(db, services.WithClock(o.Clock))
	}
	if o.Feed == nil {
		o.Feed = feed.Default()
	}
	if o.UploadDir == "" {
		o.UploadDir = "public/uploads/cakes"
	}
	if len(o.CORSOrigins) == 0 {
		o.CORSOrigins = []string{"*"}
	}
}

func SetupRouter(db *gorm.DB, opts Options) *gin.Engine {
	opts.defaults(db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigins))
	if opts.Limiter != nil {
		r.Use(opts.Limiter.RateLimit())
	}

	r.Static(controllers.ImageURLPrefix, opts.UploadDir)

	userCtrl := controllers.NewUserController(db)
	cakeCtrl := controllers.NewCakeController(db)
	flavorCtrl := controllers.NewFlavorController(db)
	cakeFlavorCtrl := controllers.NewCakeFlavorController(db)
	orderCtrl := controllers.NewOrderController(opts.OrderService, opts.Feed)
	routeCtrl := controllers.NewRouteController(db)
	stopoverCtrl := controllers.NewStopoverController(db, opts.Feed)
	distributorCtrl := controllers.NewDistributorController(db)
	saleCtrl := controllers.NewDistributorSaleController(db)
	offerCtrl := controllers.NewOfferController(db)
	feedbackCtrl := controllers.NewFeedbackController(db)
	uploadCtrl := controllers.NewUploadController(db, opts.UploadDir, opts.PublicBaseURL)
	adminCtrl := controllers.NewAdminController(db, opts.Clock, opts.Feed)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := r.Group("/api")

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	authPublic := api.Group("/auth")
	authPublic.Use(middlewares.NewStrictRateLimiter())
	{
		authPublic.POST("/register", userCtrl.Register)
		authPublic.POST("/login", userCtrl.Login)
	}

	api.POST("/orders", orderCtrl.CreateOrder)
	api.GET("/orders/track/:uuid", orderCtrl.TrackOrder)
	api.POST("/feedback", feedbackCtrl.SubmitFeedback)

	// Catalog browsing for customers.
	api.GET("/cakes", cakeCtrl.GetCakes)
	api.GET("/cakes/:id", cakeCtrl.GetCakeByID)
	api.GET("/cakes/:id/flavors", cakeCtrl.GetCakeFlavors)
	api.GET("/flavors", flavorCtrl.GetFlavors)
	api.GET("/flavors/:id", flavorCtrl.GetFlavorByID)
	api.GET("/flavors/:id/cakes", flavorCtrl.GetFlavorCakes)
	api.GET("/cake-flavors/:flavor_id/cakes", cakeFlavorCtrl.GetCakesByFlavor)

	api.GET("/feed/ws",
		middlewares.WebSocketAuthMiddleware(models.RoleAdmin, models.RoleDriver),
		controllers.FeedHandler(opts.Feed))

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("")
	auth.Use(middlewares.AuthMiddleware())

	auth.POST("/auth/logout", userCtrl.Logout)
	auth.GET("/auth/me", userCtrl.GetProfile)

	// Orders and delivery runs are handled by admins and drivers.
	staff := auth.Group("")
	staff.Use(middlewares.RequireRoles(models.RoleAdmin, models.RoleDriver))
	{
		staff.GET("/orders", orderCtrl.GetOrders)
		staff.GET("/orders/:id", orderCtrl.GetOrderByID)
		staff.PATCH("/orders/:id/status", orderCtrl.UpdateOrderStatus)

		staff.GET("/routes", routeCtrl.GetRoutes)
		staff.GET("/routes/active", routeCtrl.GetActiveRoutes)
		staff.GET("/routes/:id", routeCtrl.GetRouteByID)
		staff.GET("/routes/:id/stopovers", routeCtrl.GetRouteStopovers)

		staff.GET("/stopovers", stopoverCtrl.GetStopovers)
		staff.GET("/stopovers/:id", stopoverCtrl.GetStopoverByID)
		staff.PATCH("/stopovers/:id/status", stopoverCtrl.UpdateStopoverStatus)
	}

	admin := auth.Group("")
	admin.Use(middlewares.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/admin/dashboard", adminCtrl.GetDashboardStats)
		admin.GET("/admin/sales-report", adminCtrl.GetSalesReport)

		admin.DELETE("/orders/:id", orderCtrl.DeleteOrder)

		admin.POST("/cakes", cakeCtrl.CreateCake)
		admin.PUT("/cakes/:id", cakeCtrl.UpdateCake)
		admin.DELETE("/cakes/:id", cakeCtrl.DeleteCake)

		admin.POST("/flavors", flavorCtrl.CreateFlavor)
		admin.PUT("/flavors/:id", flavorCtrl.UpdateFlavor)
		admin.DELETE("/flavors/:id", flavorCtrl.DeleteFlavor)

		admin.POST("/cake-flavors", cakeFlavorCtrl.AddFlavorToCake)
		admin.DELETE("/cake-flavors/:cake_id/:flavor_id", cakeFlavorCtrl.RemoveFlavorFromCake)

		admin.POST("/routes", routeCtrl.CreateRoute)
		admin.PUT("/routes/:id", routeCtrl.UpdateRoute)
		admin.DELETE("/routes/:id", routeCtrl.DeleteRoute)

		admin.POST("/stopovers", stopoverCtrl.CreateStopover)
		admin.PUT("/stopovers/:id", stopoverCtrl.UpdateStopover)
		admin.DELETE("/stopovers/:id", stopoverCtrl.DeleteStopover)

		admin.GET("/users", userCtrl.GetUsers)
		admin.GET("/users/:id", userCtrl.GetUserByID)
		admin.PUT("/users/:id", userCtrl.UpdateUser)
		admin.DELETE("/users/:id", userCtrl.DeleteUser)

		admin.GET("/distributors", distributorCtrl.GetDistributors)
		admin.POST("/distributors", distributorCtrl.CreateDistributor)
		admin.GET("/distributors/:id", distributorCtrl.GetDistributorByID)
		admin.PUT("/distributors/:id", distributorCtrl.UpdateDistributor)
		admin.DELETE("/distributors/:id", distributorCtrl.DeleteDistributor)

		admin.GET("/distributor-sales", saleCtrl.GetSales)
		admin.POST("/distributor-sales", saleCtrl.CreateSale)
		admin.GET("/distributor-sales/:id", saleCtrl.GetSaleByID)
		admin.PUT("/distributor-sales/:id", saleCtrl.UpdateSale)
		admin.DELETE("/distributor-sales/:id", saleCtrl.DeleteSale)

		admin.GET("/offers", offerCtrl.GetOffers)
		admin.POST("/offers", offerCtrl.CreateOffer)
		admin.GET("/offers/:id", offerCtrl.GetOfferByID)
		admin.PUT("/offers/:id", offerCtrl.UpdateOffer)
		admin.DELETE("/offers/:id", offerCtrl.DeleteOffer)

		admin.GET("/feedback", feedbackCtrl.GetFeedback)
		admin.GET("/feedback/:id", feedbackCtrl.GetFeedbackByID)
		admin.PUT("/feedback/:id", feedbackCtrl.UpdateFeedback)
		admin.DELETE("/feedback/:id", feedbackCtrl.DeleteFeedback)

		admin.POST("/upload/image", uploadCtrl.UploadImage)
	}

	return r
}
