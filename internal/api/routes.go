package api

import (
	"fittrackr/server/internal/domain"
	"fittrackr/server/internal/repository"
	"fittrackr/server/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	userService service.UserService,
	subscriptionService service.SubscriptionService,
	workoutService service.WorkoutService,
	programService service.ProgramService,
	exerciseService service.ExerciseService,
	progressService service.ProgressService,
	shopService service.ShopService,
	badgeRepo repository.BadgeRepository,
) {
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)
	subscriptionHandler := NewSubscriptionHandler(subscriptionService)
	workoutHandler := NewWorkoutHandler(workoutService)
	programHandler := NewProgramHandler(programService)
	exerciseHandler := NewExerciseHandler(exerciseService)
	progressHandler := NewProgressHandler(progressService, badgeRepo)
	shopHandler := NewShopHandler(shopService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", authHandler.Me)

		// --- Profile ---
		profileGroup := protected.Group("/profile")
		{
			profileGroup.POST("/onboarding", userHandler.CompleteOnboarding)
			profileGroup.PUT("", userHandler.UpdateProfile)
			profileGroup.GET("/goals", userHandler.GetGoals)
		}

		// --- Subscriptions ---
		subscriptionGroup := protected.Group("/subscriptions")
		{
			subscriptionGroup.GET("/plans", subscriptionHandler.ListPlans)
			subscriptionGroup.GET("/status", subscriptionHandler.Status)
			subscriptionGroup.POST("/change", subscriptionHandler.ChangePlan)
		}

		// --- Workouts ---
		workoutGroup := protected.Group("/workouts")
		{
			workoutGroup.POST("", workoutHandler.Create)
			workoutGroup.GET("", workoutHandler.List)
			workoutGroup.GET("/journal", workoutHandler.Journal)
			workoutGroup.GET("/:id", workoutHandler.Get)
			workoutGroup.PUT("/:id", workoutHandler.Update)
			workoutGroup.DELETE("/:id", workoutHandler.Delete)
		}

		// --- Programs ---
		programGroup := protected.Group("/programs")
		{
			programGroup.POST("", programHandler.Create)
			programGroup.GET("", programHandler.List)
			programGroup.GET("/:id", programHandler.Get)
			programGroup.PUT("/:id", programHandler.Update)
			programGroup.DELETE("/:id", programHandler.Delete)
			programGroup.POST("/:id/exercises", programHandler.AddExercise)
		}

		// --- Exercise library ---
		exerciseGroup := protected.Group("/exercises")
		{
			exerciseGroup.GET("", exerciseHandler.List)
			exerciseGroup.GET("/:id", exerciseHandler.Get)
			exerciseGroup.POST("", RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), exerciseHandler.Create)
			exerciseGroup.PUT("/:id", RoleMiddleware(domain.RoleCoach, domain.RoleAdmin), exerciseHandler.Update)
			exerciseGroup.DELETE("/:id", RoleMiddleware(domain.RoleAdmin), exerciseHandler.Delete)
		}

		// --- Progress & badges ---
		progressGroup := protected.Group("/progress")
		{
			progressGroup.GET("/weekly", progressHandler.RecentWeeks)
			progressGroup.GET("/history", progressHandler.History)
			progressGroup.GET("/badges", progressHandler.Badges)
			progressGroup.GET("/summary", progressHandler.WeeklySummary)
			progressGroup.GET("/export", progressHandler.ExportCSV)
		}

		// --- Shop ---
		shopGroup := protected.Group("/shop")
		{
			shopGroup.GET("/products", shopHandler.ListProducts)
			shopGroup.GET("/products/:id", shopHandler.GetProduct)
			shopGroup.GET("/cart", shopHandler.GetCart)
			shopGroup.POST("/cart", shopHandler.AddToCart)
			shopGroup.DELETE("/cart/:productId", shopHandler.RemoveFromCart)
			shopGroup.POST("/checkout", shopHandler.Checkout)
			shopGroup.GET("/orders", shopHandler.GetOrders)
			shopGroup.GET("/orders/:id", shopHandler.GetOrder)
		}

		// --- Admin ---
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/users", userHandler.SearchUsers)
			adminGroup.PUT("/users/:id", userHandler.AdminUpdateUser)
			adminGroup.POST("/products", shopHandler.CreateProduct)
			adminGroup.PUT("/products/:id", shopHandler.UpdateProduct)
			adminGroup.POST("/products/:id/image", shopHandler.RequestImageUpload)
		}
	}
}
