package router

import (
	"github.com/gin-gonic/gin"

	"frigo/internal/handler"
	"frigo/internal/middleware"
	"frigo/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	corsOrigins []string,
	authH *handler.AuthHandler,
	importH *handler.ImportHandler,
	recipeH *handler.RecipeHandler,
	ingredientH *handler.IngredientHandler,
	bookH *handler.BookHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.POST("/refresh", authH.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	// Import pipeline routes
	imports := protected.Group("/imports")
	imports.POST("", importH.CreateFromURL)
	imports.POST("/photo", importH.CreateFromPhoto)
	imports.GET("", importH.List)
	imports.GET("/:id", importH.Get)
	imports.PATCH("/:id/title", importH.UpdateTitle)
	imports.PUT("/:id/ingredients/:index", importH.ResolveIngredient)
	imports.POST("/:id/save", importH.Save)
	imports.POST("/:id/retry", importH.Retry)
	imports.DELETE("/:id", importH.Cancel)

	// Recipe routes
	recipes := protected.Group("/recipes")
	recipes.GET("", recipeH.List)
	recipes.GET("/:id", recipeH.Get)
	recipes.DELETE("/:id", recipeH.Delete)

	// Ingredient catalog routes
	ingredients := protected.Group("/ingredients")
	ingredients.GET("", ingredientH.List)
	ingredients.GET("/:id/variants", ingredientH.ListVariants)
	ingredients.POST("", ingredientH.Create)

	// Cookbook provenance routes
	books := protected.Group("/books")
	books.GET("/:id", bookH.Get)
	books.POST("", bookH.Create)

	return r
}
