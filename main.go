package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/ursretail/ursbackend/controllers"
	"github.com/ursretail/ursbackend/database"
	"github.com/ursretail/ursbackend/middleware"
	"github.com/ursretail/ursbackend/utils"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	ctx := context.Background()
	db, err := database.Connect(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}()

	if err := db.EnsureIndexes(ctx); err != nil {
		log.Fatal(err)
	}

	//seeding admin user
	if err := utils.SeedAdminUser(ctx, db.Collection("users")); err != nil {
		log.Fatal(err)
	}

	r := gin.New()
	v := utils.NewImageValidator()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/auth/register", controllers.Register(db))
		api.POST("/auth/login", controllers.Login(db))
		api.POST("/auth/refresh", controllers.Refresh(db))
		api.POST("/auth/logout", controllers.Logout(db))

		api.GET("/categories", controllers.GetCategories(db))
		api.GET("/categories/:categoryId/sub", controllers.GetSubCategories(db))
		api.GET("/subcategories/:subCategoryId/sub", controllers.GetSubSubCategories(db))

		api.GET("/products/search", controllers.SearchProducts(db))
		api.GET("/products/search/suggestions", controllers.SearchSuggestions(db))
		api.GET("/products/category/:categoryId", controllers.ProductsByCategory(db))
		api.GET("/products/similar/:categoryId", controllers.SimilarProducts(db))
		api.GET("/products/:id", controllers.GetProduct(db))

		authed := api.Group("")
		authed.Use(middleware.AuthMiddleware())
		{
			authed.POST("/orders/create", controllers.PlaceOrder(db))
			authed.GET("/orders/list", controllers.ListMyOrders(db))
			authed.POST("/orders/details", controllers.OrderDetails(db))
			authed.POST("/orders/cancel", controllers.CancelOrder(db))

			authed.GET("/users/me", controllers.MyProfile(db))
			authed.POST("/users/me/addresses", controllers.AddMyAddress(db))
			authed.PUT("/users/me/addresses/:index", controllers.UpdateMyAddress(db))
			authed.DELETE("/users/me/addresses/:index", controllers.DeleteMyAddress(db))
			authed.POST("/users/me/password", controllers.ChangeMyPassword(db))
		}
	}

	r.POST("/admin/login", controllers.AdminLogin(db))

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireAdmin())
	{
		admin.POST("/categories", controllers.AddCategory(db))
		admin.POST("/categories/:categoryId/sub", controllers.AddSubCategory(db))
		admin.POST("/subcategories/:subCategoryId/sub", controllers.AddSubSubCategory(db))
		admin.PATCH("/categories/:id", controllers.UpdateCategory(db))

		admin.GET("/products", controllers.AdminListProducts(db))
		admin.GET("/products/:id", controllers.AdminGetProduct(db))
		admin.POST("/products/add", controllers.AddProduct(db, v))
		admin.PATCH("/products/update/:id", controllers.UpdateProduct(db, v))
		admin.DELETE("/products/:id", controllers.DeleteProduct(db))
		admin.PUT("/updateproductstockbyid", controllers.UpdateStock(db))

		admin.GET("/orders", controllers.AdminListOrders(db))
		admin.GET("/orders/:id", controllers.AdminOrderDetails(db))
		admin.PUT("/orders/status", controllers.AdminUpdateOrderStatus(db))
		admin.GET("/orders/user/:id", controllers.AdminRecentOrdersByUser(db))

		admin.GET("/users", controllers.AdminListUsers(db))
		admin.GET("/users/:id", controllers.AdminGetUser(db))

		admin.GET("/reports", controllers.GetReport(db))
	}

	r.Run()
}
