package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"go-pos-terminal/internal/database"
	"go-pos-terminal/internal/handlers"
	"go-pos-terminal/internal/middleware"
	"go-pos-terminal/internal/terminal"
	"go-pos-terminal/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}

	database.Connect()

	// One cart session per terminal; new sessions pick up the tax rate
	// configured in settings at the moment they open.
	handlers.Terminals = terminal.NewManager(currentTaxRate)
	log.Println("This terminal's ID:", utils.TerminalID())

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "online"}) })
	r.POST("/login", handlers.Login)
	r.Static("/uploads", "./uploads")

	// Only opens if we explicitly allow it in .env
	if os.Getenv("ALLOW_REGISTRATION") == "true" {
		r.POST("/register", handlers.Register)
		log.Println("WARNING: Registration route is OPEN. Disable this in production!")
	}

	// --- PROTECTED ROUTES ---
	api := r.Group("/api")
	api.Use(middleware.AuthMiddleware())
	{
		// STAFF & ADMIN
		api.GET("/products", handlers.GetProducts)
		api.GET("/products/:id", handlers.GetProduct)
		api.GET("/scan/:barcode", handlers.ScanProduct)
		api.GET("/categories", handlers.GetCategories)
		api.GET("/customers", handlers.GetCustomers)
		api.GET("/customers/:id", handlers.GetCustomer)
		api.POST("/customers", handlers.AddCustomer)
		api.GET("/tables", handlers.GetTables)
		api.PUT("/tables/:id/status", handlers.UpdateTableStatus)
		api.GET("/settings", handlers.GetSettings)

		// One in-progress sale per terminal
		term := api.Group("/terminals/:terminal/cart")
		{
			term.GET("", handlers.GetCart)
			term.POST("/lines", handlers.AddCartLine)
			term.PATCH("/lines/:lineId", handlers.UpdateCartLine)
			term.PUT("/lines/:lineId/discount", handlers.SetLineDiscount)
			term.DELETE("/lines/:lineId", handlers.RemoveCartLine)
			term.PUT("/customer", handlers.SetCartCustomer)
			term.PUT("/table", handlers.SetCartTable)
			term.PUT("/discount", handlers.SetCartDiscount)
			term.POST("/payments", handlers.AddCartPayment)
			term.DELETE("/payments/:paymentId", handlers.RemoveCartPayment)
			term.POST("/checkout", handlers.Checkout)
			term.POST("/clear", handlers.ClearCart)
		}

		// ADMIN & MANAGER
		admin := api.Group("/")
		admin.Use(middleware.RequireRole("admin", "manager"))
		{
			admin.POST("/upload", handlers.UploadImage)
			admin.POST("/products", handlers.AddProduct)
			admin.PUT("/products/:id", handlers.UpdateProduct)
			admin.DELETE("/products/:id", handlers.DeleteProduct)
			admin.POST("/categories", handlers.AddCategory)
			admin.PUT("/categories/:id", handlers.UpdateCategory)
			admin.DELETE("/categories/:id", handlers.DeleteCategory)
			admin.PUT("/customers/:id", handlers.UpdateCustomer)
			admin.DELETE("/customers/:id", handlers.DeleteCustomer)
			admin.POST("/tables", handlers.AddTable)
			admin.DELETE("/tables/:id", handlers.DeleteTable)
			admin.PUT("/settings", handlers.UpdateSettings)
			admin.GET("/orders", handlers.GetOrders)
			admin.GET("/orders/:id", handlers.GetOrder)
			admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus)
			admin.GET("/reports", handlers.GetSalesReport)
		}
	}

	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	log.Println("Server starting on " + baseURL)
	if err := r.Run(":8080"); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}

// currentTaxRate reads the configured tax rate, falling back to the
// DEFAULT_TAX_RATE env var and then to 10%.
func currentTaxRate() decimal.Decimal {
	if settings, err := database.GetSettings(); err == nil {
		return decimal.NewFromFloat(settings.DefaultTaxRate)
	}
	if env := os.Getenv("DEFAULT_TAX_RATE"); env != "" {
		if rate, err := strconv.ParseFloat(env, 64); err == nil {
			return decimal.NewFromFloat(rate)
		}
	}
	return decimal.NewFromFloat(0.10)
}
