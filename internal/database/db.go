package database

import (
	"log"
	"os"
	"time"

	"go-pos-terminal/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Connect() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("Error: DB_DSN not found in .env file. Please configure your database.")
	}

	var err error

	// Wait for the DB container to come up before giving up.
	for i := 0; i < 5; i++ {
		DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err == nil {
			break
		}
		log.Printf("Failed to connect to database. Retrying in 2 seconds... (%d/5)", i+1)
		time.Sleep(2 * time.Second)
	}

	if err != nil {
		log.Fatal("Failed to connect to database after 5 attempts:", err)
	}

	log.Println("Connected to MySQL")

	Migrate(DB)
}

// Migrate syncs the schema and seeds the settings row. Split out of Connect
// so tests can run it against their own gorm handle.
func Migrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Customer{},
		&models.Table{},
		&models.Settings{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderPayment{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database schema:", err)
	}

	// The settings table holds exactly one row; create it on first boot.
	var count int64
	db.Model(&models.Settings{}).Count(&count)
	if count == 0 {
		db.Create(&models.Settings{
			StoreName:      "My Store",
			CurrencyCode:   "USD",
			DefaultTaxRate: 0.10,
			PointsPerUnit:  1,
			UnitsPerPoint:  0.01,
			MinRedemption:  100,
			LoyaltyActive:  true,
		})
	}

	log.Println("Database schema synced")
}

// ForUpdate adds a row lock on databases that support it. SQLite, which the
// tests run on, has no FOR UPDATE syntax; its writes serialize anyway.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetSettings loads the single settings row.
func GetSettings() (*models.Settings, error) {
	var s models.Settings
	if err := DB.First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
