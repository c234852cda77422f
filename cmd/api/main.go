package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"kenshin-works/checkup-portal/checkup-portal-backend/internal/alerts"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/auth"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/companies"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/config"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/dashboard"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/imports"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/monitoring"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/notifications"
	"kenshin-works/checkup-portal/checkup-portal-backend/internal/notifications/websocket"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.GetDatabaseDSN()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	if err := db.AutoMigrate(
		&companies.Company{},
		&companies.StatusHistory{},
		&alerts.Alert{},
		&imports.EmailImport{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// ---------------- NOTIFICATIONS ----------------
	wsManager := websocket.NewManager()

	var emailChannel *notifications.EmailChannel
	if cfg.Email.Enabled {
		emailChannel, err = notifications.NewEmailChannel(context.Background(), cfg.Email.Region, cfg.Email.Sender, cfg.Email.Recipients)
		if err != nil {
			log.Fatal("Failed to init email channel:", err)
		}
	}
	notifier := notifications.NewService(wsManager, emailChannel)

	// ---------------- REPOSITORIES & SERVICES ----------------
	companyRepo := companies.NewRepository(db)
	companyService := companies.NewCompanyService(companyRepo, notifier)
	companyHandler := companies.NewHandler(companyService)

	alertRepo := alerts.NewRepository(db)
	alertHandler := alerts.NewHandler(alertRepo)

	importService := imports.NewService(imports.NewRepository(db), companyRepo)
	importHandler := imports.NewHandler(importService)

	dashboardHandler := dashboard.NewHandler(dashboard.NewAggregator(db))

	// ---------------- SWEEPER ----------------
	if cfg.Sweeper.Enabled {
		sweeper := monitoring.NewSweeper(companyRepo, alertRepo, notifier, cfg.Sweeper.Schedule)
		if err := sweeper.Start(); err != nil {
			log.Fatal("Failed to start sweeper:", err)
		}
		defer sweeper.Stop()
	}

	// ---------------- ROUTES ----------------
	r := gin.Default()

	authed := r.Group("/", auth.Middleware(cfg.Security.JWTSecret))
	auth.RegisterRoutes(authed.Group("auth"), auth.NewHandler())
	companies.RegisterRoutes(authed.Group("companies"), companyHandler)
	alerts.RegisterRoutes(authed.Group("alerts"), alertHandler)
	imports.RegisterRoutes(authed.Group("imports"), importHandler)
	dashboard.RegisterRoutes(authed.Group("dashboard"), dashboardHandler)
	authed.GET("ws", wsManager.HandleConnection)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "API alive!"})
	})

	log.Println("Server running on", cfg.Server.GetServerAddr())
	if err := r.Run(cfg.Server.GetServerAddr()); err != nil {
		log.Fatal(err)
	}
}
