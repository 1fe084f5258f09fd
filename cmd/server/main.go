package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/oso-hr/timetracking-api/internal/config"
	"github.com/oso-hr/timetracking-api/internal/database"
	"github.com/oso-hr/timetracking-api/internal/handlers"
	"github.com/oso-hr/timetracking-api/internal/middleware"
	"github.com/oso-hr/timetracking-api/internal/models"
	"github.com/oso-hr/timetracking-api/internal/repository"
	"github.com/oso-hr/timetracking-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions("timetrack_session", store))

	// Repositories
	db := database.GetDB()
	studentRepo := repository.NewStudentRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	entryRepo := repository.NewTimeEntryRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	sentRepo := repository.NewSentEmailRepository(db)

	// Outbound mail: Resend in real deployments, log-only locally
	var mailer services.Mailer
	if cfg.LocalMail || cfg.ResendAPIKey == "" {
		mailer = services.NewLogMailer()
	} else {
		mailer = services.NewResendMailer(cfg.ResendAPIKey, cfg.MailFrom)
	}

	// Services
	authService := services.NewAuthService(studentRepo, mailer, cfg.AppBaseURL)
	userService := services.NewUserService(studentRepo, authService)
	projectService := services.NewProjectService(projectRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo)
	entryService := services.NewTimeEntryService(entryRepo, taskRepo, settingRepo)
	settingService := services.NewSettingService(settingRepo)
	rejectionService := services.NewRejectionService(sentRepo, mailer, cfg.SendDelay)
	reportService := services.NewReportService(studentRepo, entryRepo)

	var templateAI *services.TemplateAIService
	if cfg.OpenAIAPIKey != "" {
		templateAI = services.NewTemplateAIService(cfg.OpenAIAPIKey)
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	sessionHandler := handlers.NewSessionHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	entryHandler := handlers.NewTimeEntryHandler(entryService)
	settingHandler := handlers.NewSettingHandler(settingService)
	hrHandler := handlers.NewHRHandler(rejectionService, templateAI)
	reportHandler := handlers.NewReportHandler(reportService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Time Tracking API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Session bootstrap and view routing (public)
		session := api.Group("/session")
		{
			session.POST("/resolve", sessionHandler.Resolve)
			session.GET("/view", sessionHandler.GetView)
			session.PUT("/view", sessionHandler.SetView)
			session.PUT("/language", sessionHandler.SetLanguage)
		}

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			auth.POST("/change-password", middleware.RequireAuth(), authHandler.ChangePassword)
		}

		// Project routes: everyone reads, admins write
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.GET("", projectHandler.List)
			projects.POST("", middleware.RequireRole(models.RoleAdmin), projectHandler.Create)
			projects.PUT("/:id", middleware.RequireRole(models.RoleAdmin), projectHandler.Update)
			projects.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), projectHandler.Delete)
		}

		// Task routes
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", middleware.RequireRole(models.RoleAdmin), taskHandler.List)
			tasks.GET("/mine", taskHandler.ListMine)
			tasks.POST("", middleware.RequireRole(models.RoleAdmin), taskHandler.Create)
			tasks.PATCH("/:id", middleware.RequireRole(models.RoleAdmin), taskHandler.Update)
			tasks.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), taskHandler.Delete)
		}

		// Time entry routes: students manage their own, admins oversee all
		entries := api.Group("/time-entries")
		entries.Use(middleware.RequireAuth())
		{
			entries.GET("/mine", entryHandler.ListMine)
			entries.POST("", entryHandler.Create)
			entries.PUT("/mine/:id", entryHandler.UpdateMine)
			entries.DELETE("/mine/:id", entryHandler.DeleteMine)

			entries.GET("", middleware.RequireRole(models.RoleAdmin), entryHandler.List)
			entries.PUT("/:id", middleware.RequireRole(models.RoleAdmin), entryHandler.Update)
			entries.PUT("/:id/status", middleware.RequireRole(models.RoleAdmin), entryHandler.SetStatus)
			entries.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), entryHandler.Delete)
		}

		// User administration: admins fully, HR limited to student accounts
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(), middleware.RequireRole(models.RoleAdmin, models.RoleHR))
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), userHandler.Delete)
		}

		// Settings: everyone reads, admins write
		settings := api.Group("/settings")
		settings.Use(middleware.RequireAuth())
		{
			settings.GET("", settingHandler.Get)
			settings.PUT("/lock-date", middleware.RequireRole(models.RoleAdmin), settingHandler.SetLockDate)
		}

		// Bulk rejection workflow (HR and admins)
		hr := api.Group("/hr/rejections")
		hr.Use(middleware.RequireAuth(), middleware.RequireRole(models.RoleHR, models.RoleAdmin))
		{
			hr.POST("/upload", hrHandler.Upload)
			hr.POST("/send", hrHandler.Send)
			hr.GET("/template", hrHandler.GetTemplate)
			hr.PUT("/template", hrHandler.SetTemplate)
			hr.POST("/template/draft", hrHandler.DraftTemplate)
			hr.GET("/results/:id", hrHandler.Results)
			hr.GET("/sample", hrHandler.SampleTemplate)
			hr.GET("/history", hrHandler.History)
			hr.DELETE("/history", hrHandler.ClearHistory)
		}

		// Reports (admins)
		reports := api.Group("/reports")
		reports.Use(middleware.RequireAuth(), middleware.RequireRole(models.RoleAdmin))
		{
			reports.GET("/overview", reportHandler.Overview)
			reports.GET("/timesheet.csv", reportHandler.TimesheetCSV)
			reports.GET("/timesheet.xlsx", reportHandler.TimesheetXLSX)
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
