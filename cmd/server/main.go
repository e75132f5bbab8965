package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/AndersonAGodoy/noah-server/internal/config"
	"github.com/AndersonAGodoy/noah-server/internal/database"
	"github.com/AndersonAGodoy/noah-server/internal/handlers"
	"github.com/AndersonAGodoy/noah-server/internal/jobs"
	"github.com/AndersonAGodoy/noah-server/internal/repository"
	scheduler "github.com/AndersonAGodoy/noah-server/internal/scheduler"
	"github.com/AndersonAGodoy/noah-server/internal/services"
	"github.com/AndersonAGodoy/noah-server/pkg/email"
	"github.com/AndersonAGodoy/noah-server/pkg/frontend"
	"github.com/AndersonAGodoy/noah-server/pkg/logger"
	"github.com/AndersonAGodoy/noah-server/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	encounterRepo := repository.NewEncounterRepository(db)
	participantRepo := repository.NewParticipantRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	sermonRepo := repository.NewSermonRepository(db)
	userRepo := repository.NewUserRepository(db)

	// --- Collaborators ---
	var mailer services.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword)
	}
	var revalidator services.Revalidator
	if cfg.RevalidateURL != "" {
		revalidator = frontend.NewClient(cfg.RevalidateURL, cfg.RevalidateSecret)
	}

	// --- Services ---
	encounterService := services.NewEncounterService(encounterRepo)
	participantService := services.NewParticipantService(participantRepo, encounterService, mailer)
	tokenService := services.NewTokenService(tokenRepo)
	sermonService := services.NewSermonService(sermonRepo, revalidator)
	userService := services.NewUserService(userRepo)

	// --- Jobs ---
	expirer := jobs.NewEncounterExpirer(encounterService)
	scheduler.StartMaintenanceCronJobs(expirer, tokenService)

	// --- Handlers ---
	encounterHandler := handlers.NewEncounterHandler(encounterService, expirer)
	participantHandler := handlers.NewParticipantHandler(participantService)
	tokenHandler := handlers.NewTokenHandler(tokenService)
	sermonHandler := handlers.NewSermonHandler(sermonService)
	userHandler := handlers.NewUserHandler(userService, cfg)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public routes
	router.HandleFunc("/register", participantHandler.RegisterParticipantHandler).Methods("POST")
	router.HandleFunc("/encounters/active", encounterHandler.GetActiveEncounterHandler).Methods("GET")
	router.HandleFunc("/sermons", sermonHandler.GetSermonsHandler).Methods("GET")
	router.HandleFunc("/sermons/{slug}", sermonHandler.GetSermonBySlugHandler).Methods("GET")
	router.HandleFunc("/push/tokens", tokenHandler.SaveTokenHandler).Methods("POST")
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.MeHandler).Methods("GET")

	// Admin user routes
	adminUserRoutes := router.PathPrefix("/users").Subrouter()
	adminUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminUserRoutes.Use(middleware.RequireRole("admin"))
	adminUserRoutes.HandleFunc("", userHandler.CreateUserHandler).Methods("POST")

	// Admin encounter routes
	adminEncounterRoutes := router.PathPrefix("/encounters").Subrouter()
	adminEncounterRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminEncounterRoutes.Use(middleware.RequireRole("admin"))
	adminEncounterRoutes.HandleFunc("", encounterHandler.CreateEncounterHandler).Methods("POST")
	adminEncounterRoutes.HandleFunc("", encounterHandler.GetEncountersHandler).Methods("GET")
	adminEncounterRoutes.HandleFunc("/sweep", encounterHandler.SweepEncountersHandler).Methods("POST")
	adminEncounterRoutes.HandleFunc("/{id}", encounterHandler.GetEncounterHandler).Methods("GET")
	adminEncounterRoutes.HandleFunc("/{id}", encounterHandler.UpdateEncounterHandler).Methods("PATCH")
	adminEncounterRoutes.HandleFunc("/{id}/activate", encounterHandler.ActivateEncounterHandler).Methods("POST")

	// Admin participant routes
	adminParticipantRoutes := router.PathPrefix("/participants").Subrouter()
	adminParticipantRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminParticipantRoutes.Use(middleware.RequireRole("admin"))
	adminParticipantRoutes.HandleFunc("", participantHandler.GetParticipantsHandler).Methods("GET")
	adminParticipantRoutes.HandleFunc("/by-email", participantHandler.GetParticipantByEmailHandler).Methods("GET")
	adminParticipantRoutes.HandleFunc("/{id}", participantHandler.GetParticipantHandler).Methods("GET")
	adminParticipantRoutes.HandleFunc("/{id}", participantHandler.UpdateParticipantHandler).Methods("PATCH")
	adminParticipantRoutes.HandleFunc("/{id}", participantHandler.DeleteParticipantHandler).Methods("DELETE")

	// Admin sermon routes
	adminSermonRoutes := router.PathPrefix("/sermons").Subrouter()
	adminSermonRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminSermonRoutes.Use(middleware.RequireRole("admin"))
	adminSermonRoutes.HandleFunc("", sermonHandler.CreateSermonHandler).Methods("POST")
	adminSermonRoutes.HandleFunc("/{id}", sermonHandler.UpdateSermonHandler).Methods("PATCH")
	adminSermonRoutes.HandleFunc("/{id}", sermonHandler.DeleteSermonHandler).Methods("DELETE")
	adminSermonRoutes.HandleFunc("/{id}/publish", sermonHandler.PublishSermonHandler).Methods("POST")

	// Admin push routes
	adminPushRoutes := router.PathPrefix("/push").Subrouter()
	adminPushRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminPushRoutes.Use(middleware.RequireRole("admin"))
	adminPushRoutes.HandleFunc("/tokens", tokenHandler.GetTokensHandler).Methods("GET")
	adminPushRoutes.HandleFunc("/tokens/invalidate", tokenHandler.InvalidateTokenHandler).Methods("POST")
	adminPushRoutes.HandleFunc("/metrics", tokenHandler.GetInstallMetricsHandler).Methods("GET")
	adminPushRoutes.HandleFunc("/cleanup", tokenHandler.CleanupTokensHandler).Methods("POST")

	// Apply middleware for logging and token last-active touches
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.TouchTokenMiddleware(tokenService))

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Push-Token", "X-Platform"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
