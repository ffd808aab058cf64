package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"liftingLadsAPI/handlers"
	"liftingLadsAPI/internal/config"
	"liftingLadsAPI/internal/firebaseapp"
	"liftingLadsAPI/internal/logging"
	"liftingLadsAPI/internal/media"
	"liftingLadsAPI/internal/notification"
	"liftingLadsAPI/internal/store"
	"liftingLadsAPI/internal/store/memory"
	"liftingLadsAPI/internal/store/postgres"
	"liftingLadsAPI/middleware"
	"liftingLadsAPI/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := openStore(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		log.Println("Closing database connection pool...")
		db.Close()
	}()

	if cfg.ClerkSecretKey != "" {
		clerk.SetKey(cfg.ClerkSecretKey)
		log.Println("Clerk initialized successfully")
	} else {
		log.Println("Warning: CLERK_SECRET_KEY not set, bearer tokens are ignored")
	}

	mediaStore, pusher := initFirebase(cfg)

	middleware.RegisterMetrics(prometheus.DefaultRegisterer)
	services.RegisterMetrics(prometheus.DefaultRegisterer)

	userService := services.NewUserService(db, db)
	postService := services.NewPostService(db, db)
	uploadService := services.NewUploadService(mediaStore, postService, "")
	liftingLadService := services.NewLiftingLadService(db, db, pusher)
	feedService := services.NewFeedService(db, db, db)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go rateLimiter.CleanupVisitors(cleanupCtx)

	r := mux.NewRouter()
	middleware.Install(r,
		middleware.LogMiddleware,
		rateLimiter.Middleware,
		middleware.MonitorMiddleware,
		middleware.OptionalAuthMiddleware,
	)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler())).Methods("GET")

	handlers.RegisterRoutes(r, handlers.Handlers{
		Health:     handlers.NewHealthHandler(db),
		User:       handlers.NewUserHandler(userService),
		Upload:     handlers.NewUploadHandler(uploadService, postService, cfg.MaxUploadBytes, cfg.UploadTimeout),
		LiftingLad: handlers.NewLiftingLadHandler(liftingLadService),
		Feed:       handlers.NewFeedHandler(feedService),
	})

	// CORS configuration
	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	server := http.Server{
		Addr:         cfg.Addr(),
		Handler:      corsHandler(r),
		ReadTimeout:  cfg.UploadTimeout,
		WriteTimeout: cfg.UploadTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	log.Println("Got signal:", sig)
	stopCleanup()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Println("Using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.Options{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		return nil, err
	}
	log.Println("Successfully connected to Postgres")
	return db, nil
}

// initFirebase wires media hosting and push. Both degrade instead of
// stopping the server when Firebase is unavailable.
func initFirebase(cfg *config.Config) (media.Store, notification.Pusher) {
	ctx := context.Background()

	app, err := firebaseapp.New(ctx, firebaseapp.Credentials{
		ServiceAccountJSON: cfg.FirebaseCredentialsJSON,
		CredentialsFile:    cfg.FirebaseCredentialsFile,
		StorageBucket:      cfg.FirebaseStorageBucket,
	})
	if err != nil {
		log.Printf("Warning: Could not initialize Firebase: %v", err)
		return media.Unavailable{}, nil
	}

	var mediaStore media.Store = media.Unavailable{}
	if fs, err := media.NewFirebaseStore(ctx, app, cfg.FirebaseStorageBucket); err != nil {
		log.Printf("Warning: Could not initialize media storage: %v", err)
	} else {
		mediaStore = fs
		log.Println("Firebase media storage initialized successfully")
	}

	var pusher notification.Pusher
	if fcm, err := notification.NewFCMService(ctx, app); err != nil {
		log.Printf("Warning: Could not initialize FCM: %v", err)
	} else {
		pusher = fcm
		log.Println("FCM Push Provider initialized successfully")
	}

	return mediaStore, pusher
}
