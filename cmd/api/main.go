//	@title			Mediahost API
//	@version		1.0
//	@description	Backend for a personal media site: a reorderable masonry image gallery and hosted PDFs with shareable links.
//
//	@host		localhost:8080
//	@BasePath	/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/mediahost/service/internal/auth"
	"github.com/mediahost/service/internal/config"
	"github.com/mediahost/service/internal/db"
	"github.com/mediahost/service/internal/events"
	"github.com/mediahost/service/internal/gallery"
	"github.com/mediahost/service/internal/logger"
	"github.com/mediahost/service/internal/media"
	appMiddleware "github.com/mediahost/service/internal/middleware"
	"github.com/mediahost/service/internal/storage"
	"github.com/mediahost/service/internal/user"

	_ "github.com/mediahost/service/docs/swagger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "mediahost: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL, log); err != nil {
		return fmt.Errorf("database migration failed: %w", err)
	}

	minioClient, err := storage.NewMinioClient(cfg.StorageEndpoint, cfg.StorageAccessKey, cfg.StorageSecretKey, cfg.StorageUseSSL)
	if err != nil {
		return fmt.Errorf("object storage init failed: %w", err)
	}
	galleryBlobs, err := storage.NewMinioStorage(ctx, minioClient, cfg.GalleryBucket, cfg.BucketURL(cfg.GalleryBucket), log)
	if err != nil {
		return fmt.Errorf("gallery bucket: %w", err)
	}
	pdfBlobs, err := storage.NewMinioStorage(ctx, minioClient, cfg.PDFBucket, cfg.BucketURL(cfg.PDFBucket), log)
	if err != nil {
		return fmt.Errorf("pdf bucket: %w", err)
	}

	// Wire dependencies: repository → service → handler
	userRepo := user.NewRepository(pool)
	userSvc := user.NewService(userRepo, log)
	userHandler := user.NewHandler(userSvc)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if _, err := userSvc.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
	} else {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not set; no admin account ensured")
	}

	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, userSvc, cfg.JWTSecret, cfg.SessionTTL, log)
	authHandler := auth.NewHandler(authSvc, log)
	go authSvc.PruneLoop(ctx, time.Hour)

	hub := events.NewHub(log)
	eventsHandler := events.NewHandler(hub, cfg.CORSOrigins)

	galleryKind := media.GalleryKind(cfg.GalleryMaxUpload)
	gallerySvc := media.NewService(galleryKind, media.NewRepository(pool, galleryKind), galleryBlobs, hub, log)
	galleryHandler := media.NewHandler(gallerySvc, log)

	pdfKind := media.PDFKind(cfg.PDFMaxUpload)
	pdfSvc := media.NewService(pdfKind, media.NewRepository(pool, pdfKind), pdfBlobs, hub, log)
	pdfHandler := media.NewHandler(pdfSvc, log)

	viewSvc := gallery.NewService(gallerySvc, cfg.Breakpoints, cfg.ReorderConcurrency, log)
	viewHandler := gallery.NewHandler(viewSvc, log)

	requireAuth := appMiddleware.RequireAuth(cfg.JWTSecret, authSvc, log)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger(log))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI, available at http://localhost:8080/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Get("/ws", eventsHandler.ServeWS)

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Get("/gallery", viewHandler.PublicList)
			r.Get("/gallery/layout", viewHandler.Layout)
			r.Get("/gallery/lightbox/{index}", viewHandler.Lightbox)
			r.Get("/pdfs/{id}", pdfHandler.Get)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-in", authHandler.SignIn)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/session", userHandler.GetSession)
				r.Post("/sign-out", authHandler.SignOut)
			})
		})

		// Protected admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Route("/gallery", func(r chi.Router) {
				r.Get("/", galleryHandler.List)
				r.Post("/", galleryHandler.Upload)
				r.Put("/order", viewHandler.SaveOrder)
				r.Route("/reorder", func(r chi.Router) {
					r.Post("/", viewHandler.EnterReorder)
					r.Get("/", viewHandler.GetReorder)
					r.Delete("/", viewHandler.CancelReorder)
					r.Post("/move", viewHandler.MoveItem)
					r.Post("/step", viewHandler.StepItem)
					r.Post("/drag", viewHandler.DragItem)
					r.Post("/save", viewHandler.SaveReorder)
				})
				r.Get("/{id}", galleryHandler.Get)
				r.Patch("/{id}", galleryHandler.Update)
				r.Delete("/{id}", galleryHandler.Delete)
				r.Put("/{id}/file", galleryHandler.Replace)
			})

			r.Route("/pdfs", func(r chi.Router) {
				r.Get("/", pdfHandler.List)
				r.Post("/", pdfHandler.Upload)
				r.Get("/{id}", pdfHandler.Get)
				r.Patch("/{id}", pdfHandler.Update)
				r.Delete("/{id}", pdfHandler.Delete)
				r.Put("/{id}/file", pdfHandler.Replace)
			})
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Port), zap.String("env", cfg.AppEnv))
		log.Info("swagger UI", zap.String("url", "http://localhost:"+cfg.Port+"/swagger/"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
