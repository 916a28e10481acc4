package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"stockpile/api/internal/app"
	"stockpile/api/internal/archive"
	"stockpile/api/internal/authpw"
	"stockpile/api/internal/config"
	"stockpile/api/internal/email"
	"stockpile/api/internal/search"
	"stockpile/api/internal/session"
	"stockpile/api/internal/snapshot"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	snapshots, sessions := openStores(ctx, cfg)
	defer snapshots.Close()
	defer sessions.Close()

	service := app.New(cfg, snapshots, sessions, authpw.NewService(time.Now))

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	service.AttachSearch(search.NewService(meiliClient, search.NewMemory(service.RequestRecords)))

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		archiver, err := archive.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("minio client failed: %v", err)
		}
		if err := archiver.EnsureBucket(ctx); err != nil {
			log.Printf("WARNING: snapshot archive unavailable: %v", err)
		} else {
			service.AttachArchiver(archiver)
		}
	}

	mailer := email.NewService(email.Config{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUsername,
		Password:   cfg.SMTPPassword,
		From:       cfg.SMTPFrom,
		FromName:   cfg.SMTPFromName,
		Recipients: splitRecipients(cfg.AlertRecipients),
	})
	if mailer.IsConfigured() {
		service.AttachMailer(mailer)
	} else {
		log.Printf("SMTP not configured, low-stock alert emails disabled")
	}

	if err := service.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Stockpile API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// openStores picks the snapshot backend (Postgres when DATABASE_URL is set,
// otherwise Redis, otherwise process memory) and the refresh-token store
// (Redis when available, otherwise process memory).
func openStores(ctx context.Context, cfg config.Config) (snapshot.Store, session.Store) {
	var snapshots snapshot.Store
	switch {
	case strings.TrimSpace(cfg.DatabaseURL) != "":
		log.Printf("Using PostgreSQL for snapshot storage")
		db, err := snapshot.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		store := snapshot.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema setup failed: %v", err)
		}
		snapshots = store
	case strings.TrimSpace(cfg.RedisURL) != "":
		log.Printf("Using Redis for snapshot storage")
		store, err := snapshot.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		snapshots = store
	default:
		log.Printf("WARNING: no DATABASE_URL or REDIS_URL, snapshots are held in memory only")
		snapshots = snapshot.NewMemoryStore()
	}

	var sessions session.Store
	if strings.TrimSpace(cfg.RedisURL) != "" {
		log.Printf("Using Redis for refresh token storage")
		store, err := session.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		sessions = store
	} else {
		log.Printf("Using in-memory refresh token storage")
		sessions = session.NewMemoryStore()
	}

	return snapshots, sessions
}

func splitRecipients(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
