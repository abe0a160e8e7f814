package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"bookshelf/internal/auth"
	"bookshelf/internal/book"
	"bookshelf/internal/httpx"
	"bookshelf/internal/store"
)

func main() {
	loadEnvFiles()
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bookStore := mustOpenStore(cfg.BooksFile)

	if cfg.JWTSecret == "" {
		log.Println("WARNING: JWT_SECRET is not set, write endpoints are unauthenticated")
	}

	go reloadOnHangup(ctx, bookStore)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(ctx, cfg, bookStore),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on %s (books file %s)", cfg.Addr, bookStore.Path())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("server error: %v", err)
	}
	log.Println("server stopped")
}

// newRouter wires the book endpoints behind the shared middleware chain. The
// rate limiter janitor lives until ctx is done.
func newRouter(ctx context.Context, cfg config, repo book.Repository) http.Handler {
	bookHandler := book.NewHTTPHandler(repo)

	guard := func(h http.HandlerFunc, roles ...string) http.Handler {
		if cfg.JWTSecret == "" {
			return h
		}
		return httpx.AuthMiddleware(cfg.JWTSecret, roles...)(h)
	}

	router := http.NewServeMux()

	router.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		_ = repo.List(r.Context())
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.HandleFunc("GET /api/books", bookHandler.List)
	router.HandleFunc("GET /api/books/{keyword}", bookHandler.Search)
	router.Handle("POST /api/books", guard(bookHandler.Add, auth.RoleEditor, auth.RoleAdmin))
	router.Handle("PUT /api/books", guard(bookHandler.Update, auth.RoleEditor, auth.RoleAdmin))
	router.Handle("POST /api/admin/reload", guard(bookHandler.Reload, auth.RoleEditor, auth.RoleAdmin))

	rateLimiter := httpx.NewRateLimitMiddleware(ctx, cfg.RateLimitRPS, cfg.RateLimitBurst)

	return httpx.Chain(router,
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.EnableHSTS),
		httpx.CORSMiddleware(cfg.AllowedOrigins),
		rateLimiter.Middleware,
		httpx.RequestSizeLimitMiddleware(cfg.MaxBodyBytes),
	)
}

func mustOpenStore(path string) *store.BookFile {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			log.Fatalf("cannot create directory for %s: %v", path, err)
		}
	}
	s, err := store.NewBookFile(path)
	if err != nil {
		log.Fatalf("cannot load books: %v", err)
	}
	log.Printf("books loaded path=%s total=%d", s.Path(), len(s.List(context.Background())))
	return s
}

// reloadOnHangup re-reads the books file on SIGHUP.
func reloadOnHangup(ctx context.Context, repo book.Repository) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := repo.Reload(ctx); err != nil {
				log.Printf("reload failed: %v", err)
			}
		}
	}
}
