// Package http exposes the JSON API for vehicle expense records, drivers,
// and reports.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"kharcha/internal/auth"
	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/report"
	"kharcha/internal/services"
	"kharcha/internal/storage"
)

// UserStore is the account slice of the repository.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string, admin bool) error
	GetUser(ctx context.Context, username string) (storage.User, error)
}

// DriverStore manages the driver roster.
type DriverStore interface {
	CreateDriver(ctx context.Context, d core.Driver) error
	ListDrivers(ctx context.Context) ([]core.Driver, error)
	DeleteDriver(ctx context.Context, driverID string) error
}

// RecordWriter is the write side of record handling, satisfied by
// services.RecordService.
type RecordWriter interface {
	CreateRecord(ctx context.Context, rec core.ExpenseRecord) (int64, error)
	UpdateRecord(ctx context.Context, rec core.ExpenseRecord, req services.Requester) error
}

type Server struct {
	http.Server
	auth        *auth.Service
	users       UserStore
	drivers     DriverStore
	records     RecordWriter
	engine      *report.Engine
	rateLimiter *rateLimiter

	// driverCache spares the roster query on record-entry page loads. The
	// roster changes rarely and only through this server, so writes
	// invalidate it directly.
	driverCache *cache.TTL[[]core.Driver]
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, authSvc *auth.Service, users UserStore, drivers DriverStore, records RecordWriter, engine *report.Engine) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		auth:        authSvc,
		users:       users,
		drivers:     drivers,
		records:     records,
		engine:      engine,
		rateLimiter: newRateLimiter(),
		driverCache: cache.NewTTL[[]core.Driver](5 * time.Minute),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/register", s.withMiddleware(s.handleRegister))
	mux.HandleFunc("/api/login", s.withMiddleware(s.handleLogin))

	mux.HandleFunc("/api/today", s.withMiddleware(s.requireAuth(s.handleToday)))
	mux.HandleFunc("/api/records", s.withMiddleware(s.requireAuth(s.handleRecords)))
	mux.HandleFunc("/api/records/update", s.withMiddleware(s.requireAuth(s.handleUpdateRecord)))
	mux.HandleFunc("/api/drivers", s.withMiddleware(s.requireAuth(s.handleDrivers)))
	mux.HandleFunc("/api/drivers/delete", s.withMiddleware(s.requireAuth(s.handleDeleteDriver)))
	mux.HandleFunc("/api/reports", s.withMiddleware(s.requireAuth(s.handleReports)))

	return s
}

// Shutdown stops the rate limiter cleanup alongside the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.rateLimiter != nil {
		s.rateLimiter.stop()
	}
	return s.Server.Shutdown(ctx)
}

// withMiddleware adds security headers, rate limiting, and request logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds())
	}
}

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	claimsKey    contextKey = "claims"
)

// requireAuth validates the bearer token and stores the claims in the
// request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := auth.ExtractToken(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
			return
		}
		claims, err := s.auth.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

func requesterFrom(r *http.Request) report.Requester {
	claims, _ := r.Context().Value(claimsKey).(auth.Claims)
	return report.Requester{Username: claims.Username, Admin: claims.Admin}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Simple in-memory rate limiter, 60 POSTs per client per minute.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]
	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	client.requests++
	client.lastRequest = now
	return client.requests <= 60
}
