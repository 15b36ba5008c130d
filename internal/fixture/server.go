package fixture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dillkhalifa/price-sniffer/internal/dispatch"
)

// MissingQueryDetail is returned when a request has neither text nor image.
const MissingQueryDetail = "Please provide query."

// Defaults for the per-client rate limiter.
const (
	DefaultRateLimit = rate.Limit(10)
	DefaultBurst     = 20
)

const shutdownTimeout = 5 * time.Second

// Config configures the fixture server.
type Config struct {
	Catalog   *Catalog
	Logger    *slog.Logger
	Latency   time.Duration
	RateLimit rate.Limit // zero uses DefaultRateLimit; rate.Inf disables limiting
	Burst     int
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// limiterSet hands out one token bucket per client IP.
type limiterSet struct {
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	mu       sync.Mutex
}

func newLimiterSet(limit rate.Limit, burst int) *limiterSet {
	return &limiterSet{
		limiters: make(map[string]*rate.Limiter),
		limit:    limit,
		burst:    burst,
	}
}

func (s *limiterSet) get(ip string) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.limiters[ip]
	if !ok {
		l = rate.NewLimiter(s.limit, s.burst)
		s.limiters[ip] = l
	}
	return l
}

// NewRouter builds the gin engine serving the catalog.
func NewRouter(cfg Config) (*gin.Engine, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("fixture catalog is required")
	}
	if cfg.Latency < 0 {
		return nil, fmt.Errorf("latency cannot be negative: %s", cfg.Latency)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = DefaultRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(cfg.Logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"results": cfg.Catalog.Len(),
		})
	})

	h := &searchHandler{catalog: cfg.Catalog, logger: cfg.Logger, latency: cfg.Latency}
	api := router.Group("/api")
	if cfg.RateLimit != rate.Inf {
		api.Use(rateLimit(newLimiterSet(cfg.RateLimit, cfg.Burst)))
	}
	api.POST(strings.TrimPrefix(dispatch.SearchPath, "/api"), h.search)

	return router, nil
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request served",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"client_ip", c.ClientIP(),
			"duration", time.Since(start))
	}
}

func rateLimit(limiters *limiterSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Detail: "Too many requests."})
			return
		}
		c.Next()
	}
}

type searchHandler struct {
	catalog *Catalog
	logger  *slog.Logger
	latency time.Duration
}

func (h *searchHandler) search(c *gin.Context) {
	text := strings.TrimSpace(c.PostForm("query"))

	var imageName string
	if file, err := c.FormFile("file"); err == nil {
		imageName = file.Filename
	} else if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: "Invalid upload."})
		return
	}

	if text == "" && imageName == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Detail: MissingQueryDetail})
		return
	}

	// An uploaded file always stands in for the identified product.
	query := text
	if imageName != "" {
		query = h.catalog.ImageQuery()
		h.logger.Debug("image search resolved", "file", imageName, "query", query)
	}

	if h.latency > 0 {
		select {
		case <-time.After(h.latency):
		case <-c.Request.Context().Done():
			return
		}
	}

	c.JSON(http.StatusOK, h.catalog.Lookup(query))
}

// Serve runs router on addr until ctx is canceled.
func Serve(ctx context.Context, addr string, router http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fixture server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("fixture server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down fixture server: %w", err)
	}
	logger.Info("fixture server stopped")
	return nil
}
