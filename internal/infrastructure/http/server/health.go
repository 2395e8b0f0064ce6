package server

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/valyala/fasthttp"
)

const (
	healthCheckTimeout = 5 * time.Second

	// minFreeBytes is the free space below which downloads would start failing
	minFreeBytes = 256 << 20
)

// HealthChecker defines interface for components that can report their health
type HealthChecker interface {
	// HealthCheck returns true if component is healthy, false otherwise
	HealthCheck(ctx context.Context) bool
}

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents health status of a single component
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// HealthResponse represents the JSON response for health check
type HealthResponse struct {
	Status     HealthStatus      `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// HealthHandler reports whether the bot can reach Telegram and write temp files
type HealthHandler struct {
	telegram HealthChecker
	tempDir  string
	logger   zerolog.Logger
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(telegram HealthChecker, tempDir string, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		telegram: telegram,
		tempDir:  tempDir,
		logger:   logger,
	}
}

// Handle serves GET /health
func (h *HealthHandler) Handle(rc *fasthttp.RequestCtx) {
	ctx, cancel := context.WithTimeout(context.Background(), healthCheckTimeout)
	defer cancel()

	components := []ComponentHealth{
		h.checkTelegram(ctx),
		h.checkTempDir(ctx),
	}

	status := HealthStatusHealthy
	for _, c := range components {
		if !c.Healthy {
			status = HealthStatusUnhealthy
		}
	}

	statusCode := fasthttp.StatusOK
	logEvent := h.logger.Debug()
	if status == HealthStatusUnhealthy {
		statusCode = fasthttp.StatusServiceUnavailable
		logEvent = h.logger.Warn()
	}
	logEvent.
		Str("status", string(status)).
		Int("status_code", statusCode).
		Interface("components", components).
		Msg("Health check completed")

	body, err := json.Marshal(HealthResponse{
		Status:     status,
		Timestamp:  time.Now().UTC(),
		Components: components,
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode health check response")
		rc.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}

	rc.SetContentType("application/json")
	rc.SetStatusCode(statusCode)
	rc.SetBody(body)
}

func (h *HealthHandler) checkTelegram(ctx context.Context) ComponentHealth {
	c := ComponentHealth{Name: "telegram", Healthy: h.telegram.HealthCheck(ctx)}
	if !c.Healthy {
		c.Message = "Telegram Bot API is not reachable"
	}
	return c
}

func (h *HealthHandler) checkTempDir(ctx context.Context) ComponentHealth {
	c := ComponentHealth{Name: "temp_dir", Healthy: true}

	f, err := os.CreateTemp(h.tempDir, ".health-*")
	if err != nil {
		c.Healthy = false
		c.Message = "Temp directory is not writable"
		return c
	}
	f.Close()
	os.Remove(f.Name())

	usage, err := disk.UsageWithContext(ctx, h.tempDir)
	if err != nil {
		h.logger.Debug().Err(err).Msg("Failed to read disk usage")
		return c
	}
	if usage.Free < minFreeBytes {
		c.Healthy = false
		c.Message = fmt.Sprintf("Only %d MiB free in temp directory", usage.Free>>20)
	}

	return c
}
