package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler serves the liveness and readiness probes. Readiness pings
// Postgres and Redis with a short deadline; either dependency may be absent
// in tests.
type HealthHandler struct {
	pool  *pgxpool.Pool
	redis *redis.Client
	env   string
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client, env string) *HealthHandler {
	return &HealthHandler{pool: pool, redis: rdb, env: env}
}

type healthResponse struct {
	Status string            `json:"status"`
	Env    string            `json:"env,omitempty"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Env: h.env})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if h.pool != nil {
		if err := h.pool.Ping(ctx); err != nil {
			checks["postgres"] = "down: " + err.Error()
			healthy = false
		} else {
			checks["postgres"] = "up"
		}
	} else {
		checks["postgres"] = "not configured"
		healthy = false
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	} else {
		checks["redis"] = "not configured"
	}

	status, code := "ready", http.StatusOK
	if !healthy {
		status, code = "not ready", http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{Status: status, Env: h.env, Checks: checks})
}
