package app

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

type HealthChecker struct {
	infra Infrastructure
}

func NewHealthChecker(infra Infrastructure) *HealthChecker {
	return &HealthChecker{
		infra: infra,
	}
}

type componentStatus struct {
	Postgres string `json:"postgres"`
	Redis    string `json:"redis"`
}

func (h *HealthChecker) check(ctx context.Context) (componentStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	pgErr := make(chan error, 1)
	redisErr := make(chan error, 1)

	go func() { pgErr <- h.infra.Postgres().Ping(ctx) }()
	go func() { redisErr <- h.infra.Redis().Ping(ctx) }()

	status := componentStatus{Postgres: "pass", Redis: "pass"}
	healthy := true

	if err := <-pgErr; err != nil {
		status.Postgres = "fail"
		healthy = false
	}
	if err := <-redisErr; err != nil {
		status.Redis = "fail"
		healthy = false
	}

	return status, healthy
}

func (h *HealthChecker) Handler(c *gin.Context) {
	components, healthy := h.check(c.Request.Context())

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "fail",
			"components": components,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "pass",
		"components": components,
	})
}
