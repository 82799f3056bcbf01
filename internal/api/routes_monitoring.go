package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/taskhive-io/taskhive/internal/app"
)

func registerMonitoringRoutes(r *gin.Engine, cfg *app.Config) {
	if r == nil || cfg == nil || !cfg.Monitoring.Prometheus.Enabled {
		return
	}

	endpoint := cfg.Monitoring.Prometheus.Endpoint
	if endpoint == "" {
		endpoint = "/metrics"
	}
	r.GET(endpoint, gin.WrapH(promhttp.Handler()))
}
