package cloudmetrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// CloudMetrics tracks instance-level accounting gauges on a private registry,
// separate from the request-serving /metrics registry.
type CloudMetrics struct {
	registry *prometheus.Registry
	pusher   Pusher
	log      *zap.Logger

	startedAt time.Time

	uptimeSeconds prometheus.Gauge
	memoryBytes   prometheus.Gauge
	organizations prometheus.Gauge
	users         prometheus.Gauge
	ideas         prometheus.Gauge
	info          *prometheus.GaugeVec
}

func New(registry *prometheus.Registry, pusher Pusher, appVersion string, log *zap.Logger) *CloudMetrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if log == nil {
		log = zap.NewNop()
	}

	c := &CloudMetrics{
		registry:  registry,
		pusher:    pusher,
		log:       log.Named("cloudmetrics"),
		startedAt: time.Now(),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hintboard_instance_uptime_seconds",
			Help: "Seconds since this instance started.",
		}),
		memoryBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hintboard_instance_memory_bytes",
			Help: "Bytes of memory obtained from the OS.",
		}),
		organizations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hintboard_organizations_total",
			Help: "Organizations hosted by this instance.",
		}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hintboard_users_total",
			Help: "Registered users on this instance.",
		}),
		ideas: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hintboard_ideas_total",
			Help: "Ideas stored on this instance.",
		}),
		info: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "hintboard_instance_info",
			Help: "Static instance metadata.",
		}, []string{"version"}),
	}

	registry.MustRegister(c.uptimeSeconds, c.memoryBytes, c.organizations, c.users, c.ideas, c.info)
	c.info.WithLabelValues(appVersion).Set(1)
	return c
}

func (c *CloudMetrics) SetMemoryUsage(bytes uint64)   { c.memoryBytes.Set(float64(bytes)) }
func (c *CloudMetrics) SetOrganizationsTotal(n int64) { c.organizations.Set(float64(n)) }
func (c *CloudMetrics) SetUsersTotal(n int64)         { c.users.Set(float64(n)) }
func (c *CloudMetrics) SetIdeasTotal(n int64)         { c.ideas.Set(float64(n)) }

// Push refreshes the uptime gauge and ships a snapshot upstream.
func (c *CloudMetrics) Push(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.pusher == nil {
		return errors.New("cloud metrics pusher not configured")
	}
	c.uptimeSeconds.Set(time.Since(c.startedAt).Seconds())
	return c.pusher.Push(ctx, c.registry)
}
