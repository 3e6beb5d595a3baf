package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	labelMethod   = "method"
	labelEndpoint = "endpoint"
	labelStatus   = "status"
	labelTemplate = "template"
	labelResult   = "result"
	labelJob      = "job"

	endpointUnknown = "unknown"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Collector owns the service's Prometheus registry and metrics.
type Collector struct {
	registry            *prometheus.Registry
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	activeRequests      prometheus.Gauge
	emailsTotal         *prometheus.CounterVec
	jobRunsTotal        *prometheus.CounterVec
}

// New creates a collector with its own registry so tests can build many.
func New(serviceName string) *Collector {
	prefix := strings.ReplaceAll(serviceName, "-", "_")
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{labelMethod, labelEndpoint, labelStatus},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{labelMethod, labelEndpoint},
		),
		activeRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: prefix + "_active_requests",
				Help: "Number of in-flight HTTP requests",
			},
		),
		emailsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_emails_sent_total",
				Help: "Transactional emails by template and result",
			},
			[]string{labelTemplate, labelResult},
		),
		jobRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_job_runs_total",
				Help: "Scheduled job runs by job and result",
			},
			[]string{labelJob, labelResult},
		),
	}

	reg.MustRegister(
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.activeRequests,
		c.emailsTotal,
		c.jobRunsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

// Middleware records count, latency and in-flight requests per route.
func (c *Collector) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			c.activeRequests.Inc()
			defer c.activeRequests.Dec()

			err := next(ctx)

			status := ctx.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else if !ctx.Response().Committed {
					status = http.StatusInternalServerError
				}
			}

			endpoint := ctx.Path()
			if endpoint == "" {
				endpoint = endpointUnknown
			}
			method := ctx.Request().Method

			c.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
			c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Handler exposes the registry in the Prometheus text format.
func (c *Collector) Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
}

func (c *Collector) EmailSent(template string, err error) {
	c.emailsTotal.WithLabelValues(template, resultLabel(err)).Inc()
}

func (c *Collector) JobRun(job string, err error) {
	c.jobRunsTotal.WithLabelValues(job, resultLabel(err)).Inc()
}

// Registry is exposed for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func resultLabel(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
