package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tin-dog/internal/domain/matching"
)

// Metrics agrupa los collectors de la app sobre un registry propio,
// así cada test arma el suyo sin choques de registro.
type Metrics struct {
	reg *prometheus.Registry

	swipes   *prometheus.CounterVec
	matches  *prometheus.CounterVec
	messages prometheus.Counter
	requests *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		swipes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tindog_swipes_total",
			Help: "Total swipes by action",
		}, []string{"action"}),
		matches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tindog_matches_total",
			Help: "Total matches created by strategy",
		}, []string{"strategy"}),
		messages: f.NewCounter(prometheus.CounterOpts{
			Name: "tindog_messages_total",
			Help: "Total messages posted",
		}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tindog_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler expone /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// matching.Observer

func (m *Metrics) SwipeRecorded(a matching.Action) { m.swipes.WithLabelValues(string(a)).Inc() }

func (m *Metrics) MatchCreated(strategy string) { m.matches.WithLabelValues(strategy).Inc() }

func (m *Metrics) MessagePosted() { m.messages.Inc() }

// Middleware mide latencia por patrón de ruta chi (no por path crudo).
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
