package server

import (
	"embed"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sw33tLie/appshell/pkg/api"
	"github.com/sw33tLie/appshell/pkg/bridge"
	"github.com/sw33tLie/appshell/pkg/platforms"
)

//go:embed web
var WebFS embed.FS

// Server is the simulated backend for real-API mode plus a bridge endpoint
// for browsers standing in for the webview.
type Server struct {
	AppToken    string
	DeviceToken string
	Update      api.UpdateInfo
	Tutorial    []api.TutorialItem

	host    platforms.Host
	log     platforms.Logger
	metrics *metrics
}

type metrics struct {
	registry       *prometheus.Registry
	bridgeMessages *prometheus.CounterVec
	apiRequests    *prometheus.CounterVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		bridgeMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appshell_bridge_messages_total",
			Help: "Bridge messages received from web content, by command.",
		}, []string{"command"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "appshell_api_requests_total",
			Help: "Backend API requests, by endpoint and status code.",
		}, []string{"endpoint", "code"}),
	}
	m.registry.MustRegister(m.bridgeMessages, m.apiRequests)
	return m
}

// New builds a server answering with the bundled fixtures.
func New(appToken string, host platforms.Host, log platforms.Logger) (*Server, error) {
	update, err := api.FixtureUpdate()
	if err != nil {
		return nil, err
	}
	tutorial, err := api.FixtureTutorial()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = platforms.NopLogger{}
	}
	return &Server{
		AppToken:    appToken,
		DeviceToken: bridge.NewDeviceToken(host.Name(), ""),
		Update:      update,
		Tutorial:    tutorial,
		host:        host,
		log:         log,
		metrics:     newMetrics(),
	}, nil
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Backend API
	mux.HandleFunc("GET /version", s.appToken("version", s.handleVersion))
	mux.HandleFunc("GET /tutorial", s.appToken("tutorial", s.handleTutorial))
	mux.HandleFunc("POST /auth/exchange", s.appToken("exchange", s.handleExchange))
	mux.HandleFunc("POST /auth/login", s.appToken("login", s.handleLogin))

	// Bridge
	mux.HandleFunc("POST /bridge", s.handleBridge)
	mux.HandleFunc("GET /bridge.js", s.handleScript)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	return mux
}

// Start serves on addr until the listener fails.
func (s *Server) Start(addr string) error {
	s.log.Infof("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// appToken rejects requests without the configured app token and counts
// the rest per endpoint.
func (s *Server) appToken(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		defer func() {
			s.metrics.apiRequests.WithLabelValues(endpoint, strconv.Itoa(rec.code)).Inc()
		}()

		if s.AppToken != "" && r.Header.Get(api.AppTokenHeader) != s.AppToken {
			http.Error(rec, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(rec, r)
	}
}
