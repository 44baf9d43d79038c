// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/CP-Team-DBS/anxiety-model-1/internal/app"
	"github.com/CP-Team-DBS/anxiety-model-1/internal/domain/questionnaire"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/logger"
	"github.com/CP-Team-DBS/anxiety-model-1/pkg/metrics"
)

const (
	defaultMaxBodyBytes = 16 << 10
	welcomeMessage      = "Welcome to the GAD-7 Anxiety Level Prediction API"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Predict runs the full pipeline for one questionnaire response.
	Predict(ctx context.Context, raw questionnaire.RawInput) (app.Result, error)

	// Schema exposes the ordered questions and answer vocabulary.
	Schema() *questionnaire.Schema

	// Ready reports whether both artifacts are loaded.
	Ready() bool

	StatsProvider
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes caps POST bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithAllowedOrigins sets the Access-Control-Allow-Origin value.
func WithAllowedOrigins(origins string) Option {
	return func(s *Server) {
		if origins != "" {
			s.allowedOrigins = origins
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps Dependencies

	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	predictHandler   *PredictHandler
	questionsHandler *QuestionsHandler

	maxBodyBytes   int64
	allowedOrigins string
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) (*Server, error) {
	s := &Server{
		deps:           deps,
		maxBodyBytes:   defaultMaxBodyBytes,
		allowedOrigins: "*",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("http")
	}

	validator, err := compileRequestSchema(deps.Schema())
	if err != nil {
		return nil, Wrap("api.new_server", err)
	}

	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps)
	s.predictHandler = NewPredictHandler(deps, validator, s.maxBodyBytes, s.logger)
	s.questionsHandler = NewQuestionsHandler(deps.Schema())
	return s, nil
}

// Register attaches all HTTP routes and middleware to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}

	r.Use(RequestIDMiddleware)
	r.Use(CORSMiddleware(s.allowedOrigins))
	r.Use(LoggingMiddleware(s.logger))
	r.Use(MetricsMiddleware)

	r.HandleFunc("/", handleRoot).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/predict", s.predictHandler.HandlePredict).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/questions", s.questionsHandler.HandleQuestions).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/healthz", s.healthHandler.HandleHealth).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/stats", s.statsHandler.HandleStats).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})).Methods(http.MethodGet)
}

// Handler returns a router with every route registered.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := mux.NewRouter()
	s.Register(ctx, r)
	return r
}

type messageResponse struct {
	Message string `json:"message"`
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageResponse{Message: welcomeMessage})
}

type errorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Field   string  `json:"field,omitempty"`
	Value   *string `json:"value,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// compileRequestSchema builds the POST /predict body schema from the
// question schema so the required list always matches the field ids.
func compileRequestSchema(schema *questionnaire.Schema) (*jsonschema.Schema, error) {
	ids := schema.FieldIDs()
	required := make([]any, 0, len(ids))
	properties := make(map[string]any, len(ids))
	for _, id := range ids {
		required = append(required, id)
		properties[id] = map[string]any{"type": "string"}
	}
	doc := map[string]any{
		"$schema":    "https://json-schema.org/draft/2020-12/schema",
		"type":       "object",
		"required":   required,
		"properties": properties,
	}

	const url = "schema://predict-request.json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	return c.Compile(url)
}
