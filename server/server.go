package server

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkedin_post_generator/config"
	"linkedin_post_generator/generator"
)

const (
	AppName = "LinkedIn Post Generator"
	Version = "2.0.0"

	sessionCookie         = "lpg_session"
	defaultRequestTimeout = 90 * time.Second
)

//go:embed templates/*.html
var templateFS embed.FS

type Server struct {
	agent  *generator.Agent
	cfg    config.Config
	store  *sessionStore
	pages  *template.Template
	logger *zap.Logger
	now    func() time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*generator.Session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*generator.Session)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = sess
}

func (s *sessionStore) get(id string) (*generator.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func New(agent *generator.Agent, cfg config.Config, logger *zap.Logger) (*Server, error) {
	if agent == nil {
		return nil, errors.New("generator agent required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := template.New("pages").Funcs(template.FuncMap{
		"inc":  func(i int) int { return i + 1 },
		"join": joinTags,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Server{
		agent:  agent,
		cfg:    cfg,
		store:  newStore(),
		pages:  pages,
		logger: logger,
		now:    time.Now,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/generate", s.handleGenerateForm)
	mux.HandleFunc("/api/generate", s.handleAPIGenerate)
	mux.HandleFunc("/api/usage", s.handleUsage)
	mux.HandleFunc("/api/edit", s.handleEdit)
	mux.HandleFunc("/export", s.handleExport)
	return logMiddleware(s.logger, mux)
}

// Health computes the current health payload.
func (s *Server) Health() HealthStatus {
	client := s.agent.Client()
	return ReportHealth(HealthInput{
		HasAPIKey:   s.cfg.HasAPIKey(),
		APIKeyVar:   config.APIKeyVariable(s.cfg.LLM.Provider),
		LastCall:    client.LastCall(),
		Provider:    client.Provider(),
		Model:       client.Model(),
		Environment: s.cfg.Environment,
		Now:         s.now(),
	})
}

// session returns the caller's session, creating one and setting the cookie
// when there is none.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *generator.Session {
	if sess, ok := s.existingSession(r); ok {
		return sess
	}
	sess := generator.NewSession(uuid.NewString(), s.agent)
	s.store.set(sess.ID, sess)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

func (s *Server) existingSession(r *http.Request) (*generator.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, false
	}
	return s.store.get(c.Value)
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.LLM.RequestTimeout > 0 {
		return s.cfg.LLM.RequestTimeout
	}
	return defaultRequestTimeout
}

func (s *Server) defaults() generator.Defaults {
	return generator.Defaults{
		Tone:      s.cfg.Defaults.Tone,
		Audience:  s.cfg.Defaults.Audience,
		PostCount: s.cfg.Defaults.PostCount,
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ProblemDetails is an RFC 7807 error body.
type ProblemDetails struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, title, detail string) {
	writeProblem(w, ProblemDetails{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblem(w http.ResponseWriter, p ProblemDetails) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func logMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)))
	})
}
