package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"linkedin_post_generator/export"
	"linkedin_post_generator/generator"
	"linkedin_post_generator/usage"
)

// --- Page views ---

type formValues struct {
	Topic           string
	Tone            string
	Audience        string
	PostType        string
	PostCount       string
	IncludeHashtags bool
	IncludeCTA      bool
}

type postView struct {
	generator.Post
	HTML  template.HTML
	Plain string
}

type resultsView struct {
	Outline string
	Posts   []postView
	Calls   []usage.Record
	Usage   usage.Totals
	RunCost string
	Model   string
	Elapsed string
	Flagged int
}

type pageView struct {
	App       string
	Version   string
	Tones     []string
	Audiences []string
	PostTypes []string
	MinPosts  int
	MaxPosts  int
	Form      formValues
	Error     string
	Results   *resultsView
	Session   *usage.Summary
	Health    HealthStatus
}

func (s *Server) page(form formValues) pageView {
	return pageView{
		App:       AppName,
		Version:   Version,
		Tones:     generator.Tones,
		Audiences: generator.Audiences,
		PostTypes: generator.PostTypes,
		MinPosts:  generator.MinPosts,
		MaxPosts:  generator.MaxPosts,
		Form:      form,
		Health:    s.Health(),
	}
}

func (s *Server) defaultForm() formValues {
	d := s.defaults()
	count := d.PostCount
	if count == 0 {
		count = generator.DefaultPosts
	}
	return formValues{
		Tone:            d.Tone,
		Audience:        d.Audience,
		PostCount:       strconv.Itoa(count),
		IncludeHashtags: true,
		IncludeCTA:      true,
	}
}

func (s *Server) render(w http.ResponseWriter, status int, view pageView) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, "index.html", view); err != nil {
		s.logger.Error("render page", zap.Error(err))
	}
}

// --- Handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.URL.Query().Has("health") {
		h := s.Health()
		status := http.StatusOK
		if h.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, h)
		return
	}

	view := s.page(s.defaultForm())
	if sess, ok := s.existingSession(r); ok {
		sum := sess.Usage.Summary()
		view.Session = &sum
	}
	s.render(w, http.StatusOK, view)
}

func (s *Server) handleGenerateForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := formValues{
		Topic:           r.PostFormValue("topic"),
		Tone:            r.PostFormValue("tone"),
		Audience:        r.PostFormValue("audience"),
		PostType:        r.PostFormValue("post_type"),
		PostCount:       r.PostFormValue("post_count"),
		IncludeHashtags: r.PostFormValue("include_hashtags") != "",
		IncludeCTA:      r.PostFormValue("include_cta") != "",
	}
	view := s.page(form)

	req, err := s.formRequest(form)
	if err != nil {
		status, title := classify(err)
		view.Error = title + ": " + err.Error()
		s.render(w, status, view)
		return
	}

	sess := s.session(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()
	res, err := sess.Generate(ctx, req)
	sum := sess.Usage.Summary()
	view.Session = &sum
	view.Health = s.Health()
	if err != nil {
		status, title := classify(err)
		view.Error = title + ": " + err.Error()
		s.render(w, status, view)
		return
	}

	results, err := resultsFor(res)
	if err != nil {
		s.logger.Error("render markdown", zap.Error(err))
		http.Error(w, "failed to render results", http.StatusInternalServerError)
		return
	}
	view.Results = results
	s.render(w, http.StatusOK, view)
}

func (s *Server) formRequest(form formValues) (generator.Request, error) {
	in := generator.RequestInput{
		Topic:           form.Topic,
		Tone:            form.Tone,
		Audience:        form.Audience,
		PostType:        form.PostType,
		IncludeHashtags: &form.IncludeHashtags,
		IncludeCTA:      &form.IncludeCTA,
	}
	if c := strings.TrimSpace(form.PostCount); c != "" {
		n, err := strconv.Atoi(c)
		if err != nil {
			return generator.Request{}, &generator.ValidationError{Field: "post_count", Reason: fmt.Sprintf("%q is not a number", c)}
		}
		in.PostCount = &n
	}
	return generator.NewRequest(in, s.defaults())
}

func resultsFor(res generator.Result) (*resultsView, error) {
	view := &resultsView{
		Outline: res.Outline,
		Calls:   res.Calls,
		Usage:   res.Usage,
		RunCost: usage.FormatCost(res.Usage.Cost),
		Model:   res.Model,
		Elapsed: res.Elapsed.Round(100 * time.Millisecond).String(),
		Flagged: res.Flagged(),
	}
	for _, p := range res.Posts {
		html, err := export.MarkdownToHTML(p.Body)
		if err != nil {
			return nil, err
		}
		view.Posts = append(view.Posts, postView{
			Post:  p,
			HTML:  template.HTML(html),
			Plain: export.PlainText(p.WithHashtags()),
		})
	}
	return view, nil
}

type generateResponse struct {
	SessionID string           `json:"session_id"`
	Result    generator.Result `json:"result"`
	Session   usage.Summary    `json:"session_usage"`
}

func (s *Server) handleAPIGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "use POST")
		return
	}
	var in generator.RequestInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	req, err := generator.NewRequest(in, s.defaults())
	if err != nil {
		writeClassified(w, err)
		return
	}

	sess := s.session(w, r)
	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout())
	defer cancel()
	res, err := sess.Generate(ctx, req)
	if err != nil {
		writeClassified(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{SessionID: sess.ID, Result: res, Session: sess.Usage.Summary()})
}

type usageResponse struct {
	SessionID string         `json:"session_id,omitempty"`
	Summary   usage.Summary  `json:"summary"`
	Calls     []usage.Record `json:"calls"`
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "use GET")
		return
	}
	sess, ok := s.existingSession(r)
	if !ok {
		writeJSON(w, http.StatusOK, usageResponse{
			Summary: usage.Summary{CostFormatted: usage.FormatCost(0)},
			Calls:   []usage.Record{},
		})
		return
	}
	writeJSON(w, http.StatusOK, usageResponse{
		SessionID: sess.ID,
		Summary:   sess.Usage.Summary(),
		Calls:     sess.Usage.Records(),
	})
}

type editRequest struct {
	Index int    `json:"index"`
	Body  string `json:"body"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "use POST")
		return
	}
	sess, ok := s.existingSession(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Session not found", "generate posts before editing them")
		return
	}
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	post, err := sess.Edit(req.Index, req.Body)
	if err != nil {
		writeClassified(w, err)
		return
	}
	s.logger.Info("post edited",
		zap.Int("index", post.Index),
		zap.Bool("flagged", post.Flagged),
		zap.String("preview", export.Preview(post.Body, 60)))
	writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	sess, ok := s.existingSession(r)
	if !ok || len(sess.Latest()) == 0 {
		http.Error(w, "nothing to export yet", http.StatusNotFound)
		return
	}
	file, err := export.Build(export.Items(sess.Latest()), format, s.now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	_, _ = w.Write(file.Data)
}

// classify maps a pipeline error to an HTTP status and a short title.
func classify(err error) (int, string) {
	switch {
	case generator.IsValidation(err):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "Generation timed out"
	case generator.IsProvider(err):
		return http.StatusBadGateway, "Generation failed"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

func writeClassified(w http.ResponseWriter, err error) {
	status, title := classify(err)
	p := ProblemDetails{Type: "about:blank", Title: title, Status: status, Detail: err.Error()}
	var ve *generator.ValidationError
	if errors.As(err, &ve) {
		p.Field = ve.Field
	}
	writeProblem(w, p)
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}
