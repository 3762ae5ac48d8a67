package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"linkedin_post_generator/config"
	"linkedin_post_generator/export"
	"linkedin_post_generator/generator"
	"linkedin_post_generator/server"
	"linkedin_post_generator/usage"
)

// --- serve ---

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front-end",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default :$PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	agent, err := buildAgent(cfg)
	if err != nil {
		return err
	}
	srv, err := server.New(agent, cfg, logger.Named("http"))
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Addr()
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.LLM.RequestTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", cfg.LLM.Model),
			zap.String("environment", cfg.Environment))
		serverErrors <- httpServer.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
			return httpServer.Close()
		}
		logger.Info("server stopped gracefully")
	}
	return nil
}

// --- generate ---

var (
	genTopic      string
	genTone       string
	genAudience   string
	genPostType   string
	genCount      int
	genNoHashtags bool
	genNoCTA      bool
	genJSON       bool
	genPretty     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate posts once and print them",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genTopic, "topic", "t", "", "what the posts are about (required)")
	f.StringVar(&genTone, "tone", "", "tone, e.g. Professional or \"Thought Leadership\"")
	f.StringVar(&genAudience, "audience", "", "target audience, e.g. \"Business Leaders\"")
	f.StringVar(&genPostType, "type", "", "post type, e.g. Tips or \"Case Study\"")
	f.IntVarP(&genCount, "count", "n", 0, "number of posts (1-5)")
	f.BoolVar(&genNoHashtags, "no-hashtags", false, "skip hashtag generation")
	f.BoolVar(&genNoCTA, "no-cta", false, "do not ask for a closing call to action")
	f.BoolVar(&genJSON, "json", false, "print the full result as JSON")
	f.BoolVar(&genPretty, "pretty", false, "render posts as styled markdown in the terminal")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	in := generator.RequestInput{
		Topic:    genTopic,
		Tone:     genTone,
		Audience: genAudience,
		PostType: genPostType,
	}
	if cmd.Flags().Changed("count") {
		in.PostCount = &genCount
	}
	hashtags, cta := !genNoHashtags, !genNoCTA
	in.IncludeHashtags, in.IncludeCTA = &hashtags, &cta

	req, err := generator.NewRequest(in, generator.Defaults{
		Tone:      cfg.Defaults.Tone,
		Audience:  cfg.Defaults.Audience,
		PostCount: cfg.Defaults.PostCount,
	})
	if err != nil {
		return err
	}

	agent, err := buildAgent(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LLM.RequestTimeout)
	defer cancel()
	res, err := agent.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if genJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	var render func(string) (string, error)
	if genPretty {
		tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(80))
		if err != nil {
			return err
		}
		render = tr.Render
	}
	return printResult(out, res, render)
}

// printResult writes the posts as paste-ready text, or through render when
// one is given.
func printResult(w io.Writer, res generator.Result, render func(string) (string, error)) error {
	rule := strings.Repeat("-", 60)
	for _, p := range res.Posts {
		status := ""
		if p.Flagged {
			status = " [flagged: " + strings.Join(p.FlagReasons, "; ") + "]"
			logger.Warn("post flagged", zap.Int("index", p.Index), zap.String("preview", export.Preview(p.Body, 60)))
		}
		fmt.Fprintf(w, "%s\nPost %d · %d chars · quality %.1f/10 · %s engagement%s\n%s\n\n",
			rule, p.Index+1, p.CharCount, p.QualityScore, p.Engagement, status, rule)
		if render != nil {
			styled, err := render(p.WithHashtags())
			if err != nil {
				return err
			}
			fmt.Fprint(w, styled)
		} else {
			fmt.Fprintln(w, export.PlainText(p.WithHashtags()))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d calls · %d input / %d output tokens · %s · %s\n",
		res.Usage.Requests, res.Usage.InputTokens, res.Usage.OutputTokens,
		usage.FormatCost(res.Usage.Cost), res.Elapsed.Round(time.Millisecond))
	return nil
}

// --- health ---

var healthProbe bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Print the health payload; exits non-zero when unhealthy",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthProbe, "probe", false, "make one tiny model call to test the connection")
}

func runHealth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	var in server.HealthInput
	switch {
	case err == nil:
		in, err = probeHealth(cmd.Context(), cfg)
		if err != nil {
			return err
		}
	case config.IsConfigurationError(err) && !cfg.HasAPIKey():
		in = server.HealthInput{Provider: cfg.LLM.Provider, Model: cfg.LLM.Model}
	default:
		return err
	}
	in.HasAPIKey = cfg.HasAPIKey()
	in.APIKeyVar = config.APIKeyVariable(cfg.LLM.Provider)
	in.Environment = cfg.Environment
	in.Now = time.Now()

	h := server.ReportHealth(in)
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(h); err != nil {
		return err
	}
	if h.Status == server.StatusUnhealthy {
		return fmt.Errorf("service is %s", h.Status)
	}
	return nil
}

func probeHealth(ctx context.Context, cfg config.Config) (server.HealthInput, error) {
	agent, err := buildAgent(cfg)
	if err != nil {
		return server.HealthInput{}, err
	}
	client := agent.Client()
	if healthProbe {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		_, _, err := client.Complete(ctx, generator.Prompt{
			Step:            "probe",
			User:            "Reply with the single word OK.",
			MaxOutputTokens: 5,
		})
		if err != nil {
			logger.Warn("health probe failed", zap.Error(err))
		}
	}
	return server.HealthInput{
		LastCall: client.LastCall(),
		Provider: client.Provider(),
		Model:    client.Model(),
	}, nil
}
