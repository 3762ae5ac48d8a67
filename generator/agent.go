package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"linkedin_post_generator/filter"
	"linkedin_post_generator/usage"
)

// Options tune the pipeline.
type Options struct {
	Filter            filter.Filter
	Lengths           Lengths
	RegenerateFlagged bool
	HashtagCount      int
}

// Agent runs the fixed prompt chain: outline, generation, filtering with one
// regeneration, hashtags.
type Agent struct {
	client *Client
	opts   Options
	logger *zap.Logger
}

func NewAgent(client *Client, opts Options, logger *zap.Logger) (*Agent, error) {
	if client == nil {
		return nil, errors.New("model client is required")
	}
	if opts.HashtagCount <= 0 {
		opts.HashtagCount = DefaultHashtagCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{client: client, opts: opts, logger: logger}, nil
}

// Client exposes the wrapped model client.
func (a *Agent) Client() *Client { return a.client }

// Filter is the content filter applied to candidates.
func (a *Agent) Filter() filter.Filter { return a.opts.Filter }

// run accumulates the usage records of one Generate call.
type run struct {
	client *Client
	calls  []usage.Record
}

func (r *run) call(ctx context.Context, p Prompt) (string, error) {
	out, rec, err := r.client.Complete(ctx, p)
	if err != nil {
		return "", fmt.Errorf("%s step: %w", p.Step, err)
	}
	r.calls = append(r.calls, rec)
	return out.Text, nil
}

// Generate runs the pipeline for req. Any model failure aborts the run. A
// failed run returns no posts; its Result carries only the usage of the calls
// that completed before the failure.
func (a *Agent) Generate(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	start := time.Now()
	r := &run{client: a.client}
	fail := func(err error) (Result, error) {
		return Result{Request: req, Calls: r.calls, Usage: usage.Sum(r.calls), Elapsed: time.Since(start)}, err
	}
	log := a.logger.With(zap.String("topic", req.Topic), zap.Int("post_count", req.PostCount))

	outline, err := r.call(ctx, BuildOutlinePrompt(req))
	if err != nil {
		return fail(err)
	}

	bodies, err := a.generateBodies(ctx, r, req, outline)
	if err != nil {
		return fail(err)
	}

	posts := make([]Post, len(bodies))
	for i, body := range bodies {
		posts[i], err = a.checkCandidate(ctx, r, req, i, body)
		if err != nil {
			return fail(err)
		}
	}

	if req.IncludeHashtags {
		for i := range posts {
			raw, err := r.call(ctx, BuildHashtagPrompt(req, posts[i].Body, a.opts.HashtagCount))
			if err != nil {
				return fail(err)
			}
			tags := ParseHashtags(raw, a.opts.HashtagCount)
			if len(tags) == 0 {
				tags = FallbackHashtags(req.Topic, a.opts.HashtagCount)
			}
			posts[i].Hashtags = tags
		}
	}

	res := Result{
		Request: req,
		Outline: outline,
		Posts:   posts,
		Calls:   r.calls,
		Usage:   usage.Sum(r.calls),
		Elapsed: time.Since(start),
		Model:   a.client.Model(),
	}
	log.Info("generation finished",
		zap.Int("posts", len(res.Posts)),
		zap.Int("flagged", res.Flagged()),
		zap.Int("calls", len(res.Calls)),
		zap.Float64("cost", res.Usage.Cost),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// generateBodies makes the batch call and fills any missing positions with
// single-post calls so the result always has req.PostCount bodies in order.
func (a *Agent) generateBodies(ctx context.Context, r *run, req Request, outline string) ([]string, error) {
	raw, err := r.call(ctx, BuildGenerationPrompt(req, outline, a.opts.Lengths))
	if err != nil {
		return nil, err
	}
	bodies := ParsePosts(raw)
	if len(bodies) > req.PostCount {
		bodies = bodies[:req.PostCount]
	}
	if missing := req.PostCount - len(bodies); missing > 0 {
		a.logger.Warn("batch reply short, requesting remaining posts individually",
			zap.Int("parsed", len(bodies)),
			zap.Int("missing", missing))
	}
	for i := len(bodies); i < req.PostCount; i++ {
		single, err := r.call(ctx, BuildSinglePostPrompt(req, outline, i, a.opts.Lengths))
		if err != nil {
			return nil, err
		}
		body := CleanPost(single)
		if body == "" {
			return nil, fmt.Errorf("%s step: %w", StepSingle, emptyContent(a.client.Provider()))
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}

// checkCandidate filters one body, regenerating it once when it fails. A
// body that still fails is returned flagged with the reasons.
func (a *Agent) checkCandidate(ctx context.Context, r *run, req Request, index int, body string) (Post, error) {
	verdict := a.opts.Filter.Check(body)
	regenerated := false
	if !verdict.Passed && a.opts.RegenerateFlagged {
		a.logger.Info("candidate failed content checks, regenerating once",
			zap.Int("index", index),
			zap.Strings("reasons", verdict.Reasons))
		raw, err := r.call(ctx, BuildRegenerationPrompt(req, body, verdict.Reasons, a.opts.Lengths))
		if err != nil {
			return Post{}, err
		}
		if replacement := CleanPost(raw); replacement != "" {
			body = replacement
			verdict = a.opts.Filter.Check(body)
			regenerated = true
		}
	}
	return newPost(req, index, body, verdict, regenerated), nil
}

func newPost(req Request, index int, body string, v filter.Verdict, regenerated bool) Post {
	p := Post{
		ID:           uuid.NewString(),
		Index:        index,
		Body:         body,
		CharCount:    v.CharCount,
		QualityScore: v.Score,
		Engagement:   v.Engagement,
		Flagged:      !v.Passed,
		Regenerated:  regenerated,
		Tone:         req.Tone,
		RequestTopic: req.Topic,
		CreatedAt:    time.Now(),
	}
	if !v.Passed {
		p.FlagReasons = v.Reasons
	}
	return p
}
