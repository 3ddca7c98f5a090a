// Package quiz proxies the AI course-finder flow to an external scoring
// script. The script is an opaque collaborator: it receives one JSON argument
// ({"mode": "questions"|"verdict"|"rank", ...}) and must print JSON on stdout.
// Anything else — stderr output, a non-zero exit, non-JSON stdout — surfaces
// as an UpstreamError, never as a silent empty success.
package quiz

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/trajecta/trajecta/apperror"
)

// Config describes how to reach the external interpreter and script.
type Config struct {
	Interpreter string
	ScriptPath  string
	Workers     int
	Timeout     time.Duration
}

// Seed narrows question generation; all fields are optional.
type Seed struct {
	InterestsHint []string `json:"interests_hint,omitempty"`
	Language      string   `json:"language,omitempty"`
	CountMin      int      `json:"count_min,omitempty"`
	CountMax      int      `json:"count_max,omitempty"`
}

// Request is the JSON argument handed to the scoring script.
type Request struct {
	Mode    string          `json:"mode"`
	Seed    *Seed           `json:"seed,omitempty"`
	Answers map[string]any  `json:"answers,omitempty"`
	Query   string          `json:"query,omitempty"`
	User    json.RawMessage `json:"user,omitempty"`
}

type result struct {
	raw json.RawMessage
	err error
}

type job struct {
	payload []byte
	resp    chan result
}

// Runner invokes the scoring script through a bounded worker pool, one
// process per request, with a per-request timeout. Bounding the pool keeps a
// burst of quiz traffic from forking unboundedly.
type Runner struct {
	cfg    Config
	logger *zap.SugaredLogger

	jobs      chan job
	done      chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRunner creates a Runner; call Start before Run.
func NewRunner(cfg Config, logger *zap.SugaredLogger) *Runner {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Runner{
		cfg:    cfg,
		logger: logger,
		jobs:   make(chan job),
		done:   make(chan struct{}),
	}
}

// Start launches the worker pool.
func (r *Runner) Start() {
	r.startOnce.Do(func() {
		if r.logger != nil {
			r.logger.Infof("starting quiz runner with %d workers", r.cfg.Workers)
		}
		for i := 0; i < r.cfg.Workers; i++ {
			r.wg.Add(1)
			go r.worker()
		}
	})
}

// Stop shuts the pool down and waits for in-flight invocations.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

// Run submits one request and blocks until its response, the caller's context
// deadline, or runner shutdown.
func (r *Runner) Run(ctx context.Context, req Request) (json.RawMessage, error) {
	if req.Mode == "" {
		return nil, apperror.Validation("mode", "quiz mode is required")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, apperror.Validation("request", "quiz request is not serializable")
	}

	j := job{payload: payload, resp: make(chan result, 1)}
	select {
	case r.jobs <- j:
	case <-r.done:
		return nil, apperror.Upstream("quiz runner is shut down")
	case <-ctx.Done():
		return nil, apperror.Upstream("quiz request canceled before dispatch")
	}

	select {
	case res := <-j.resp:
		return res.raw, res.err
	case <-ctx.Done():
		return nil, apperror.Upstream("quiz request canceled while scoring")
	}
}

func (r *Runner) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.done:
			return
		case j := <-r.jobs:
			j.resp <- r.invoke(j.payload)
		}
	}
}

// invoke runs one scoring process to completion.
func (r *Runner) invoke(payload []byte) result {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cfg.Interpreter, r.cfg.ScriptPath, string(payload))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return result{err: apperror.Upstream(fmt.Sprintf("scoring process timed out after %s", r.cfg.Timeout))}
	}
	if err != nil {
		if r.logger != nil {
			r.logger.Warnf("scoring process failed: %v stderr=%s", err, truncate(stderr.String(), 512))
		}
		return result{err: apperror.Upstream(fmt.Sprintf("scoring process failed: %v", err))}
	}
	if stderr.Len() > 0 {
		return result{err: apperror.Upstream(fmt.Sprintf("scoring process error: %s", truncate(stderr.String(), 512)))}
	}

	out := bytes.TrimSpace(stdout.Bytes())
	if !json.Valid(out) {
		return result{err: apperror.Upstream(fmt.Sprintf("unexpected scoring output: %s", truncate(string(out), 256)))}
	}
	raw := make(json.RawMessage, len(out))
	copy(raw, out)
	return result{raw: raw}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
