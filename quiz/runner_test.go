package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trajecta/trajecta/apperror"
)

// writeScript drops a shell script standing in for the scoring process.
func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "scorer.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

func newTestRunner(t *testing.T, script string, timeout time.Duration) *Runner {
	t.Helper()

	r := NewRunner(Config{
		Interpreter: "/bin/sh",
		ScriptPath:  script,
		Workers:     2,
		Timeout:     timeout,
	}, nil)
	r.Start()
	t.Cleanup(r.Stop)
	return r
}

func TestRun_ValidJSONOutput(t *testing.T) {
	script := writeScript(t, `echo '{"questions":[{"id":1,"text":"What is a goroutine?"}]}'`)
	r := newTestRunner(t, script, 10*time.Second)

	raw, err := r.Run(context.Background(), Request{Mode: "questions", Seed: &Seed{Language: "en"}})
	require.NoError(t, err)

	var out struct {
		Questions []struct {
			ID   int    `json:"id"`
			Text string `json:"text"`
		} `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(raw, &out))
	require.Len(t, out.Questions, 1)
	assert.Equal(t, "What is a goroutine?", out.Questions[0].Text)
}

func TestRun_PayloadReachesScript(t *testing.T) {
	// The script echoes its argument back, so the response is the request.
	script := writeScript(t, `printf '%s' "$1"`)
	r := newTestRunner(t, script, 10*time.Second)

	raw, err := r.Run(context.Background(), Request{Mode: "rank", Query: "machine learning"})
	require.NoError(t, err)

	var echoed Request
	require.NoError(t, json.Unmarshal(raw, &echoed))
	assert.Equal(t, "rank", echoed.Mode)
	assert.Equal(t, "machine learning", echoed.Query)
}

func TestRun_StderrIsUpstreamError(t *testing.T) {
	script := writeScript(t, `echo '{"ok":true}'; echo 'model unavailable' >&2`)
	r := newTestRunner(t, script, 10*time.Second)

	_, err := r.Run(context.Background(), Request{Mode: "questions"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
	assert.Contains(t, err.Error(), "model unavailable")
}

func TestRun_NonJSONOutputIsUpstreamError(t *testing.T) {
	script := writeScript(t, `echo 'Traceback (most recent call last):'`)
	r := newTestRunner(t, script, 10*time.Second)

	_, err := r.Run(context.Background(), Request{Mode: "verdict"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestRun_NonZeroExitIsUpstreamError(t *testing.T) {
	script := writeScript(t, `exit 3`)
	r := newTestRunner(t, script, 10*time.Second)

	_, err := r.Run(context.Background(), Request{Mode: "questions"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestRun_TimeoutIsUpstreamError(t *testing.T) {
	script := writeScript(t, `sleep 5; echo '{}'`)
	r := newTestRunner(t, script, 200*time.Millisecond)

	_, err := r.Run(context.Background(), Request{Mode: "questions"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
	assert.Contains(t, err.Error(), "timed out")
}

func TestRun_MissingModeIsValidation(t *testing.T) {
	script := writeScript(t, `echo '{}'`)
	r := newTestRunner(t, script, 10*time.Second)

	_, err := r.Run(context.Background(), Request{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestRun_AfterStopIsUpstreamError(t *testing.T) {
	script := writeScript(t, `echo '{}'`)
	r := NewRunner(Config{Interpreter: "/bin/sh", ScriptPath: script, Workers: 1, Timeout: time.Second}, nil)
	r.Start()
	r.Stop()

	_, err := r.Run(context.Background(), Request{Mode: "questions"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUpstream))
}

func TestRun_ConcurrentRequestsBounded(t *testing.T) {
	script := writeScript(t, `echo '{"ok":true}'`)
	r := newTestRunner(t, script, 10*time.Second)

	const requests = 8
	errs := make(chan error, requests)
	for i := 0; i < requests; i++ {
		go func() {
			_, err := r.Run(context.Background(), Request{Mode: "questions"})
			errs <- err
		}()
	}
	for i := 0; i < requests; i++ {
		require.NoError(t, <-errs)
	}
}
