package cmd

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vzahanych/weather-history-app/internal/service"
)

func fakeWeatherAPI(t *testing.T) *atomic.Int32 {
	t.Helper()
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Query().Get("q") != "London" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"code":1006,"message":"No matching location found."}}`)
			return
		}
		_, _ = io.WriteString(w, `{"forecast":{"forecastday":[{"day":{"maxtemp_c":25.0,"mintemp_c":14.2}}]}}`)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("WH_WEATHER_BASE_URL", srv.URL)
	t.Setenv("WH_WEATHER_API_KEY", "test-key")
	t.Setenv("WH_LOGGING_LEVEL", "error")
	return hits
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	root := rootCmd()

	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestValidateCommand(t *testing.T) {
	t.Setenv("WH_LOGGING_LEVEL", "error")

	out, _, err := execute(t, "", "validate", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29 is valid\n", out)

	_, stderr, err := execute(t, "", "validate", "2023-02-29")
	require.Error(t, err)
	assert.Contains(t, stderr, "out of range")
}

func TestHistoryCommand_Success(t *testing.T) {
	hits := fakeWeatherAPI(t)

	out, _, err := execute(t, "", "history", "--city", "London", "--date", "2023-06-01")

	require.NoError(t, err)
	assert.Equal(t, "Max Temperature: 25.0\nMin Temperature: 14.2\n", out)
	assert.Equal(t, int32(1), hits.Load())
}

func TestHistoryCommand_APIError(t *testing.T) {
	fakeWeatherAPI(t)

	out, stderr, err := execute(t, "", "history", "--city", "Atlantis", "--date", "2023-06-01")

	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrAPI)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "api_error")
}

func TestHistoryCommand_InvalidDateSkipsFetch(t *testing.T) {
	hits := fakeWeatherAPI(t)

	_, _, err := execute(t, "", "history", "--city", "London", "--date", "2023-13-01")

	assert.ErrorIs(t, err, service.ErrInvalidDate)
	assert.Equal(t, int32(0), hits.Load())
}

func TestHistoryCommand_MissingAPIKey(t *testing.T) {
	fakeWeatherAPI(t)
	t.Setenv("WH_WEATHER_API_KEY", "")

	_, _, err := execute(t, "", "history", "--city", "London", "--date", "2023-06-01")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "WH_WEATHER_API_KEY")
}

func TestPromptCommand(t *testing.T) {
	hits := fakeWeatherAPI(t)

	stdin := strings.Join([]string{
		"London", "2023-6-1", // rejected before any request
		"London", "2023-06-01",
		"Atlantis", "2023-06-01", // fails, previous values stay
		"",
	}, "\n")

	out, _, err := execute(t, stdin, "prompt")
	require.NoError(t, err)

	assert.Contains(t, out, invalidDateMessage)
	assert.Contains(t, out, "Lookup failed (api_error): No matching location found.")
	assert.Equal(t, 2, strings.Count(out, "Max Temperature: 25.0"))
	assert.Equal(t, 2, strings.Count(out, "Min Temperature: 14.2"))
	assert.Equal(t, int32(2), hits.Load())
}

func TestWatchSignals_CancelsWithSignalCause(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	sigChan := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		watchSignals(ctx, cancel, sigChan)
		close(done)
	}()

	sigChan <- syscall.SIGTERM
	<-done

	require.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Contains(t, context.Cause(ctx).Error(), syscall.SIGTERM.String())
}

func TestWatchSignals_ReturnsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancelCause(context.Background())

	done := make(chan struct{})
	go func() {
		watchSignals(ctx, cancel, make(chan os.Signal))
		close(done)
	}()

	cancel(nil)
	<-done
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}
