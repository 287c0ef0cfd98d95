package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/supakit/pkg/logger"
)

type ctxKey struct{}

func TestNew_JSONWithExtractor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithAttr(slog.String("service", "test")),
		logger.WithContextExtractors(func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(ctxKey{}).(string)
			return slog.String("request_id", v), ok
		}),
	)

	ctx := context.WithValue(context.Background(), ctxKey{}, "req-1")
	log.InfoContext(ctx, "hello", logger.Component("ssr"), logger.Error(errors.New("boom")))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["service"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "ssr", rec["component"])
	assert.Equal(t, "boom", rec["error"])
}

func TestNew_Levels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithFormat(logger.FormatText), logger.WithLevelName("warn"))

	log.Info("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
}

func TestWithEnvironment(t *testing.T) {
	t.Parallel()

	var dev bytes.Buffer
	logger.New(logger.WithOutput(&dev), logger.WithEnvironment("development", "svc")).Debug("dbg")
	assert.True(t, strings.Contains(dev.String(), "env=development"))
	assert.Contains(t, dev.String(), "service=svc")

	var prod bytes.Buffer
	logger.New(logger.WithOutput(&prod), logger.WithEnvironment("production", "svc")).Debug("dbg")
	assert.Empty(t, prod.String())
}

func TestWithFormat_Invalid(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { logger.New(logger.WithFormat("xml")) })
}

func TestAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.Attr{}, logger.Error(nil))
	assert.Equal(t, slog.Attr{}, logger.UserID(""))
	assert.Equal(t, "user_id", logger.UserID("u1").Key)
	assert.Equal(t, "cookies", logger.Cookies("a", "b").Key)
	assert.Equal(t, int64(404), logger.Status(404).Value.Int64())
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := logger.Discard()
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
