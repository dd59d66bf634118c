package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := errors.New("line 3: invalid amount")
	err := NewUserError("Invalid transaction CSV", cause)

	assert.Equal(t, "Invalid transaction CSV: line 3: invalid amount", err.Error())
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("upload: %w", err)
	assert.Equal(t, "Invalid transaction CSV: line 3: invalid amount", UserMessage(wrapped))

	bare := NewUserError("Nothing to show", nil)
	assert.Equal(t, "Nothing to show", bare.Error())
}

func TestUserMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", UserMessage(errors.New("boom")))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{input: "debug", want: slog.LevelDebug},
		{input: "INFO", want: slog.LevelInfo},
		{input: "", want: slog.LevelInfo},
		{input: "warn", want: slog.LevelWarn},
		{input: "error", want: slog.LevelError},
		{input: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	previous := slog.Default()
	t.Cleanup(func() { slog.SetDefault(previous) })

	var buf bytes.Buffer
	require.NoError(t, SetupLogger(&buf, slog.LevelInfo, "json"))

	slog.Debug("hidden")
	slog.Info("shown", "nodes", 10)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"nodes":10`)

	assert.ErrorIs(t, SetupLogger(&buf, slog.LevelInfo, "xml"), ErrInvalidConfig)
}

func TestLoggerFromContext(t *testing.T) {
	assert.Equal(t, slog.Default(), LoggerFromContext(context.Background()))

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := WithLogger(context.Background(), logger)
	assert.Equal(t, logger, LoggerFromContext(ctx))

	LogError(ctx, errors.New("disk full"), "Failed to record run", Fields{"source": "default"})
	assert.Contains(t, buf.String(), "Failed to record run")
	assert.Contains(t, buf.String(), "disk full")
	assert.Contains(t, buf.String(), "source=default")
}
