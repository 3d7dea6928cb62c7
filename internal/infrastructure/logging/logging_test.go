package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext(t *testing.T) {
	t.Parallel()
	assert.Same(t, slog.Default(), FromContext(context.Background()))

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger, err := NewLogger(FormatJSON, false, &buf)
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, "v", rec["k"])

	buf.Reset()
	logger, err = NewLogger(FormatText, true, &buf)
	require.NoError(t, err)
	logger.Debug("visible")
	assert.Contains(t, buf.String(), "level=DEBUG")

	_, err = NewLogger("xml", false, &buf)
	require.Error(t, err)
}

func decodeRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestSlogReporter(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	reporter := NewSlogReporter(slog.New(slog.NewJSONHandler(&buf, nil)))
	unit := entities.MustNewUnitDescriptor(entities.UnitFields{ID: "redis-setup", Phase: 2})

	reporter.Step(unit, "running", "phase", 2)
	reporter.Skip(unit, values.SkipReasonAlreadySucceeded)
	reporter.OK(unit, 1500*time.Millisecond)
	reporter.Error(unit, apperrors.NewUnitExecutionFailureError("redis-setup", 2, errors.New("exit status 2")))

	recs := decodeRecords(t, &buf)
	require.Len(t, recs, 4)

	assert.Equal(t, "step", recs[0]["event"])
	assert.Equal(t, "redis-setup", recs[0]["unit"])
	assert.Equal(t, "running", recs[0]["msg"])
	assert.InDelta(t, 2, recs[0]["phase"], 0)

	assert.Equal(t, "skip", recs[1]["event"])
	assert.Equal(t, "already-succeeded", recs[1]["reason"])

	assert.Equal(t, "ok", recs[2]["event"])
	assert.Equal(t, "1.5s", recs[2]["elapsed"])

	assert.Equal(t, "error", recs[3]["event"])
	assert.Equal(t, "ERROR", recs[3]["level"])
	assert.Equal(t, string(apperrors.KindUnitExecutionFailure), recs[3]["kind"])
	assert.Equal(t, "unit redis-setup failed with exit code 2", recs[3]["error"])
}
