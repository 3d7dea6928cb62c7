package logging

import (
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/application/ports"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/values"
)

// Ensure interface compliance
var _ ports.Reporter = (*SlogReporter)(nil)

// SlogReporter reports unit progress as structured log records. Every
// record carries an event attribute (step, skip, ok, error) and the unit ID.
type SlogReporter struct {
	logger *slog.Logger
}

// NewSlogReporter creates a reporter on logger.
func NewSlogReporter(logger *slog.Logger) *SlogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogReporter{logger: logger}
}

// Step reports progress inside a unit. Args are slog key/value pairs.
func (r *SlogReporter) Step(unit *entities.UnitDescriptor, msg string, args ...any) {
	r.logger.Info(msg, append([]any{"event", "step", "unit", unit.ID().String()}, args...)...)
}

// Skip reports a unit that did not run.
func (r *SlogReporter) Skip(unit *entities.UnitDescriptor, reason values.SkipReason) {
	r.logger.Info("skipped", "event", "skip", "unit", unit.ID().String(), "reason", string(reason))
}

// OK reports a unit that succeeded.
func (r *SlogReporter) OK(unit *entities.UnitDescriptor, elapsed time.Duration) {
	r.logger.Info("succeeded", "event", "ok", "unit", unit.ID().String(), "elapsed", elapsed.Round(time.Millisecond).String())
}

// Error reports a failed unit with its error kind.
func (r *SlogReporter) Error(unit *entities.UnitDescriptor, err error) {
	r.logger.Error("failed",
		"event", "error",
		"unit", unit.ID().String(),
		"kind", string(apperrors.KindOf(err)),
		"error", fmt.Sprint(err),
	)
}
