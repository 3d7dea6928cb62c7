package dto

import (
	"time"

	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/omniforge-dev/omniforge/internal/domain/execution"
)

// RunResponse contains the result of a run.
type RunResponse struct {
	// Result is the per-unit report, present even when the run failed
	Result *execution.RunResult

	// Metadata contains response metadata
	Metadata ResponseMetadata

	// Diagnostics contains additional diagnostic information
	Diagnostics Diagnostics
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// Diagnostics contains diagnostic information about the run.
type Diagnostics struct {
	// Warnings are non-fatal issues encountered
	Warnings []string

	// Excluded maps unit IDs removed by selection to the reason
	Excluded map[string]string
}

// ListUnitsResponse contains the units in schedule order.
type ListUnitsResponse struct {
	Units    []*entities.UnitDescriptor
	Excluded map[string]string
}
