// Package dto contains data transfer objects for application layer use cases.
package dto

import (
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
)

// RunRequest encapsulates all inputs needed to run the schedule.
type RunRequest struct {
	Flags     *entities.RunFlags
	Selection SelectionOptions
	Metadata  RequestMetadata
}

// SelectionOptions narrows the loaded units before scheduling.
type SelectionOptions struct {
	FilterExpression string
	OnlyUnits        []string
	ExcludeUnits     []string
	Profiles         []string
	ExcludeProfiles  []string
}

// IsEmpty reports whether no selection option is set.
func (o SelectionOptions) IsEmpty() bool {
	return o.FilterExpression == "" &&
		len(o.OnlyUnits) == 0 &&
		len(o.ExcludeUnits) == 0 &&
		len(o.Profiles) == 0 &&
		len(o.ExcludeProfiles) == 0
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// Version of the binary, copied into the report
	Version string
}

// ListUnitsRequest encapsulates inputs for listing the schedule.
type ListUnitsRequest struct {
	Selection SelectionOptions
}
