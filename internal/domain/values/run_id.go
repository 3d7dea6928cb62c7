package values

import (
	"fmt"

	"github.com/google/uuid"
)

// RunID uniquely identifies one orchestrator invocation.
// It is recorded on ledger entries so a rerun can tell which run produced them.
type RunID struct {
	value uuid.UUID
}

// NewRunID creates a new random run ID
func NewRunID() RunID {
	return RunID{value: uuid.New()}
}

// ParseRunID parses a string into a RunID
func ParseRunID(s string) (RunID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return RunID{}, fmt.Errorf("invalid run ID: %w", err)
	}
	return RunID{value: id}, nil
}

// MustParseRunID parses a string or panics (for tests only)
func MustParseRunID(s string) RunID {
	id, err := ParseRunID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the string representation
func (r RunID) String() string {
	return r.value.String()
}

// IsZero returns true if this is the zero value
func (r RunID) IsZero() bool {
	return r.value == uuid.Nil
}

// Equals checks if two RunIDs are equal
func (r RunID) Equals(other RunID) bool {
	return r.value == other.value
}

// MarshalText implements encoding.TextMarshaler
func (r RunID) MarshalText() ([]byte, error) {
	return []byte(r.value.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *RunID) UnmarshalText(data []byte) error {
	id, err := ParseRunID(string(data))
	if err != nil {
		return err
	}
	*r = id
	return nil
}
