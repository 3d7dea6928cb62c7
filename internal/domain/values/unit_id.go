package values

import (
	"fmt"
	"regexp"
	"strings"
)

var unitIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// UnitID uniquely identifies a unit across everything loaded in a run.
// It is also the ledger key, so two units must never share one.
type UnitID struct {
	value string
}

// NewUnitID creates a UnitID with validation.
func NewUnitID(id string) (UnitID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return UnitID{}, fmt.Errorf("unit ID cannot be empty")
	}
	if !unitIDPattern.MatchString(id) {
		return UnitID{}, fmt.Errorf("unit ID %q must contain only letters, digits, '.', '_' or '-'", id)
	}
	return UnitID{value: id}, nil
}

// MustNewUnitID creates a UnitID or panics (for tests/constants)
func MustNewUnitID(id string) UnitID {
	uid, err := NewUnitID(id)
	if err != nil {
		panic(err)
	}
	return uid
}

// String returns the string representation
func (u UnitID) String() string {
	return u.value
}

// IsEmpty returns true if this is the zero value
func (u UnitID) IsEmpty() bool {
	return u.value == ""
}

// Equals checks if two UnitIDs are equal
func (u UnitID) Equals(other UnitID) bool {
	return u.value == other.value
}

// MarshalText implements encoding.TextMarshaler
func (u UnitID) MarshalText() ([]byte, error) {
	return []byte(u.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (u *UnitID) UnmarshalText(data []byte) error {
	id, err := NewUnitID(string(data))
	if err != nil {
		return err
	}
	*u = id
	return nil
}
