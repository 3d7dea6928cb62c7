// Package config provides infrastructure for loading unit definitions.
// This package handles header extraction, YAML parsing, schema validation
// and directory discovery.
package config

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	apperrors "github.com/omniforge-dev/omniforge/internal/application/errors"
	"github.com/omniforge-dev/omniforge/internal/domain/entities"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// headerDelimiter opens and closes the metadata block.
const headerDelimiter = "# ---"

//go:embed unit_header.schema.json
var headerSchemaJSON []byte

var (
	headerSchema     *jsonschema.Schema
	headerSchemaErr  error
	headerSchemaOnce sync.Once
)

// rawHeader is the YAML shape of a unit header.
type rawHeader struct {
	ID           string          `yaml:"id"`
	Name         string          `yaml:"name"`
	Description  string          `yaml:"description"`
	PhaseName    string          `yaml:"phase_name"`
	Profiles     []string        `yaml:"profiles"`
	Settings     []string        `yaml:"settings"`
	Flags        []string        `yaml:"flags"`
	Dependencies rawDependencies `yaml:"dependencies"`
	Phase        int             `yaml:"phase"`
}

type rawDependencies struct {
	Packages    []string `yaml:"packages"`
	DevPackages []string `yaml:"dev_packages"`
}

// ExtractHeader returns the YAML between the two delimiter lines, with the
// comment prefix stripped. found is false when the file carries no header
// (for example a sourced helper library). Only the leading comment region
// is searched: the first non-comment line ends the search.
func ExtractHeader(data []byte) (header []byte, found bool, err error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	inBlock := false
	var buf bytes.Buffer
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")

		if !inBlock {
			switch {
			case line == headerDelimiter:
				inBlock = true
			case line == "", strings.HasPrefix(line, "#"):
				continue
			default:
				return nil, false, nil
			}
			continue
		}

		if line == headerDelimiter {
			return buf.Bytes(), true, nil
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			return nil, true, errors.New("header line is not a comment; missing closing '# ---'?")
		}
		text := strings.TrimPrefix(line, "#")
		text = strings.TrimPrefix(text, " ")
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("reading header: %w", err)
	}
	if inBlock {
		return nil, true, errors.New("unterminated header: missing closing '# ---'")
	}
	return nil, false, nil
}

// ParseHeader parses and validates the YAML header of one unit.
// All failures are *apperrors.MalformedMetadataError naming the field.
func ParseHeader(source string, header []byte) (*entities.UnitDescriptor, error) {
	var doc any
	if err := yaml.Unmarshal(header, &doc); err != nil {
		return nil, apperrors.NewMalformedMetadataError(source, "", "invalid YAML", err)
	}

	fields, ok := doc.(map[string]any)
	if !ok {
		return nil, apperrors.NewMalformedMetadataError(source, "", "header must be a YAML mapping", nil)
	}
	for _, required := range []string{"id", "phase"} {
		if v, present := fields[required]; !present || v == nil {
			return nil, apperrors.NewMalformedMetadataError(source, required, "is required", nil)
		}
	}

	if err := validateHeaderSchema(source, fields); err != nil {
		return nil, err
	}

	var raw rawHeader
	if err := yaml.Unmarshal(header, &raw); err != nil {
		return nil, apperrors.NewMalformedMetadataError(source, "", "invalid header", err)
	}

	desc, err := entities.NewUnitDescriptor(entities.UnitFields{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Phase:       raw.Phase,
		PhaseName:   raw.PhaseName,
		Profiles:    raw.Profiles,
		Settings:    raw.Settings,
		Flags:       raw.Flags,
		Packages:    raw.Dependencies.Packages,
		DevPackages: raw.Dependencies.DevPackages,
		Source:      source,
	})
	if err != nil {
		var fieldErr *entities.FieldError
		if errors.As(err, &fieldErr) {
			return nil, apperrors.NewMalformedMetadataError(source, fieldErr.Field, fieldErr.Reason, err)
		}
		return nil, apperrors.NewMalformedMetadataError(source, "", err.Error(), err)
	}
	return desc, nil
}

// ParseUnit extracts and parses the header of a unit file. A nil
// descriptor with a nil error means the file has no header.
func ParseUnit(source string, data []byte) (*entities.UnitDescriptor, error) {
	header, found, err := ExtractHeader(data)
	if err != nil {
		return nil, apperrors.NewMalformedMetadataError(source, "", err.Error(), err)
	}
	if !found {
		return nil, nil
	}
	return ParseHeader(source, header)
}

func compiledHeaderSchema() (*jsonschema.Schema, error) {
	headerSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("unit_header.schema.json", bytes.NewReader(headerSchemaJSON)); err != nil {
			headerSchemaErr = fmt.Errorf("failed to add header schema: %w", err)
			return
		}
		headerSchema, headerSchemaErr = compiler.Compile("unit_header.schema.json")
	})
	return headerSchema, headerSchemaErr
}

// validateHeaderSchema checks field types against the embedded schema. The
// YAML value is round-tripped through JSON so the validator sees plain JSON
// types.
func validateHeaderSchema(source string, fields map[string]any) error {
	schema, err := compiledHeaderSchema()
	if err != nil {
		return apperrors.NewConfigurationError("schema", "header schema unavailable", err)
	}

	data, err := json.Marshal(fields)
	if err != nil {
		return apperrors.NewMalformedMetadataError(source, "", "header is not representable as JSON", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return apperrors.NewMalformedMetadataError(source, "", "header is not representable as JSON", err)
	}

	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			leaf := deepestCause(verr)
			return apperrors.NewMalformedMetadataError(source, fieldFromLocation(leaf.InstanceLocation), leaf.Message, err)
		}
		return apperrors.NewMalformedMetadataError(source, "", "schema validation failed", err)
	}
	return nil
}

func deepestCause(err *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(err.Causes) > 0 {
		err = err.Causes[0]
	}
	return err
}

// fieldFromLocation turns "/dependencies/packages/0" into "dependencies.packages".
func fieldFromLocation(location string) string {
	var parts []string
	for _, part := range strings.Split(strings.Trim(location, "/"), "/") {
		if part == "" || isIndex(part) {
			continue
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ".")
}

func isIndex(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
