package values

// SettingSource tags which layer a setting was resolved from.
type SettingSource string

const (
	// SettingSourceOverride is an explicit per-run override
	SettingSourceOverride SettingSource = "override"
	// SettingSourceEnvFile is the project env file
	SettingSourceEnvFile SettingSource = "env-file"
	// SettingSourceDefault is a project or compiled-in default
	SettingSourceDefault SettingSource = "default"
)

// Setting is a resolved key/value pair. The value is opaque to the core.
type Setting struct {
	Key    string        `json:"key" yaml:"key"`
	Value  string        `json:"value" yaml:"value"`
	Source SettingSource `json:"source" yaml:"source"`
}
