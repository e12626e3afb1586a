package config

// Configuration storage backends
const (
	StorageXML      = "xml"
	StorageDatabase = "database"
)

// EngineConfig holds replacement engine session configuration
type EngineConfig struct {
	// Path of the YAML scene loaded into the memory host
	ScenePath string `mapstructure:"scene_path" validate:"required"`

	// Where configuration documents are stored: xml or database
	Storage string `mapstructure:"storage" validate:"required,oneof=xml database"`

	// Directory of XML documents (storage: xml)
	DocumentDir string `mapstructure:"document_dir"`

	// Profile name of the active document
	Profile string `mapstructure:"profile" validate:"required,profile_name"`

	// Live slots already carry the stored replacements
	LiveApplied bool `mapstructure:"live_applied"`

	// Held by sessions that write the profile back
	LockFile string `mapstructure:"lock_file"`
}
