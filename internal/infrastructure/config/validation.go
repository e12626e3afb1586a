package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks a Config against its struct tags and the BOB-specific
// rules registered below
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their config key
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	// Profiles name XML files, so they cannot carry path separators
	_ = v.RegisterValidation("profile_name", func(fl validator.FieldLevel) bool {
		name := fl.Field().String()
		return name != "." && name != ".." && !strings.ContainsAny(name, `/\:`)
	})
	v.RegisterStructValidation(engineStructLevel, EngineConfig{})
	return &Validator{validate: v}
}

// engineStructLevel requires a document directory for XML storage
func engineStructLevel(sl validator.StructLevel) {
	engine := sl.Current().Interface().(EngineConfig)
	if engine.Storage == StorageXML && engine.DocumentDir == "" {
		sl.ReportError(engine.DocumentDir, "document_dir", "DocumentDir", "required_with_xml", "")
	}
}

// Validate validates a struct using validation tags
func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return v.formatValidationError(err)
	}
	return nil
}

// formatValidationError lists every failing key as section.key
func (v *Validator) formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		key := e.Namespace()
		if i := strings.IndexByte(key, '.'); i >= 0 {
			key = key[i+1:]
		}
		messages = append(messages, fmt.Sprintf("%s: %s (value: '%v')", key, describeTag(e), e.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(messages, "\n  "))
}

func describeTag(e validator.FieldError) string {
	switch e.Tag() {
	case "oneof":
		return "must be one of " + e.Param()
	case "required", "required_if", "required_with_xml":
		return "is required"
	case "profile_name":
		return "must not contain path separators"
	default:
		if e.Param() != "" {
			return e.Tag() + "=" + e.Param()
		}
		return e.Tag()
	}
}

// ValidateConfig validates the entire configuration, including the database
// section when the engine or the log sink needs it
func ValidateConfig(cfg *Config) error {
	v := NewValidator()
	if err := v.Validate(cfg); err != nil {
		return err
	}
	if cfg.NeedsDatabase() {
		if err := v.Validate(&cfg.Database); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return nil
}
