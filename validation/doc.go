// Package validation validates yeet configuration and names with
// go-playground/validator.
//
// Struct fields report their mapstructure key, so messages point at the
// configuration file entry that needs fixing:
//
//	type Config struct {
//	    PendingPolicy string `mapstructure:"pending_policy" validate:"oneof=reject overwrite"`
//	}
//	err := validation.Validate(cfg) // INVALID_CONFIG: pending_policy: must be one of: reject overwrite
//
// The custom "identifier" tag accepts names usable as operation or binding
// names.
package validation
