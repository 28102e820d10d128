// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` right after it
// unmarshals and defaults the merged Koanf tree.  Any validation error
// aborts startup, so the binary never runs with malformed configuration.
//
// One custom rule is registered: `dsn_verbs`, which rejects a DSN that
// carries more than one `%s` verb (the password slot).
//
// Notes
// -----
//   • Oxford commas, two spaces after periods.

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	_ = val.RegisterValidation("dsn_verbs", func(fl validator.FieldLevel) bool {
		return strings.Count(fl.Field().String(), "%s") <= 1
	})
	return val
}

//
// public API
//

// validateStruct returns the validation errors, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
