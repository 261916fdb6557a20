// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `Load()` calls `validateStruct` immediately after secret resolution, so
// the binary never runs with partial or malformed configuration.  Rules
// live on the model structs; `required`, `hostname_port`, `fqdn`, `url`,
// and `oneof` cover the current surface.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = validator.New()

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
