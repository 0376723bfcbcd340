// Package validation provides struct-tag based validation built on
// go-playground/validator, returning AppError values with per-field
// details.
package validation
