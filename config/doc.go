// Package config loads and validates authbridge configuration from a
// YAML file, a .env file and AUTHBRIDGE_* environment variables, in
// that order of increasing precedence.
package config
