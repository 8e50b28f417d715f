// Package config loads, normalizes, and validates the TOML configuration
// that carries the externally authored reconciliation inputs: folder paths,
// case sensitivity, the suffix-to-fields mapping, field groups, and the
// expectation rules.
package config
