// Package config loads, normalizes, and validates hireflow's TOML
// configuration. Defaults are applied first, then the file (if any) is
// decoded over them, paths are expanded, and the result is validated.
package config
