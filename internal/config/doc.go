// Package config loads runtime configuration from multiple sources (YAML files,
// environment variables, CLI flags) with precedence: CLI flags > YAML config >
// Environment variables > Defaults. It exposes strongly typed settings to the
// rest of the application. Recipe and eater types are not part of it; they
// come from the profile document referenced by ProfileFile.
package config
