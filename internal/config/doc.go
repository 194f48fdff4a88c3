// Package config persists user preferences to a JSON file and configures
// process-wide logging.
package config
