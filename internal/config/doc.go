// Package config defines the application's configuration structures and
// loads them from environment variables and an optional YAML file.
package config
