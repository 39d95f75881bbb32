// Package config loads subnetctl settings from the environment.
//
// Values come from process environment variables, optionally seeded from a
// .env file in the working directory. Absent credentials or connection
// settings are reported as a *ConfigurationError naming every missing
// variable, so callers can fail fast before any provider or store call.
package config
