// Package config loads the service configuration from environment
// variables and validates it before anything else starts.
package config
