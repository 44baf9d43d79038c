// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - Load errors wrap this package's sentinel errors.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json log output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// ModelPath points at the exported random-forest classifier.
	ModelPath string `koanf:"model_path"`

	// EncoderPath points at the exported label encoder.
	EncoderPath string `koanf:"encoder_path"`

	// ClassifierURL delegates classification to a model server when set.
	ClassifierURL string `koanf:"classifier_url"`

	// InferenceTimeoutMS bounds one classify call; 0 disables the bound.
	InferenceTimeoutMS int `koanf:"inference_timeout_ms"`

	// MaxBodyBytes caps the size of a request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// CORSAllowedOrigins is sent as Access-Control-Allow-Origin.
	CORSAllowedOrigins string `koanf:"cors_allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8000",
		ModelPath:          "models/gad7_forest.json",
		EncoderPath:        "models/label_encoder.json",
		InferenceTimeoutMS: 2000,
		MaxBodyBytes:       16 << 10,
		CORSAllowedOrigins: "*",
	}
}

// InferenceTimeout returns the classify bound as a duration.
func (c *Config) InferenceTimeout() time.Duration {
	return time.Duration(c.InferenceTimeoutMS) * time.Millisecond
}
