package config

import "errors"

// Error variables for configuration loading.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrLocaleEmpty        = errors.New("locale cannot be empty")
	ErrInvalidLocale      = errors.New("invalid locale")
	ErrInvalidLogLevel    = errors.New("invalid log level")
)
