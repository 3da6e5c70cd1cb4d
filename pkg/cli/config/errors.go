package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound       = goerr.New("configuration file not found")
	ErrInvalidConfig        = goerr.New("invalid configuration")
	ErrInvalidDuration      = goerr.New("invalid duration")
	ErrInvalidConcurrency   = goerr.New("roster concurrency must be at least 1")
	ErrInvalidTimezone      = goerr.New("invalid timezone")
	ErrDuplicateCancerType  = goerr.New("duplicate cancer type ID")
	ErrMissingCancerTypeID  = goerr.New("cancer type ID is required")
	ErrMissingName          = goerr.New("name is required")
	ErrInvalidLogLevel      = goerr.New("invalid log level")
	ErrInvalidLogFormat     = goerr.New("invalid log format")
	ErrInvalidCacheBackend  = goerr.New("invalid roster cache backend")
	ErrInvalidRepoBackend   = goerr.New("invalid repository backend")
	ErrMissingFirestoreProj = goerr.New("firestore-project-id is required when using firestore backend")
)

// Context keys for error values
const (
	ConfigPathKey   = "config_path"
	FieldKey        = "field"
	CancerTypeIDKey = "cancer_type_id"
)
