package domain

import "errors"

var (
	// ErrNotFound is returned when a record cannot be found in a store
	ErrNotFound = errors.New("record not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when cache service is unavailable
	ErrCacheUnavailable = errors.New("cache service unavailable")

	// ErrModelUnavailable is returned when a trained model artifact cannot be loaded
	ErrModelUnavailable = errors.New("model artifact unavailable")

	// ErrInvalidArtifact is returned when a model artifact is readable but malformed
	ErrInvalidArtifact = errors.New("invalid model artifact")

	// ErrInvalidMetric is returned when a ranking metric name is not recognized
	ErrInvalidMetric = errors.New("unknown ranking metric")

	// ErrGenerationFailed is returned when the generative backend fails to answer
	ErrGenerationFailed = errors.New("generative backend request failed")
)
