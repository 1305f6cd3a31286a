package entity

import "github.com/pkg/errors"

var (
	// ErrInvalidQuery marks failures caused by caller input: a structurally
	// invalid query tree or a malformed time range. Mapped to 400 upstream.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrEngineUnavailable marks failures reaching Elasticsearch: connection
	// refused, timeout, or a client that could not be constructed at all.
	ErrEngineUnavailable = errors.New("elasticsearch unavailable")
)
