// Package common defines shared sentinel errors used across the local store,
// the entity facade and the sync coordinator. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// ErrNotFound reports a missing record. The local store returns it for
	// update/lookup targets that do not exist; it is a signal, not a failure.
	ErrNotFound = errors.New("not found")

	// ErrNoRemote reports that an operation requiring a remote backend was
	// invoked while the application runs without one configured.
	ErrNoRemote = errors.New("no remote backend configured")

	// ErrBadIdentifier reports a table or column name that does not pass
	// identifier validation before being interpolated into SQL.
	ErrBadIdentifier = errors.New("invalid identifier")
)
