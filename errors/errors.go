// Package errors provides error handling for plugmig.
//
// This package re-exports github.com/cockroachdb/errors so that every
// collaborator failure (file IO, registry lookups, manifest merge) carries a
// stack trace and, where the user can act on it, a hint:
//
//	if err := fs.WriteFile(path, data); err != nil {
//	    return errors.Wrapf(err, "failed to write %s", path)
//	}
//
//	return errors.WithHint(err, "commit or stash your changes, or pass --allow-dirty")
//
// The extraction and generation core never returns errors; only the IO
// boundary does.
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing hints and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	GetAllDetails = crdb.GetAllDetails
	FlattenHints  = crdb.FlattenHints
)

// Inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Join combines independent failures, e.g. the two concurrent registry
// lookups, into a single error.
var Join = crdb.Join
