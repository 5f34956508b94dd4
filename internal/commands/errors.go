package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-directory/internal/content"
	"github.com/goliatone/go-directory/internal/locations"
)

const (
	commandValidationCode   = "COMMAND_VALIDATION_FAILED"
	commandInputRejected    = "COMMAND_INPUT_REJECTED"
	commandConflictCode     = "COMMAND_CONFLICT"
	commandContextCanceled  = "COMMAND_CONTEXT_CANCELED"
	commandContextTimeout   = "COMMAND_CONTEXT_TIMEOUT"
	commandContextErrorCode = "COMMAND_CONTEXT_ERROR"
	commandExecuteFailed    = "COMMAND_EXECUTION_FAILED"
)

// inputErrors are domain errors caused by the message contents rather than
// by storage. They surface with the validation category.
var inputErrors = []error{
	locations.ErrIDRequired,
	locations.ErrSlugInvalid,
	locations.ErrTypeUnknown,
	locations.ErrDatasetInvalid,
	content.ErrLocationIDRequired,
}

var conflictErrors = []error{
	locations.ErrSlugTaken,
	locations.ErrCanonicalTaken,
	content.ErrCanonicalSlugTaken,
	content.ErrRelocationConflict,
}

func wrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "command validation failed").
		WithTextCode(commandValidationCode)
}

func wrapContextError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err {
	case context.Canceled:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution cancelled").
			WithTextCode(commandContextCanceled)
	case context.DeadlineExceeded:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution deadline exceeded").
			WithTextCode(commandContextTimeout)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command context error").
			WithTextCode(commandContextErrorCode)
	}
}

func wrapExecuteError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	if matchesAny(err, inputErrors) {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "command input rejected").
			WithTextCode(commandInputRejected)
	}
	if matchesAny(err, conflictErrors) {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "command conflicts with stored state").
			WithTextCode(commandConflictCode)
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, "command execution failed").
		WithTextCode(commandExecuteFailed)
}

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
