package importer

import (
	"errors"

	"retail-backoffice/internal/tabular"
)

// Failure tags for the import pipeline. Every gate failure is classified
// under exactly one tag and surfaced to the caller as a single outcome;
// nothing retries automatically.
const (
	TagUnknownTemplate   = "unknown_template"
	TagFileRequired      = "file_required"
	TagFileTooLarge      = "file_too_large"
	TagUnsupportedFile   = "unsupported_file_type"
	TagParseFailed       = "file_parse_failed"
	TagEmptyFile         = "file_empty"
	TagTooManyRows       = "too_many_rows"
	TagStagedJobNotFound = "staged_job_not_found"
	TagStagedJobMismatch = "staged_job_template_mismatch"
	TagStagedJobConsumed = "staged_job_consumed"
	TagJobCreateFailed   = "job_create_failed"
	TagRowsInsertFailed  = "rows_insert_failed"
	TagValidateFailed    = "validate_failed"
	TagApplyFailed       = "apply_failed"
)

// Error is a tagged terminal failure of a detect or import request.
type Error struct {
	Tag     string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Tag + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Tag + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(tag, message string) *Error {
	return &Error{Tag: tag, Message: message}
}

func WrapError(tag, message string, err error) *Error {
	return &Error{Tag: tag, Message: message, Err: err}
}

// TagOf extracts the failure tag from an error chain. Decoder structural
// failures carry their own tags; anything unclassified reports "internal".
func TagOf(err error) string {
	var ie *Error
	if errors.As(err, &ie) {
		return ie.Tag
	}
	var de *tabular.DecodeError
	if errors.As(err, &de) {
		return de.Tag
	}
	return "internal"
}
