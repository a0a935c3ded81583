package inbox

import "fmt"

// ValidationError marks malformed caller input. Nothing was written; the
// call is safe to retry after correcting the input.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %v (nothing was saved)", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// NotFoundError marks a message id absent from the mirror. Nothing was
// written; refresh and retry with a valid id.
type NotFoundError struct {
	MessageID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("message %s not found (nothing was saved)", e.MessageID)
}

// PartialFailure reports that a response was durably persisted but the
// follow-up status update failed. The mirror was deliberately left
// untouched; callers must Refresh before retrying, or the retry would
// record a duplicate response.
type PartialFailure struct {
	MessageID  string
	ResponseID string
	Err        error
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("response %s was saved but marking message %s as responded failed: %v (refresh before retrying)",
		e.ResponseID, e.MessageID, e.Err)
}

func (e *PartialFailure) Unwrap() error { return e.Err }
