package services

import "fmt"

// Custom errors

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "validation error" }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

// ExtractionError means every extraction strategy failed to pull text out of
// the uploaded document.
type ExtractionError struct{ Message string }

func (e *ExtractionError) Error() string { return e.Message }

// ExtractionEmptyError means extraction succeeded but the text contains zero
// words, so nothing can be generated from it.
type ExtractionEmptyError struct{}

func (e *ExtractionEmptyError) Error() string {
	return "document contains no extractable words"
}

// GenerationError covers any failure of the service-backed question
// generator: timeouts, malformed responses, quota or auth failures. Callers
// recover by falling through to the heuristic generator.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SyncIOError means a master bank commit failed before the atomic replace
// completed. The bank file on disk is untouched and the sync can be retried.
type SyncIOError struct {
	Path string
	Err  error
}

func (e *SyncIOError) Error() string {
	return fmt.Sprintf("question bank sync failed for %s: %v", e.Path, e.Err)
}

func (e *SyncIOError) Unwrap() error { return e.Err }
