package services

import "errors"

var (
	// ErrInvalidQuestion indicates sanitization produced an empty question;
	// nothing gets persisted.
	ErrInvalidQuestion = errors.New("invalid question text")

	// ErrNoActiveTopic indicates no topic window covers the requested instant.
	ErrNoActiveTopic = errors.New("no active topic")

	// ErrEmptyAnswer indicates the answer content was empty after cleanup.
	ErrEmptyAnswer = errors.New("empty answer content")

	// ErrAnswerTooLong indicates the answer content exceeds the bound.
	ErrAnswerTooLong = errors.New("answer content too long")

	// ErrNoParticipation indicates the user has no answers in the window.
	ErrNoParticipation = errors.New("no participation in window")

	// ErrNoFamilyActivity indicates the family has no answers in the window.
	ErrNoFamilyActivity = errors.New("no family activity in window")

	// ErrEmptyResponse indicates the generation service returned no candidates.
	ErrEmptyResponse = errors.New("generation returned no candidates")

	// ErrMalformedResponse indicates a generation candidate had no parseable text.
	ErrMalformedResponse = errors.New("malformed generation response")

	// ErrGenTimeout indicates the generation request exceeded its timeout.
	ErrGenTimeout = errors.New("generation request timed out")

	// ErrGenHTTP indicates the generation service answered with a non-2xx status.
	ErrGenHTTP = errors.New("generation service http error")
)
