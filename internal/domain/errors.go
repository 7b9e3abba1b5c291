package domain

import "errors"

var (
	// ErrResolutionExhausted is returned when the step budget elapses
	// without the model submitting a final answer.
	ErrResolutionExhausted = errors.New("resolution step budget exhausted without an answer")

	// ErrResolutionFailed is returned when the model transport fails mid-run.
	// Surfaced to callers identically to ErrResolutionExhausted.
	ErrResolutionFailed = errors.New("resolution run failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrLLMAPIFailure is returned when the model API request fails
	ErrLLMAPIFailure = errors.New("LLM API request failed")

	// ErrNotFound is returned when a stored record does not exist
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken is returned when registering with an already used email
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials is returned on failed login attempts
	ErrInvalidCredentials = errors.New("invalid email or password")
)
