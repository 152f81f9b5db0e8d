package service

import "errors" // Sentinel errors

// Errors returned by the services. Call sites wrap them with detail;
// callers match with errors.Is.
var (
	ErrValidation          = errors.New("invalid input")                                  // Input rejected
	ErrForbidden           = errors.New("forbidden")                                      // Caller may not act
	ErrNotFound            = errors.New("not found")                                      // Missing record
	ErrNotFoundOrForbidden = errors.New("job not found")                                  // Also returned for jobs the caller does not own
	ErrDuplicateBid        = errors.New("freelancer has already bid on this job")         // One bid per freelancer
	ErrInvalidState        = errors.New("job is not in a valid state for this operation") // Wrong lifecycle status
	ErrConflict            = errors.New("job was modified by another request")            // Lost a concurrent write
	ErrDuplicateEmail      = errors.New("email is already registered")                    // Email taken
	ErrInvalidCredentials  = errors.New("invalid email or password")                      // Sign-in failed
)
