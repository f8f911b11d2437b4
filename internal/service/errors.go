package service

import (
	"errors"
	"fmt"
)

// Error kinds. Every service error wraps exactly one of these, so callers
// classify with errors.Is.
var (
	// ErrNotFound is returned when a resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrDuplicate is returned when a uniqueness rule would be broken
	ErrDuplicate = errors.New("resource already exists")

	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation failed")
)

// Not found errors
var (
	ErrClientNotFound      = fmt.Errorf("client %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrDealNotFound        = fmt.Errorf("deal %w", ErrNotFound)
	ErrProfitShareNotFound = fmt.Errorf("profit share %w", ErrNotFound)
	ErrJobNotFound         = fmt.Errorf("job %w", ErrNotFound)
	ErrDeliverableNotFound = fmt.Errorf("deliverable %w", ErrNotFound)
	ErrAssignmentNotFound  = fmt.Errorf("job assignment %w", ErrNotFound)
)

// Duplicate errors
var (
	// ErrDuplicateProfitShare is returned when the user already holds a share of the deal
	ErrDuplicateProfitShare = fmt.Errorf("profit share for this user and deal: %w", ErrDuplicate)

	// ErrDuplicateUsername is returned when the username is taken
	ErrDuplicateUsername = fmt.Errorf("username: %w", ErrDuplicate)
)

// Validation errors
var (
	ErrInvalidDealStage         = fmt.Errorf("invalid deal stage: %w", ErrValidation)
	ErrInvalidDeliverableStatus = fmt.Errorf("invalid deliverable status: %w", ErrValidation)
	ErrInvalidPercentage        = fmt.Errorf("percentage must be between 0 and 100: %w", ErrValidation)
	ErrNegativeFlatAmount       = fmt.Errorf("flat amount must not be negative: %w", ErrValidation)
	ErrNegativeAmount           = fmt.Errorf("amounts must not be negative: %w", ErrValidation)
	ErrInvalidDate              = fmt.Errorf("date must be YYYY-MM-DD: %w", ErrValidation)
	ErrInvalidMonth             = fmt.Errorf("month must be between 1 and 12: %w", ErrValidation)
	ErrInvalidYear              = fmt.Errorf("year must be between 1 and 9999: %w", ErrValidation)
	ErrTitleRequired            = fmt.Errorf("title is required: %w", ErrValidation)
	ErrNameRequired             = fmt.Errorf("name is required: %w", ErrValidation)
	ErrDealClientMismatch       = fmt.Errorf("deal belongs to a different client: %w", ErrValidation)
)
