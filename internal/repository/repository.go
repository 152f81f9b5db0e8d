// Package repository holds the data-access layer for users and jobs.
//
// Every write that depends on the current state of a job is a single
// conditional statement, so concurrent requests cannot interleave between
// a read and the write that depends on it. A condition that no longer holds
// is reported as ErrConflict.
package repository

import (
	"context"                          // Context for store operations
	"errors"                           // Sentinel errors
	"freelance_market/internal/domain" // Domain models

	"github.com/google/uuid" // Identifiers
)

// Common errors
var (
	ErrNotFound  = errors.New("record not found")            // No matching row
	ErrConflict  = errors.New("record changed concurrently") // Guard no longer holds
	ErrDuplicate = errors.New("duplicate key")               // Unique index violated
)

// JobQuery selects jobs for listings. Zero fields do not filter.
type JobQuery struct {
	Status        domain.JobStatus // Exact status
	OwnerID       *uuid.UUID       // user_id = OwnerID
	ParticipantID *uuid.UUID       // user_id = ParticipantID OR freelancer_id = ParticipantID
	JobType       string           // Exact job type
	MinBudget     float64          // Inclusive lower bound
	MaxBudget     float64          // Inclusive upper bound
}

// Transition describes a guarded status change of one job
type Transition struct {
	JobID        uuid.UUID          // Target job
	OwnerID      *uuid.UUID         // When set the job must belong to this user
	From         []domain.JobStatus // The job must currently be in one of these
	To           domain.JobStatus   // New status
	FreelancerID *uuid.UUID         // Assigned together with the status when set
}

// UserUpdate lists the mutable user fields. Nil fields are left untouched.
type UserUpdate struct {
	Bio            *string // New bio
	Password       *string // New bcrypt hash
	ProfilePicture *string // New public picture path
}

// JobRepository stores jobs and their bids
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	// FindByID returns the job with its bids ordered by creation time
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	// List returns matching jobs, newest first, without bids
	List(ctx context.Context, q JobQuery) ([]domain.Job, error)
	// Transition applies t atomically or returns ErrConflict
	Transition(ctx context.Context, t Transition) error
	// AddBid inserts bid if its job is still active. ErrConflict when the
	// job is gone or no longer active, ErrDuplicate when the freelancer
	// already bid on it.
	AddBid(ctx context.Context, bid *domain.Bid) error
	// Delete removes the job owned by ownerID together with its bids
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	// DeleteByOwner removes every job of ownerID in status with its bids
	// and reports how many jobs went away
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID, status domain.JobStatus) (int64, error)
	DeleteAll(ctx context.Context) error
}

// UserRepository stores identity records
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Names resolves display names; unknown ids are absent from the result
	Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PersonName, error)
	Update(ctx context.Context, id uuid.UUID, u UserUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAll(ctx context.Context) error
}
