// Package service implements the job lifecycle engine and the user
// directory on top of the repository interfaces.
package service

import (
	"context"                              // Context for store operations
	"errors"                               // Error matching
	"fmt"                                  // Error wrapping
	"freelance_market/internal/domain"     // Domain models
	"freelance_market/internal/repository" // Data access
	"math"                                 // NaN and Inf checks
	"strings"                              // Input trimming
	"time"                                 // Timestamps

	"github.com/google/uuid" // Identifiers
)

// CreateJobInput holds the fields of a new job posting
type CreateJobInput struct {
	Title       string  // Job title
	Description string  // Job description
	JobType     string  // Job category
	Budget      float64 // Offered budget
	Img         string  // Image reference
}

// JobFilter narrows the active listings. Zero fields do not filter.
type JobFilter struct {
	JobType   string  // Exact job type
	MinBudget float64 // Inclusive lower bound
	MaxBudget float64 // Inclusive upper bound
}

// JobView is a listed job with the display names of its parties.
// Listings never carry bids, so the shadowing Bids field stays empty.
type JobView struct {
	domain.Job
	Bids       []domain.Bid       `json:"bids,omitempty"`       // Hidden in listings
	Client     *domain.PersonName `json:"client,omitempty"`     // Posting client
	Freelancer *domain.PersonName `json:"freelancer,omitempty"` // Accepted freelancer
}

// BidView is a bid with the display name of its freelancer
type BidView struct {
	domain.Bid
	Freelancer *domain.PersonName `json:"freelancer,omitempty"` // Bidding freelancer
}

// JobService drives jobs through active -> accepted -> complete
type JobService struct {
	jobs  repository.JobRepository  // Job store
	users repository.UserRepository // Actor and name lookups
	now   func() time.Time          // Clock
}

// NewJobService creates the lifecycle engine
func NewJobService(jobs repository.JobRepository, users repository.UserRepository) *JobService {
	return &JobService{jobs: jobs, users: users, now: time.Now}
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// CreateJob posts a new active job owned by actorID
func (s *JobService) CreateJob(ctx context.Context, actorID uuid.UUID, in CreateJobInput) (*domain.Job, error) {
	if err := validateJob(&in); err != nil {
		return nil, err // Input errors come before the actor lookup
	}
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.CreateJobAs(ctx, actor, in)
}

// CreateJobAs posts a new active job for an already loaded actor
func (s *JobService) CreateJobAs(ctx context.Context, actor *domain.User, in CreateJobInput) (*domain.Job, error) {
	if err := validateJob(&in); err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrForbidden)
	}

	now := s.now() // Shared creation timestamp
	job := &domain.Job{
		ID:          uuid.New(),       // Server-assigned ID
		Title:       in.Title,         // Job title
		Description: in.Description,   // Job description
		Img:         in.Img,           // Image reference
		JobType:     in.JobType,       // Job category
		Budget:      in.Budget,        // Offered budget
		UserID:      actor.ID,         // Posting client
		Status:      domain.JobActive, // Open for bids
		Version:     1,                // First revision
		Bids:        []domain.Bid{},   // No bids yet
		CreatedAt:   now,              // Creation timestamp
		UpdatedAt:   now,              // Update timestamp
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// validateJob trims in and checks that every field is present and the budget positive
func validateJob(in *CreateJobInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.JobType = strings.TrimSpace(in.JobType)
	in.Img = strings.TrimSpace(in.Img)

	var missing []string // Names of empty fields
	for _, f := range []struct{ name, value string }{
		{"title", in.Title},
		{"description", in.Description},
		{"jobType", in.JobType},
		{"img", in.Img},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", ErrValidation, strings.Join(missing, ", "))
	}
	if !positive(in.Budget) {
		return fmt.Errorf("%w: budget must be a positive number", ErrValidation)
	}
	return nil
}

// ListActiveJobs returns every active job matching filter
func (s *JobService) ListActiveJobs(ctx context.Context, filter JobFilter) ([]JobView, error) {
	if filter.MinBudget < 0 || filter.MaxBudget < 0 {
		return nil, fmt.Errorf("%w: budget filters must not be negative", ErrValidation)
	}
	// Both bounds set and crossed
	if filter.MinBudget > 0 && filter.MaxBudget > 0 && filter.MinBudget > filter.MaxBudget {
		return nil, fmt.Errorf("%w: minBudget is greater than maxBudget", ErrValidation)
	}
	return s.list(ctx, repository.JobQuery{
		Status:    domain.JobActive,                  // Open jobs only
		JobType:   strings.TrimSpace(filter.JobType), // Exact category
		MinBudget: filter.MinBudget,                  // Lower bound
		MaxBudget: filter.MaxBudget,                  // Upper bound
	})
}

// ListOwnedActiveJobs returns the active jobs posted by actorID
func (s *JobService) ListOwnedActiveJobs(ctx context.Context, actorID uuid.UUID) ([]JobView, error) {
	return s.list(ctx, repository.JobQuery{Status: domain.JobActive, OwnerID: &actorID})
}

// ListOngoingJobs returns accepted jobs where actorID is the client or the freelancer
func (s *JobService) ListOngoingJobs(ctx context.Context, actorID uuid.UUID) ([]JobView, error) {
	return s.list(ctx, repository.JobQuery{Status: domain.JobAccepted, ParticipantID: &actorID})
}

// CompleteJob marks a job owned by actorID as complete
func (s *JobService) CompleteJob(ctx context.Context, actorID, jobID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFoundOrForbidden // Missing and foreign jobs look the same
	}
	if err != nil {
		return nil, err
	}
	if job.UserID != actorID {
		return nil, ErrNotFoundOrForbidden
	}
	if !job.Status.CanTransition(domain.JobComplete) {
		return nil, fmt.Errorf("%w: job is %s", ErrInvalidState, job.Status)
	}

	err = s.jobs.Transition(ctx, repository.Transition{
		JobID:   jobID,                                        // Target job
		OwnerID: &actorID,                                     // Still owned by the caller
		From:    domain.TransitionSources(domain.JobComplete), // Allowed current states
		To:      domain.JobComplete,                           // New state
	})
	if err != nil {
		return nil, s.writeError(err)
	}
	return s.reload(ctx, jobID)
}

// DeleteJob removes a job owned by actorID
func (s *JobService) DeleteJob(ctx context.Context, actorID, jobID uuid.UUID) error {
	err := s.jobs.Delete(ctx, jobID, actorID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFoundOrForbidden
	}
	return err
}

// DeleteOwnedActiveJobs withdraws every active job posted by ownerID together
// with its bids. Accepted and complete jobs are kept for their freelancers.
func (s *JobService) DeleteOwnedActiveJobs(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return s.jobs.DeleteByOwner(ctx, ownerID, domain.JobActive)
}

// PlaceBid records a bid of amount by freelancer actorID on an active job
func (s *JobService) PlaceBid(ctx context.Context, actorID, jobID uuid.UUID, amount float64) (*domain.Job, error) {
	if !positive(amount) {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	}
	actor, err := s.actor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	return s.PlaceBidAs(ctx, actor, jobID, amount)
}

// PlaceBidAs records a bid for an already loaded actor
func (s *JobService) PlaceBidAs(ctx context.Context, actor *domain.User, jobID uuid.UUID, amount float64) (*domain.Job, error) {
	if !positive(amount) {
		return nil, fmt.Errorf("%w: amount must be a positive number", ErrValidation)
	}
	if actor == nil {
		return nil, fmt.Errorf("%w: unknown user", ErrForbidden)
	}
	if !actor.AccessLevel.CanBid() {
		return nil, fmt.Errorf("%w: only freelancers can bid on jobs", ErrForbidden)
	}

	job, err := s.jobs.FindByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: job does not exist", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if job.UserID == actor.ID {
		return nil, fmt.Errorf("%w: cannot bid on your own job", ErrForbidden)
	}
	if job.Status != domain.JobActive {
		return nil, fmt.Errorf("%w: job is %s", ErrInvalidState, job.Status)
	}
	if job.HasBidFrom(actor.ID) {
		return nil, ErrDuplicateBid // The unique index catches concurrent duplicates
	}

	bid := &domain.Bid{
		ID:           uuid.New(), // Server-assigned ID
		JobID:        jobID,      // Target job
		FreelancerID: actor.ID,   // Bidding freelancer
		Amount:       amount,     // Offered amount
		CreatedAt:    s.now(),    // Server-assigned timestamp
	}
	if err := s.jobs.AddBid(ctx, bid); err != nil {
		return nil, s.writeError(err)
	}
	return s.reload(ctx, jobID)
}

// ListBids returns the bids on a job; only its client may see them
func (s *JobService) ListBids(ctx context.Context, actorID, jobID uuid.UUID) ([]BidView, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: job does not exist", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if job.UserID != actorID {
		return nil, fmt.Errorf("%w: only the job owner can view bids", ErrForbidden)
	}

	ids := make([]uuid.UUID, 0, len(job.Bids)) // Bidders to resolve
	for _, b := range job.Bids {
		ids = append(ids, b.FreelancerID)
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]BidView, 0, len(job.Bids))
	for _, b := range job.Bids {
		v := BidView{Bid: b}
		if n, ok := names[b.FreelancerID]; ok {
			v.Freelancer = &n // Deleted bidders stay anonymous
		}
		views = append(views, v)
	}
	return views, nil
}

// AcceptFreelancer hires freelancerID, who must have bid on the job
func (s *JobService) AcceptFreelancer(ctx context.Context, actorID, jobID, freelancerID uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: job does not exist", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if job.UserID != actorID {
		return nil, fmt.Errorf("%w: only the job owner can accept a freelancer", ErrForbidden)
	}
	if !job.Status.CanTransition(domain.JobAccepted) {
		return nil, fmt.Errorf("%w: job is %s", ErrInvalidState, job.Status)
	}
	if !job.HasBidFrom(freelancerID) {
		return nil, fmt.Errorf("%w: no bid from this freelancer on the job", ErrValidation)
	}

	err = s.jobs.Transition(ctx, repository.Transition{
		JobID:        jobID,                                        // Target job
		OwnerID:      &actorID,                                     // Still owned by the caller
		From:         domain.TransitionSources(domain.JobAccepted), // Only active jobs
		To:           domain.JobAccepted,                           // New state
		FreelancerID: &freelancerID,                                // Hired freelancer
	})
	if err != nil {
		return nil, s.writeError(err) // Lost the race to another accept
	}
	return s.reload(ctx, jobID)
}

// actor loads the acting user; unknown users are forbidden
func (s *JobService) actor(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: unknown user", ErrForbidden)
	}
	return u, err
}

// reload reads a job back after a write so the caller sees its bids
func (s *JobService) reload(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		// Deleted right after the write
		return nil, ErrConflict
	}
	if err != nil {
		return nil, err
	}
	if job.Bids == nil {
		job.Bids = []domain.Bid{} // Always serialize as an array
	}
	return job, nil
}

// writeError maps repository write errors onto service errors
func (s *JobService) writeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return ErrDuplicateBid
	case errors.Is(err, repository.ErrConflict):
		return ErrConflict
	}
	return err
}

// list runs q and resolves the display names of every party
func (s *JobService) list(ctx context.Context, q repository.JobQuery) ([]JobView, error) {
	jobs, err := s.jobs.List(ctx, q)
	if err != nil {
		return nil, err
	}

	var ids []uuid.UUID // Clients and freelancers to resolve
	for _, j := range jobs {
		ids = append(ids, j.UserID)
		if j.FreelancerID != nil {
			ids = append(ids, *j.FreelancerID)
		}
	}
	names, err := s.users.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]JobView, 0, len(jobs))
	for _, j := range jobs {
		j.Bids = nil // Listings never expose bids
		v := JobView{Job: j}
		if n, ok := names[j.UserID]; ok {
			v.Client = &n
		}
		if j.FreelancerID != nil {
			if n, ok := names[*j.FreelancerID]; ok {
				v.Freelancer = &n
			}
		}
		views = append(views, v)
	}
	return views, nil
}
