package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID primary keys
)

// JobStatus is the lifecycle state of a job
type JobStatus string

const (
	JobActive   JobStatus = "active"   // Open for bids
	JobAccepted JobStatus = "accepted" // Freelancer hired
	JobComplete JobStatus = "complete" // Work finished
)

// Valid reports whether s is a known status
func (s JobStatus) Valid() bool {
	switch s {
	case JobActive, JobAccepted, JobComplete:
		return true
	}
	return false
}

// CanTransition reports whether a job in status s may move to next.
// Status never moves backwards. An owner may complete a job from any
// status; completing an already complete job is a no-op transition.
func (s JobStatus) CanTransition(next JobStatus) bool {
	switch next {
	case JobAccepted:
		return s == JobActive
	case JobComplete:
		return s.Valid()
	}
	return false
}

// TransitionSources returns every status that may move to next
func TransitionSources(next JobStatus) []JobStatus {
	var out []JobStatus
	for _, s := range []JobStatus{JobActive, JobAccepted, JobComplete} {
		if s.CanTransition(next) {
			out = append(out, s)
		}
	}
	return out
}

// Job Model
type Job struct {
	ID           uuid.UUID  `gorm:"type:char(36);primaryKey" json:"_id"`                      // Primary key
	Title        string     `gorm:"not null" json:"title"`                                    // Job title
	Description  string     `gorm:"type:text;not null" json:"description"`                    // Job description
	Img          string     `gorm:"not null" json:"img"`                                      // Image reference
	JobType      string     `gorm:"size:100;index;not null" json:"jobType"`                   // Job type label
	Budget       float64    `gorm:"not null" json:"budget"`                                   // Budget, always positive
	UserID       uuid.UUID  `gorm:"type:char(36);index;not null" json:"userId"`               // Client who posted the job
	FreelancerID *uuid.UUID `gorm:"type:char(36);index" json:"freelancerId"`                  // Accepted freelancer, nil until acceptance
	Status       JobStatus  `gorm:"size:20;index;not null;default:active" json:"status"`      // Lifecycle status
	Version      int        `gorm:"not null;default:1" json:"-"`                              // Bumped on every write
	Bids         []Bid      `gorm:"foreignKey:JobID;constraint:OnDelete:CASCADE" json:"bids"` // Bids placed on the job
	CreatedAt    time.Time  `json:"createdAt"`                                                // Creation timestamp
	UpdatedAt    time.Time  `json:"updatedAt"`                                                // Update timestamp
}

// HasBidFrom reports whether freelancerID already bid on the job
func (j *Job) HasBidFrom(freelancerID uuid.UUID) bool {
	for _, b := range j.Bids {
		if b.FreelancerID == freelancerID {
			return true
		}
	}
	return false
}
