package domain

import (
	"time" // Timestamps

	"github.com/google/uuid" // UUID keys
)

// Bid Model. A freelancer has at most one bid per job.
type Bid struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"-"`                                             // Primary key
	JobID        uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_bid_job_freelancer" json:"-"`            // Job the bid belongs to
	FreelancerID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_bid_job_freelancer" json:"freelancerId"` // Bidding freelancer
	Amount       float64   `gorm:"not null" json:"amount"`                                                        // Offered amount
	CreatedAt    time.Time `json:"createdAt"`                                                                     // Server-assigned timestamp
}
