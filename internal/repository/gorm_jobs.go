package repository

import (
	"context"                          // Context for store operations
	"errors"                           // Error matching
	"freelance_market/internal/domain" // Domain models

	"github.com/go-sql-driver/mysql" // MySQL error codes
	"github.com/google/uuid"         // Identifiers
	"gorm.io/gorm"                   // GORM ORM library
	"gorm.io/gorm/clause"            // Row locking
)

// GormJobRepository implements JobRepository on top of gorm
type GormJobRepository struct {
	db *gorm.DB // Database handle
}

// NewGormJobRepository creates a job repository
func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

func (r *GormJobRepository) Create(ctx context.Context, job *domain.Job) error {
	return translate(r.db.WithContext(ctx).Create(job).Error)
}

func (r *GormJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	var job domain.Job
	err := r.db.WithContext(ctx).
		Preload("Bids", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&job, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &job, nil
}

func (r *GormJobRepository) List(ctx context.Context, q JobQuery) ([]domain.Job, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Job{})
	// Apply only the filters that are set
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.OwnerID != nil {
		tx = tx.Where("user_id = ?", *q.OwnerID)
	}
	if q.ParticipantID != nil {
		tx = tx.Where("user_id = ? OR freelancer_id = ?", *q.ParticipantID, *q.ParticipantID)
	}
	if q.JobType != "" {
		tx = tx.Where("job_type = ?", q.JobType)
	}
	if q.MinBudget > 0 {
		tx = tx.Where("budget >= ?", q.MinBudget)
	}
	if q.MaxBudget > 0 {
		tx = tx.Where("budget <= ?", q.MaxBudget)
	}
	jobs := []domain.Job{} // Empty, never nil
	if err := tx.Order("created_at desc").Find(&jobs).Error; err != nil {
		return nil, translate(err)
	}
	return jobs, nil
}

func (r *GormJobRepository) Transition(ctx context.Context, t Transition) error {
	updates := map[string]any{
		"status":  t.To,                     // New status
		"version": gorm.Expr("version + 1"), // Bump revision
	}
	if t.FreelancerID != nil {
		updates["freelancer_id"] = *t.FreelancerID // Hire together with the status change
	}
	tx := r.db.WithContext(ctx).Model(&domain.Job{}).Where("id = ?", t.JobID)
	if len(t.From) > 0 {
		tx = tx.Where("status IN ?", t.From) // Guard on the current status
	}
	if t.OwnerID != nil {
		tx = tx.Where("user_id = ?", *t.OwnerID) // Guard on ownership
	}
	res := tx.Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict // Some guard failed
	}
	return nil
}

func (r *GormJobRepository) AddBid(ctx context.Context, bid *domain.Bid) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locks the job row so bids on one job are serialized
		res := tx.Model(&domain.Job{}).
			Where("id = ? AND status = ?", bid.JobID, domain.JobActive).
			Update("version", gorm.Expr("version + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return tx.Create(bid).Error // Unique index rejects a second bid
	})
	return translate(err)
}

func (r *GormJobRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&domain.Job{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		// Bids are normally gone through the foreign key cascade already
		return tx.Where("job_id = ?", id).Delete(&domain.Bid{}).Error
	})
	return translate(err)
}

func (r *GormJobRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID, status domain.JobStatus) (int64, error) {
	var removed int64 // Jobs deleted
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uuid.UUID // Matching jobs, locked until commit
		err := tx.Model(&domain.Job{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND status = ?", ownerID, status).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil // Nothing to remove
		}
		if err := tx.Where("job_id IN ?", ids).Delete(&domain.Bid{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ? AND status = ?", ids, status).Delete(&domain.Job{})
		removed = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, translate(err)
	}
	return removed, nil
}

func (r *GormJobRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&domain.Bid{}).Error; err != nil {
			return err
		}
		return all.Delete(&domain.Job{}).Error
	})
}

// translate maps driver and gorm errors onto the repository errors
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrDuplicate) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	var myErr *mysql.MySQLError // Drivers without TranslateError support
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return ErrDuplicate
	}
	return err
}
