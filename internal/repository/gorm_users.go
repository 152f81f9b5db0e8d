package repository

import (
	"context"                          // Context for store operations
	"freelance_market/internal/domain" // Domain models

	"github.com/google/uuid" // Identifiers
	"gorm.io/gorm"           // GORM ORM library
)

// GormUserRepository implements UserRepository on top of gorm
type GormUserRepository struct {
	db *gorm.DB // Database handle
}

// NewGormUserRepository creates a user repository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func (r *GormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *GormUserRepository) Names(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.PersonName, error) {
	names := make(map[uuid.UUID]domain.PersonName, len(ids))
	if len(ids) == 0 {
		return names, nil // Skip the round trip
	}
	var users []domain.User // Only the name columns are loaded
	err := r.db.WithContext(ctx).
		Select("id", "first_name", "last_name").
		Where("id IN ?", ids).
		Find(&users).Error
	if err != nil {
		return nil, translate(err)
	}
	for i := range users {
		names[users[i].ID] = users[i].Name()
	}
	return names, nil
}

func (r *GormUserRepository) Update(ctx context.Context, id uuid.UUID, u UserUpdate) error {
	updates := map[string]any{} // Columns to change
	if u.Bio != nil {
		updates["bio"] = *u.Bio
	}
	if u.Password != nil {
		updates["password"] = *u.Password
	}
	if u.ProfilePicture != nil {
		updates["profile_picture"] = *u.ProfilePicture
	}
	if len(updates) == 0 {
		return nil // Nothing to write
	}
	res := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormUserRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&domain.User{}).Error
}
