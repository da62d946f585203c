package passcode

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/tintura/internal/models"
)

// Repository persists challenges and admin sessions.
type Repository interface {
	ExpireChallenges(ctx context.Context, address string, at time.Time) error
	CreateChallenge(ctx context.Context, c *models.PasscodeChallenge) error
	LatestChallenge(ctx context.Context, address string, now time.Time) (*models.PasscodeChallenge, error)
	SaveChallenge(ctx context.Context, c *models.PasscodeChallenge) error
	CreateSession(ctx context.Context, s *models.AdminSession) error
	FindSession(ctx context.Context, id uuid.UUID) (*models.AdminSession, error)
	RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error
	RevokeSessions(ctx context.Context, at time.Time) error
}

type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) ExpireChallenges(ctx context.Context, address string, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.PasscodeChallenge{}).
		Where("address = ? AND used_at IS NULL AND expires_at > ?", address, at).
		Update("expires_at", at).Error
}

func (r *GormRepository) CreateChallenge(ctx context.Context, c *models.PasscodeChallenge) error {
	return r.db.WithContext(ctx).Create(c).Error
}

// LatestChallenge returns the newest unused, unexpired challenge or
// ErrNoActiveCode.
func (r *GormRepository) LatestChallenge(ctx context.Context, address string, now time.Time) (*models.PasscodeChallenge, error) {
	var c models.PasscodeChallenge
	err := r.db.WithContext(ctx).
		Where("address = ? AND used_at IS NULL AND expires_at > ?", address, now).
		Order("created_at desc").
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoActiveCode
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormRepository) SaveChallenge(ctx context.Context, c *models.PasscodeChallenge) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *GormRepository) CreateSession(ctx context.Context, s *models.AdminSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *GormRepository) FindSession(ctx context.Context, id uuid.UUID) (*models.AdminSession, error) {
	var s models.AdminSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormRepository) RevokeSession(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

func (r *GormRepository) RevokeSessions(ctx context.Context, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.AdminSession{}).
		Where("revoked_at IS NULL").
		Update("revoked_at", at).Error
}
