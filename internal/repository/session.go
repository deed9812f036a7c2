package repository

import (
	"context"
	"errors"

	"skillswap/internal/models"

	"gorm.io/gorm"
)

// SessionRepository defines persistence operations for skill sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByID(ctx context.Context, id uint) (*models.Session, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Session, error)
	Update(ctx context.Context, session *models.Session) error
	UpdateStatus(ctx context.Context, sessionID uint, status models.SessionStatus) error
	Delete(ctx context.Context, sessionID uint) error
}

type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sessionRepository) GetByID(ctx context.Context, id uint) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Session", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &session, nil
}

func (r *sessionRepository) ListForUser(ctx context.Context, userID uint) ([]models.Session, error) {
	var sessions []models.Session
	if err := readDB(r.db).WithContext(ctx).
		Where("organizer_id = ? OR participant_id = ?", userID, userID).
		Order("scheduled_at ASC").
		Find(&sessions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *models.Session) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *sessionRepository) UpdateStatus(ctx context.Context, sessionID uint, status models.SessionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Session{}).
		Where("id = ?", sessionID).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Session", sessionID)
	}
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, sessionID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Session{}, sessionID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
