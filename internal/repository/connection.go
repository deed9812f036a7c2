package repository

import (
	"context"
	"errors"

	"skillswap/internal/models"

	"gorm.io/gorm"
)

// ConnectionRepository defines persistence operations for connection edges.
// Edges are written under two schemas: the current sender/recipient pair and
// the legacy user/connected-user pair. Reads expose one query per stored
// direction so callers can merge the overlapping views themselves.
type ConnectionRepository interface {
	Create(ctx context.Context, edge *models.ConnectionEdge) error
	GetByID(ctx context.Context, id uint) (*models.ConnectionEdge, error)
	GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.ConnectionEdge, error)
	ListBySender(ctx context.Context, userID uint) ([]models.ConnectionEdge, error)
	ListByRecipient(ctx context.Context, userID uint) ([]models.ConnectionEdge, error)
	ListByLegacyUser(ctx context.Context, userID uint) ([]models.ConnectionEdge, error)
	ListByLegacyConnected(ctx context.Context, userID uint) ([]models.ConnectionEdge, error)
	UpdateStatus(ctx context.Context, edgeID uint, status models.ConnectionStatus) error
	Delete(ctx context.Context, edgeID uint) error
}

type connectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new connection repository.
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(ctx context.Context, edge *models.ConnectionEdge) error {
	if err := r.db.WithContext(ctx).Create(edge).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id uint) (*models.ConnectionEdge, error) {
	var edge models.ConnectionEdge
	if err := r.db.WithContext(ctx).Preload("Sender").Preload("Recipient").First(&edge, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Connection", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

func (r *connectionRepository) GetBetweenUsers(ctx context.Context, userID1, userID2 uint) (*models.ConnectionEdge, error) {
	var edge models.ConnectionEdge

	// An edge between two users may exist under either schema, in either
	// direction.
	if err := r.db.WithContext(ctx).
		Where("(sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)"+
			" OR (user_id = ? AND connected_user_id = ?) OR (user_id = ? AND connected_user_id = ?)",
			userID1, userID2, userID2, userID1,
			userID1, userID2, userID2, userID1).
		First(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // No edge exists
		}
		return nil, models.NewInternalError(err)
	}
	return &edge, nil
}

func (r *connectionRepository) ListBySender(ctx context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return r.list(ctx, "sender_id = ?", userID)
}

func (r *connectionRepository) ListByRecipient(ctx context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return r.list(ctx, "recipient_id = ?", userID)
}

func (r *connectionRepository) ListByLegacyUser(ctx context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return r.list(ctx, "user_id = ?", userID)
}

func (r *connectionRepository) ListByLegacyConnected(ctx context.Context, userID uint) ([]models.ConnectionEdge, error) {
	return r.list(ctx, "connected_user_id = ?", userID)
}

func (r *connectionRepository) list(ctx context.Context, cond string, userID uint) ([]models.ConnectionEdge, error) {
	var edges []models.ConnectionEdge
	if err := readDB(r.db).WithContext(ctx).
		Where(cond, userID).
		Order("created_at DESC").
		Find(&edges).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return edges, nil
}

func (r *connectionRepository) UpdateStatus(ctx context.Context, edgeID uint, status models.ConnectionStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.ConnectionEdge{}).
		Where("id = ?", edgeID).
		Update("status", status)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Connection", edgeID)
	}
	return nil
}

func (r *connectionRepository) Delete(ctx context.Context, edgeID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.ConnectionEdge{}, edgeID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
