package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSessionRepository implements ingestion.SessionRepository using GORM
// on the tenant-scoped store.
type GormSessionRepository struct {
	db dbSource
}

// NewGormSessionRepository creates a new GormSessionRepository
func NewGormSessionRepository(db dbSource) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

// FindByID finds a parsing session by its ID within the bound tenant
func (r *GormSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*ingestion.ParsingSession, error) {
	var model models.ParsingSessionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a parsing session
func (r *GormSessionRepository) Save(ctx context.Context, s *ingestion.ParsingSession) error {
	var model models.ParsingSessionModel
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// TransitionFromPending writes the session's terminal state with an update
// gated on the stored row still being PENDING. When two callbacks race,
// the database serializes them and only the first finds a PENDING row; the
// loser gets false and must re-read to learn the winner's outcome.
func (r *GormSessionRepository) TransitionFromPending(ctx context.Context, s *ingestion.ParsingSession) (bool, error) {
	if !s.Status.IsTerminal() {
		return false, shared.ErrInvalidState
	}

	res := r.db.WithContext(ctx).
		Model(&models.ParsingSessionModel{}).
		Where("id = ? AND status = ?", s.ID, string(ingestion.SessionStatusPending)).
		Updates(map[string]any{
			"status":                   string(s.Status),
			"confirmed_transaction_id": s.ConfirmedTransactionID,
			"updated_at":               time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// SetImagePath records where the session's attachment was archived
func (r *GormSessionRepository) SetImagePath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.ParsingSessionModel{}).
		Where("id = ?", id).
		Update("image_path", path).Error
}
