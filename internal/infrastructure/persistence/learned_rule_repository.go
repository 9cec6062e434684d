package persistence

import (
	"context"
	"errors"

	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/caixo/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLearnedRuleRepository implements ingestion.LearnedRuleRepository
// using GORM on the tenant-scoped store.
type GormLearnedRuleRepository struct {
	db dbSource
}

// NewGormLearnedRuleRepository creates a new GormLearnedRuleRepository
func NewGormLearnedRuleRepository(db dbSource) *GormLearnedRuleRepository {
	return &GormLearnedRuleRepository{db: db}
}

// FindByKeyword finds the bound tenant's rule for a case-folded keyword
func (r *GormLearnedRuleRepository) FindByKeyword(ctx context.Context, keyword string) (*ingestion.LearnedRule, error) {
	var model models.LearnedRuleModel
	if err := r.db.WithContext(ctx).
		Where("keyword = ?", ingestion.FoldKeyword(keyword)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListActiveHints returns the tenant's active rules flattened with their
// category and subcategory names, strongest first.
func (r *GormLearnedRuleRepository) ListActiveHints(ctx context.Context) ([]ingestion.RuleHint, error) {
	var hints []ingestion.RuleHint
	err := r.db.WithContext(ctx).
		Model(&models.LearnedRuleModel{}).
		Select("learned_rules.keyword AS keyword, categories.name AS category, subcategories.name AS subcategory").
		Joins("JOIN categories ON categories.id = learned_rules.category_id").
		Joins("JOIN subcategories ON subcategories.id = learned_rules.subcategory_id").
		Where("learned_rules.active = ?", true).
		Order("learned_rules.hit_count DESC").
		Scan(&hints).Error
	if err != nil {
		return nil, err
	}
	return hints, nil
}

// Save creates or updates a rule
func (r *GormLearnedRuleRepository) Save(ctx context.Context, rule *ingestion.LearnedRule) error {
	var model models.LearnedRuleModel
	model.FromDomain(rule)
	return r.db.WithContext(ctx).Save(&model).Error
}
