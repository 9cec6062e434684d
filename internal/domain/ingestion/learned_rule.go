package ingestion

import (
	"strings"

	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LearnedRule memorizes a keyword-to-category association confirmed by a
// tenant's users, fed back to the extractor as a priority hint. Keywords
// are case-folded supplier strings, unique per tenant; no further
// normalization is applied, so distinct suppliers sharing a substring can
// collide on the same rule.
type LearnedRule struct {
	shared.TenantEntity
	Keyword       string
	CategoryID    uuid.UUID
	SubcategoryID uuid.UUID
	HitCount      int
	Active        bool
}

// FoldKeyword case-folds a supplier string into rule-keyword form
func FoldKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// NewLearnedRule creates an active rule with one hit
func NewLearnedRule(tenantID uuid.UUID, keyword string, categoryID, subcategoryID uuid.UUID) (*LearnedRule, error) {
	keyword = FoldKeyword(keyword)
	if keyword == "" {
		return nil, shared.NewDomainError("INVALID_KEYWORD", "Rule keyword cannot be empty")
	}
	if categoryID == uuid.Nil || subcategoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Rule requires a category and subcategory")
	}
	return &LearnedRule{
		TenantEntity:  shared.NewTenantEntity(tenantID),
		Keyword:       keyword,
		CategoryID:    categoryID,
		SubcategoryID: subcategoryID,
		HitCount:      1,
		Active:        true,
	}, nil
}

// Reinforce counts one more confirmation of this association
func (r *LearnedRule) Reinforce(categoryID, subcategoryID uuid.UUID) {
	r.CategoryID = categoryID
	r.SubcategoryID = subcategoryID
	r.HitCount++
}

// RuleHint is the flattened form of a rule handed to the extractor
type RuleHint struct {
	Keyword     string `json:"keyword"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}
