package models

import (
	"time"

	"github.com/caixo/backend/internal/domain/ingestion"
	"github.com/caixo/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ParsingSessionModel is the persistence model for ParsingSession. The
// extracted payload is stored as a JSON document; its shape belongs to
// the extractor, not the schema.
type ParsingSessionModel struct {
	TenantOwnedModel
	RawText                string                     `gorm:"type:text;not null"`
	Payload                ingestion.ExtractedPayload `gorm:"type:jsonb;serializer:json"`
	ImageURL               string                     `gorm:"type:varchar(1000)"`
	ImagePath              string                     `gorm:"type:varchar(1000)"`
	AudioURL               string                     `gorm:"type:varchar(1000)"`
	Status                 string                     `gorm:"type:varchar(20);not null;index"`
	ExpiresAt              time.Time                  `gorm:"not null"`
	ConfirmedTransactionID *uuid.UUID                 `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (ParsingSessionModel) TableName() string {
	return "parsing_sessions"
}

// ToDomain converts the persistence model to a domain ParsingSession
func (m *ParsingSessionModel) ToDomain() *ingestion.ParsingSession {
	return &ingestion.ParsingSession{
		TenantEntity:           m.ToDomainTenantEntity(),
		RawText:                m.RawText,
		Payload:                m.Payload,
		ImageURL:               m.ImageURL,
		ImagePath:              m.ImagePath,
		AudioURL:               m.AudioURL,
		Status:                 ingestion.SessionStatus(m.Status),
		ExpiresAt:              m.ExpiresAt,
		ConfirmedTransactionID: m.ConfirmedTransactionID,
	}
}

// FromDomain populates the persistence model from a domain ParsingSession
func (m *ParsingSessionModel) FromDomain(s *ingestion.ParsingSession) {
	m.FromDomainTenantEntity(s.TenantEntity)
	m.RawText = s.RawText
	m.Payload = s.Payload
	m.ImageURL = s.ImageURL
	m.ImagePath = s.ImagePath
	m.AudioURL = s.AudioURL
	m.Status = string(s.Status)
	m.ExpiresAt = s.ExpiresAt
	m.ConfirmedTransactionID = s.ConfirmedTransactionID
}

// LearnedRuleModel is the persistence model for LearnedRule. Keywords are
// unique per tenant.
type LearnedRuleModel struct {
	BaseModel
	TenantID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_learned_rules_tenant_keyword"`
	Keyword       string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_learned_rules_tenant_keyword"`
	CategoryID    uuid.UUID `gorm:"type:uuid;not null"`
	SubcategoryID uuid.UUID `gorm:"type:uuid;not null"`
	HitCount      int       `gorm:"not null;default:1"`
	Active        bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LearnedRuleModel) TableName() string {
	return "learned_rules"
}

// ToDomain converts the persistence model to a domain LearnedRule
func (m *LearnedRuleModel) ToDomain() *ingestion.LearnedRule {
	return &ingestion.LearnedRule{
		TenantEntity: shared.TenantEntity{
			BaseEntity: m.BaseModel.ToDomain(),
			TenantID:   m.TenantID,
		},
		Keyword:       m.Keyword,
		CategoryID:    m.CategoryID,
		SubcategoryID: m.SubcategoryID,
		HitCount:      m.HitCount,
		Active:        m.Active,
	}
}

// FromDomain populates the persistence model from a domain LearnedRule
func (m *LearnedRuleModel) FromDomain(r *ingestion.LearnedRule) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.TenantID = r.TenantID
	m.Keyword = r.Keyword
	m.CategoryID = r.CategoryID
	m.SubcategoryID = r.SubcategoryID
	m.HitCount = r.HitCount
	m.Active = r.Active
}
