package ingestion

import (
	"context"

	"github.com/google/uuid"
)

// SessionRepository persists parsing sessions on the tenant-scoped store.
type SessionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ParsingSession, error)
	Save(ctx context.Context, session *ParsingSession) error
	// TransitionFromPending applies the session's terminal state with an
	// update gated on the stored row still being PENDING. It returns false
	// when another caller already moved the session to a terminal state,
	// so exactly one of two racing callbacks wins.
	TransitionFromPending(ctx context.Context, session *ParsingSession) (bool, error)
	// SetImagePath records where the session's attachment was archived.
	SetImagePath(ctx context.Context, id uuid.UUID, path string) error
}

// LearnedRuleRepository persists learned rules on the tenant-scoped store.
type LearnedRuleRepository interface {
	FindByKeyword(ctx context.Context, keyword string) (*LearnedRule, error)
	// ListActiveHints returns the tenant's active rules flattened with
	// their category and subcategory names.
	ListActiveHints(ctx context.Context) ([]RuleHint, error)
	Save(ctx context.Context, rule *LearnedRule) error
}
