package numbering

import (
	"context"

	"github.com/google/uuid"
)

// RuleRepository defines the interface for numbering rule persistence
type RuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*NumberingRule, error)
	FindByDocumentType(ctx context.Context, documentType string) (*NumberingRule, error)
	FindAll(ctx context.Context) ([]NumberingRule, error)
	// GetOrCreate returns the rule for a document type, creating the
	// default rule when none exists yet. Losing a concurrent creation
	// race yields the winner's row, never an error.
	GetOrCreate(ctx context.Context, documentType string) (*NumberingRule, error)
	Create(ctx context.Context, rule *NumberingRule) error
	Save(ctx context.Context, rule *NumberingRule) error
	// SaveWithLock persists the rule with an optimistic version check and
	// returns shared.ErrConcurrencyConflict when the counter moved underneath us
	SaveWithLock(ctx context.Context, rule *NumberingRule) error
}
