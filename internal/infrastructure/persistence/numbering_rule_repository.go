package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
)

// GormNumberingRuleRepository implements RuleRepository using GORM
type GormNumberingRuleRepository struct {
	db *gorm.DB
}

// NewGormNumberingRuleRepository creates a new GormNumberingRuleRepository
func NewGormNumberingRuleRepository(db *gorm.DB) *GormNumberingRuleRepository {
	return &GormNumberingRuleRepository{db: db}
}

// FindByID finds a rule by its ID
func (r *GormNumberingRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*numbering.NumberingRule, error) {
	var rule numbering.NumberingRule
	if err := r.db.WithContext(ctx).First(&rule, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindByDocumentType finds the rule for a document type
func (r *GormNumberingRuleRepository) FindByDocumentType(ctx context.Context, documentType string) (*numbering.NumberingRule, error) {
	var rule numbering.NumberingRule
	if err := r.db.WithContext(ctx).
		First(&rule, "document_type = ?", documentType).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rule, nil
}

// FindAll lists all numbering rules
func (r *GormNumberingRuleRepository) FindAll(ctx context.Context) ([]numbering.NumberingRule, error) {
	var rules []numbering.NumberingRule
	if err := r.db.WithContext(ctx).
		Order("document_type ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

// GetOrCreate returns the rule for a document type, lazily inserting the
// default rule. A plain insert would abort the surrounding transaction on
// a unique violation, so the insert races through ON CONFLICT DO NOTHING
// and the loser re-reads the winner's row.
func (r *GormNumberingRuleRepository) GetOrCreate(ctx context.Context, documentType string) (*numbering.NumberingRule, error) {
	rule, err := r.FindByDocumentType(ctx, documentType)
	if err == nil {
		return rule, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	rule, err = numbering.NewDefaultRule(documentType)
	if err != nil {
		return nil, err
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_type"}},
			DoNothing: true,
		}).
		Create(rule)
	if result.Error != nil {
		return nil, result.Error
	}

	// Lost the race: fetch the row the other transaction created
	if result.RowsAffected == 0 {
		return r.FindByDocumentType(ctx, documentType)
	}

	return rule, nil
}

// Create persists a new rule
func (r *GormNumberingRuleRepository) Create(ctx context.Context, rule *numbering.NumberingRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// Save persists the rule without a version check
func (r *GormNumberingRuleRepository) Save(ctx context.Context, rule *numbering.NumberingRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

// SaveWithLock saves with optimistic locking (checks version). The document
// type is immutable and deliberately excluded from the update set.
func (r *GormNumberingRuleRepository) SaveWithLock(ctx context.Context, rule *numbering.NumberingRule) error {
	result := r.db.WithContext(ctx).
		Model(rule).
		Where("id = ? AND version = ?", rule.ID, rule.Version-1).
		Updates(map[string]interface{}{
			"prefix":           rule.Prefix,
			"date_format":      rule.DateFormat,
			"sequence_length":  rule.SequenceLength,
			"reset_period":     rule.ResetPeriod,
			"current_sequence": rule.CurrentSequence,
			"last_issued_at":   rule.LastIssuedAt,
			"active":           rule.Active,
			"version":          rule.Version,
			"updated_at":       rule.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormNumberingRuleRepository implements RuleRepository
var _ numbering.RuleRepository = (*GormNumberingRuleRepository)(nil)
