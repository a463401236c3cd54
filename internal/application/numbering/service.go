package numbering

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
)

// CreateRuleRequest creates a numbering rule for a document type
type CreateRuleRequest struct {
	DocumentType   string `json:"document_type" binding:"required"`
	Prefix         string `json:"prefix"`
	DateFormat     string `json:"date_format"`
	SequenceLength int    `json:"sequence_length" binding:"required,min=1,max=10"`
	ResetPeriod    string `json:"reset_period" binding:"required,oneof=DAILY MONTHLY YEARLY NEVER"`
}

// UpdateRuleRequest changes a rule's formatting settings
type UpdateRuleRequest struct {
	Prefix         string `json:"prefix"`
	DateFormat     string `json:"date_format"`
	SequenceLength int    `json:"sequence_length" binding:"required,min=1,max=10"`
	ResetPeriod    string `json:"reset_period" binding:"required,oneof=DAILY MONTHLY YEARLY NEVER"`
	Active         bool   `json:"active"`
}

// Service manages numbering rules outside of document transactions
type Service struct {
	ruleRepo numbering.RuleRepository
	logger   *zap.Logger
}

// NewService creates a numbering rule service
func NewService(ruleRepo numbering.RuleRepository, logger *zap.Logger) *Service {
	return &Service{ruleRepo: ruleRepo, logger: logger}
}

// ListRules returns all numbering rules
func (s *Service) ListRules(ctx context.Context) ([]numbering.NumberingRule, error) {
	return s.ruleRepo.FindAll(ctx)
}

// GetRule returns one rule by ID
func (s *Service) GetRule(ctx context.Context, id uuid.UUID) (*numbering.NumberingRule, error) {
	return s.ruleRepo.FindByID(ctx, id)
}

// CreateRule creates a rule for a document type that has none yet
func (s *Service) CreateRule(ctx context.Context, req CreateRuleRequest) (*numbering.NumberingRule, error) {
	if existing, err := s.ruleRepo.FindByDocumentType(ctx, req.DocumentType); err == nil && existing != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "A numbering rule already exists for this document type")
	}

	rule, err := numbering.NewNumberingRule(req.DocumentType, req.Prefix, req.DateFormat, req.SequenceLength, numbering.ResetPeriod(req.ResetPeriod))
	if err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}

	s.logger.Info("numbering rule created",
		zap.String("document_type", rule.DocumentType),
		zap.String("prefix", rule.Prefix),
	)

	return rule, nil
}

// UpdateRule changes a rule's formatting settings; the counter keeps running
func (s *Service) UpdateRule(ctx context.Context, id uuid.UUID, req UpdateRuleRequest) (*numbering.NumberingRule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := rule.Update(req.Prefix, req.DateFormat, req.SequenceLength, numbering.ResetPeriod(req.ResetPeriod), req.Active); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	return rule, nil
}
