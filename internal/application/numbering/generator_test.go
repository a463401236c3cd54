package numbering

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
)

// memoryRuleRepo is a map-backed rule repository. Reads hand out copies so
// the generator's retry loop sees persisted state, not its own mutations.
type memoryRuleRepo struct {
	mu            sync.Mutex
	rules         map[string]*numbering.NumberingRule
	conflictsLeft int
	// raceWinner, when set, plays the concurrent writer: the first
	// GetOrCreate for its document type returns this row instead of
	// inserting a fresh default rule.
	raceWinner *numbering.NumberingRule
}

func newMemoryRuleRepo() *memoryRuleRepo {
	return &memoryRuleRepo{rules: make(map[string]*numbering.NumberingRule)}
}

func ruleCopy(r *numbering.NumberingRule) *numbering.NumberingRule {
	c := *r
	if r.LastIssuedAt != nil {
		t := *r.LastIssuedAt
		c.LastIssuedAt = &t
	}
	return &c
}

func (r *memoryRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return ruleCopy(rule), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryRuleRepo) FindByDocumentType(_ context.Context, documentType string) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[documentType]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return ruleCopy(rule), nil
}

func (r *memoryRuleRepo) FindAll(_ context.Context) ([]numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []numbering.NumberingRule
	for _, rule := range r.rules {
		result = append(result, *rule)
	}
	return result, nil
}

func (r *memoryRuleRepo) GetOrCreate(_ context.Context, documentType string) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule, ok := r.rules[documentType]; ok {
		return ruleCopy(rule), nil
	}
	if r.raceWinner != nil && r.raceWinner.DocumentType == documentType {
		winner := r.raceWinner
		r.raceWinner = nil
		r.rules[documentType] = ruleCopy(winner)
		return ruleCopy(winner), nil
	}
	rule, err := numbering.NewDefaultRule(documentType)
	if err != nil {
		return nil, err
	}
	r.rules[documentType] = ruleCopy(rule)
	return ruleCopy(rule), nil
}

func (r *memoryRuleRepo) Create(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[rule.DocumentType]; exists {
		return shared.NewDomainError("VALIDATION_FAILURE", "Rule already exists for document type")
	}
	r.rules[rule.DocumentType] = ruleCopy(rule)
	return nil
}

func (r *memoryRuleRepo) Save(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.DocumentType] = ruleCopy(rule)
	return nil
}

func (r *memoryRuleRepo) SaveWithLock(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return shared.ErrConcurrencyConflict
	}
	r.rules[rule.DocumentType] = ruleCopy(rule)
	return nil
}

func TestGeneratorNext(t *testing.T) {
	ctx := context.Background()

	t.Run("lazily creates the default rule", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		gen := NewGenerator(zap.NewNop())

		number, err := gen.Next(ctx, repo, DocTypeOrder)

		require.NoError(t, err)
		expected := fmt.Sprintf("%s%s%04d", DocTypeOrder, time.Now().Format("20060102"), 1)
		assert.Equal(t, expected, number)

		rule, err := repo.FindByDocumentType(ctx, DocTypeOrder)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rule.CurrentSequence)
		assert.Equal(t, numbering.ResetPeriodDaily, rule.ResetPeriod)
	})

	t.Run("sequences increment across calls", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		gen := NewGenerator(zap.NewNop())

		issued := make(map[string]bool)
		for i := 0; i < 5; i++ {
			number, err := gen.Next(ctx, repo, DocTypeStockTransfer)
			require.NoError(t, err)
			assert.False(t, issued[number], "number %q issued twice", number)
			issued[number] = true
		}

		rule, err := repo.FindByDocumentType(ctx, DocTypeStockTransfer)
		require.NoError(t, err)
		assert.Equal(t, int64(5), rule.CurrentSequence)
	})

	t.Run("uses the configured rule format", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		rule, err := numbering.NewNumberingRule(DocTypePurchaseOrder, "PO-", "", 6, numbering.ResetPeriodNever)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, rule))
		gen := NewGenerator(zap.NewNop())

		number, err := gen.Next(ctx, repo, DocTypePurchaseOrder)

		require.NoError(t, err)
		assert.Equal(t, "PO-000001", number)
	})

	t.Run("retries after a counter conflict without skipping", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		repo.conflictsLeft = 1
		gen := NewGenerator(zap.NewNop())

		number, err := gen.Next(ctx, repo, DocTypeStockCount)

		require.NoError(t, err)
		rule, err := repo.FindByDocumentType(ctx, DocTypeStockCount)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rule.CurrentSequence)
		assert.Contains(t, number, "0001")
	})

	t.Run("surfaces conflict after exhausting retries", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		repo.conflictsLeft = maxCounterRetries
		gen := NewGenerator(zap.NewNop())

		_, err := gen.Next(ctx, repo, DocTypeStockAdjustment)

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("creation race continues from the winner's counter", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		winner, err := numbering.NewDefaultRule(DocTypePurchaseReceipt)
		require.NoError(t, err)
		// The concurrent writer already issued two numbers from its rule
		now := time.Now()
		winner.Next(now)
		winner.Next(now)
		repo.raceWinner = winner
		gen := NewGenerator(zap.NewNop())

		number, err := gen.Next(ctx, repo, DocTypePurchaseReceipt)

		require.NoError(t, err)
		assert.Contains(t, number, "0003")

		rule, err := repo.FindByDocumentType(ctx, DocTypePurchaseReceipt)
		require.NoError(t, err)
		assert.Equal(t, int64(3), rule.CurrentSequence)
	})

	t.Run("empty document type is rejected", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		gen := NewGenerator(zap.NewNop())

		_, err := gen.Next(ctx, repo, "")

		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrValidationFailure)
	})
}

func TestRuleService(t *testing.T) {
	ctx := context.Background()

	t.Run("create and update a rule", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		svc := NewService(repo, zap.NewNop())

		rule, err := svc.CreateRule(ctx, CreateRuleRequest{
			DocumentType:   DocTypeOrder,
			Prefix:         "SO-",
			DateFormat:     "200601",
			SequenceLength: 5,
			ResetPeriod:    "MONTHLY",
		})
		require.NoError(t, err)
		assert.True(t, rule.Active)
		assert.Equal(t, numbering.ResetPeriodMonthly, rule.ResetPeriod)

		updated, err := svc.UpdateRule(ctx, rule.ID, UpdateRuleRequest{
			Prefix:         "SO-",
			SequenceLength: 7,
			ResetPeriod:    "NEVER",
			Active:         false,
		})
		require.NoError(t, err)
		assert.Equal(t, 7, updated.SequenceLength)
		assert.False(t, updated.Active)

		rules, err := svc.ListRules(ctx)
		require.NoError(t, err)
		assert.Len(t, rules, 1)
	})

	t.Run("update of unknown rule returns not found", func(t *testing.T) {
		repo := newMemoryRuleRepo()
		svc := NewService(repo, zap.NewNop())

		_, err := svc.UpdateRule(ctx, uuid.New(), UpdateRuleRequest{
			SequenceLength: 4,
			ResetPeriod:    "DAILY",
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
