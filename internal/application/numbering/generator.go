package numbering

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
)

// Document types with numbering rules. The same strings are used as movement
// reference types, so a ledger row always names the document that caused it.
const (
	DocTypeOrder           = "Order"
	DocTypePurchaseOrder   = "PurchaseOrder"
	DocTypePurchaseReceipt = "PurchaseReceipt"
	DocTypePurchaseReturn  = "PurchaseReturn"
	DocTypeStockTransfer   = "StockTransfer"
	DocTypeStockAdjustment = "StockAdjustment"
	DocTypeStockCount      = "StockCount"
)

// maxCounterRetries bounds the optimistic-lock retry loop on a counter row
const maxCounterRetries = 3

// Generator issues document numbers from persisted counters. It is handed a
// transaction-scoped rule repository so the counter advance commits or rolls
// back together with the document the number is assigned to.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator creates a number generator
func NewGenerator(logger *zap.Logger) *Generator {
	return &Generator{logger: logger}
}

// Next returns the next number for a document type. A missing rule is
// created lazily with the default format <type><yyyyMMdd><seq>. The counter
// row is advanced under an optimistic version check; two calls within one
// reset period can never return the same string.
func (g *Generator) Next(ctx context.Context, repo numbering.RuleRepository, documentType string) (string, error) {
	if documentType == "" {
		return "", shared.NewDomainError("VALIDATION_FAILURE", "Document type cannot be empty")
	}

	for attempt := 0; attempt < maxCounterRetries; attempt++ {
		// GetOrCreate installs the default rule on first use; losing the
		// insert race yields the concurrent writer's row
		rule, err := repo.GetOrCreate(ctx, documentType)
		if err != nil {
			return "", err
		}

		number := rule.Next(time.Now())

		if err := repo.SaveWithLock(ctx, rule); err != nil {
			if errors.Is(err, shared.ErrConcurrencyConflict) {
				g.logger.Debug("numbering counter conflict, retrying",
					zap.String("document_type", documentType),
					zap.Int("attempt", attempt+1),
				)
				continue
			}
			return "", err
		}

		return number, nil
	}

	return "", shared.ErrConcurrencyConflict
}
