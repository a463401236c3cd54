package inventory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	numberingapp "github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/stock"
)

// Map-backed repository fakes shared by the service tests in this package.
// GetOrCreate and FindByDocumentType hand out copies so the optimistic-lock
// retry loops see the persisted state, not their own in-flight mutations.

func balanceKey(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

type fakeBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]*inventory.Balance
	// conflictsLeft forces SaveWithLock to fail that many times first
	conflictsLeft int
	saveCalls     int
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[string]*inventory.Balance)}
}

func (r *fakeBalanceRepo) seed(productID, warehouseID uuid.UUID, quantity int64) *inventory.Balance {
	b, _ := inventory.NewBalance(productID, warehouseID)
	b.Quantity = quantity
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey(productID, warehouseID)] = b
	return b
}

func copyBalance(b *inventory.Balance) *inventory.Balance {
	c := *b
	return &c
}

func (r *fakeBalanceRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.balances {
		if b.ID == id {
			return copyBalance(b), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeBalanceRepo) FindByProductAndWarehouse(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[balanceKey(productID, warehouseID)]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copyBalance(b), nil
}

func (r *fakeBalanceRepo) GetOrCreate(_ context.Context, productID, warehouseID uuid.UUID) (*inventory.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.balances[balanceKey(productID, warehouseID)]; ok {
		return copyBalance(b), nil
	}
	b, err := inventory.NewBalance(productID, warehouseID)
	if err != nil {
		return nil, err
	}
	r.balances[balanceKey(productID, warehouseID)] = b
	return copyBalance(b), nil
}

func (r *fakeBalanceRepo) FindByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]inventory.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.Balance
	for _, b := range r.balances {
		if b.WarehouseID == warehouseID {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (r *fakeBalanceRepo) FindPositiveByWarehouse(_ context.Context, warehouseID uuid.UUID) ([]inventory.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.Balance
	for _, b := range r.balances {
		if b.WarehouseID == warehouseID && b.Quantity > 0 {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (r *fakeBalanceRepo) FindBelowSafetyStock(_ context.Context) ([]inventory.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.Balance
	for _, b := range r.balances {
		if b.IsBelowSafetyStock() {
			result = append(result, *b)
		}
	}
	return result, nil
}

func (r *fakeBalanceRepo) Save(_ context.Context, balance *inventory.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey(balance.ProductID, balance.WarehouseID)] = copyBalance(balance)
	return nil
}

func (r *fakeBalanceRepo) SaveWithLock(_ context.Context, balance *inventory.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return shared.ErrConcurrencyConflict
	}
	r.balances[balanceKey(balance.ProductID, balance.WarehouseID)] = copyBalance(balance)
	return nil
}

// quantity reads the persisted quantity for assertions
func (r *fakeBalanceRepo) quantity(productID, warehouseID uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.balances[balanceKey(productID, warehouseID)]; ok {
		return b.Quantity
	}
	return 0
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []*inventory.Movement
}

func newFakeMovementRepo() *fakeMovementRepo {
	return &fakeMovementRepo{}
}

func (r *fakeMovementRepo) Create(_ context.Context, movement *inventory.Movement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.movements = append(r.movements, movement)
	return nil
}

func (r *fakeMovementRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.movements {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMovementRepo) Search(_ context.Context, query inventory.MovementQuery) (shared.Paginated[inventory.Movement], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []inventory.Movement
	for _, m := range r.movements {
		if query.ProductID != nil && m.ProductID != *query.ProductID {
			continue
		}
		if query.WarehouseID != nil && m.WarehouseID != *query.WarehouseID {
			continue
		}
		if query.Kind != nil && m.Kind != *query.Kind {
			continue
		}
		items = append(items, *m)
	}
	return shared.Paginated[inventory.Movement]{
		Items:    items,
		Total:    int64(len(items)),
		Page:     1,
		PageSize: len(items),
	}, nil
}

func (r *fakeMovementRepo) SumQuantity(_ context.Context, productID, warehouseID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var sum int64
	for _, m := range r.movements {
		if m.ProductID == productID && m.WarehouseID == warehouseID {
			sum += m.Quantity
		}
	}
	return sum, nil
}

func (r *fakeMovementRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.movements)
}

func (r *fakeMovementRepo) last() *inventory.Movement {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.movements) == 0 {
		return nil
	}
	return r.movements[len(r.movements)-1]
}

type fakeAdjustmentRepo struct {
	mu          sync.Mutex
	adjustments map[uuid.UUID]*inventory.StockAdjustment
}

func newFakeAdjustmentRepo() *fakeAdjustmentRepo {
	return &fakeAdjustmentRepo{adjustments: make(map[uuid.UUID]*inventory.StockAdjustment)}
}

func (r *fakeAdjustmentRepo) Create(_ context.Context, adjustment *inventory.StockAdjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustments[adjustment.ID] = adjustment
	return nil
}

func (r *fakeAdjustmentRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if adj, ok := r.adjustments[id]; ok {
		return adj, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeAdjustmentRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockAdjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.StockAdjustment
	for _, adj := range r.adjustments {
		result = append(result, *adj)
	}
	return result, nil
}

func (r *fakeAdjustmentRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.adjustments)), nil
}

type fakeCountRepo struct {
	mu     sync.Mutex
	counts map[uuid.UUID]*inventory.StockCount
}

func newFakeCountRepo() *fakeCountRepo {
	return &fakeCountRepo{counts: make(map[uuid.UUID]*inventory.StockCount)}
}

func (r *fakeCountRepo) Create(_ context.Context, count *inventory.StockCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[count.ID] = count
	return nil
}

func (r *fakeCountRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sc, ok := r.counts[id]; ok {
		return sc, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeCountRepo) Save(_ context.Context, count *inventory.StockCount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[count.ID] = count
	return nil
}

func (r *fakeCountRepo) FindAll(_ context.Context, _ shared.Filter) ([]inventory.StockCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []inventory.StockCount
	for _, sc := range r.counts {
		result = append(result, *sc)
	}
	return result, nil
}

func (r *fakeCountRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.counts)), nil
}

type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]*stock.StockTransfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uuid.UUID]*stock.StockTransfer)}
}

func (r *fakeTransferRepo) Create(_ context.Context, transfer *stock.StockTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[transfer.ID] = transfer
	return nil
}

func (r *fakeTransferRepo) FindByID(_ context.Context, id uuid.UUID) (*stock.StockTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.transfers[id]; ok {
		return t, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTransferRepo) FindByNumber(_ context.Context, transferNumber string) (*stock.StockTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.transfers {
		if t.TransferNumber == transferNumber {
			return t, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeTransferRepo) Save(_ context.Context, transfer *stock.StockTransfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[transfer.ID] = transfer
	return nil
}

func (r *fakeTransferRepo) FindAll(_ context.Context, _ shared.Filter) ([]stock.StockTransfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []stock.StockTransfer
	for _, t := range r.transfers {
		result = append(result, *t)
	}
	return result, nil
}

func (r *fakeTransferRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.transfers)), nil
}

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules map[string]*numbering.NumberingRule
	// conflictsLeft forces SaveWithLock to fail that many times first
	conflictsLeft int
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[string]*numbering.NumberingRule)}
}

func copyRule(r *numbering.NumberingRule) *numbering.NumberingRule {
	c := *r
	if r.LastIssuedAt != nil {
		t := *r.LastIssuedAt
		c.LastIssuedAt = &t
	}
	return &c
}

func (r *fakeRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return copyRule(rule), nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRuleRepo) FindByDocumentType(_ context.Context, documentType string) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rule, ok := r.rules[documentType]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return copyRule(rule), nil
}

func (r *fakeRuleRepo) FindAll(_ context.Context) ([]numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []numbering.NumberingRule
	for _, rule := range r.rules {
		result = append(result, *rule)
	}
	return result, nil
}

func (r *fakeRuleRepo) GetOrCreate(_ context.Context, documentType string) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule, ok := r.rules[documentType]; ok {
		return copyRule(rule), nil
	}
	rule, err := numbering.NewDefaultRule(documentType)
	if err != nil {
		return nil, err
	}
	r.rules[documentType] = copyRule(rule)
	return copyRule(rule), nil
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[rule.DocumentType]; exists {
		return shared.NewDomainError("VALIDATION_FAILURE", "Rule already exists for document type")
	}
	r.rules[rule.DocumentType] = copyRule(rule)
	return nil
}

func (r *fakeRuleRepo) Save(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.DocumentType] = copyRule(rule)
	return nil
}

func (r *fakeRuleRepo) SaveWithLock(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictsLeft > 0 {
		r.conflictsLeft--
		return shared.ErrConcurrencyConflict
	}
	r.rules[rule.DocumentType] = copyRule(rule)
	return nil
}

// capturingPublisher collects published events for assertions
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

// newTestGenerator returns a document number generator for service tests
func newTestGenerator(log *zap.Logger) *numberingapp.Generator {
	return numberingapp.NewGenerator(log)
}

// testRepos bundles the fakes behind a no-op transaction scope
type testRepos struct {
	balances  *fakeBalanceRepo
	movements *fakeMovementRepo
	adjusts   *fakeAdjustmentRepo
	counts    *fakeCountRepo
	transfers *fakeTransferRepo
	rules     *fakeRuleRepo
	scope     *NoOpTransactionScope
}

func newTestRepos() *testRepos {
	tr := &testRepos{
		balances:  newFakeBalanceRepo(),
		movements: newFakeMovementRepo(),
		adjusts:   newFakeAdjustmentRepo(),
		counts:    newFakeCountRepo(),
		transfers: newFakeTransferRepo(),
		rules:     newFakeRuleRepo(),
	}
	tr.scope = NewNoOpTransactionScope(RepositorySet{
		Balances:       tr.balances,
		Movements:      tr.movements,
		Adjustments:    tr.adjusts,
		Counts:         tr.counts,
		Transfers:      tr.transfers,
		NumberingRules: tr.rules,
	})
	return tr
}
