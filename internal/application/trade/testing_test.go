package trade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	invapp "github.com/retailcore/backend/internal/application/inventory"
	numberingapp "github.com/retailcore/backend/internal/application/numbering"
	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/numbering"
	"github.com/retailcore/backend/internal/domain/shared"
	"github.com/retailcore/backend/internal/domain/trade"
)

// Map-backed repository fakes shared by the service tests in this package.

type fakeBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]*inventory.Balance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[string]*inventory.Balance)}
}

func balanceKey(productID, warehouseID uuid.UUID) string {
	return productID.String() + "/" + warehouseID.String()
}

func copyBalance(b *inventory.Balance) *inventory.Balance {
	c := *b
	return &c
}

func (r *fakeBalanceRepo) seed(productID, warehouseID uuid.UUID, quantity int64) {
	b, _ := inventory.NewBalance(productID, warehouseID)
	b.Quantity = quantity
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey(productID, warehouseID)] = b
}

func (r *fakeBalanceRepo) quantity(productID, warehouseID uuid.UUID) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.balances[balanceKey(productID, warehouseID)]; ok {
		return b.Quantity
	}
	return 0
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
	if b, ok := r.balances[balanceKey(productID, warehouseID)]; ok {
		return copyBalance(b), nil
	}
	return nil, shared.ErrNotFound
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
	return nil, nil
}

func (r *fakeBalanceRepo) Save(_ context.Context, balance *inventory.Balance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[balanceKey(balance.ProductID, balance.WarehouseID)] = copyBalance(balance)
	return nil
}

func (r *fakeBalanceRepo) SaveWithLock(_ context.Context, balance *inventory.Balance) error {
	return r.Save(context.Background(), balance)
}

type fakeMovementRepo struct {
	mu        sync.Mutex
	movements []*inventory.Movement
}

func newFakeMovementRepo() *fakeMovementRepo { return &fakeMovementRepo{} }

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

func (r *fakeMovementRepo) Search(_ context.Context, _ inventory.MovementQuery) (shared.Paginated[inventory.Movement], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]inventory.Movement, 0, len(r.movements))
	for _, m := range r.movements {
		items = append(items, *m)
	}
	return shared.Paginated[inventory.Movement]{Items: items, Total: int64(len(items))}, nil
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

func (r *fakeMovementRepo) byReference(referenceType string) []*inventory.Movement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*inventory.Movement
	for _, m := range r.movements {
		if m.ReferenceType == referenceType {
			result = append(result, m)
		}
	}
	return result
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*trade.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.orders[id]; ok {
		return o, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) FindByNumber(_ context.Context, orderNumber string) (*trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNumber == orderNumber {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeOrderRepo) Save(_ context.Context, order *trade.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]trade.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []trade.Order
	for _, o := range r.orders {
		result = append(result, *o)
	}
	return result, nil
}

func (r *fakeOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

type fakePurchaseOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*trade.PurchaseOrder
}

func newFakePurchaseOrderRepo() *fakePurchaseOrderRepo {
	return &fakePurchaseOrderRepo{orders: make(map[uuid.UUID]*trade.PurchaseOrder)}
}

func (r *fakePurchaseOrderRepo) Create(_ context.Context, order *trade.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakePurchaseOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if po, ok := r.orders[id]; ok {
		return po, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakePurchaseOrderRepo) FindByNumber(_ context.Context, orderNumber string) (*trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, po := range r.orders {
		if po.OrderNumber == orderNumber {
			return po, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakePurchaseOrderRepo) Save(_ context.Context, order *trade.PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[order.ID] = order
	return nil
}

func (r *fakePurchaseOrderRepo) FindAll(_ context.Context, _ shared.Filter) ([]trade.PurchaseOrder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []trade.PurchaseOrder
	for _, po := range r.orders {
		result = append(result, *po)
	}
	return result, nil
}

func (r *fakePurchaseOrderRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

type fakeReceiptRepo struct {
	mu       sync.Mutex
	receipts map[uuid.UUID]*trade.PurchaseReceipt
}

func newFakeReceiptRepo() *fakeReceiptRepo {
	return &fakeReceiptRepo{receipts: make(map[uuid.UUID]*trade.PurchaseReceipt)}
}

func (r *fakeReceiptRepo) Create(_ context.Context, receipt *trade.PurchaseReceipt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts[receipt.ID] = receipt
	return nil
}

func (r *fakeReceiptRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.receipts[id]; ok {
		return rec, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeReceiptRepo) FindByPurchaseOrder(_ context.Context, purchaseOrderID uuid.UUID) ([]trade.PurchaseReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []trade.PurchaseReceipt
	for _, rec := range r.receipts {
		if rec.PurchaseOrderID == purchaseOrderID {
			result = append(result, *rec)
		}
	}
	return result, nil
}

func (r *fakeReceiptRepo) FindAll(_ context.Context, _ shared.Filter) ([]trade.PurchaseReceipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []trade.PurchaseReceipt
	for _, rec := range r.receipts {
		result = append(result, *rec)
	}
	return result, nil
}

func (r *fakeReceiptRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.receipts)), nil
}

func (r *fakeReceiptRepo) StatsForDay(_ context.Context, day time.Time) (*trade.ReceiptDayStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &trade.ReceiptDayStats{}
	for _, rec := range r.receipts {
		if rec.CreatedAt.Year() == day.Year() && rec.CreatedAt.YearDay() == day.YearDay() {
			stats.ReceiptCount++
			stats.TotalQuantity += rec.TotalQuantity()
		}
	}
	return stats, nil
}

type fakeReturnRepo struct {
	mu      sync.Mutex
	returns map[uuid.UUID]*trade.PurchaseReturn
}

func newFakeReturnRepo() *fakeReturnRepo {
	return &fakeReturnRepo{returns: make(map[uuid.UUID]*trade.PurchaseReturn)}
}

func (r *fakeReturnRepo) Create(_ context.Context, ret *trade.PurchaseReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.returns[ret.ID] = ret
	return nil
}

func (r *fakeReturnRepo) FindByID(_ context.Context, id uuid.UUID) (*trade.PurchaseReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if pr, ok := r.returns[id]; ok {
		return pr, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeReturnRepo) Save(_ context.Context, ret *trade.PurchaseReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.returns[ret.ID] = ret
	return nil
}

func (r *fakeReturnRepo) FindAll(_ context.Context, _ shared.Filter) ([]trade.PurchaseReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []trade.PurchaseReturn
	for _, pr := range r.returns {
		result = append(result, *pr)
	}
	return result, nil
}

func (r *fakeReturnRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.returns)), nil
}

type fakeRuleRepo struct {
	mu    sync.Mutex
	rules map[string]*numbering.NumberingRule
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: make(map[string]*numbering.NumberingRule)}
}

func (r *fakeRuleRepo) FindByID(_ context.Context, id uuid.UUID) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rule := range r.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeRuleRepo) FindByDocumentType(_ context.Context, documentType string) (*numbering.NumberingRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rule, ok := r.rules[documentType]; ok {
		return rule, nil
	}
	return nil, shared.ErrNotFound
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
		return rule, nil
	}
	rule, err := numbering.NewDefaultRule(documentType)
	if err != nil {
		return nil, err
	}
	r.rules[documentType] = rule
	return rule, nil
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.rules[rule.DocumentType]; exists {
		return shared.NewDomainError("VALIDATION_FAILURE", "Rule already exists for document type")
	}
	r.rules[rule.DocumentType] = rule
	return nil
}

func (r *fakeRuleRepo) Save(_ context.Context, rule *numbering.NumberingRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[rule.DocumentType] = rule
	return nil
}

func (r *fakeRuleRepo) SaveWithLock(_ context.Context, rule *numbering.NumberingRule) error {
	return r.Save(context.Background(), rule)
}

// memIdempotency is a map-backed idempotency store for tests
type memIdempotency struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{keys: make(map[string]bool)}
}

func (s *memIdempotency) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memIdempotency) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memIdempotency) Close() error { return nil }

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

// testRepos bundles the fakes behind a no-op transaction scope
type testRepos struct {
	balances  *fakeBalanceRepo
	movements *fakeMovementRepo
	orders    *fakeOrderRepo
	pos       *fakePurchaseOrderRepo
	receipts  *fakeReceiptRepo
	returns   *fakeReturnRepo
	rules     *fakeRuleRepo
	scope     *invapp.NoOpTransactionScope
}

func newTestRepos() *testRepos {
	tr := &testRepos{
		balances:  newFakeBalanceRepo(),
		movements: newFakeMovementRepo(),
		orders:    newFakeOrderRepo(),
		pos:       newFakePurchaseOrderRepo(),
		receipts:  newFakeReceiptRepo(),
		returns:   newFakeReturnRepo(),
		rules:     newFakeRuleRepo(),
	}
	tr.scope = invapp.NewNoOpTransactionScope(invapp.RepositorySet{
		Balances:       tr.balances,
		Movements:      tr.movements,
		Orders:         tr.orders,
		PurchaseOrders: tr.pos,
		Receipts:       tr.receipts,
		Returns:        tr.returns,
		NumberingRules: tr.rules,
	})
	return tr
}

func newTestLedger() *invapp.LedgerService {
	return invapp.NewLedgerService(nil, zap.NewNop())
}

func newTestGenerator() *numberingapp.Generator {
	return numberingapp.NewGenerator(zap.NewNop())
}
