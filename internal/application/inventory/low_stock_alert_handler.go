package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/retailcore/backend/internal/domain/inventory"
	"github.com/retailcore/backend/internal/domain/shared"
)

// StockAlertNotifier is the interface for sending stock alerts.
// Implementations can support different channels (in-app, email, SMS, etc.)
type StockAlertNotifier interface {
	SendAlert(ctx context.Context, alert StockAlert) error
}

// StockAlert represents a low stock alert
type StockAlert struct {
	ProductID   string `json:"product_id"`
	WarehouseID string `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
	SafetyStock int64  `json:"safety_stock"`
	AlertType   string `json:"alert_type"` // "low_stock", "out_of_stock"
}

// LowStockAlertHandler listens for low stock events and forwards them to a
// notifier. Notification failures are logged, never propagated: an alert
// must not undo the stock movement that triggered it.
type LowStockAlertHandler struct {
	logger   *zap.Logger
	notifier StockAlertNotifier
}

// NewLowStockAlertHandler creates a new handler for low stock events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	return &LowStockAlertHandler{logger: logger}
}

// WithNotifier sets the notifier for sending alerts
func (h *LowStockAlertHandler) WithNotifier(notifier StockAlertNotifier) *LowStockAlertHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{inventory.EventTypeLowStock}
}

// Handle processes a LowStockEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	lowStockEvent, ok := event.(*inventory.LowStockEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", inventory.EventTypeLowStock),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			inventory.EventTypeLowStock, event.EventType())
	}

	alertType := "low_stock"
	if lowStockEvent.Quantity <= 0 {
		alertType = "out_of_stock"
	}

	h.logger.Warn("stock below safety threshold",
		zap.String("product_id", lowStockEvent.ProductID.String()),
		zap.String("warehouse_id", lowStockEvent.WarehouseID.String()),
		zap.Int64("quantity", lowStockEvent.Quantity),
		zap.Int64("safety_stock", lowStockEvent.SafetyStock),
		zap.String("alert_type", alertType),
	)

	if h.notifier == nil {
		return nil
	}

	alert := StockAlert{
		ProductID:   lowStockEvent.ProductID.String(),
		WarehouseID: lowStockEvent.WarehouseID.String(),
		Quantity:    lowStockEvent.Quantity,
		SafetyStock: lowStockEvent.SafetyStock,
		AlertType:   alertType,
	}

	if err := h.notifier.SendAlert(ctx, alert); err != nil {
		h.logger.Error("failed to send stock alert notification",
			zap.String("product_id", alert.ProductID),
			zap.Error(err),
		)
	}

	return nil
}

var _ shared.EventHandler = (*LowStockAlertHandler)(nil)

// LoggingStockAlertNotifier logs alerts instead of delivering them.
// Useful for development and as the default wiring.
type LoggingStockAlertNotifier struct {
	logger *zap.Logger
}

// NewLoggingStockAlertNotifier creates a new logging notifier
func NewLoggingStockAlertNotifier(logger *zap.Logger) *LoggingStockAlertNotifier {
	return &LoggingStockAlertNotifier{logger: logger}
}

// SendAlert logs the stock alert
func (n *LoggingStockAlertNotifier) SendAlert(_ context.Context, alert StockAlert) error {
	n.logger.Warn("STOCK ALERT",
		zap.String("type", alert.AlertType),
		zap.String("product_id", alert.ProductID),
		zap.String("warehouse_id", alert.WarehouseID),
		zap.Int64("quantity", alert.Quantity),
		zap.Int64("safety_stock", alert.SafetyStock),
	)
	return nil
}
