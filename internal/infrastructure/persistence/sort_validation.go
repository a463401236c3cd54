package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// BalanceSortFields contains allowed sort fields for stock balances
var BalanceSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"product_id":        true,
	"warehouse_id":      true,
	"quantity":          true,
	"reserved_quantity": true,
	"safety_stock":      true,
}

// MovementSortFields contains allowed sort fields for stock movements
var MovementSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"occurred_at":      true,
	"product_id":       true,
	"warehouse_id":     true,
	"kind":             true,
	"quantity":         true,
	"reference_type":   true,
	"reference_number": true,
}

// OrderSortFields contains allowed sort fields for sales orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"customer_id":  true,
	"status":       true,
	"total_amount": true,
	"completed_at": true,
}

// PurchaseOrderSortFields contains allowed sort fields for purchase orders
var PurchaseOrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"supplier_id":  true,
	"warehouse_id": true,
	"status":       true,
	"total_amount": true,
	"approved_at":  true,
}

// ReceiptSortFields contains allowed sort fields for purchase receipts
var ReceiptSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"receipt_number":    true,
	"purchase_order_id": true,
	"warehouse_id":      true,
	"received_at":       true,
}

// ReturnSortFields contains allowed sort fields for purchase returns
var ReturnSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"return_number": true,
	"supplier_id":   true,
	"warehouse_id":  true,
	"status":        true,
	"confirmed_at":  true,
	"completed_at":  true,
}

// TransferSortFields contains allowed sort fields for stock transfers
var TransferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"source_id":       true,
	"destination_id":  true,
	"status":          true,
	"shipped_at":      true,
	"received_at":     true,
}

// AdjustmentSortFields contains allowed sort fields for stock adjustments
var AdjustmentSortFields = map[string]bool{
	"id":                true,
	"created_at":        true,
	"updated_at":        true,
	"adjustment_number": true,
	"warehouse_id":      true,
	"reason":            true,
}

// CountSortFields contains allowed sort fields for stock counts
var CountSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"count_number": true,
	"warehouse_id": true,
	"status":       true,
	"completed_at": true,
}
