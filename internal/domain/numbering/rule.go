package numbering

import (
	"fmt"
	"time"

	"github.com/retailcore/backend/internal/domain/shared"
)

// ResetPeriod controls when a rule's sequence counter restarts
type ResetPeriod string

const (
	ResetPeriodDaily   ResetPeriod = "DAILY"
	ResetPeriodMonthly ResetPeriod = "MONTHLY"
	ResetPeriodYearly  ResetPeriod = "YEARLY"
	ResetPeriodNever   ResetPeriod = "NEVER"
)

// IsValid checks if the period is a valid ResetPeriod
func (p ResetPeriod) IsValid() bool {
	switch p {
	case ResetPeriodDaily, ResetPeriodMonthly, ResetPeriodYearly, ResetPeriodNever:
		return true
	}
	return false
}

// String returns the string representation of ResetPeriod
func (p ResetPeriod) String() string {
	return string(p)
}

// NumberingRule issues document numbers from a persisted counter. One rule
// exists per document type; the counter row is advanced under the same
// optimistic version check as stock balances, which is what makes issued
// numbers unique within a reset period.
type NumberingRule struct {
	shared.BaseAggregateRoot
	DocumentType    string      `gorm:"type:varchar(30);not null;uniqueIndex"`
	Prefix          string      `gorm:"type:varchar(20);not null"`
	DateFormat      string      `gorm:"type:varchar(20)"` // Go time layout, empty omits the date part
	SequenceLength  int         `gorm:"not null;default:4"`
	ResetPeriod     ResetPeriod `gorm:"type:varchar(10);not null"`
	CurrentSequence int64       `gorm:"not null;default:0"`
	LastIssuedAt    *time.Time
	Active          bool `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (NumberingRule) TableName() string {
	return "numbering_rules"
}

// NewNumberingRule creates a rule for a document type
func NewNumberingRule(documentType, prefix, dateFormat string, sequenceLength int, resetPeriod ResetPeriod) (*NumberingRule, error) {
	if documentType == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Document type cannot be empty")
	}
	if sequenceLength <= 0 {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Sequence length must be positive")
	}
	if !resetPeriod.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_FAILURE", "Invalid reset period")
	}

	return &NumberingRule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DocumentType:      documentType,
		Prefix:            prefix,
		DateFormat:        dateFormat,
		SequenceLength:    sequenceLength,
		ResetPeriod:       resetPeriod,
		Active:            true,
	}, nil
}

// NewDefaultRule creates the rule used when a document type has none yet:
// the type itself as prefix, a daily-reset date stamp and a 4-digit sequence.
func NewDefaultRule(documentType string) (*NumberingRule, error) {
	return NewNumberingRule(documentType, documentType, "20060102", 4, ResetPeriodDaily)
}

// shouldReset reports whether the counter restarts at the given time
func (r *NumberingRule) shouldReset(now time.Time) bool {
	if r.LastIssuedAt == nil {
		return false
	}
	last := *r.LastIssuedAt
	switch r.ResetPeriod {
	case ResetPeriodDaily:
		return last.Year() != now.Year() || last.YearDay() != now.YearDay()
	case ResetPeriodMonthly:
		return last.Year() != now.Year() || last.Month() != now.Month()
	case ResetPeriodYearly:
		return last.Year() != now.Year()
	}
	return false
}

// Next advances the counter and returns the formatted document number.
// The caller must persist the rule with a version check in the same
// transaction as the document the number is assigned to.
func (r *NumberingRule) Next(now time.Time) string {
	if r.shouldReset(now) {
		r.CurrentSequence = 0
	}
	r.CurrentSequence++
	r.LastIssuedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	datePart := ""
	if r.DateFormat != "" {
		datePart = now.Format(r.DateFormat)
	}
	return fmt.Sprintf("%s%s%0*d", r.Prefix, datePart, r.SequenceLength, r.CurrentSequence)
}

// Update changes the rule's formatting settings. The counter is left alone so
// already-issued numbers stay unique.
func (r *NumberingRule) Update(prefix, dateFormat string, sequenceLength int, resetPeriod ResetPeriod, active bool) error {
	if sequenceLength <= 0 {
		return shared.NewDomainError("VALIDATION_FAILURE", "Sequence length must be positive")
	}
	if !resetPeriod.IsValid() {
		return shared.NewDomainError("VALIDATION_FAILURE", "Invalid reset period")
	}

	r.Prefix = prefix
	r.DateFormat = dateFormat
	r.SequenceLength = sequenceLength
	r.ResetPeriod = resetPeriod
	r.Active = active
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}
