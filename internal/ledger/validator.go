package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Field names used to tag validation errors.
const (
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldPayer       = "payer"
	FieldSplit       = "split"
)

// Draft is an expense submission that has not been admitted yet.
type Draft struct {
	Description string
	Amount      decimal.NullDecimal // Invalid when the amount was left empty
	Payer       models.Participant
	Split       map[models.Participant]decimal.Decimal
}

// FieldError is a single validation failure tied to a form field.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Message
}

// ValidationErrors collects every problem found in a draft.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "invalid expense: " + strings.Join(msgs, "; ")
}

// Fields returns the distinct field names that failed, in check order.
func (v ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool, len(v))
	for _, e := range v {
		if !seen[e.Field] {
			seen[e.Field] = true
			fields = append(fields, e.Field)
		}
	}
	return fields
}

// Validate checks a draft against the participant set.
//
// All checks run; failures accumulate so every problem can be shown at
// once. It returns nil or a ValidationErrors value.
func Validate(participants models.ParticipantSet, d Draft) error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(d.Description) == "" {
		add(FieldDescription, "description is required")
	}

	if !d.Amount.Valid {
		add(FieldAmount, "amount is required")
	} else if !d.Amount.Decimal.IsPositive() {
		add(FieldAmount, "amount must be greater than zero")
	} else if !d.Amount.Decimal.Equal(d.Amount.Decimal.Round(2)) {
		add(FieldAmount, "amount can have at most two decimal places")
	}

	if !participants.Contains(d.Payer) {
		if d.Payer == "" {
			add(FieldPayer, "select who paid")
		} else {
			add(FieldPayer, "payer %q is not a participant", d.Payer)
		}
	}

	var missing []string
	for _, p := range participants.Members() {
		share, ok := d.Split[p]
		if !ok {
			missing = append(missing, string(p))
			continue
		}
		if share.IsNegative() {
			add(FieldSplit, "share for %s cannot be negative", p)
		}
	}
	if len(missing) > 0 {
		add(FieldSplit, "enter a share for %s", strings.Join(missing, ", "))
	}
	for _, p := range sortedKeys(d.Split) {
		if !participants.Contains(p) {
			add(FieldSplit, "%q is not a participant", p)
		}
	}

	if d.Amount.Valid {
		sum := models.SumShares(d.Split)
		if !models.WithinEpsilon(sum, d.Amount.Decimal) {
			add(FieldSplit, "split total %s does not match amount %s",
				sum.StringFixed(2), d.Amount.Decimal.StringFixed(2))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func sortedKeys(split map[models.Participant]decimal.Decimal) []models.Participant {
	keys := make([]models.Participant, 0, len(split))
	for p := range split {
		keys = append(keys, p)
	}
	slices.Sort(keys)
	return keys
}
