package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrEvenSplitNeedsAmount is returned when an even split is requested without
// a positive total. It is an operational refusal, not a validation error.
var ErrEvenSplitNeedsAmount = errors.New("enter a valid amount before splitting evenly")

// ErrNoParticipants is returned when there is nobody to split between.
var ErrNoParticipants = errors.New("must have at least one participant")

// currencyPlaces is the number of fractional digits kept for shares.
const currencyPlaces = 2

// EvenSplit divides amount equally among participants.
//
// Each share is amount / N rounded to two decimal places. The rounding
// remainder (amount - sum of rounded shares) goes entirely to the first
// participant so the shares add up to amount exactly:
//
//	10.00 among 3 -> 3.34, 3.33, 3.33
func EvenSplit(amount decimal.NullDecimal, participants []models.Participant) (map[models.Participant]decimal.Decimal, error) {
	if !amount.Valid || !amount.Decimal.IsPositive() {
		return nil, ErrEvenSplitNeedsAmount
	}
	if len(participants) == 0 {
		return nil, ErrNoParticipants
	}

	total := amount.Decimal
	n := decimal.NewFromInt(int64(len(participants)))
	share := total.DivRound(n, currencyPlaces)
	remainder := total.Sub(share.Mul(n))

	splits := make(map[models.Participant]decimal.Decimal, len(participants))
	for _, p := range participants {
		splits[p] = share
	}
	first := participants[0]
	splits[first] = splits[first].Add(remainder)

	return splits, nil
}
