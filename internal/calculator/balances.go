package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberBalance represents the balance information for one participant.
type MemberBalance struct {
	Participant models.Participant
	Net         decimal.Decimal // Positive = owed money, Negative = owes money
	Paid        decimal.Decimal // Total amount paid across all expenses
	Owed        decimal.Decimal // Total of this participant's shares
}

// Transfer is a suggested payment that moves balances toward zero.
type Transfer struct {
	From   models.Participant // Person who owes
	To     models.Participant // Person who is owed
	Amount decimal.Decimal
}

// settleThreshold is the smallest amount worth suggesting as a transfer.
var settleThreshold = decimal.RequireFromString("0.01")

// Balances replays every expense and returns the net balance per participant.
//
// Algorithm:
// - Every participant starts at zero
// - For each expense: payer += amount
// - For each share in the split: participant -= share
//
// The payer's own share nets against what they paid. Because every unit
// credited to a payer is debited across the split, the balances always sum
// to zero (within Epsilon per expense).
func Balances(participants models.ParticipantSet, expenses []models.Expense) map[models.Participant]decimal.Decimal {
	balances := make(map[models.Participant]decimal.Decimal, participants.Len())
	for _, p := range participants.Members() {
		balances[p] = decimal.Zero
	}

	for _, e := range expenses {
		balances[e.Payer] = balances[e.Payer].Add(e.Amount)
		for p, share := range e.Split {
			balances[p] = balances[p].Sub(share)
		}
	}

	return balances
}

// Summarize returns paid, owed and net totals for every participant in
// enumeration order.
func Summarize(participants models.ParticipantSet, expenses []models.Expense) []MemberBalance {
	summary := make(map[models.Participant]*MemberBalance, participants.Len())
	for _, p := range participants.Members() {
		summary[p] = &MemberBalance{Participant: p}
	}
	member := func(p models.Participant) *MemberBalance {
		if _, exists := summary[p]; !exists {
			summary[p] = &MemberBalance{Participant: p}
		}
		return summary[p]
	}

	for _, e := range expenses {
		payer := member(e.Payer)
		payer.Paid = payer.Paid.Add(e.Amount)
		for p, share := range e.Split {
			m := member(p)
			m.Owed = m.Owed.Add(share)
		}
	}

	out := make([]MemberBalance, 0, len(summary))
	for _, m := range summary {
		m.Net = m.Paid.Sub(m.Owed)
		out = append(out, *m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessByPosition(participants, out[i].Participant, out[j].Participant)
	})
	return out
}

// SuggestTransfers matches debtors with creditors to settle every balance.
//
// Greedy: the largest debt is paid to the largest credit until one side is
// settled, then the next pair is taken. Ties keep enumeration order.
// Amounts below one cent are treated as settled.
func SuggestTransfers(participants models.ParticipantSet, summary []MemberBalance) []Transfer {
	type entry struct {
		who    models.Participant
		amount decimal.Decimal
	}

	var creditors, debtors []entry
	for _, m := range summary {
		if m.Net.GreaterThanOrEqual(settleThreshold) {
			creditors = append(creditors, entry{m.Participant, m.Net})
		} else if m.Net.Neg().GreaterThanOrEqual(settleThreshold) {
			debtors = append(debtors, entry{m.Participant, m.Net.Neg()})
		}
	}

	byAmount := func(list []entry) func(i, j int) bool {
		return func(i, j int) bool {
			if c := list[i].amount.Cmp(list[j].amount); c != 0 {
				return c > 0
			}
			return lessByPosition(participants, list[i].who, list[j].who)
		}
	}
	sort.SliceStable(creditors, byAmount(creditors))
	sort.SliceStable(debtors, byAmount(debtors))

	var transfers []Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		// Amount to settle is minimum of what debtor owes and creditor is owed
		amount := decimal.Min(debtors[i].amount, creditors[j].amount)

		if amount.GreaterThanOrEqual(settleThreshold) {
			transfers = append(transfers, Transfer{
				From:   debtors[i].who,
				To:     creditors[j].who,
				Amount: amount,
			})
		}

		debtors[i].amount = debtors[i].amount.Sub(amount)
		creditors[j].amount = creditors[j].amount.Sub(amount)

		if debtors[i].amount.LessThan(settleThreshold) {
			i++
		}
		if creditors[j].amount.LessThan(settleThreshold) {
			j++
		}
	}

	return transfers
}

// lessByPosition orders known participants by enumeration order and
// unknown ones after them by name.
func lessByPosition(participants models.ParticipantSet, a, b models.Participant) bool {
	pa, pb := participants.Position(a), participants.Position(b)
	switch {
	case pa >= 0 && pb >= 0:
		return pa < pb
	case pa >= 0:
		return true
	case pb >= 0:
		return false
	default:
		return a < b
	}
}
