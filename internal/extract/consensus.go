package extract

import (
	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// Consensus is the per-field plurality vote across strategy results.
type Consensus struct {
	Amount  decimal.NullDecimal
	Type    model.TransactionType
	Account string
}

type amountVote struct {
	amount decimal.Decimal
	count  int
}

// Resolve votes each field independently over results. Amounts that tie on
// count resolve to the larger amount; tied types and accounts resolve to the
// first value seen in result order.
func Resolve(results []model.StrategyResult) Consensus {
	var c Consensus

	var votes []amountVote
	for _, r := range results {
		if !r.HasAmount() {
			continue
		}
		found := false
		for i := range votes {
			if votes[i].amount.Equal(r.Amount.Decimal) {
				votes[i].count++
				found = true
				break
			}
		}
		if !found {
			votes = append(votes, amountVote{amount: r.Amount.Decimal, count: 1})
		}
	}
	best := -1
	for i, v := range votes {
		if best < 0 || v.count > votes[best].count ||
			(v.count == votes[best].count && v.amount.GreaterThan(votes[best].amount)) {
			best = i
		}
	}
	if best >= 0 {
		c.Amount = decimal.NullDecimal{Decimal: votes[best].amount, Valid: true}
	}

	types := make([]string, 0, len(results))
	accounts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Type.IsValid() {
			types = append(types, string(r.Type))
		}
		if r.Account != "" {
			accounts = append(accounts, r.Account)
		}
	}
	c.Type = model.TransactionType(plurality(types))
	c.Account = plurality(accounts)

	return c
}

// plurality returns the most frequent value, preferring the earliest on ties.
func plurality(values []string) string {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	var winner string
	for _, v := range values {
		if winner == "" || counts[v] > counts[winner] {
			winner = v
		}
	}
	return winner
}
