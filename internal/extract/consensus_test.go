package extract

import (
	"testing"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func result(amount string, typ model.TransactionType, account string) model.StrategyResult {
	r := model.StrategyResult{Type: typ, Account: account}
	if amount != "" {
		r.Amount = decimal.NullDecimal{Decimal: decimal.RequireFromString(amount), Valid: true}
	}
	return r
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name        string
		wantAmount  string
		wantType    model.TransactionType
		wantAccount string
		results     []model.StrategyResult
	}{
		{
			name: "unanimous",
			results: []model.StrategyResult{
				result("6000", model.TransactionCredit, "9212"),
				result("6000", model.TransactionCredit, ""),
				result("6000", model.TransactionCredit, ""),
				result("6000", model.TransactionCredit, "9212"),
			},
			wantAmount:  "6000",
			wantType:    model.TransactionCredit,
			wantAccount: "9212",
		},
		{
			name: "majority amount",
			results: []model.StrategyResult{
				result("100", "", ""),
				result("200", "", ""),
				result("100", "", ""),
				result("", "", ""),
			},
			wantAmount: "100",
		},
		{
			name: "tied amounts prefer larger",
			results: []model.StrategyResult{
				result("100", "", ""),
				result("200", "", ""),
				result("", "", ""),
				result("", "", ""),
			},
			wantAmount: "200",
		},
		{
			name: "tied pairs prefer larger",
			results: []model.StrategyResult{
				result("500", "", ""),
				result("20", "", ""),
				result("20", "", ""),
				result("500", "", ""),
			},
			wantAmount: "500",
		},
		{
			name: "equal decimals with different scale vote together",
			results: []model.StrategyResult{
				result("40.00", "", ""),
				result("40", "", ""),
				result("400", "", ""),
			},
			wantAmount: "40",
		},
		{
			name: "tied type prefers first",
			results: []model.StrategyResult{
				result("", model.TransactionDebit, ""),
				result("", model.TransactionCredit, ""),
			},
			wantType: model.TransactionDebit,
		},
		{
			name: "majority account",
			results: []model.StrategyResult{
				result("", "", "9212"),
				result("", "", ""),
				result("", "", "1111"),
				result("", "", "1111"),
			},
			wantAccount: "1111",
		},
		{
			name: "zero amounts do not vote",
			results: []model.StrategyResult{
				result("0", "", ""),
			},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.results)

			if tt.wantAmount == "" {
				assert.False(t, got.Amount.Valid)
			} else {
				assert.True(t, got.Amount.Valid)
				assert.True(t, decimal.RequireFromString(tt.wantAmount).Equal(got.Amount.Decimal),
					"amount = %s, want %s", got.Amount.Decimal, tt.wantAmount)
			}
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantAccount, got.Account)
		})
	}
}
