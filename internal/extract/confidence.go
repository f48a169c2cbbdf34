package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// Confidence adjustments applied by Validate.
const (
	extremeAmountPenalty = 40
	unusualAmountPenalty = 20
	noBankContextPenalty = 30
	shortMessagePenalty  = 25
	referenceBonus       = 10

	minMessageLength = 30
)

var (
	agreementTolerance = decimal.RequireFromString("0.01")
	extremeMin         = decimal.RequireFromString("0.01")
	extremeMax         = decimal.NewFromInt(10_000_000)
	usualMin           = decimal.NewFromInt(1)
	usualMax           = decimal.NewFromInt(1_000_000)
)

// Scorer turns strategy agreement into a calibrated 0-100 confidence.
type Scorer struct {
	bankIndicators []string
}

// NewScorer creates a scorer.
func NewScorer(v Vocabulary) *Scorer {
	return &Scorer{bankIndicators: cloneStrings(v.ValidationBankIndicators)}
}

// Score returns the agreement-based confidence of amount among results.
func (s *Scorer) Score(results []model.StrategyResult, amount decimal.NullDecimal) int {
	if !amount.Valid {
		return 0
	}
	var n, agreements int
	for _, r := range results {
		if !r.HasAmount() {
			continue
		}
		n++
		if r.Amount.Decimal.Sub(amount.Decimal).Abs().LessThan(agreementTolerance) {
			agreements++
		}
	}
	if n == 0 {
		return 0
	}

	ratio := float64(agreements) / float64(n)
	switch {
	case ratio >= 0.75:
		return 95
	case ratio >= 0.5:
		return 80
	default:
		return 50
	}
}

// Validate adjusts a base confidence using properties of the message and the
// chosen amount, then clamps to [0,100].
func (s *Scorer) Validate(body string, amount decimal.Decimal, base int) int {
	confidence := base

	switch {
	case amount.LessThan(extremeMin) || amount.GreaterThan(extremeMax):
		confidence -= extremeAmountPenalty
	case amount.LessThan(usualMin) || amount.GreaterThan(usualMax):
		confidence -= unusualAmountPenalty
	}

	if !containsAny(strings.ToLower(body), s.bankIndicators) {
		confidence -= noBankContextPenalty
	}

	if utf8.RuneCountInString(body) < minMessageLength {
		confidence -= shortMessagePenalty
	}

	if ExtractReference(body) != "" {
		confidence += referenceBonus
	}

	return min(100, max(0, confidence))
}
