package extract

import (
	"strings"

	"github.com/Veraticus/rupee-flow/internal/model"
)

var keywordAmountPatterns = []Pattern{
	{Name: "credited_with_on", Regex: `credited with (?:rs\.?|inr)\s*` + amountExpr + `\s+on`, Confidence: 95},
	{Name: "verb_then_amount", Regex: `(?:credited|debited|transferred).*?rs\.?\s*` + amountExpr, Confidence: 80},
	{Name: "amount_then_verb", Regex: `rs\.?\s*` + amountExpr + `.*?(?:credited|debited|transferred)`, Confidence: 75},
	{Name: "inr_amount", Regex: `inr\s*` + amountExpr, Confidence: 70},
}

// KeywordStrategy decides direction by counting credit and debit keywords
// and takes the amount from loose keyword/amount patterns.
type KeywordStrategy struct {
	credit   []string
	debit    []string
	patterns []compiledPattern
	balance  balanceFilter
}

// NewKeywordStrategy creates the keyword strategy.
func NewKeywordStrategy(v Vocabulary) *KeywordStrategy {
	v = v.clone()
	return &KeywordStrategy{
		credit:   v.CreditKeywords,
		debit:    v.DebitKeywords,
		patterns: mustCompilePatterns(keywordAmountPatterns),
		balance:  newBalanceFilter(v),
	}
}

// Name implements Strategy.
func (s *KeywordStrategy) Name() string { return StrategyKeyword }

// Extract implements Strategy.
func (s *KeywordStrategy) Extract(msg model.Message) model.StrategyResult {
	result := newResult(StrategyKeyword)
	result.Type = s.direction(strings.ToLower(msg.Body))

	for _, p := range s.patterns {
		m, _, ok := p.find(msg.Body)
		if !ok || s.balance.isBalance(msg.Body, m.start, m.end) {
			continue
		}
		setAmount(&result, m.amount)
		result.Confidence = p.Confidence
		break
	}

	return result
}

// direction returns the majority direction, or "" on a tie.
func (s *KeywordStrategy) direction(text string) model.TransactionType {
	var credits, debits int
	for _, k := range s.credit {
		credits += strings.Count(text, k)
	}
	for _, k := range s.debit {
		debits += strings.Count(text, k)
	}
	switch {
	case credits > debits:
		return model.TransactionCredit
	case debits > credits:
		return model.TransactionDebit
	default:
		return ""
	}
}
