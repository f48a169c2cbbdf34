package extract

import (
	"strings"

	"github.com/Veraticus/rupee-flow/internal/model"
)

// senderTable is a set of bank-specific patterns selected by a sender token.
type senderTable struct {
	token    string
	patterns []compiledPattern
}

var senderPatterns = []struct {
	token    string
	patterns []Pattern
}{
	{
		token: "bob",
		patterns: []Pattern{
			{Name: "bob_credit", Regex: `rs\.?` + amountExpr + `\s+credited.*?bank of baroda`, Type: model.TransactionCredit, Confidence: 90},
			{Name: "bob_debit", Regex: `rs\s+` + amountExpr + `\s+debited.*?-bob`, Type: model.TransactionDebit, Confidence: 90},
		},
	},
	{
		token: "icici",
		patterns: []Pattern{
			{Name: "icici_debit", Regex: `acct\s+\w+\s+debited (?:for|with) (?:rs|inr)\.?\s*` + amountExpr, Type: model.TransactionDebit, Confidence: 90},
			{Name: "icici_credit", Regex: `acct\s+\w+\s+(?:is\s+)?credited (?:with|by) (?:rs|inr)\.?\s*` + amountExpr, Type: model.TransactionCredit, Confidence: 90},
		},
	},
}

var genericContextPatterns = []Pattern{
	{Name: "amount_verb", Regex: `rs\.?\s*` + amountExpr + `\s*(?:has been\s+|is\s+)?(credited|debited|transferred)`, Group: 1, VerbGroup: 2, Confidence: 85},
	{Name: "verb_amount", Regex: `(credited|debited|transferred)\s+(?:with\s+)?(?:rs\.?|inr)\s*` + amountExpr, Group: 2, VerbGroup: 1, Confidence: 85},
}

// ContextStrategy applies bank-specific phrasings chosen by sender and falls
// back to generic "amount near verb" phrasings.
type ContextStrategy struct {
	tables  []senderTable
	generic []compiledPattern
	vocab   Vocabulary
	balance balanceFilter
}

// NewContextStrategy creates the context strategy.
func NewContextStrategy(v Vocabulary) *ContextStrategy {
	v = v.clone()
	tables := make([]senderTable, 0, len(senderPatterns))
	for _, t := range senderPatterns {
		tables = append(tables, senderTable{token: t.token, patterns: mustCompilePatterns(t.patterns)})
	}
	return &ContextStrategy{
		tables:  tables,
		generic: mustCompilePatterns(genericContextPatterns),
		vocab:   v,
		balance: newBalanceFilter(v),
	}
}

// Name implements Strategy.
func (s *ContextStrategy) Name() string { return StrategyContext }

// Extract implements Strategy.
func (s *ContextStrategy) Extract(msg model.Message) model.StrategyResult {
	result := newResult(StrategyContext)
	result.Account = ExtractAccount(msg.Body)

	sender := strings.ToLower(msg.Sender)
	for _, table := range s.tables {
		if sender == "" || !strings.Contains(sender, table.token) {
			continue
		}
		if s.apply(&result, msg.Body, table.patterns) {
			return result
		}
	}

	s.apply(&result, msg.Body, s.generic)
	return result
}

// apply records the first pattern match outside a balance window.
func (s *ContextStrategy) apply(result *model.StrategyResult, body string, patterns []compiledPattern) bool {
	for _, p := range patterns {
		m, loc, ok := p.find(body)
		if !ok || s.balance.isBalance(body, m.start, m.end) {
			continue
		}
		setAmount(result, m.amount)
		result.Type = p.direction(body, loc, s.vocab)
		result.Confidence = p.Confidence
		return true
	}
	return false
}
