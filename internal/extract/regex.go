package extract

import "github.com/Veraticus/rupee-flow/internal/model"

// regexCreditPatterns are tried before regexDebitPatterns; the first
// acceptable match wins.
var regexCreditPatterns = []Pattern{
	{Name: "amount_credited", Regex: `rs\.?\s*` + amountExpr + `\s+credited`, Type: model.TransactionCredit, Confidence: 95},
	{Name: "credited_with_on", Regex: `credited with (?:rs\.?|inr)\s*` + amountExpr + `\s+on`, Type: model.TransactionCredit, Confidence: 98},
	{Name: "credited_rs", Regex: `credited.*?rs\.?` + amountExpr, Type: model.TransactionCredit, Confidence: 95},
	{Name: "credited_inr", Regex: `credited.*?inr\s+` + amountExpr, Type: model.TransactionCredit, Confidence: 95},
	{Name: "account_credited", Regex: `account is credited.*?` + amountExpr, Type: model.TransactionCredit, Confidence: 95},
	{Name: "amount_cr", Regex: `(?:rs\.?|inr)\s*` + amountExpr + `\s+cr\.`, Type: model.TransactionCredit, Confidence: 96},
}

var regexDebitPatterns = []Pattern{
	{Name: "amount_debited", Regex: `rs\.?\s*` + amountExpr + `\s+debited`, Type: model.TransactionDebit, Confidence: 95},
	{Name: "amount_transferred", Regex: `rs\.?` + amountExpr + `\s+transferred`, Type: model.TransactionDebit, Confidence: 95},
	{Name: "debited_with", Regex: `debited (?:with|for|by)\s+(?:rs\.?|inr)\s*` + amountExpr, Type: model.TransactionDebit, Confidence: 98},
	{Name: "debited_rs", Regex: `debited.*?rs\s+` + amountExpr, Type: model.TransactionDebit, Confidence: 95},
	{Name: "amount_dr", Regex: `(?:rs\.?|inr)\s*` + amountExpr + `\s+dr\.`, Type: model.TransactionDebit, Confidence: 96},
}

// RegexStrategy matches high-specificity "amount next to verb" phrasings.
type RegexStrategy struct {
	credit  []compiledPattern
	debit   []compiledPattern
	balance balanceFilter
}

// NewRegexStrategy creates the regex strategy.
func NewRegexStrategy(v Vocabulary) *RegexStrategy {
	return &RegexStrategy{
		credit:  mustCompilePatterns(regexCreditPatterns),
		debit:   mustCompilePatterns(regexDebitPatterns),
		balance: newBalanceFilter(v),
	}
}

// Name implements Strategy.
func (s *RegexStrategy) Name() string { return StrategyRegex }

// Extract implements Strategy.
func (s *RegexStrategy) Extract(msg model.Message) model.StrategyResult {
	result := newResult(StrategyRegex)
	result.Account = ExtractAccount(msg.Body)

	for _, p := range s.credit {
		if m, _, ok := p.find(msg.Body); ok {
			setAmount(&result, m.amount)
			result.Type = p.Type
			result.Confidence = p.Confidence
			return result
		}
	}

	// Debit alerts are where banks append the remaining balance, so only
	// debit matches are checked against the balance window.
	for _, p := range s.debit {
		m, _, ok := p.find(msg.Body)
		if !ok || s.balance.isBalance(msg.Body, m.start, m.end) {
			continue
		}
		setAmount(&result, m.amount)
		result.Type = p.Type
		result.Confidence = p.Confidence
		return result
	}

	return result
}
