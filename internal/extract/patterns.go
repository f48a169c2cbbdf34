// Package extract turns bank and telecom SMS text into structured
// transaction decisions using four independent heuristic strategies and a
// consensus vote. Everything in this package is pure: no I/O, no shared
// mutable state, safe for concurrent use once constructed.
package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/shopspring/decimal"
)

// amountExpr matches a rupee amount such as 6000, 1,23,456 or 40.00.
const amountExpr = `(\d+(?:,\d+)*(?:\.\d{1,2})?)`

// balanceWindow is how far either side of an amount we look for balance
// vocabulary.
const balanceWindow = 50

// Pattern is an ordered extraction rule. Group is the submatch index that
// holds the amount; Type is the direction the rule implies, if any. When
// VerbGroup is set the direction is read from that submatch instead.
type Pattern struct {
	Name       string
	Regex      string
	Type       model.TransactionType
	Group      int
	VerbGroup  int
	Confidence int
}

// compiledPattern holds a compiled regex with its rule metadata.
type compiledPattern struct {
	re *regexp.Regexp
	Pattern
}

// compilePatterns compiles patterns in order. Patterns are case-insensitive
// unless they carry their own flags.
func compilePatterns(patterns []Pattern) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, p := range patterns {
		expr := p.Regex
		if !strings.HasPrefix(expr, "(?") {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %s: %w", p.Name, err)
		}
		if p.Group == 0 {
			p.Group = 1
		}
		compiled = append(compiled, compiledPattern{re: re, Pattern: p})
	}
	return compiled, nil
}

// mustCompilePatterns is compilePatterns for the built-in tables.
func mustCompilePatterns(patterns []Pattern) []compiledPattern {
	compiled, err := compilePatterns(patterns)
	if err != nil {
		panic(err)
	}
	return compiled
}

// amountMatch is one located amount.
type amountMatch struct {
	amount decimal.Decimal
	start  int
	end    int
}

// find returns the pattern's first match with a parsable, positive amount in
// the capture group. Malformed captures count as no match.
func (p compiledPattern) find(text string) (amountMatch, []int, bool) {
	loc := p.re.FindStringSubmatchIndex(text)
	if loc == nil || len(loc) < 2*(p.Group+1) || loc[2*p.Group] < 0 {
		return amountMatch{}, nil, false
	}
	start, end := loc[2*p.Group], loc[2*p.Group+1]
	amount, ok := parseAmount(text[start:end])
	if !ok {
		return amountMatch{}, nil, false
	}
	return amountMatch{amount: amount, start: start, end: end}, loc, true
}

// direction returns the transaction type a match implies.
func (p compiledPattern) direction(text string, loc []int, v Vocabulary) model.TransactionType {
	if p.VerbGroup == 0 || len(loc) < 2*(p.VerbGroup+1) || loc[2*p.VerbGroup] < 0 {
		return p.Type
	}
	return typeOfVerb(text[loc[2*p.VerbGroup]:loc[2*p.VerbGroup+1]], v)
}

// typeOfVerb maps a transaction verb to its direction. Anything that is not a
// credit keyword is a debit.
func typeOfVerb(verb string, v Vocabulary) model.TransactionType {
	verb = strings.ToLower(verb)
	for _, k := range v.CreditKeywords {
		if verb == k {
			return model.TransactionCredit
		}
	}
	return model.TransactionDebit
}

// parseAmount converts "1,234.56" to a decimal. Zero and unparsable values
// are reported as absent.
func parseAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	return d, true
}

// balanceFilter decides whether an amount is really a reported balance.
type balanceFilter struct {
	tokens []string
}

func newBalanceFilter(v Vocabulary) balanceFilter {
	return balanceFilter{tokens: v.BalanceTokens}
}

// isBalance reports whether a balance token occurs anywhere within
// balanceWindow characters either side of the amount spanning [start,end)
// of text.
func (f balanceFilter) isBalance(text string, start, end int) bool {
	lower := lowerASCII(text)
	window := lower[runesBefore(lower, start, balanceWindow):runesAfter(lower, end, balanceWindow)]
	return containsAny(window, f.tokens)
}

// runesBefore returns the byte offset n runes before offset i, or 0.
func runesBefore(s string, i, n int) int {
	for ; n > 0 && i > 0; n-- {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
	}
	return i
}

// runesAfter returns the byte offset n runes after offset i, or len(s).
func runesAfter(s string, i, n int) int {
	for ; n > 0 && i < len(s); n-- {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
	}
	return i
}

// lowerASCII lower-cases ASCII letters only, so byte offsets into the result
// are valid offsets into the input.
func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// containsAny reports whether text contains any of the keywords.
func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// newResult starts an empty result for a named strategy.
func newResult(name string) model.StrategyResult {
	return model.StrategyResult{Strategy: name}
}

// setAmount records a located amount on a result.
func setAmount(r *model.StrategyResult, d decimal.Decimal) {
	r.Amount = decimal.NullDecimal{Decimal: d, Valid: true}
}
