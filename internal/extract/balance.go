package extract

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// balancePatterns locate the post-transaction balance some banks append to
// alerts. First match wins.
var balancePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)avlbl amt[:\s]*rs\.?\s*` + amountExpr),
	regexp.MustCompile(`(?i)avl bal[:\s]*rs\.?\s*` + amountExpr),
	regexp.MustCompile(`(?i)avlbal[:\s]*rs\.?\s*` + amountExpr),
	regexp.MustCompile(`(?i)total bal[:\s]*rs\.?\s*` + amountExpr),
	regexp.MustCompile(`(?i)balance[:\s]*rs\.?\s*` + amountExpr),
}

// ExtractBalance returns the balance reported in body, if any.
func ExtractBalance(body string) decimal.NullDecimal {
	for _, re := range balancePatterns {
		m := re.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		if d, ok := parseAmount(m[1]); ok {
			return decimal.NullDecimal{Decimal: d, Valid: true}
		}
	}
	return decimal.NullDecimal{}
}
