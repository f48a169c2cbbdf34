package extract

import "regexp"

// referencePatterns are tried in order; the first capture wins. The bare
// "ref" rule requires a separator so "refund" is not read as a reference.
var referencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)upi ref[:\s]*no[.:\s]*(\w+)`),
	regexp.MustCompile(`(?i)upi ref[:\s]*(\w+)`),
	regexp.MustCompile(`(?i)\bref(?:\s*no)?[.:\s]+(\w+)`),
	regexp.MustCompile(`(?i)upi[:/](\w+)`),
	regexp.MustCompile(`(?i)thru upi[:/](\w+)`),
}

// ExtractReference returns the transaction reference or UPI id in body, or ""
// when none is present.
func ExtractReference(body string) string {
	for _, re := range referencePatterns {
		if m := re.FindStringSubmatch(body); m != nil {
			return m[1]
		}
	}
	return ""
}
