package extract

import "regexp"

// accountPatterns locate a masked account number. First match wins.
var accountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)a/c[:\s]*\.{3}(\d{4})`),
	regexp.MustCompile(`(?i)a/c[:\s]*x+(\d{4})`),
	regexp.MustCompile(`(?i)from\s+a/c[:\s]*x+(\d{4})`),
	regexp.MustCompile(`(?i)a/c[:\s]*\*+(\d{4})`),
	regexp.MustCompile(`(?i)acct?\s*x+(\d{4})`),
}

// ExtractAccount returns the last four digits of the masked account number in
// body, or "" when none is present.
func ExtractAccount(body string) string {
	for _, re := range accountPatterns {
		if m := re.FindStringSubmatch(body); m != nil {
			return m[1]
		}
	}
	return ""
}
