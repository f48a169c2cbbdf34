package extract

import (
	"regexp"
	"strings"
)

var (
	fpAmount       = regexp.MustCompile(`rs\.?\s*([\d,]+(?:\.\d+)?)`)
	fpAccount      = regexp.MustCompile(`a/c\s*[.x*]*(\d{4})`)
	fpCounterparty = []*regexp.Regexp{
		regexp.MustCompile(`\bby\s+(\w+)`),
		regexp.MustCompile(`from:\s*(\w+)`),
	}
	fpTimestamp = regexp.MustCompile(`\((\d{2}-\d{2}-\d{4} \d{2}:\d{2}:\d{2})\)`)
)

// Fingerprint builds the duplicate-detection key for a message. The key joins
// amount, account suffix, counterparty, direction and timestamp taken from
// body with "_"; missing parts are empty. sender is not part of the key, so
// one alert delivered through two sender ids still collides.
func Fingerprint(body, sender string) string {
	text := strings.ToLower(body)

	var amount string
	if m := fpAmount.FindStringSubmatch(text); m != nil {
		amount = strings.ReplaceAll(m[1], ",", "")
	}

	var account string
	if m := fpAccount.FindStringSubmatch(text); m != nil {
		account = m[1]
	}

	var counterparty string
	for _, re := range fpCounterparty {
		if m := re.FindStringSubmatch(text); m != nil {
			counterparty = m[1]
			break
		}
	}

	var direction string
	switch {
	case strings.Contains(text, "credited"):
		direction = "credit"
	case strings.Contains(text, "debited"), strings.Contains(text, "transferred"):
		direction = "debit"
	}

	var timestamp string
	if m := fpTimestamp.FindStringSubmatch(text); m != nil {
		timestamp = m[1]
	}

	return strings.Join([]string{amount, account, counterparty, direction, timestamp}, "_")
}

// HasIdentity reports whether fingerprint can identify a transaction. A key
// without its amount part matches unrelated alerts from the same account, so
// it must not be used to suppress duplicates.
func HasIdentity(fingerprint string) bool {
	amount, _, _ := strings.Cut(fingerprint, "_")
	return amount != ""
}
