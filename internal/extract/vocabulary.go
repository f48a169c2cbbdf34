package extract

// Vocabulary is the keyword configuration shared by the classifier and the
// strategies. Every list is ordered; order matters wherever the first match
// wins. Values are copied at construction, so callers may not mutate a
// running Extractor through a Vocabulary they still hold.
type Vocabulary struct {
	CreditKeywords           []string
	DebitKeywords            []string
	BankKeywords             []string
	BankSenders              []string
	TelecomSenders           []string
	TelecomIndicators        []string
	SecurityKeywords         []string
	OTPKeywords              []string
	SpamIndicators           []string // regular expressions
	PromoSenderTokens        []string
	PromoKeywords            []string
	BalanceTokens            []string
	ValidationBankIndicators []string
	TransactionVerbs         []string
}

// DefaultVocabulary returns the stock vocabulary for Indian bank and telecom
// SMS. Each call returns fresh slices.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		CreditKeywords: []string{"credited", "received", "deposited", "refund", "cashback"},
		DebitKeywords:  []string{"debited", "transferred", "paid", "withdrawn", "purchase"},
		BankKeywords:   []string{"account", "upi", "neft", "rtgs", "imps", "bank", "atm", "a/c"},
		BankSenders:    []string{"bobsms", "bobtxn", "icicit", "icicib", "hdfcbk", "hdfcmf", "sbiinb", "axisbk", "kotakb"},
		TelecomSenders: []string{"jiopay", "jiocpn", "vicare", "airtel"},
		TelecomIndicators: []string{
			"data", "gb", "mb", "missed call", "quota", "recharge", "jio", "airtel",
		},
		SecurityKeywords: []string{"never share", "fraud", "suspicious", "block", "not you? call"},
		OTPKeywords:      []string{"otp", "verification"},
		SpamIndicators: []string{
			`apply now`,
			`pre-?approved`,
			`loan is ready`,
			`instant loan`,
			`https?://`,
			`\bwww\.`,
			`\bbit\.ly/`,
			`congratulations.*winner`,
			`you have won`,
		},
		PromoSenderTokens: []string{"loan", "offer", "promo", "marketing"},
		PromoKeywords:     []string{"offer", "discount", "sale", "click", "download", "coupon"},
		BalanceTokens: []string{
			"avl bal", "avlbal", "available bal", "total bal", "closing bal",
			"bal:", "balance", "wallet bal", "avlbl amt", "avl amt",
		},
		ValidationBankIndicators: []string{
			"bank", "upi", "neft", "rtgs", "imps", "atm", "a/c", "-bob", "icici", "hdfc", "sbi",
		},
		TransactionVerbs: []string{"credited", "debited", "transferred"},
	}
}

// clone returns a deep copy so the extractor owns its configuration.
func (v Vocabulary) clone() Vocabulary {
	return Vocabulary{
		CreditKeywords:           cloneStrings(v.CreditKeywords),
		DebitKeywords:            cloneStrings(v.DebitKeywords),
		BankKeywords:             cloneStrings(v.BankKeywords),
		BankSenders:              cloneStrings(v.BankSenders),
		TelecomSenders:           cloneStrings(v.TelecomSenders),
		TelecomIndicators:        cloneStrings(v.TelecomIndicators),
		SecurityKeywords:         cloneStrings(v.SecurityKeywords),
		OTPKeywords:              cloneStrings(v.OTPKeywords),
		SpamIndicators:           cloneStrings(v.SpamIndicators),
		PromoSenderTokens:        cloneStrings(v.PromoSenderTokens),
		PromoKeywords:            cloneStrings(v.PromoKeywords),
		BalanceTokens:            cloneStrings(v.BalanceTokens),
		ValidationBankIndicators: cloneStrings(v.ValidationBankIndicators),
		TransactionVerbs:         cloneStrings(v.TransactionVerbs),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
