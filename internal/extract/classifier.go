package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/rupee-flow/internal/model"
)

// Classifier assigns a MessageType to an SMS. Rules are evaluated in a fixed
// order and the first one that fires wins.
type Classifier struct {
	spam      []*regexp.Regexp
	vocab     Vocabulary
	amount    *regexp.Regexp
	otpDigits *regexp.Regexp
}

// NewClassifier builds a classifier from a vocabulary.
func NewClassifier(v Vocabulary) (*Classifier, error) {
	v = v.clone()
	spam := make([]*regexp.Regexp, 0, len(v.SpamIndicators))
	for _, expr := range v.SpamIndicators {
		re, err := regexp.Compile("(?i)" + expr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile spam indicator %q: %w", expr, err)
		}
		spam = append(spam, re)
	}
	return &Classifier{
		spam:      spam,
		vocab:     v,
		amount:    regexp.MustCompile(`(?i)rs\.?\s*\d+|₹\s*\d+|inr\s*\d+`),
		otpDigits: regexp.MustCompile(`\d{4,6}`),
	}, nil
}

// Classify returns the message type of body as sent by sender. It never fails.
func (c *Classifier) Classify(body, sender string) model.MessageType {
	message := strings.ToLower(body)
	from := strings.ToLower(sender)

	// Promotional loan and investment offers imitate transaction phrasing,
	// so spam indicators outrank everything else.
	for _, re := range c.spam {
		if re.MatchString(message) {
			return model.MessageTypePromotional
		}
	}

	bankSender := containsAny(from, c.vocab.BankSenders)
	if !bankSender && containsAny(from, c.vocab.PromoSenderTokens) {
		return model.MessageTypePromotional
	}

	hasAction := containsAny(message, c.vocab.CreditKeywords) || containsAny(message, c.vocab.DebitKeywords)
	hasBankContext := containsAny(message, c.vocab.BankKeywords) || bankSender
	hasAmount := c.amount.MatchString(message)

	// Checked before security alerts: genuine debit alerts end with
	// "not you? call ..." text.
	if hasAction && hasBankContext && hasAmount {
		return model.MessageTypeTransaction
	}

	if containsAny(message, c.vocab.SecurityKeywords) && !(hasAction && hasAmount) {
		return model.MessageTypeSecurityAlert
	}

	if containsAny(message, c.vocab.OTPKeywords) && c.otpDigits.MatchString(message) {
		return model.MessageTypeOTP
	}

	if containsAny(message, c.vocab.TelecomIndicators) || containsAny(from, c.vocab.TelecomSenders) {
		return model.MessageTypeTelecom
	}

	if containsAny(message, c.vocab.PromoKeywords) {
		return model.MessageTypePromotional
	}

	return model.MessageTypeOther
}
