package model

import "time"

// MessageType is the coarse class assigned to an SMS before extraction.
type MessageType string

// Message type constants. The set is closed; IsValid reports membership.
const (
	MessageTypeTransaction   MessageType = "transaction"
	MessageTypeSecurityAlert MessageType = "security_alert"
	MessageTypeTelecom       MessageType = "telecom"
	MessageTypePromotional   MessageType = "promotional"
	MessageTypeOTP           MessageType = "otp"
	MessageTypeOther         MessageType = "other"
)

// IsValid reports whether t is one of the known message types.
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeTransaction, MessageTypeSecurityAlert, MessageTypeTelecom,
		MessageTypePromotional, MessageTypeOTP, MessageTypeOther:
		return true
	}
	return false
}

// Message is a single inbound SMS.
type Message struct {
	ReceivedAt time.Time `json:"received_at"`
	ID         string    `json:"id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Body       string    `json:"message"`
	Sender     string    `json:"sender,omitempty"`
	Processed  bool      `json:"processed"`
}
