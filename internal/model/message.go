package model

import "time"

// MessageType identifies the audience of a generated message.
type MessageType string

const (
	MessageTypeSupplier   MessageType = "SUPPLIER"
	MessageTypeBuyer      MessageType = "BUYER"
	MessageTypeManagement MessageType = "MANAGEMENT"
)

// Recipient labels carried over from the original dashboard.
const (
	RecipientSuppliers  = "Fournisseurs"
	RecipientBuyers     = "Acheteurs"
	RecipientManagement = "Direction"
)

// Valid reports whether t is one of the three known message types.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeSupplier, MessageTypeBuyer, MessageTypeManagement:
		return true
	}
	return false
}

// Recipient returns the display label for the message audience.
func (t MessageType) Recipient() string {
	switch t {
	case MessageTypeSupplier:
		return RecipientSuppliers
	case MessageTypeBuyer:
		return RecipientBuyers
	case MessageTypeManagement:
		return RecipientManagement
	}
	return ""
}

// Message is one outbound communication generated by an analysis run.
type Message struct {
	ID         string      `json:"id"`
	AnalysisID string      `json:"analysis_id"`
	Type       MessageType `json:"type"`
	Subject    string      `json:"subject"`
	Body       string      `json:"body"`
	Recipient  string      `json:"recipient"`
	CreatedAt  time.Time   `json:"created_at"`
}
