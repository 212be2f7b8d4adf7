package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType routes an envelope to its handler on the consumer side
type EventType string

const (
	EventExpenseCreated  EventType = "expense.created"
	EventUnlockConfirmed EventType = "unlock.confirmed"
)

// Envelope is the wire format of every message on the ledger queue. Payload
// stays raw until the consumer knows which type to decode it into.
type Envelope struct {
	ID         string          `json:"id"`
	Type       EventType       `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// ExpenseCreated carries only identifiers; the worker reloads the expense
// through the ledger so it never exports stale data.
type ExpenseCreated struct {
	UserID string `json:"user_id"`
	ID     string `json:"id"`
}

// UnlockConfirmed is emitted by the payment side once a transaction settles.
type UnlockConfirmed struct {
	UserID          string `json:"user_id"`
	Feature         string `json:"feature"`
	TransactionHash string `json:"transaction_hash"`
	AmountPaid      string `json:"amount_paid"`
	Currency        string `json:"currency,omitempty"`
}

// NewEnvelope wraps payload with a fresh message id
func NewEnvelope(t EventType, payload any) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", t, err)
	}
	return &Envelope{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// ToJSON converts the envelope to JSON bytes
func (e *Envelope) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// Decode unmarshals the payload into v
func (e *Envelope) Decode(v any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("decode %s: empty payload", e.Type)
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("decode %s: %w", e.Type, err)
	}
	return nil
}

// EnvelopeFromJSON parses a delivery body. An envelope without a type is
// treated as malformed.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Type == "" {
		return nil, errors.New("envelope has no type")
	}
	return &env, nil
}
