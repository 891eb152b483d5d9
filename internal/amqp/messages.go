package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"liquiplanner/internal/ledger"
)

// LedgerChangedMessage announces a completed ledger mutation. It carries
// the resulting counts, not the entries; consumers reload the persisted
// ledger themselves.
type LedgerChangedMessage struct {
	EventID      uuid.UUID `json:"event_id"`
	Operation    string    `json:"operation"`
	EntryID      int64     `json:"entry_id,omitempty"`
	Entries      int       `json:"entries"`
	BalanceCents int64     `json:"balance_cents"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage describes the mutation s follows.
func NewLedgerChangedMessage(s ledger.Snapshot) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		EventID:      uuid.New(),
		Operation:    string(s.Change.Op),
		EntryID:      int64(s.Change.EntryID),
		Entries:      len(s.Entries),
		BalanceCents: s.Totals.Balance.Cents,
		Timestamp:    time.Now().UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON decodes a message body.
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
