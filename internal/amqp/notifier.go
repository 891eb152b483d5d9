package amqp

import (
	"context"
	"log/slog"

	"liquiplanner/internal/ledger"
	applog "liquiplanner/internal/log"
)

// Publisher is the sending half of Client.
type Publisher interface {
	Publish(ctx context.Context, msg *LedgerChangedMessage) error
}

// Notifier turns ledger mutations into published change events. Listen is
// subscribed to the ledger and only enqueues; Run does the publishing, so a
// slow broker never holds up a request.
type Notifier struct {
	pub    Publisher
	logger *slog.Logger
	queue  chan *LedgerChangedMessage
}

func NewNotifier(pub Publisher, logger *slog.Logger, buffer int) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Notifier{pub: pub, logger: logger, queue: make(chan *LedgerChangedMessage, buffer)}
}

// Listen satisfies ledger.Listener. Events are dropped when the buffer is full.
func (n *Notifier) Listen(ctx context.Context, s ledger.Snapshot) {
	msg := NewLedgerChangedMessage(s)
	select {
	case n.queue <- msg:
	default:
		n.logger.WarnContext(ctx, "Dropping ledger change event, publish queue full",
			applog.FieldEventID, msg.EventID, applog.FieldOperation, msg.Operation)
	}
}

// Run publishes queued events until ctx is done. Failed publishes are logged
// and not retried; the next event carries the newer state anyway.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-n.queue:
			if err := n.pub.Publish(ctx, msg); err != nil {
				n.logger.ErrorContext(ctx, "Failed to publish ledger change",
					applog.FieldEventID, msg.EventID, applog.FieldOperation, msg.Operation, applog.FieldError, err)
			}
		}
	}
}
