package core

import "time"

// MessageKind distinguishes synchronous asks from fire-and-forget tells.
type MessageKind int

const (
	// KindTell is an asynchronous message; the sender never blocks.
	KindTell MessageKind = iota
	// KindAsk is a synchronous request; the sender blocks for a correlated
	// response or a timeout.
	KindAsk
)

func (k MessageKind) String() string {
	if k == KindAsk {
		return "ask"
	}
	return "tell"
}

// MessageState tracks a message through the bus.
type MessageState int

const (
	// StatePending is set at enqueue time.
	StatePending MessageState = iota
	// StateDelivered is set when the recipient's worker receives the message.
	StateDelivered
	// StateFailed is set when the recipient does not exist.
	StateFailed
	// StateTimedOut is set when an ask's caller abandoned the wait.
	StateTimedOut
)

func (s MessageState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateDelivered:
		return "delivered"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed out"
	default:
		return "unknown"
	}
}

// Message is a unit of inter-agent communication. It is created by ask/tell
// evaluation and mutated only by the bus (state transitions). After delivery
// it is retained in the bus history until evicted.
type Message struct {
	ID        string
	Sender    string // sender agent id ("" for the interpreter's own thread)
	Recipient string // recipient agent id
	Payload   Value
	Kind      MessageKind
	// Correlation is the token matching an ask to its single response. Empty
	// for tells.
	Correlation string
	// Timeout applies to asks only; zero or negative deadlines resolve to a
	// timeout immediately.
	Timeout    time.Duration
	EnqueuedAt time.Time
	State      MessageState
}

// NewMessage constructs a pending message stamped with a fresh id and the
// current time.
func NewMessage(kind MessageKind, sender, recipient string, payload Value) *Message {
	return &Message{
		ID:         NewID(),
		Sender:     sender,
		Recipient:  recipient,
		Payload:    payload,
		Kind:       kind,
		EnqueuedAt: time.Now(),
		State:      StatePending,
	}
}
