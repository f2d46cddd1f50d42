package bus

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/agentscript/core"
	"github.com/hupe1980/agentscript/logging"
)

// DefaultHistoryLimit bounds the retained message history.
const DefaultHistoryLimit = 1000

// Options configures a Bus instance.
type Options struct {
	// HistoryLimit caps the retained message history; older entries are
	// evicted. Zero selects DefaultHistoryLimit.
	HistoryLimit int
	// MailboxSize caps pending messages per recipient. Messages sent to a
	// full mailbox fail with MailboxFull. Zero means unbounded.
	MailboxSize int
	// Logger receives routing diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Stats is a point-in-time snapshot of the bus's delivery accounting.
type Stats struct {
	Sent      uint64
	Delivered uint64
	Failed    uint64
	TimedOut  uint64
	// Discarded counts late or duplicate ask responses dropped after their
	// caller stopped waiting.
	Discarded uint64
	// Pending is the number of enqueued, not yet delivered messages.
	Pending int
	// Flows maps "sender->recipient" pairs to the number of messages sent.
	Flows map[string]uint64
}

// FlowKey builds the per-pair key used in Stats.Flows.
func FlowKey(sender, recipient string) string { return sender + "->" + recipient }

type askResult struct {
	value core.Value
	err   error
}

type waiter struct {
	ch  chan askResult
	msg *core.Message
}

// mailbox holds the pending messages of a single agent. Asks and tells are
// separate FIFO queues so asks can be served first.
type mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	asks   []*core.Message
	tells  []*core.Message
	limit  int
	closed bool
}

func newMailbox(limit int) *mailbox {
	mb := &mailbox{limit: limit}
	mb.cond = sync.NewCond(&mb.mu)
	return mb
}

// push queues a message, reporting false when the mailbox is at capacity.
func (mb *mailbox) push(msg *core.Message) bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.limit > 0 && len(mb.asks)+len(mb.tells) >= mb.limit {
		return false
	}
	if msg.Kind == core.KindAsk {
		mb.asks = append(mb.asks, msg)
	} else {
		mb.tells = append(mb.tells, msg)
	}
	mb.cond.Signal()
	return true
}

// pop blocks until a message is available or the mailbox closes. Asks win
// over tells; within a kind order is FIFO.
func (mb *mailbox) pop() (*core.Message, bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	for len(mb.asks) == 0 && len(mb.tells) == 0 && !mb.closed {
		mb.cond.Wait()
	}
	if len(mb.asks) > 0 {
		msg := mb.asks[0]
		mb.asks = mb.asks[1:]
		return msg, true
	}
	if len(mb.tells) > 0 {
		msg := mb.tells[0]
		mb.tells = mb.tells[1:]
		return msg, true
	}
	return nil, false
}

func (mb *mailbox) size() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return len(mb.asks) + len(mb.tells)
}

func (mb *mailbox) close() {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	mb.closed = true
	mb.cond.Broadcast()
}

// Bus is the central router. All methods are safe for concurrent use.
type Bus struct {
	mu      sync.Mutex
	boxes   map[string]*mailbox
	waiters map[string]*waiter
	history []*core.Message
	limit   int
	boxCap  int
	closed  bool

	sent      uint64
	delivered uint64
	failed    uint64
	timedOut  uint64
	discarded uint64
	flows     map[string]uint64

	logger logging.Logger
}

// New constructs a Bus with optional overrides.
func New(optFns ...func(o *Options)) *Bus {
	opts := Options{HistoryLimit: DefaultHistoryLimit, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	return &Bus{
		boxes:   map[string]*mailbox{},
		waiters: map[string]*waiter{},
		flows:   map[string]uint64{},
		limit:   opts.HistoryLimit,
		boxCap:  opts.MailboxSize,
		logger:  opts.Logger,
	}
}

// Register creates a mailbox for an agent id. The interpreter calls this on
// spawn, before the agent's worker starts.
func (b *Bus) Register(agentID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.boxes[agentID]; ok {
		return core.NewError(core.ErrDuplicateName, "agent %q already registered with bus", agentID)
	}
	b.boxes[agentID] = newMailbox(b.boxCap)
	return nil
}

// Unregister removes an agent's mailbox and wakes its blocked worker.
func (b *Bus) Unregister(agentID string) error {
	b.mu.Lock()
	mb, ok := b.boxes[agentID]
	if !ok {
		b.mu.Unlock()
		return core.NewError(core.ErrUnknownAgent, "agent %q is not registered with bus", agentID)
	}
	delete(b.boxes, agentID)
	b.mu.Unlock()
	mb.close()
	return nil
}

// Registered reports whether an agent id currently has a mailbox.
func (b *Bus) Registered(agentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.boxes[agentID]
	return ok
}

// enqueue records and routes a pending message. The caller must not hold
// b.mu. On unknown recipients the message is recorded as Failed and an
// UnknownAgent error is returned.
func (b *Bus) enqueue(msg *core.Message) error {
	b.mu.Lock()
	if b.closed {
		msg.State = core.StateFailed
		b.failed++
		b.record(msg)
		b.mu.Unlock()
		return core.NewError(core.ErrUnknownAgent, "bus is closed")
	}
	mb, ok := b.boxes[msg.Recipient]
	if !ok {
		msg.State = core.StateFailed
		b.failed++
		b.record(msg)
		b.mu.Unlock()
		b.logger.Warn("message routing failed", "sender", msg.Sender, "recipient", msg.Recipient, "kind", msg.Kind.String())
		return core.NewError(core.ErrUnknownAgent, "agent %q is not registered with bus", msg.Recipient)
	}
	if !mb.push(msg) {
		msg.State = core.StateFailed
		b.failed++
		b.record(msg)
		b.mu.Unlock()
		b.logger.Warn("mailbox full", "sender", msg.Sender, "recipient", msg.Recipient, "kind", msg.Kind.String())
		return core.NewError(core.ErrMailboxFull, "mailbox for agent %q is full", msg.Recipient)
	}
	b.sent++
	b.flows[FlowKey(msg.Sender, msg.Recipient)]++
	b.record(msg)
	b.mu.Unlock()
	return nil
}

// record appends to the bounded history; caller holds b.mu.
func (b *Bus) record(msg *core.Message) {
	b.history = append(b.history, msg)
	if len(b.history) > b.limit {
		overflow := len(b.history) - b.limit
		b.history = append(b.history[:0], b.history[overflow:]...)
	}
}

// Tell sends an asynchronous message. It returns the routed message for
// accounting and never blocks on the recipient.
func (b *Bus) Tell(sender, recipient string, payload core.Value) (*core.Message, error) {
	msg := core.NewMessage(core.KindTell, sender, recipient, payload)
	if err := b.enqueue(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Ask sends a synchronous request and blocks the calling goroutine until a
// correlated response arrives, the timeout elapses, or ctx is cancelled.
// A timeout of zero or less resolves to a Timeout error deterministically
// without waiting; the message is still routed so delivery accounting holds,
// and the eventual response is discarded.
func (b *Bus) Ask(ctx context.Context, sender, recipient string, payload core.Value, timeout time.Duration) (core.Value, error) {
	msg := core.NewMessage(core.KindAsk, sender, recipient, payload)
	msg.Timeout = timeout
	msg.Correlation = core.NewID()

	w := &waiter{ch: make(chan askResult, 1), msg: msg}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, core.NewError(core.ErrUnknownAgent, "bus is closed")
	}
	b.waiters[msg.Correlation] = w
	b.mu.Unlock()

	if err := b.enqueue(msg); err != nil {
		b.mu.Lock()
		delete(b.waiters, msg.Correlation)
		b.mu.Unlock()
		return nil, err
	}

	if timeout <= 0 {
		b.abandon(msg)
		return nil, core.NewError(core.ErrTimeout, "ask to %q timed out after %s", recipient, timeout)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-w.ch:
		if res.err != nil {
			return nil, res.err
		}
		return res.value, nil
	case <-timer.C:
		if b.abandon(msg) {
			return nil, core.NewError(core.ErrTimeout, "ask to %q timed out after %s", recipient, timeout)
		}
		// The response raced the timer and already won; honor it.
		res := <-w.ch
		if res.err != nil {
			return nil, res.err
		}
		return res.value, nil
	case <-ctx.Done():
		if b.abandon(msg) {
			return nil, ctx.Err()
		}
		res := <-w.ch
		if res.err != nil {
			return nil, res.err
		}
		return res.value, nil
	}
}

// abandon removes the waiter for an ask, marking the message timed out.
// It reports false when a response was already matched.
func (b *Bus) abandon(msg *core.Message) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.waiters[msg.Correlation]; !ok {
		return false
	}
	delete(b.waiters, msg.Correlation)
	msg.State = core.StateTimedOut
	b.timedOut++
	return true
}

// Respond matches an ask response to its correlation token and unblocks the
// waiting caller. Exactly one response is matched per token; late or
// duplicate responses return false and are counted as discarded.
func (b *Bus) Respond(correlation string, value core.Value) bool {
	return b.resolve(correlation, askResult{value: value})
}

// RespondError completes an ask with an error outcome (tool failure,
// handler failure). The blocked caller receives err as the call's result.
func (b *Bus) RespondError(correlation string, err error) bool {
	return b.resolve(correlation, askResult{err: err})
}

func (b *Bus) resolve(correlation string, res askResult) bool {
	b.mu.Lock()
	w, ok := b.waiters[correlation]
	if !ok {
		b.discarded++
		b.mu.Unlock()
		b.logger.Debug("late ask response discarded", "correlation", correlation)
		return false
	}
	delete(b.waiters, correlation)
	b.mu.Unlock()
	w.ch <- res
	return true
}

// Receive blocks until a message is available for the agent, returning
// ok=false when the mailbox was closed (unregister or bus shutdown). The
// returned message is marked Delivered.
func (b *Bus) Receive(agentID string) (*core.Message, bool) {
	b.mu.Lock()
	mb, ok := b.boxes[agentID]
	b.mu.Unlock()
	if !ok {
		return nil, false
	}
	msg, ok := mb.pop()
	if !ok {
		return nil, false
	}
	b.mu.Lock()
	msg.State = core.StateDelivered
	b.delivered++
	b.mu.Unlock()
	return msg, true
}

// Pending returns the number of undelivered messages queued for an agent,
// or -1 when the agent is unknown.
func (b *Bus) Pending(agentID string) int {
	b.mu.Lock()
	mb, ok := b.boxes[agentID]
	b.mu.Unlock()
	if !ok {
		return -1
	}
	return mb.size()
}

// Snapshot returns a copy of the delivery accounting.
func (b *Bus) Snapshot() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	flows := make(map[string]uint64, len(b.flows))
	for k, v := range b.flows {
		flows[k] = v
	}
	pending := 0
	for _, mb := range b.boxes {
		pending += mb.size()
	}
	return Stats{
		Sent:      b.sent,
		Delivered: b.delivered,
		Failed:    b.failed,
		TimedOut:  b.timedOut,
		Discarded: b.discarded,
		Pending:   pending,
		Flows:     flows,
	}
}

// History returns up to limit recent messages, oldest first. A non-positive
// limit returns the full retained history.
func (b *Bus) History(limit int) []*core.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.history)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]*core.Message, n)
	copy(out, b.history[len(b.history)-n:])
	return out
}

// Close shuts the bus down: mailboxes are closed so blocked workers return,
// and outstanding ask callers are failed. Safe to call once at session
// teardown.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	boxes := make([]*mailbox, 0, len(b.boxes))
	for _, mb := range b.boxes {
		boxes = append(boxes, mb)
	}
	waiters := make([]*waiter, 0, len(b.waiters))
	for token, w := range b.waiters {
		delete(b.waiters, token)
		waiters = append(waiters, w)
	}
	b.mu.Unlock()

	for _, mb := range boxes {
		mb.close()
	}
	for _, w := range waiters {
		w.ch <- askResult{err: core.NewError(core.ErrTimeout, "bus closed while ask was pending")}
	}
}
