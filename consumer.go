package amqp091

import "github.com/coreamqp/amqp091/internal/queue"

// ConsumerKind tags a registered callback as synchronous or
// asynchronous, per Design Note §9 ("redesign with two explicit
// variants (tagged) so the dispatcher knows whether to await or call
// directly") rather than inspecting the callback's runtime behaviour.
type ConsumerKind int

const (
	// ConsumerSync callbacks are called on their own goroutine; the
	// dispatcher does not wait for them to return.
	ConsumerSync ConsumerKind = iota
	// ConsumerAsync callbacks return a completion channel; the
	// dispatcher schedules the wait rather than blocking on it inline.
	ConsumerAsync
)

// ConsumerFunc is a synchronous delivery handler.
type ConsumerFunc func(Message)

// AsyncConsumerFunc is an asynchronous delivery handler: it starts the
// work and returns a channel that closes when the work completes.
type AsyncConsumerFunc func(Message) <-chan struct{}

// consumerRegistration binds a server-assigned consumer tag to a
// caller-supplied handler, per spec §3 "ConsumerRegistration".
type consumerRegistration struct {
	tag   string
	kind  ConsumerKind
	sync  ConsumerFunc
	async AsyncConsumerFunc
}

func (r *consumerRegistration) dispatch(msg Message) {
	switch r.kind {
	case ConsumerAsync:
		go func() { <-r.async(msg) }()
	default:
		go r.sync(msg)
	}
}

// pendingConsumer is queued by basic_consume before the server assigns
// (or confirms) a consumer tag, per spec §4.5 ("push a future/
// registration pair onto a FIFO; ... on ConsumeOk pop the head and bind
// its callback").
type pendingConsumer struct {
	requestedTag string
	kind         ConsumerKind
	sync         ConsumerFunc
	async        AsyncConsumerFunc
}

// consumerState tracks all live consumer bindings and the FIFO of
// basic_consume calls awaiting ConsumeOk. It is reset on channel
// reopen, since consumer registrations do not survive a soft-error
// recovery (the server has already dropped them along with the
// channel).
type consumerState struct {
	byTag   map[string]*consumerRegistration
	pending *queue.Queue[*pendingConsumer]
}

func newConsumerState() *consumerState {
	return &consumerState{
		byTag:   make(map[string]*consumerRegistration),
		pending: queue.New[*pendingConsumer](4),
	}
}

func (cs *consumerState) reset() {
	cs.byTag = make(map[string]*consumerRegistration)
	cs.pending = queue.New[*pendingConsumer](4)
}

func (cs *consumerState) enqueue(p *pendingConsumer) {
	cs.pending.Enqueue(p)
}

// bindHead pops the oldest pending basic_consume call and binds it to
// tag, the server-chosen (or server-confirmed) consumer tag, per spec
// §3's ClientState "Pending consumer-tag futures (FIFO queue; ConsumeOk
// binds to the head)".
func (cs *consumerState) bindHead(tag string) *pendingConsumer {
	p, ok := cs.pending.Dequeue()
	if !ok {
		return nil
	}
	cs.byTag[tag] = &consumerRegistration{tag: tag, kind: p.kind, sync: p.sync, async: p.async}
	return p
}

func (cs *consumerState) remove(tag string) {
	delete(cs.byTag, tag)
}

// Generator is the lazy-sequence consumer surface described in spec
// §4.5: a bounded queue of deliveries adapted from the ordinary
// callback-based consumer, restartable exactly once.
type Generator struct {
	c           *Client
	tag         string
	messages    chan Message
	closeOnce   func() error
	restarted   bool
}

// Messages returns the channel of incoming deliveries. It closes when
// the generator is closed; a server-sent Basic.Cancel only removes the
// consumer's registration and does not close it.
func (g *Generator) Messages() <-chan Message {
	return g.messages
}

// Close cancels the underlying consumer via Basic.Cancel and closes the
// message channel.
func (g *Generator) Close() error {
	return g.closeOnce()
}

// Restart re-issues basic_consume with the queue and options passed to
// it; the generator does not record the ones it was created with. Per
// spec §4.5 a generator is
// restartable-once: calling Restart twice returns an error.
func (g *Generator) Restart(queue string, opts ConsumeOptions) (*Generator, error) {
	if g.restarted {
		return nil, &Error{Kind: KindInvalidRequest, Reason: "generator already restarted once"}
	}
	g.restarted = true
	return g.c.Consume(queue, opts)
}
