package amqp091

// PublishOutcome is how a PendingPublish resolves, per spec §3's
// `{tag, outcome: Unresolved | Ack | Nack | Returned, waker}`.
type PublishOutcome int

const (
	OutcomeUnresolved PublishOutcome = iota
	OutcomeAck
	OutcomeNack
	OutcomeReturned
)

func (o PublishOutcome) String() string {
	switch o {
	case OutcomeAck:
		return "ack"
	case OutcomeNack:
		return "nack"
	case OutcomeReturned:
		return "returned"
	default:
		return "unresolved"
	}
}

type publishResult struct {
	outcome PublishOutcome
	err     error
}

// PendingPublish is a delivery-tag-keyed bookkeeping record created
// when publisher confirms are enabled, per spec §3. It is destroyed as
// soon as the publisher retrieves its result.
type PendingPublish struct {
	Tag     uint64
	Outcome PublishOutcome
	reply   chan publishResult
}

// confirmState holds the channel's publisher-confirm bookkeeping. It is
// reset whenever the channel is reopened (soft-error recovery discards
// unresolved entries, per spec §4.5).
type confirmState struct {
	enabled bool
	nextTag uint64
	// order is kept ascending because tags are assigned monotonically;
	// resolving front-to-back gives the in-tag-order guarantee spec §9's
	// Open Question (a) mandates, instead of the reference's
	// out-of-order inconsistency.
	order   []uint64
	pending map[uint64]*PendingPublish
}

func newConfirmState() *confirmState {
	return &confirmState{pending: make(map[uint64]*PendingPublish)}
}

func (cs *confirmState) reset() {
	cs.enabled = false
	cs.nextTag = 0
	cs.order = nil
	cs.pending = make(map[uint64]*PendingPublish)
}

// nextDeliveryTag allocates the next monotonic tag and registers a
// PendingPublish for it.
func (cs *confirmState) nextDeliveryTag() *PendingPublish {
	cs.nextTag++
	tag := cs.nextTag
	pp := &PendingPublish{Tag: tag, reply: make(chan publishResult, 1)}
	cs.pending[tag] = pp
	cs.order = append(cs.order, tag)
	return pp
}

func (cs *confirmState) resolve(tag uint64, multiple bool, outcome PublishOutcome) {
	if !multiple {
		if pp, ok := cs.pending[tag]; ok {
			cs.finish(pp, outcome, nil)
			cs.removeOrder(tag)
		}
		return
	}
	for len(cs.order) > 0 && cs.order[0] <= tag {
		t := cs.order[0]
		cs.order = cs.order[1:]
		if pp, ok := cs.pending[t]; ok {
			cs.finish(pp, outcome, nil)
		}
	}
}

// resolveReturn pairs an inbound Basic.Return with the oldest
// unresolved tag, since the AMQP 0-9-1 Basic.Return method carries no
// delivery tag of its own. This relies on the RPC lock's FIFO publish
// ordering: the channel's confirms only ever has one publisher
// proceeding at a time, so the earliest still-pending tag is the
// correct match.
func (cs *confirmState) resolveReturn() {
	if len(cs.order) == 0 {
		return
	}
	t := cs.order[0]
	cs.order = cs.order[1:]
	if pp, ok := cs.pending[t]; ok {
		cs.finish(pp, OutcomeReturned, nil)
	}
}

func (cs *confirmState) failAll(err error) {
	for _, t := range cs.order {
		if pp, ok := cs.pending[t]; ok {
			cs.finish(pp, OutcomeUnresolved, err)
		}
	}
	cs.order = nil
	cs.pending = make(map[uint64]*PendingPublish)
}

func (cs *confirmState) finish(pp *PendingPublish, outcome PublishOutcome, err error) {
	pp.Outcome = outcome
	delete(cs.pending, pp.Tag)
	pp.reply <- publishResult{outcome: outcome, err: err}
}

func (cs *confirmState) removeOrder(tag uint64) {
	for i, t := range cs.order {
		if t == tag {
			cs.order = append(cs.order[:i], cs.order[i+1:]...)
			return
		}
	}
}
