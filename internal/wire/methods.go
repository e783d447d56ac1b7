package wire

import (
	"fmt"

	"github.com/coreamqp/amqp091/internal/buffer"
)

// AMQ class ids, per the AMQP 0-9-1 class/method tables referenced by
// spec §3 and §4.3-§4.5.
const (
	ClassConnection uint16 = 10
	ClassChannel    uint16 = 20
	ClassExchange   uint16 = 40
	ClassQueue      uint16 = 50
	ClassBasic      uint16 = 60
	ClassConfirm    uint16 = 85
	ClassTx         uint16 = 90
)

// methodBase supplies the ClassID/MethodID accessors for every concrete
// method type below; each type embeds it so only Marshal/Unmarshal need
// to be written per method, mirroring how the teacher's frameBody()
// marker keeps the boilerplate to one line per performative.
type methodBase struct {
	class, method uint16
}

func (m methodBase) ClassID() uint16  { return m.class }
func (m methodBase) MethodID() uint16 { return m.method }
func (methodBase) frameBody()         {}

// ---- connection class -----------------------------------------------

// ConnectionStart is sent by the server immediately after the protocol
// header, per spec §4.3 step 2.
type ConnectionStart struct {
	methodBase
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties Table
	Mechanisms       string // space-separated SASL mechanism list
	Locales          string
}

func NewConnectionStart() *ConnectionStart {
	return &ConnectionStart{methodBase: methodBase{ClassConnection, 10}}
}

func (m *ConnectionStart) Marshal(w *buffer.Buffer) error {
	w.WriteByte(m.VersionMajor)
	w.WriteByte(m.VersionMinor)
	if err := WriteTable(w, m.ServerProperties); err != nil {
		return err
	}
	if err := WriteLongString(w, m.Mechanisms); err != nil {
		return err
	}
	return WriteLongString(w, m.Locales)
}

func (m *ConnectionStart) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.VersionMajor, err = r.ReadByte(); err != nil {
		return err
	}
	if m.VersionMinor, err = r.ReadByte(); err != nil {
		return err
	}
	if m.ServerProperties, err = ReadTable(r); err != nil {
		return err
	}
	if m.Mechanisms, err = ReadLongString(r); err != nil {
		return err
	}
	m.Locales, err = ReadLongString(r)
	return err
}

// ConnectionStartOk is the client's response to Start, carrying client
// properties, the chosen mechanism, the SASL response, and locale,
// per spec §4.3 step 2.
type ConnectionStartOk struct {
	methodBase
	ClientProperties Table
	Mechanism        string
	Response         string // "\0<user>\0<pass>" for PLAIN
	Locale           string
}

func NewConnectionStartOk() *ConnectionStartOk {
	return &ConnectionStartOk{methodBase: methodBase{ClassConnection, 11}}
}

func (m *ConnectionStartOk) Marshal(w *buffer.Buffer) error {
	if err := WriteTable(w, m.ClientProperties); err != nil {
		return err
	}
	if err := WriteShortString(w, m.Mechanism); err != nil {
		return err
	}
	if err := WriteLongString(w, m.Response); err != nil {
		return err
	}
	return WriteShortString(w, m.Locale)
}

func (m *ConnectionStartOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ClientProperties, err = ReadTable(r); err != nil {
		return err
	}
	if m.Mechanism, err = ReadShortString(r); err != nil {
		return err
	}
	if m.Response, err = ReadLongString(r); err != nil {
		return err
	}
	m.Locale, err = ReadShortString(r)
	return err
}

// ConnectionTune carries the server's proposed limits, per spec §4.3
// step 3.
type ConnectionTune struct {
	methodBase
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func NewConnectionTune() *ConnectionTune {
	return &ConnectionTune{methodBase: methodBase{ClassConnection, 30}}
}

func (m *ConnectionTune) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(m.ChannelMax)
	w.WriteUint32(m.FrameMax)
	w.WriteUint16(m.Heartbeat)
	return nil
}

func (m *ConnectionTune) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ChannelMax, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.FrameMax, err = r.ReadUint32(); err != nil {
		return err
	}
	m.Heartbeat, err = r.ReadUint16()
	return err
}

// ConnectionTuneOk carries the client's negotiated triple back, per
// spec §4.3 step 3.
type ConnectionTuneOk struct {
	methodBase
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func NewConnectionTuneOk() *ConnectionTuneOk {
	return &ConnectionTuneOk{methodBase: methodBase{ClassConnection, 31}}
}

func (m *ConnectionTuneOk) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(m.ChannelMax)
	w.WriteUint32(m.FrameMax)
	w.WriteUint16(m.Heartbeat)
	return nil
}

func (m *ConnectionTuneOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ChannelMax, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.FrameMax, err = r.ReadUint32(); err != nil {
		return err
	}
	m.Heartbeat, err = r.ReadUint16()
	return err
}

// ConnectionOpen selects the virtual host, per spec §4.3 step 3 (emitted
// right after TuneOk).
type ConnectionOpen struct {
	methodBase
	VirtualHost string
}

func NewConnectionOpen() *ConnectionOpen {
	return &ConnectionOpen{methodBase: methodBase{ClassConnection, 40}}
}

func (m *ConnectionOpen) Marshal(w *buffer.Buffer) error {
	if err := WriteShortString(w, m.VirtualHost); err != nil {
		return err
	}
	if err := WriteShortString(w, ""); err != nil { // reserved "capabilities"
		return err
	}
	w.WriteByte(0) // reserved "insist" bit
	return nil
}

func (m *ConnectionOpen) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.VirtualHost, err = ReadShortString(r); err != nil {
		return err
	}
	if _, err = ReadShortString(r); err != nil { // reserved
		return err
	}
	_, err = r.ReadByte() // reserved
	return err
}

// ConnectionOpenOk signals the connection is ready for use, per spec
// §4.3 step 4.
type ConnectionOpenOk struct{ methodBase }

func NewConnectionOpenOk() *ConnectionOpenOk {
	return &ConnectionOpenOk{methodBase{ClassConnection, 41}}
}

func (m *ConnectionOpenOk) Marshal(w *buffer.Buffer) error {
	return WriteShortString(w, "") // reserved
}

func (m *ConnectionOpenOk) Unmarshal(r *buffer.Buffer) error {
	_, err := ReadShortString(r)
	return err
}

// ConnectionClose is used both to request a clean close and to report a
// hard error (code/text), per spec §7.
type ConnectionClose struct {
	methodBase
	ReplyCode       uint16
	ReplyText       string
	FailingClassID  uint16
	FailingMethodID uint16
}

func NewConnectionClose() *ConnectionClose {
	return &ConnectionClose{methodBase: methodBase{ClassConnection, 50}}
}

func (m *ConnectionClose) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(m.ReplyCode)
	if err := WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	w.WriteUint16(m.FailingClassID)
	w.WriteUint16(m.FailingMethodID)
	return nil
}

func (m *ConnectionClose) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ReplyCode, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.ReplyText, err = ReadShortString(r); err != nil {
		return err
	}
	if m.FailingClassID, err = r.ReadUint16(); err != nil {
		return err
	}
	m.FailingMethodID, err = r.ReadUint16()
	return err
}

// ConnectionCloseOk acknowledges a ConnectionClose, per spec §4.3.
type ConnectionCloseOk struct{ methodBase }

func NewConnectionCloseOk() *ConnectionCloseOk {
	return &ConnectionCloseOk{methodBase{ClassConnection, 51}}
}
func (m *ConnectionCloseOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *ConnectionCloseOk) Unmarshal(*buffer.Buffer) error { return nil }

// ConnectionBlocked notifies the client that the broker has paused
// accepting further content, per spec §4.3.
type ConnectionBlocked struct {
	methodBase
	Reason string
}

func NewConnectionBlocked() *ConnectionBlocked {
	return &ConnectionBlocked{methodBase: methodBase{ClassConnection, 60}}
}
func (m *ConnectionBlocked) Marshal(w *buffer.Buffer) error { return WriteShortString(w, m.Reason) }
func (m *ConnectionBlocked) Unmarshal(r *buffer.Buffer) error {
	var err error
	m.Reason, err = ReadShortString(r)
	return err
}

// ConnectionUnblocked clears the Blocked condition, per spec §4.3.
type ConnectionUnblocked struct{ methodBase }

func NewConnectionUnblocked() *ConnectionUnblocked {
	return &ConnectionUnblocked{methodBase{ClassConnection, 61}}
}
func (m *ConnectionUnblocked) Marshal(*buffer.Buffer) error   { return nil }
func (m *ConnectionUnblocked) Unmarshal(*buffer.Buffer) error { return nil }

// ---- channel class ----------------------------------------------------

// ChannelOpen opens a fresh channel id, used both on initial connect and
// by the RPC & Channel Engine's transparent reopen after a soft error
// (spec §4.5 "Channel recovery").
type ChannelOpen struct{ methodBase }

func NewChannelOpen() *ChannelOpen { return &ChannelOpen{methodBase{ClassChannel, 10}} }
func (m *ChannelOpen) Marshal(w *buffer.Buffer) error { return WriteShortString(w, "") }
func (m *ChannelOpen) Unmarshal(r *buffer.Buffer) error {
	_, err := ReadShortString(r)
	return err
}

// ChannelOpenOk acknowledges ChannelOpen.
type ChannelOpenOk struct{ methodBase }

func NewChannelOpenOk() *ChannelOpenOk { return &ChannelOpenOk{methodBase{ClassChannel, 11}} }
func (m *ChannelOpenOk) Marshal(w *buffer.Buffer) error {
	return WriteLongString(w, "")
}
func (m *ChannelOpenOk) Unmarshal(r *buffer.Buffer) error {
	_, err := ReadLongString(r)
	return err
}

// ChannelClose is sent by the server for a soft error (closing just the
// channel) or by the client to request a clean channel close.
type ChannelClose struct {
	methodBase
	ReplyCode       uint16
	ReplyText       string
	FailingClassID  uint16
	FailingMethodID uint16
}

func NewChannelClose() *ChannelClose { return &ChannelClose{methodBase: methodBase{ClassChannel, 40}} }

func (m *ChannelClose) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(m.ReplyCode)
	if err := WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	w.WriteUint16(m.FailingClassID)
	w.WriteUint16(m.FailingMethodID)
	return nil
}

func (m *ChannelClose) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ReplyCode, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.ReplyText, err = ReadShortString(r); err != nil {
		return err
	}
	if m.FailingClassID, err = r.ReadUint16(); err != nil {
		return err
	}
	m.FailingMethodID, err = r.ReadUint16()
	return err
}

// ChannelCloseOk acknowledges a ChannelClose.
type ChannelCloseOk struct{ methodBase }

func NewChannelCloseOk() *ChannelCloseOk { return &ChannelCloseOk{methodBase{ClassChannel, 41}} }
func (m *ChannelCloseOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *ChannelCloseOk) Unmarshal(*buffer.Buffer) error { return nil }

// ---- exchange class -----------------------------------------------------

// ExchangeDeclare declares an exchange. Name/kind validation is done by
// the RPC & Channel Engine before this is ever marshaled, per spec §4.5
// "Argument validation".
type ExchangeDeclare struct {
	methodBase
	Exchange   string
	Kind       string
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	NoWait     bool
	Arguments  Table
}

func NewExchangeDeclare() *ExchangeDeclare {
	return &ExchangeDeclare{methodBase: methodBase{ClassExchange, 10}}
}

func (m *ExchangeDeclare) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0) // reserved "ticket"
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := WriteShortString(w, m.Kind); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.Passive)
	bits.Set(1, m.Durable)
	bits.Set(2, m.AutoDelete)
	bits.Set(3, m.Internal)
	bits.Set(4, m.NoWait)
	WriteBits(w, bits)
	return WriteTable(w, m.Arguments)
}

func (m *ExchangeDeclare) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	if m.Kind, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Passive, m.Durable, m.AutoDelete, m.Internal, m.NoWait =
		bits.Get(0), bits.Get(1), bits.Get(2), bits.Get(3), bits.Get(4)
	m.Arguments, err = ReadTable(r)
	return err
}

// ExchangeDeclareOk acknowledges ExchangeDeclare.
type ExchangeDeclareOk struct{ methodBase }

func NewExchangeDeclareOk() *ExchangeDeclareOk {
	return &ExchangeDeclareOk{methodBase{ClassExchange, 11}}
}
func (m *ExchangeDeclareOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *ExchangeDeclareOk) Unmarshal(*buffer.Buffer) error { return nil }

// ExchangeDelete deletes an exchange.
type ExchangeDelete struct {
	methodBase
	Exchange string
	IfUnused bool
	NoWait   bool
}

func NewExchangeDelete() *ExchangeDelete { return &ExchangeDelete{methodBase: methodBase{ClassExchange, 20}} }

func (m *ExchangeDelete) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.IfUnused)
	bits.Set(1, m.NoWait)
	WriteBits(w, bits)
	return nil
}

func (m *ExchangeDelete) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.IfUnused, m.NoWait = bits.Get(0), bits.Get(1)
	return nil
}

// ExchangeDeleteOk acknowledges ExchangeDelete.
type ExchangeDeleteOk struct{ methodBase }

func NewExchangeDeleteOk() *ExchangeDeleteOk { return &ExchangeDeleteOk{methodBase{ClassExchange, 21}} }
func (m *ExchangeDeleteOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *ExchangeDeleteOk) Unmarshal(*buffer.Buffer) error { return nil }

// ExchangeBind binds an exchange to another exchange (RabbitMQ
// extension), kept for parity with ExchangeUnbind below.
type ExchangeBind struct {
	methodBase
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func NewExchangeBind() *ExchangeBind { return &ExchangeBind{methodBase: methodBase{ClassExchange, 30}} }

func (m *ExchangeBind) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Destination); err != nil {
		return err
	}
	if err := WriteShortString(w, m.Source); err != nil {
		return err
	}
	if err := WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.NoWait)
	WriteBits(w, bits)
	return WriteTable(w, m.Arguments)
}

func (m *ExchangeBind) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Destination, err = ReadShortString(r); err != nil {
		return err
	}
	if m.Source, err = ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoWait = bits.Get(0)
	m.Arguments, err = ReadTable(r)
	return err
}

// ExchangeBindOk acknowledges ExchangeBind.
type ExchangeBindOk struct{ methodBase }

func NewExchangeBindOk() *ExchangeBindOk { return &ExchangeBindOk{methodBase{ClassExchange, 31}} }
func (m *ExchangeBindOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *ExchangeBindOk) Unmarshal(*buffer.Buffer) error { return nil }

// ExchangeUnbind reverses ExchangeBind.
type ExchangeUnbind struct {
	methodBase
	Destination string
	Source      string
	RoutingKey  string
	NoWait      bool
	Arguments   Table
}

func NewExchangeUnbind() *ExchangeUnbind {
	return &ExchangeUnbind{methodBase: methodBase{ClassExchange, 40}}
}

func (m *ExchangeUnbind) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Destination); err != nil {
		return err
	}
	if err := WriteShortString(w, m.Source); err != nil {
		return err
	}
	if err := WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.NoWait)
	WriteBits(w, bits)
	return WriteTable(w, m.Arguments)
}

func (m *ExchangeUnbind) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Destination, err = ReadShortString(r); err != nil {
		return err
	}
	if m.Source, err = ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoWait = bits.Get(0)
	m.Arguments, err = ReadTable(r)
	return err
}

// ExchangeUnbindOk acknowledges ExchangeUnbind. RabbitMQ assigns this
// method id 51, out of numeric sequence with the rest of the class.
type ExchangeUnbindOk struct{ methodBase }

func NewExchangeUnbindOk() *ExchangeUnbindOk { return &ExchangeUnbindOk{methodBase{ClassExchange, 51}} }
func (m *ExchangeUnbindOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *ExchangeUnbindOk) Unmarshal(*buffer.Buffer) error { return nil }

// ---- queue class --------------------------------------------------------

// QueueDeclare declares (or asserts) a queue.
type QueueDeclare struct {
	methodBase
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func NewQueueDeclare() *QueueDeclare { return &QueueDeclare{methodBase: methodBase{ClassQueue, 10}} }

func (m *QueueDeclare) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.Passive)
	bits.Set(1, m.Durable)
	bits.Set(2, m.Exclusive)
	bits.Set(3, m.AutoDelete)
	bits.Set(4, m.NoWait)
	WriteBits(w, bits)
	return WriteTable(w, m.Arguments)
}

func (m *QueueDeclare) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait =
		bits.Get(0), bits.Get(1), bits.Get(2), bits.Get(3), bits.Get(4)
	m.Arguments, err = ReadTable(r)
	return err
}

// QueueDeclareOk returns the resolved queue name (useful when the
// caller asked for a server-generated name) plus message/consumer
// counts, per spec §4.5 "declare-ok returns (message_count,
// consumer_count)".
type QueueDeclareOk struct {
	methodBase
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func NewQueueDeclareOk() *QueueDeclareOk { return &QueueDeclareOk{methodBase: methodBase{ClassQueue, 11}} }

func (m *QueueDeclareOk) Marshal(w *buffer.Buffer) error {
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	w.WriteUint32(m.MessageCount)
	w.WriteUint32(m.ConsumerCount)
	return nil
}

func (m *QueueDeclareOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	if m.MessageCount, err = r.ReadUint32(); err != nil {
		return err
	}
	m.ConsumerCount, err = r.ReadUint32()
	return err
}

// QueueBind binds a queue to an exchange under a routing key.
type QueueBind struct {
	methodBase
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func NewQueueBind() *QueueBind { return &QueueBind{methodBase: methodBase{ClassQueue, 20}} }

func (m *QueueBind) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.NoWait)
	WriteBits(w, bits)
	return WriteTable(w, m.Arguments)
}

func (m *QueueBind) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoWait = bits.Get(0)
	m.Arguments, err = ReadTable(r)
	return err
}

// QueueBindOk acknowledges QueueBind.
type QueueBindOk struct{ methodBase }

func NewQueueBindOk() *QueueBindOk { return &QueueBindOk{methodBase{ClassQueue, 21}} }
func (m *QueueBindOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *QueueBindOk) Unmarshal(*buffer.Buffer) error { return nil }

// QueueUnbind reverses QueueBind. Unlike most methods it has no NoWait
// flag in the real protocol (unbind always expects an ack).
type QueueUnbind struct {
	methodBase
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func NewQueueUnbind() *QueueUnbind { return &QueueUnbind{methodBase: methodBase{ClassQueue, 50}} }

func (m *QueueUnbind) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	return WriteTable(w, m.Arguments)
}

func (m *QueueUnbind) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = ReadShortString(r); err != nil {
		return err
	}
	m.Arguments, err = ReadTable(r)
	return err
}

// QueueUnbindOk acknowledges QueueUnbind.
type QueueUnbindOk struct{ methodBase }

func NewQueueUnbindOk() *QueueUnbindOk { return &QueueUnbindOk{methodBase{ClassQueue, 51}} }
func (m *QueueUnbindOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *QueueUnbindOk) Unmarshal(*buffer.Buffer) error { return nil }

// QueuePurge discards all ready messages in a queue.
type QueuePurge struct {
	methodBase
	Queue  string
	NoWait bool
}

func NewQueuePurge() *QueuePurge { return &QueuePurge{methodBase: methodBase{ClassQueue, 30}} }

func (m *QueuePurge) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.NoWait)
	WriteBits(w, bits)
	return nil
}

func (m *QueuePurge) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoWait = bits.Get(0)
	return nil
}

// QueuePurgeOk returns the number of messages purged, per spec §4.5
// "purge-ok returns message_count".
type QueuePurgeOk struct {
	methodBase
	MessageCount uint32
}

func NewQueuePurgeOk() *QueuePurgeOk { return &QueuePurgeOk{methodBase: methodBase{ClassQueue, 31}} }
func (m *QueuePurgeOk) Marshal(w *buffer.Buffer) error {
	w.WriteUint32(m.MessageCount)
	return nil
}
func (m *QueuePurgeOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	m.MessageCount, err = r.ReadUint32()
	return err
}

// QueueDelete deletes a queue.
type QueueDelete struct {
	methodBase
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func NewQueueDelete() *QueueDelete { return &QueueDelete{methodBase: methodBase{ClassQueue, 40}} }

func (m *QueueDelete) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.IfUnused)
	bits.Set(1, m.IfEmpty)
	bits.Set(2, m.NoWait)
	WriteBits(w, bits)
	return nil
}

func (m *QueueDelete) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.IfUnused, m.IfEmpty, m.NoWait = bits.Get(0), bits.Get(1), bits.Get(2)
	return nil
}

// QueueDeleteOk returns the number of messages that were in the queue
// when it was deleted.
type QueueDeleteOk struct {
	methodBase
	MessageCount uint32
}

func NewQueueDeleteOk() *QueueDeleteOk { return &QueueDeleteOk{methodBase: methodBase{ClassQueue, 41}} }
func (m *QueueDeleteOk) Marshal(w *buffer.Buffer) error {
	w.WriteUint32(m.MessageCount)
	return nil
}
func (m *QueueDeleteOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	m.MessageCount, err = r.ReadUint32()
	return err
}

// ---- basic class --------------------------------------------------------

// BasicQos sets prefetch limits, per spec §4.5 "qos_prefetch ... count
// and per_consumer only (RabbitMQ semantics)".
type BasicQos struct {
	methodBase
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func NewBasicQos() *BasicQos { return &BasicQos{methodBase: methodBase{ClassBasic, 10}} }

func (m *BasicQos) Marshal(w *buffer.Buffer) error {
	w.WriteUint32(m.PrefetchSize)
	w.WriteUint16(m.PrefetchCount)
	var bits Bits
	bits.Set(0, m.Global)
	WriteBits(w, bits)
	return nil
}

func (m *BasicQos) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.PrefetchSize, err = r.ReadUint32(); err != nil {
		return err
	}
	if m.PrefetchCount, err = r.ReadUint16(); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Global = bits.Get(0)
	return nil
}

// BasicQosOk acknowledges BasicQos.
type BasicQosOk struct{ methodBase }

func NewBasicQosOk() *BasicQosOk { return &BasicQosOk{methodBase{ClassBasic, 11}} }
func (m *BasicQosOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *BasicQosOk) Unmarshal(*buffer.Buffer) error { return nil }

// BasicConsume registers a consumer on a queue.
type BasicConsume struct {
	methodBase
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func NewBasicConsume() *BasicConsume { return &BasicConsume{methodBase: methodBase{ClassBasic, 20}} }

func (m *BasicConsume) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	if err := WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.NoLocal)
	bits.Set(1, m.NoAck)
	bits.Set(2, m.Exclusive)
	bits.Set(3, m.NoWait)
	WriteBits(w, bits)
	return WriteTable(w, m.Arguments)
}

func (m *BasicConsume) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	if m.ConsumerTag, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoLocal, m.NoAck, m.Exclusive, m.NoWait =
		bits.Get(0), bits.Get(1), bits.Get(2), bits.Get(3)
	m.Arguments, err = ReadTable(r)
	return err
}

// BasicConsumeOk returns the (possibly server-assigned) consumer tag.
type BasicConsumeOk struct {
	methodBase
	ConsumerTag string
}

func NewBasicConsumeOk() *BasicConsumeOk { return &BasicConsumeOk{methodBase: methodBase{ClassBasic, 21}} }
func (m *BasicConsumeOk) Marshal(w *buffer.Buffer) error {
	return WriteShortString(w, m.ConsumerTag)
}
func (m *BasicConsumeOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	m.ConsumerTag, err = ReadShortString(r)
	return err
}

// BasicCancel cancels a consumer.
type BasicCancel struct {
	methodBase
	ConsumerTag string
	NoWait      bool
}

func NewBasicCancel() *BasicCancel { return &BasicCancel{methodBase: methodBase{ClassBasic, 30}} }

func (m *BasicCancel) Marshal(w *buffer.Buffer) error {
	if err := WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.NoWait)
	WriteBits(w, bits)
	return nil
}

func (m *BasicCancel) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ConsumerTag, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoWait = bits.Get(0)
	return nil
}

// BasicCancelOk acknowledges BasicCancel.
type BasicCancelOk struct {
	methodBase
	ConsumerTag string
}

func NewBasicCancelOk() *BasicCancelOk { return &BasicCancelOk{methodBase: methodBase{ClassBasic, 31}} }
func (m *BasicCancelOk) Marshal(w *buffer.Buffer) error {
	return WriteShortString(w, m.ConsumerTag)
}
func (m *BasicCancelOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	m.ConsumerTag, err = ReadShortString(r)
	return err
}

// BasicPublish is the method frame that opens an outbound message, per
// spec §4.4 "Outbound: given (method, properties, body), emit method...".
type BasicPublish struct {
	methodBase
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func NewBasicPublish() *BasicPublish { return &BasicPublish{methodBase: methodBase{ClassBasic, 40}} }

func (m *BasicPublish) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.Mandatory)
	bits.Set(1, m.Immediate)
	WriteBits(w, bits)
	return nil
}

func (m *BasicPublish) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Mandatory, m.Immediate = bits.Get(0), bits.Get(1)
	return nil
}

// BasicReturn carries back a mandatory/immediate message the broker
// could not route, per spec §4.5 and scenario S5.
type BasicReturn struct {
	methodBase
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func NewBasicReturn() *BasicReturn { return &BasicReturn{methodBase: methodBase{ClassBasic, 50}} }

func (m *BasicReturn) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(m.ReplyCode)
	if err := WriteShortString(w, m.ReplyText); err != nil {
		return err
	}
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	return WriteShortString(w, m.RoutingKey)
}

func (m *BasicReturn) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ReplyCode, err = r.ReadUint16(); err != nil {
		return err
	}
	if m.ReplyText, err = ReadShortString(r); err != nil {
		return err
	}
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	m.RoutingKey, err = ReadShortString(r)
	return err
}

// BasicDeliver is the opening method of a pushed message on an active
// consumer, per spec §4.4.
type BasicDeliver struct {
	methodBase
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func NewBasicDeliver() *BasicDeliver { return &BasicDeliver{methodBase: methodBase{ClassBasic, 60}} }

func (m *BasicDeliver) Marshal(w *buffer.Buffer) error {
	if err := WriteShortString(w, m.ConsumerTag); err != nil {
		return err
	}
	w.WriteUint64(m.DeliveryTag)
	var bits Bits
	bits.Set(0, m.Redelivered)
	WriteBits(w, bits)
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	return WriteShortString(w, m.RoutingKey)
}

func (m *BasicDeliver) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.ConsumerTag, err = ReadShortString(r); err != nil {
		return err
	}
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Redelivered = bits.Get(0)
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	m.RoutingKey, err = ReadShortString(r)
	return err
}

// BasicGet requests a single message from a queue (polling), per spec
// §4.5 "basic_get".
type BasicGet struct {
	methodBase
	Queue  string
	NoAck  bool
}

func NewBasicGet() *BasicGet { return &BasicGet{methodBase: methodBase{ClassBasic, 70}} }

func (m *BasicGet) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(0)
	if err := WriteShortString(w, m.Queue); err != nil {
		return err
	}
	var bits Bits
	bits.Set(0, m.NoAck)
	WriteBits(w, bits)
	return nil
}

func (m *BasicGet) Unmarshal(r *buffer.Buffer) error {
	if _, err := r.ReadUint16(); err != nil {
		return err
	}
	var err error
	if m.Queue, err = ReadShortString(r); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoAck = bits.Get(0)
	return nil
}

// BasicGetOk opens the message body fetched by BasicGet.
type BasicGetOk struct {
	methodBase
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func NewBasicGetOk() *BasicGetOk { return &BasicGetOk{methodBase: methodBase{ClassBasic, 71}} }

func (m *BasicGetOk) Marshal(w *buffer.Buffer) error {
	w.WriteUint64(m.DeliveryTag)
	var bits Bits
	bits.Set(0, m.Redelivered)
	WriteBits(w, bits)
	if err := WriteShortString(w, m.Exchange); err != nil {
		return err
	}
	if err := WriteShortString(w, m.RoutingKey); err != nil {
		return err
	}
	w.WriteUint32(m.MessageCount)
	return nil
}

func (m *BasicGetOk) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Redelivered = bits.Get(0)
	if m.Exchange, err = ReadShortString(r); err != nil {
		return err
	}
	if m.RoutingKey, err = ReadShortString(r); err != nil {
		return err
	}
	m.MessageCount, err = r.ReadUint32()
	return err
}

// BasicGetEmpty is returned instead of BasicGetOk when the queue has no
// ready messages, per spec §4.5 and §9.1's "basic_get empty-queue
// signaling" supplement.
type BasicGetEmpty struct{ methodBase }

func NewBasicGetEmpty() *BasicGetEmpty { return &BasicGetEmpty{methodBase{ClassBasic, 72}} }
func (m *BasicGetEmpty) Marshal(w *buffer.Buffer) error { return WriteShortString(w, "") }
func (m *BasicGetEmpty) Unmarshal(r *buffer.Buffer) error {
	_, err := ReadShortString(r)
	return err
}

// BasicAck acknowledges one or more deliveries, per spec §4.5.
type BasicAck struct {
	methodBase
	DeliveryTag uint64
	Multiple    bool
}

func NewBasicAck() *BasicAck { return &BasicAck{methodBase: methodBase{ClassBasic, 80}} }

func (m *BasicAck) Marshal(w *buffer.Buffer) error {
	w.WriteUint64(m.DeliveryTag)
	var bits Bits
	bits.Set(0, m.Multiple)
	WriteBits(w, bits)
	return nil
}

func (m *BasicAck) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Multiple = bits.Get(0)
	return nil
}

// BasicReject rejects a single delivery, optionally requeuing it.
type BasicReject struct {
	methodBase
	DeliveryTag uint64
	Requeue     bool
}

func NewBasicReject() *BasicReject { return &BasicReject{methodBase: methodBase{ClassBasic, 90}} }

func (m *BasicReject) Marshal(w *buffer.Buffer) error {
	w.WriteUint64(m.DeliveryTag)
	var bits Bits
	bits.Set(0, m.Requeue)
	WriteBits(w, bits)
	return nil
}

func (m *BasicReject) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Requeue = bits.Get(0)
	return nil
}

// BasicRecoverAsync is the legacy, reply-less form of BasicRecover.
type BasicRecoverAsync struct {
	methodBase
	Requeue bool
}

func NewBasicRecoverAsync() *BasicRecoverAsync {
	return &BasicRecoverAsync{methodBase: methodBase{ClassBasic, 100}}
}
func (m *BasicRecoverAsync) Marshal(w *buffer.Buffer) error {
	var bits Bits
	bits.Set(0, m.Requeue)
	WriteBits(w, bits)
	return nil
}
func (m *BasicRecoverAsync) Unmarshal(r *buffer.Buffer) error {
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Requeue = bits.Get(0)
	return nil
}

// BasicRecover requests redelivery of unacknowledged messages, per spec
// §4.5 "requeue=false is not implemented server-side; reported as such".
type BasicRecover struct {
	methodBase
	Requeue bool
}

func NewBasicRecover() *BasicRecover { return &BasicRecover{methodBase: methodBase{ClassBasic, 110}} }
func (m *BasicRecover) Marshal(w *buffer.Buffer) error {
	var bits Bits
	bits.Set(0, m.Requeue)
	WriteBits(w, bits)
	return nil
}
func (m *BasicRecover) Unmarshal(r *buffer.Buffer) error {
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Requeue = bits.Get(0)
	return nil
}

// BasicRecoverOk acknowledges BasicRecover.
type BasicRecoverOk struct{ methodBase }

func NewBasicRecoverOk() *BasicRecoverOk { return &BasicRecoverOk{methodBase{ClassBasic, 111}} }
func (m *BasicRecoverOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *BasicRecoverOk) Unmarshal(*buffer.Buffer) error { return nil }

// BasicNack is RabbitMQ's extension negative-acknowledgement, carrying a
// requeue flag unlike plain BasicReject, per spec §4.5 publisher
// confirms and §9's "surface basic.nack as a Nack outcome" note.
type BasicNack struct {
	methodBase
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func NewBasicNack() *BasicNack { return &BasicNack{methodBase: methodBase{ClassBasic, 120}} }

func (m *BasicNack) Marshal(w *buffer.Buffer) error {
	w.WriteUint64(m.DeliveryTag)
	var bits Bits
	bits.Set(0, m.Multiple)
	bits.Set(1, m.Requeue)
	WriteBits(w, bits)
	return nil
}

func (m *BasicNack) Unmarshal(r *buffer.Buffer) error {
	var err error
	if m.DeliveryTag, err = r.ReadUint64(); err != nil {
		return err
	}
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.Multiple, m.Requeue = bits.Get(0), bits.Get(1)
	return nil
}

// ---- confirm class (RabbitMQ extension) ---------------------------------

// ConfirmSelect switches the channel into publisher-confirms mode, per
// spec §4.5 "confirm_select".
type ConfirmSelect struct {
	methodBase
	NoWait bool
}

func NewConfirmSelect() *ConfirmSelect { return &ConfirmSelect{methodBase: methodBase{ClassConfirm, 10}} }
func (m *ConfirmSelect) Marshal(w *buffer.Buffer) error {
	var bits Bits
	bits.Set(0, m.NoWait)
	WriteBits(w, bits)
	return nil
}
func (m *ConfirmSelect) Unmarshal(r *buffer.Buffer) error {
	bits, err := ReadBits(r)
	if err != nil {
		return err
	}
	m.NoWait = bits.Get(0)
	return nil
}

// ConfirmSelectOk acknowledges ConfirmSelect.
type ConfirmSelectOk struct{ methodBase }

func NewConfirmSelectOk() *ConfirmSelectOk { return &ConfirmSelectOk{methodBase{ClassConfirm, 11}} }
func (m *ConfirmSelectOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *ConfirmSelectOk) Unmarshal(*buffer.Buffer) error { return nil }

// ---- tx class -------------------------------------------------------------

// TxSelect enters transactional mode on a channel.
type TxSelect struct{ methodBase }

func NewTxSelect() *TxSelect { return &TxSelect{methodBase{ClassTx, 10}} }
func (m *TxSelect) Marshal(*buffer.Buffer) error   { return nil }
func (m *TxSelect) Unmarshal(*buffer.Buffer) error { return nil }

// TxSelectOk acknowledges TxSelect.
type TxSelectOk struct{ methodBase }

func NewTxSelectOk() *TxSelectOk { return &TxSelectOk{methodBase{ClassTx, 11}} }
func (m *TxSelectOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *TxSelectOk) Unmarshal(*buffer.Buffer) error { return nil }

// TxCommit commits the current transaction.
type TxCommit struct{ methodBase }

func NewTxCommit() *TxCommit { return &TxCommit{methodBase{ClassTx, 20}} }
func (m *TxCommit) Marshal(*buffer.Buffer) error   { return nil }
func (m *TxCommit) Unmarshal(*buffer.Buffer) error { return nil }

// TxCommitOk acknowledges TxCommit.
type TxCommitOk struct{ methodBase }

func NewTxCommitOk() *TxCommitOk { return &TxCommitOk{methodBase{ClassTx, 21}} }
func (m *TxCommitOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *TxCommitOk) Unmarshal(*buffer.Buffer) error { return nil }

// TxRollback rolls back the current transaction.
type TxRollback struct{ methodBase }

func NewTxRollback() *TxRollback { return &TxRollback{methodBase{ClassTx, 30}} }
func (m *TxRollback) Marshal(*buffer.Buffer) error   { return nil }
func (m *TxRollback) Unmarshal(*buffer.Buffer) error { return nil }

// TxRollbackOk acknowledges TxRollback.
type TxRollbackOk struct{ methodBase }

func NewTxRollbackOk() *TxRollbackOk { return &TxRollbackOk{methodBase{ClassTx, 31}} }
func (m *TxRollbackOk) Marshal(*buffer.Buffer) error   { return nil }
func (m *TxRollbackOk) Unmarshal(*buffer.Buffer) error { return nil }

// Classify returns a zero-valued Method for (classID, methodID), used by
// ReadFrame (frame.go) to dispatch an incoming method frame to its
// concrete type before Unmarshal is called.
func Classify(classID, methodID uint16) (Method, error) {
	ctor, ok := registry[key{classID, methodID}]
	if !ok {
		return nil, fmt.Errorf("%w: unknown method %d.%d", ErrMalformedFrame, classID, methodID)
	}
	return ctor(), nil
}

type key struct{ class, method uint16 }

var registry = map[key]func() Method{
	{ClassConnection, 10}: func() Method { return NewConnectionStart() },
	{ClassConnection, 11}: func() Method { return NewConnectionStartOk() },
	{ClassConnection, 30}: func() Method { return NewConnectionTune() },
	{ClassConnection, 31}: func() Method { return NewConnectionTuneOk() },
	{ClassConnection, 40}: func() Method { return NewConnectionOpen() },
	{ClassConnection, 41}: func() Method { return NewConnectionOpenOk() },
	{ClassConnection, 50}: func() Method { return NewConnectionClose() },
	{ClassConnection, 51}: func() Method { return NewConnectionCloseOk() },
	{ClassConnection, 60}: func() Method { return NewConnectionBlocked() },
	{ClassConnection, 61}: func() Method { return NewConnectionUnblocked() },

	{ClassChannel, 10}: func() Method { return NewChannelOpen() },
	{ClassChannel, 11}: func() Method { return NewChannelOpenOk() },
	{ClassChannel, 40}: func() Method { return NewChannelClose() },
	{ClassChannel, 41}: func() Method { return NewChannelCloseOk() },

	{ClassExchange, 10}: func() Method { return NewExchangeDeclare() },
	{ClassExchange, 11}: func() Method { return NewExchangeDeclareOk() },
	{ClassExchange, 20}: func() Method { return NewExchangeDelete() },
	{ClassExchange, 21}: func() Method { return NewExchangeDeleteOk() },
	{ClassExchange, 30}: func() Method { return NewExchangeBind() },
	{ClassExchange, 31}: func() Method { return NewExchangeBindOk() },
	{ClassExchange, 40}: func() Method { return NewExchangeUnbind() },
	{ClassExchange, 51}: func() Method { return NewExchangeUnbindOk() },

	{ClassQueue, 10}: func() Method { return NewQueueDeclare() },
	{ClassQueue, 11}: func() Method { return NewQueueDeclareOk() },
	{ClassQueue, 20}: func() Method { return NewQueueBind() },
	{ClassQueue, 21}: func() Method { return NewQueueBindOk() },
	{ClassQueue, 50}: func() Method { return NewQueueUnbind() },
	{ClassQueue, 51}: func() Method { return NewQueueUnbindOk() },
	{ClassQueue, 30}: func() Method { return NewQueuePurge() },
	{ClassQueue, 31}: func() Method { return NewQueuePurgeOk() },
	{ClassQueue, 40}: func() Method { return NewQueueDelete() },
	{ClassQueue, 41}: func() Method { return NewQueueDeleteOk() },

	{ClassBasic, 10}:  func() Method { return NewBasicQos() },
	{ClassBasic, 11}:  func() Method { return NewBasicQosOk() },
	{ClassBasic, 20}:  func() Method { return NewBasicConsume() },
	{ClassBasic, 21}:  func() Method { return NewBasicConsumeOk() },
	{ClassBasic, 30}:  func() Method { return NewBasicCancel() },
	{ClassBasic, 31}:  func() Method { return NewBasicCancelOk() },
	{ClassBasic, 40}:  func() Method { return NewBasicPublish() },
	{ClassBasic, 50}:  func() Method { return NewBasicReturn() },
	{ClassBasic, 60}:  func() Method { return NewBasicDeliver() },
	{ClassBasic, 70}:  func() Method { return NewBasicGet() },
	{ClassBasic, 71}:  func() Method { return NewBasicGetOk() },
	{ClassBasic, 72}:  func() Method { return NewBasicGetEmpty() },
	{ClassBasic, 80}:  func() Method { return NewBasicAck() },
	{ClassBasic, 90}:  func() Method { return NewBasicReject() },
	{ClassBasic, 100}: func() Method { return NewBasicRecoverAsync() },
	{ClassBasic, 110}: func() Method { return NewBasicRecover() },
	{ClassBasic, 111}: func() Method { return NewBasicRecoverOk() },
	{ClassBasic, 120}: func() Method { return NewBasicNack() },

	{ClassConfirm, 10}: func() Method { return NewConfirmSelect() },
	{ClassConfirm, 11}: func() Method { return NewConfirmSelectOk() },

	{ClassTx, 10}: func() Method { return NewTxSelect() },
	{ClassTx, 11}: func() Method { return NewTxSelectOk() },
	{ClassTx, 20}: func() Method { return NewTxCommit() },
	{ClassTx, 21}: func() Method { return NewTxCommitOk() },
	{ClassTx, 30}: func() Method { return NewTxRollback() },
	{ClassTx, 31}: func() Method { return NewTxRollbackOk() },
}
