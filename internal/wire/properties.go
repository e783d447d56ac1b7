package wire

import (
	"time"

	"github.com/coreamqp/amqp091/internal/buffer"
)

// property-flag bits, per AMQP 0-9-1 §4.2.6.1, high bit first.
const (
	flagContentType     = 1 << 15
	flagContentEncoding = 1 << 14
	flagHeaders         = 1 << 13
	flagDeliveryMode    = 1 << 12
	flagPriority        = 1 << 11
	flagCorrelationID   = 1 << 10
	flagReplyTo         = 1 << 9
	flagExpiration      = 1 << 8
	flagMessageID       = 1 << 7
	flagTimestamp       = 1 << 6
	flagType            = 1 << 5
	flagUserID          = 1 << 4
	flagAppID            = 1 << 3
	flagReserved        = 1 << 2
)

// Properties are the Basic content-class properties carried by a
// ContentHeader, mirroring RabbitMQ's Table of well-known message
// properties (delivery mode, priority, correlation id, ...).
type Properties struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8 // 1 = non-persistent, 2 = persistent, per spec §4.5
	Priority        uint8 // 0-255, per spec §4.5 "Priority ∈ (0,256)"
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       time.Time
	Type            string
	UserID          string
	AppID           string
}

// Marshal writes the property-flags word followed by each present field
// in the fixed order the flag bits declare.
func (p *Properties) Marshal(w *buffer.Buffer) error {
	var flags uint16
	if p.ContentType != "" {
		flags |= flagContentType
	}
	if p.ContentEncoding != "" {
		flags |= flagContentEncoding
	}
	if len(p.Headers) > 0 {
		flags |= flagHeaders
	}
	if p.DeliveryMode != 0 {
		flags |= flagDeliveryMode
	}
	if p.Priority != 0 {
		flags |= flagPriority
	}
	if p.CorrelationID != "" {
		flags |= flagCorrelationID
	}
	if p.ReplyTo != "" {
		flags |= flagReplyTo
	}
	if p.Expiration != "" {
		flags |= flagExpiration
	}
	if p.MessageID != "" {
		flags |= flagMessageID
	}
	if !p.Timestamp.IsZero() {
		flags |= flagTimestamp
	}
	if p.Type != "" {
		flags |= flagType
	}
	if p.UserID != "" {
		flags |= flagUserID
	}
	if p.AppID != "" {
		flags |= flagAppID
	}

	w.WriteUint16(flags)

	if flags&flagContentType != 0 {
		if err := WriteShortString(w, p.ContentType); err != nil {
			return err
		}
	}
	if flags&flagContentEncoding != 0 {
		if err := WriteShortString(w, p.ContentEncoding); err != nil {
			return err
		}
	}
	if flags&flagHeaders != 0 {
		if err := WriteTable(w, p.Headers); err != nil {
			return err
		}
	}
	if flags&flagDeliveryMode != 0 {
		w.WriteByte(p.DeliveryMode)
	}
	if flags&flagPriority != 0 {
		w.WriteByte(p.Priority)
	}
	if flags&flagCorrelationID != 0 {
		if err := WriteShortString(w, p.CorrelationID); err != nil {
			return err
		}
	}
	if flags&flagReplyTo != 0 {
		if err := WriteShortString(w, p.ReplyTo); err != nil {
			return err
		}
	}
	if flags&flagExpiration != 0 {
		if err := WriteShortString(w, p.Expiration); err != nil {
			return err
		}
	}
	if flags&flagMessageID != 0 {
		if err := WriteShortString(w, p.MessageID); err != nil {
			return err
		}
	}
	if flags&flagTimestamp != 0 {
		w.WriteUint64(uint64(p.Timestamp.Unix()))
	}
	if flags&flagType != 0 {
		if err := WriteShortString(w, p.Type); err != nil {
			return err
		}
	}
	if flags&flagUserID != 0 {
		if err := WriteShortString(w, p.UserID); err != nil {
			return err
		}
	}
	if flags&flagAppID != 0 {
		if err := WriteShortString(w, p.AppID); err != nil {
			return err
		}
	}
	return nil
}

// Unmarshal reads the property-flags word and every field it declares
// present.
func (p *Properties) Unmarshal(r *buffer.Buffer) error {
	flags, err := r.ReadUint16()
	if err != nil {
		return err
	}

	var readErr error
	readShort := func() string {
		if readErr != nil {
			return ""
		}
		var s string
		s, readErr = ReadShortString(r)
		return s
	}

	if flags&flagContentType != 0 {
		p.ContentType = readShort()
	}
	if flags&flagContentEncoding != 0 {
		p.ContentEncoding = readShort()
	}
	if flags&flagHeaders != 0 && readErr == nil {
		p.Headers, readErr = ReadTable(r)
	}
	if flags&flagDeliveryMode != 0 && readErr == nil {
		p.DeliveryMode, readErr = r.ReadByte()
	}
	if flags&flagPriority != 0 && readErr == nil {
		p.Priority, readErr = r.ReadByte()
	}
	if flags&flagCorrelationID != 0 {
		p.CorrelationID = readShort()
	}
	if flags&flagReplyTo != 0 {
		p.ReplyTo = readShort()
	}
	if flags&flagExpiration != 0 {
		p.Expiration = readShort()
	}
	if flags&flagMessageID != 0 {
		p.MessageID = readShort()
	}
	if flags&flagTimestamp != 0 && readErr == nil {
		var ts uint64
		ts, readErr = r.ReadUint64()
		p.Timestamp = time.Unix(int64(ts), 0).UTC()
	}
	if flags&flagType != 0 {
		p.Type = readShort()
	}
	if flags&flagUserID != 0 {
		p.UserID = readShort()
	}
	if flags&flagAppID != 0 {
		p.AppID = readShort()
	}
	return readErr
}
