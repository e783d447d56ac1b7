// Package amqp091 implements a single-connection, single-channel
// AMQP 0-9-1 client engine: protocol handshake, frame transport,
// content assembly, publisher confirms, consumers, and transactions,
// driven by one internal dispatch goroutine per Client.
//
// A connection is opened with Dial or DialEndpoint, used through the
// Client's Publish/Consume/Get/Ack/... methods, and torn down with
// Close.
package amqp091
