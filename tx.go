package amqp091

import (
	"context"

	"github.com/coreamqp/amqp091/internal/wire"
)

// TxSelect puts the channel into transactional mode, per spec §4.5.
// Subsequent publishes and acknowledgements are held by the server
// until TxCommit or discarded by TxRollback.
func (c *Client) TxSelect(ctx context.Context) error {
	_, err := c.doRPC(ctx, func() error {
		return c.t.write(c.channelID, wire.NewTxSelect())
	}, matchOk(func(*wire.TxSelectOk) interface{} {
		c.txActive = true
		return nil
	}))
	return err
}

// TxCommit commits the current transaction. It is a client-side error,
// mapped to ErrNoTransaction, to call it without a prior successful
// TxSelect on this channel, per spec §4.5 and §7 ("NoTransaction --
// tx_commit/rollback without prior tx_select; user error").
func (c *Client) TxCommit(ctx context.Context) error {
	_, err := c.doRPC(ctx, func() error {
		if !c.txActive {
			return ErrNoTransaction
		}
		return c.t.write(c.channelID, wire.NewTxCommit())
	}, matchOk(func(*wire.TxCommitOk) interface{} { return nil }))
	return err
}

// TxRollback discards the current transaction's held effects. Like
// TxCommit, it requires a prior successful TxSelect.
func (c *Client) TxRollback(ctx context.Context) error {
	_, err := c.doRPC(ctx, func() error {
		if !c.txActive {
			return ErrNoTransaction
		}
		return c.t.write(c.channelID, wire.NewTxRollback())
	}, matchOk(func(*wire.TxRollbackOk) interface{} { return nil }))
	return err
}
