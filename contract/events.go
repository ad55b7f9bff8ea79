package contract

import (
	"context"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/meverselabs/stoclient/service/metrics"
)

// BlockRange is an inclusive block range of a log query. From 0 is the
// genesis block and a nil To is the latest block.
type BlockRange struct {
	From uint64
	To   *uint64
}

// FullRange covers the genesis block to the latest block
var FullRange = BlockRange{}

// Blocks returns the range [from, to]
func Blocks(from, to uint64) BlockRange {
	return BlockRange{From: from, To: &to}
}

// Since returns the range from the block to the latest block
func Since(from uint64) BlockRange {
	return BlockRange{From: from}
}

func (r BlockRange) query(address common.Address, topic common.Hash) ethereum.FilterQuery {
	q := ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(r.From),
		Addresses: []common.Address{address},
		Topics:    [][]common.Hash{{topic}},
	}
	if r.To != nil {
		q.ToBlock = new(big.Int).SetUint64(*r.To)
	}
	return q
}

// PastEvents returns the logs of the event emitted by the contract in the
// range, in chain order
func (c *Contract) PastEvents(ctx context.Context, event string, r BlockRange) ([]types.Log, error) {
	ev, has := c.abi.Events[event]
	if !has {
		return nil, errors.Wrapf(ErrInvalidContract, "event %s is not in the abi of %s", event, c.address.Hex())
	}

	start := time.Now()
	logs, err := c.ctx.Backend.FilterLogs(ctx, r.query(c.address, ev.ID))
	err = c.wrap(event, err)
	c.ctx.Metrics.Observe(metrics.KindLogs, event, start, err)
	if err != nil {
		return nil, err
	}

	out := logs[:0]
	for _, l := range logs {
		if l.Removed {
			continue
		}
		out = append(out, l)
	}
	c.log().Debug("logs", zap.String("event", event), zap.Int("count", len(out)), zap.Duration("duration", time.Since(start)))
	return out, nil
}

// UnpackLog decodes the log of the event into out
func (c *Contract) UnpackLog(out interface{}, event string, log types.Log) error {
	ev, has := c.abi.Events[event]
	if !has {
		return errors.Wrapf(ErrInvalidContract, "event %s is not in the abi of %s", event, c.address.Hex())
	}
	if len(log.Topics) == 0 || log.Topics[0] != ev.ID {
		return errors.Wrapf(ErrInvalidArgument, "log %s:%d is not a %s event", log.TxHash.Hex(), log.Index, event)
	}
	if err := c.bound.UnpackLog(out, event, log); err != nil {
		return errors.Wrapf(ErrInvalidArgument, "%s: %v", event, err)
	}
	return nil
}
