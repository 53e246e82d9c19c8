package builder

import (
	"context"

	"github.com/cityofzion/neow3j-go/pkg/util"
)

// BlockTracker is a cold, restartable pull iterator over new blocks,
// completing on the first block containing the tracked transaction
// hash or on caller cancellation.
// Subscribing twice to the same source (two BlockTrackers over two
// BlockSources opened at the same height) yields identical sequences.
type BlockTracker struct {
	source BlockSource
	txHash util.Uint256
	done   bool
}

// Track returns a BlockTracker over source that completes when it
// observes txHash included in a block.
func Track(source BlockSource, txHash util.Uint256) *BlockTracker {
	return &BlockTracker{source: source, txHash: txHash}
}

// Next blocks until a new block arrives, the tracked hash is found in
// one (found=true, err=nil), or ctx is canceled. Once found, every
// subsequent call returns (0, false, nil) without touching the source
// again.
func (t *BlockTracker) Next(ctx context.Context) (index uint32, found bool, err error) {
	if t.done {
		return 0, false, nil
	}
	for {
		block, err := t.source.Next(ctx)
		if err != nil {
			return 0, false, err
		}
		for _, h := range block.Transactions {
			if h == t.txHash {
				t.done = true
				return block.Index, true, nil
			}
		}
	}
}

// Close releases the underlying block source.
func (t *BlockTracker) Close() error {
	return t.source.Close()
}
