package builder

import (
	"context"
	"testing"

	"github.com/cityofzion/neow3j-go/pkg/neorpc"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/stretchr/testify/require"
)

type fakeBlockSource struct {
	blocks []*neorpc.Block
	i      int
	closed bool
}

func (f *fakeBlockSource) Next(ctx context.Context) (*neorpc.Block, error) {
	if f.i >= len(f.blocks) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	b := f.blocks[f.i]
	f.i++
	return b, nil
}

func (f *fakeBlockSource) Close() error {
	f.closed = true
	return nil
}

func TestBlockTrackerFindsTransaction(t *testing.T) {
	target := util.Uint256{1, 2, 3}
	src := &fakeBlockSource{blocks: []*neorpc.Block{
		{Index: 10, Transactions: []util.Uint256{{9, 9}}},
		{Index: 11, Transactions: []util.Uint256{target}},
	}}
	tr := Track(src, target)

	idx, found, err := tr.Next(context.Background())
	require.NoError(t, err)
	require.True(t, found)
	require.EqualValues(t, 11, idx)

	idx, found, err = tr.Next(context.Background())
	require.NoError(t, err)
	require.False(t, found)
	require.Zero(t, idx)

	require.NoError(t, tr.Close())
	require.True(t, src.closed)
}

func TestBlockTrackerCancellation(t *testing.T) {
	src := &fakeBlockSource{}
	tr := Track(src, util.Uint256{1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, found, err := tr.Next(ctx)
	require.Error(t, err)
	require.False(t, found)
}
