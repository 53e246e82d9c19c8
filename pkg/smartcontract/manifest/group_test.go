package manifest

import (
	"encoding/json"
	"testing"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func TestGroupJSONInOut(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	g := &Group{PublicKey: priv.PublicKey(), Signature: make([]byte, keys.SignatureLen)}

	data, err := json.Marshal(g)
	require.NoError(t, err)

	g2 := new(Group)
	require.NoError(t, json.Unmarshal(data, g2))
	require.Equal(t, g, g2)
}

func TestGroupsAreValid(t *testing.T) {
	h := util.Uint160{42, 42, 42}
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	priv2, err := keys.NewPrivateKey()
	require.NoError(t, err)
	pub, pub2 := priv.PublicKey(), priv2.PublicKey()

	gcorrect := Group{PublicKey: pub, Signature: priv.Sign(h.BytesBE())}
	gcorrect2 := Group{PublicKey: pub2, Signature: priv2.Sign(h.BytesBE())}
	gincorrect := Group{PublicKey: pub, Signature: priv.Sign(h.BytesLE())}

	require.NoError(t, Groups{gcorrect}.AreValid(h))
	require.Error(t, Groups{gincorrect}.AreValid(h))
	require.NoError(t, Groups{gcorrect, gcorrect2}.AreValid(h))
	require.Error(t, Groups{gcorrect, gcorrect}.AreValid(h)) // Duplicate key.
}

func TestGroupsContains(t *testing.T) {
	priv, err := keys.NewPrivateKey()
	require.NoError(t, err)
	priv2, err := keys.NewPrivateKey()
	require.NoError(t, err)
	priv3, err := keys.NewPrivateKey()
	require.NoError(t, err)

	gps := Groups{
		{PublicKey: priv.PublicKey()},
		{PublicKey: priv2.PublicKey()},
	}
	require.True(t, gps.Contains(priv2.PublicKey()))
	require.False(t, gps.Contains(priv3.PublicKey()))
}
