// Package testserdes holds small round-trip assertion helpers shared by
// this module's serialization tests.
package testserdes

import (
	"encoding/json"
	"testing"

	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/stretchr/testify/require"
)

// MarshalUnmarshalJSON checks that expected stays the same after
// marshaling and unmarshaling via JSON.
func MarshalUnmarshalJSON(t *testing.T, expected, actual interface{}) {
	data, err := json.Marshal(expected)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, expected, actual)
}

// EncodeDecodeBinary checks that expected stays the same after
// serializing and deserializing via the io.Serializable methods.
func EncodeDecodeBinary(t *testing.T, expected, actual gio.Serializable) {
	data, err := EncodeBinary(expected)
	require.NoError(t, err)
	require.NoError(t, DecodeBinary(data, actual))
	require.Equal(t, expected, actual)
}

// EncodeBinary serializes a to a byte slice.
func EncodeBinary(a gio.Serializable) ([]byte, error) {
	w := gio.NewBufBinWriter()
	a.EncodeBinary(w.BinWriter)
	if w.Err != nil {
		return nil, w.Err
	}
	return w.Bytes(), nil
}

// DecodeBinary deserializes a from a byte slice.
func DecodeBinary(data []byte, a gio.Serializable) error {
	r := gio.NewBinReaderFromBuf(data)
	a.DecodeBinary(r)
	return r.Err
}
