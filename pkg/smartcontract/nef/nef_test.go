package nef

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	gio "github.com/cityofzion/neow3j-go/pkg/io"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract/callflag"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, f *File) (*File, error) {
	b, err := f.Bytes()
	require.NoError(t, err)
	return FileFromBytes(b)
}

func newTestFile() *File {
	f := &File{
		Header: Header{Magic: Magic, Compiler: "best compiler version 1"},
		Tokens: []MethodToken{{
			Hash:       util.Uint160{1, 2, 3},
			Method:     "method",
			ParamCount: 3,
			HasReturn:  true,
			CallFlag:   callflag.WriteStates,
		}},
		Script: []byte{12, 32, 84, 35, 14},
	}
	f.Checksum = f.CalculateChecksum()
	return f
}

func TestEncodeDecodeBinary(t *testing.T) {
	t.Run("invalid magic", func(t *testing.T) {
		f := newTestFile()
		f.Header.Magic = 123
		_, err := roundTrip(t, f)
		require.Error(t, err)
	})

	t.Run("invalid checksum", func(t *testing.T) {
		f := newTestFile()
		f.Checksum = 123
		_, err := roundTrip(t, f)
		require.Error(t, err)
	})

	t.Run("zero-length script", func(t *testing.T) {
		f := newTestFile()
		f.Script = make([]byte, 0)
		f.Checksum = f.CalculateChecksum()
		_, err := roundTrip(t, f)
		require.Error(t, err)
	})

	t.Run("invalid script length", func(t *testing.T) {
		f := newTestFile()
		f.Script = make([]byte, MaxScriptLength+1)
		f.Checksum = f.CalculateChecksum()
		_, err := roundTrip(t, f)
		require.Error(t, err)
	})

	t.Run("invalid token method name", func(t *testing.T) {
		f := newTestFile()
		f.Tokens[0].Method = "_reserved"
		f.Checksum = f.CalculateChecksum()
		_, err := roundTrip(t, f)
		require.Error(t, err)
	})

	t.Run("positive", func(t *testing.T) {
		f := newTestFile()
		actual, err := roundTrip(t, f)
		require.NoError(t, err)
		require.Equal(t, f, actual)
	})

	t.Run("invalid reserved bytes", func(t *testing.T) {
		f := newTestFile()
		f.Tokens = nil
		f.Checksum = f.CalculateChecksum()
		b, err := f.Bytes()
		require.NoError(t, err)

		headerSize := 4 + compilerFieldSize
		corrupted := make([]byte, len(b))
		copy(corrupted, b)
		corrupted[headerSize] = 1
		_, err = FileFromBytes(corrupted)
		require.True(t, errors.Is(err, errInvalidReserved), "got: %v", err)

		corrupted2 := make([]byte, len(b))
		copy(corrupted2, b)
		corrupted2[headerSize+3] = 1 // reserved1(2) + empty token count(1)
		_, err = FileFromBytes(corrupted2)
		require.True(t, errors.Is(err, errInvalidReserved), "got: %v", err)
	})
}

func TestBytesFromBytes(t *testing.T) {
	f := newTestFile()
	b, err := f.Bytes()
	require.NoError(t, err)
	actual, err := FileFromBytes(b)
	require.NoError(t, err)
	require.Equal(t, f, actual)
}

func TestMarshalUnmarshalJSON(t *testing.T) {
	f := newTestFile()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"magic":`+strconv.FormatUint(uint64(Magic), 10)+`,
		"compiler": "best compiler version 1",
		"tokens": [
			{
	"hash": "0x`+f.Tokens[0].Hash.StringLE()+`",
	"method": "method",
	"paramcount": 3,
	"hasreturnvalue": true,
	"callflags": `+strconv.FormatInt(int64(callflag.WriteStates), 10)+`
			}
		],
		"script": "`+base64.StdEncoding.EncodeToString(f.Script)+`",
		"checksum":`+strconv.FormatUint(uint64(f.Checksum), 10)+`}`, string(data))

	actual := &File{}
	require.NoError(t, json.Unmarshal(data, actual))
	require.Equal(t, f, actual)
}

func TestHeaderDecodeBinaryInvalidMagic(t *testing.T) {
	bw := gio.NewBufBinWriter()
	bw.WriteU32LE(0)
	bw.WriteFixedString("x", compilerFieldSize)
	r := gio.NewBinReaderFromBuf(bw.Bytes())
	h := &Header{}
	h.DecodeBinary(r)
	require.ErrorIs(t, r.Err, errInvalidMagic)
}
