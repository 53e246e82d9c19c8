package keys

import (
	"testing"

	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	"github.com/stretchr/testify/assert"
)

func TestPubKeyVerify(t *testing.T) {
	data := []byte("sample")
	hashedData := hash.Sha256(data)

	privKey, err := NewPrivateKey()
	assert.Nil(t, err)
	signedData := privKey.Sign(data)
	pubKey := privKey.PublicKey()
	assert.True(t, pubKey.Verify(signedData, hashedData))

	// Small signature, no panic.
	assert.False(t, pubKey.Verify([]byte{1, 2, 3}, hashedData))

	pubKey = &PublicKey{}
	assert.False(t, pubKey.Verify(signedData, hashedData))
}

func TestWrongPubKey(t *testing.T) {
	sample := []byte("sample")
	hashedData := hash.Sha256(sample)

	privKey, _ := NewPrivateKey()
	signedData := privKey.Sign(sample)

	secondPrivKey, _ := NewPrivateKey()
	wrongPubKey := secondPrivKey.PublicKey()

	assert.False(t, wrongPubKey.Verify(signedData, hashedData))
}
