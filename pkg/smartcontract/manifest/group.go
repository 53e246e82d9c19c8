package manifest

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/hash"
	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/util"
)

// Group attests that the contract's deployer also controls pub, by
// signing the contract's own script hash with the matching private
// key — used to let several contracts trust each other without naming
// every hash explicitly (see PermissionGroup).
type Group struct {
	PublicKey *keys.PublicKey
	Signature []byte
}

type groupJSON struct {
	PublicKey string `json:"pubkey"`
	Signature string `json:"signature"`
}

// MarshalJSON implements json.Marshaler.
func (g *Group) MarshalJSON() ([]byte, error) {
	return json.Marshal(groupJSON{
		PublicKey: hexPubKey(g.PublicKey),
		Signature: base64.StdEncoding.EncodeToString(g.Signature),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (g *Group) UnmarshalJSON(data []byte) error {
	var gj groupJSON
	if err := json.Unmarshal(data, &gj); err != nil {
		return err
	}
	pub, err := parsePubKeyHex(gj.PublicKey)
	if err != nil {
		return fmt.Errorf("manifest: group public key: %w", err)
	}
	sig, err := base64.StdEncoding.DecodeString(gj.Signature)
	if err != nil {
		return fmt.Errorf("manifest: group signature: %w", err)
	}
	g.PublicKey = pub
	g.Signature = sig
	return nil
}

func hexPubKey(pub *keys.PublicKey) string {
	if pub == nil {
		return ""
	}
	b := pub.Bytes()
	out := make([]byte, 0, len(b)*2)
	const hexDigits = "0123456789abcdef"
	for _, c := range b {
		out = append(out, hexDigits[c>>4], hexDigits[c&0x0f])
	}
	return string(out)
}

func parsePubKeyHex(s string) (*keys.PublicKey, error) {
	return keys.NewPublicKeyFromString(s)
}

// Groups is a list of Group.
type Groups []Group

var errDuplicateGroupKey = errors.New("manifest: duplicate group public key")

// AreValid checks that every group's signature verifies over
// contractHash and that no public key repeats.
func (gs Groups) AreValid(contractHash util.Uint160) error {
	seen := make(map[string]bool, len(gs))
	digest := hash.Sha256(contractHash.BytesBE())
	for _, g := range gs {
		key := hexPubKey(g.PublicKey)
		if seen[key] {
			return errDuplicateGroupKey
		}
		seen[key] = true
		if !g.PublicKey.Verify(g.Signature, digest) {
			return fmt.Errorf("manifest: group %s: invalid signature", key)
		}
	}
	return nil
}

// Contains reports whether any group in gs uses pub as its public key.
func (gs Groups) Contains(pub *keys.PublicKey) bool {
	target := hexPubKey(pub)
	for _, g := range gs {
		if hexPubKey(g.PublicKey) == target {
			return true
		}
	}
	return false
}
