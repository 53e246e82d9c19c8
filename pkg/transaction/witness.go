package transaction

import (
	gio "github.com/cityofzion/neow3j-go/pkg/io"
)

// MaxInvocationScriptSize and MaxVerificationScriptSize bound the two
// scripts making up a Witness, per the Neo N3 protocol.
const (
	MaxInvocationScriptSize   = 1024
	MaxVerificationScriptSize = 1024
)

// Witness is the invocation/verification script pair attached to a
// Transaction per signer: the invocation script
// supplies arguments (typically just the signature), the verification
// script is executed against them to authorize the signer's intent.
type Witness struct {
	InvocationScript   []byte
	VerificationScript []byte
}

// EncodeBinary writes both scripts as length-prefixed byte strings.
func (w *Witness) EncodeBinary(bw *gio.BinWriter) {
	bw.WriteVarBytes(w.InvocationScript)
	bw.WriteVarBytes(w.VerificationScript)
}

// DecodeBinary reads both scripts, rejecting any exceeding the maximum
// sizes.
func (w *Witness) DecodeBinary(br *gio.BinReader) {
	w.InvocationScript = br.ReadVarBytes(MaxInvocationScriptSize)
	if br.Err != nil {
		return
	}
	w.VerificationScript = br.ReadVarBytes(MaxVerificationScriptSize)
}
