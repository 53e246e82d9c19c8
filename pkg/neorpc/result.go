package neorpc

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/cityofzion/neow3j-go/pkg/transaction"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"github.com/google/uuid"
)

// VMState is the terminal execution state a script run reports.
type VMState string

// The four states a NeoVM run can end in.
const (
	HALT  VMState = "HALT"
	FAULT VMState = "FAULT"
	BREAK VMState = "BREAK"
	NONE  VMState = "NONE"
)

// SignerWithWitness pairs a Signer with the Witness the node should run
// its verification script against, the shape invoke_script and
// invoke_function both take their "signers" parameter in.
type SignerWithWitness struct {
	Signer  transaction.Signer
	Witness transaction.Witness
}

type signerWithWitnessJSON struct {
	Account          string   `json:"account"`
	Scopes           string   `json:"scopes"`
	AllowedContracts []string `json:"allowedcontracts,omitempty"`
	AllowedGroups    []string `json:"allowedgroups,omitempty"`
	Invocation       string   `json:"invocation,omitempty"`
	Verification     string   `json:"verification,omitempty"`
}

// MarshalJSON flattens the signer and its witness into the single
// object the node expects per signer entry.
func (s SignerWithWitness) MarshalJSON() ([]byte, error) {
	out := signerWithWitnessJSON{
		Account: s.Signer.Account.StringLE(),
		Scopes:  s.Signer.Scopes.String(),
	}
	for _, h := range s.Signer.AllowedContracts {
		out.AllowedContracts = append(out.AllowedContracts, h.StringLE())
	}
	for _, g := range s.Signer.AllowedGroups {
		out.AllowedGroups = append(out.AllowedGroups, hex.EncodeToString(g.Bytes()))
	}
	if len(s.Witness.InvocationScript) > 0 {
		out.Invocation = base64.StdEncoding.EncodeToString(s.Witness.InvocationScript)
	}
	if len(s.Witness.VerificationScript) > 0 {
		out.Verification = base64.StdEncoding.EncodeToString(s.Witness.VerificationScript)
	}
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON, as needed when decoding a log or
// an echoed request back into Go values.
func (s *SignerWithWitness) UnmarshalJSON(data []byte) error {
	var in signerWithWitnessJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	acc, err := util.Uint160DecodeStringLE(in.Account)
	if err != nil {
		return fmt.Errorf("neorpc: signer account: %w", err)
	}
	s.Signer.Account = acc
	for _, raw := range in.AllowedContracts {
		h, err := util.Uint160DecodeStringLE(raw)
		if err != nil {
			return fmt.Errorf("neorpc: allowed contract: %w", err)
		}
		s.Signer.AllowedContracts = append(s.Signer.AllowedContracts, h)
	}
	for _, raw := range in.AllowedGroups {
		b, err := hex.DecodeString(raw)
		if err != nil {
			return fmt.Errorf("neorpc: allowed group: %w", err)
		}
		pub, err := keys.NewPublicKeyFromBytes(b)
		if err != nil {
			return fmt.Errorf("neorpc: allowed group: %w", err)
		}
		s.Signer.AllowedGroups = append(s.Signer.AllowedGroups, pub)
	}
	if in.Invocation != "" {
		s.Witness.InvocationScript, err = base64.StdEncoding.DecodeString(in.Invocation)
		if err != nil {
			return fmt.Errorf("neorpc: invocation script: %w", err)
		}
	}
	if in.Verification != "" {
		s.Witness.VerificationScript, err = base64.StdEncoding.DecodeString(in.Verification)
		if err != nil {
			return fmt.Errorf("neorpc: verification script: %w", err)
		}
	}
	return nil
}

// NotificationEvent is one entry of a Notifications list, emitted by a
// contract via the Runtime.Notify syscall during a run.
type NotificationEvent struct {
	Contract  util.Uint160             `json:"contract"`
	Name      string                   `json:"eventname"`
	State     []smartcontract.Parameter `json:"state"`
}

// Invoke is the result of invoke_script and invoke_function: the node's
// report of what running a script against the current (or a historic)
// state would do, without committing anything to the chain.
type Invoke struct {
	State          VMState                   `json:"state"`
	GasConsumed    int64                     `json:"gasconsumed,string"`
	Script         []byte                    `json:"script"`
	Stack          []smartcontract.Parameter `json:"stack"`
	FaultException string                    `json:"exception,omitempty"`
	Notifications  []NotificationEvent       `json:"notifications,omitempty"`
	Session        uuid.UUID                 `json:"session,omitempty"`
}

// RelayResult is what send_raw_transaction reports back.
type RelayResult struct {
	Hash util.Uint256 `json:"hash"`
}

// ApplicationLog mirrors what get_application_log returns for a
// settled transaction: one execution trigger (almost always
// Application) with its terminal state and any notifications raised.
type ApplicationLog struct {
	TxHash      util.Uint256 `json:"txid"`
	Trigger     string       `json:"trigger"`
	VMState     VMState      `json:"vmstate"`
	GasConsumed int64        `json:"gasconsumed,string"`
	Stack       []smartcontract.Parameter `json:"stack,omitempty"`
	Notifications []NotificationEvent     `json:"notifications,omitempty"`
}

// Block is the subset of a Neo N3 block the client surfaces: the
// header fields a caller needs to validate a chain tip, plus the raw
// transaction hashes it carries.
type Block struct {
	Hash              util.Uint256   `json:"hash"`
	Version           uint32         `json:"version"`
	PrevHash          util.Uint256   `json:"previousblockhash"`
	MerkleRoot        util.Uint256   `json:"merkleroot"`
	Timestamp         uint64         `json:"time"`
	Nonce             string         `json:"nonce"`
	Index             uint32         `json:"index"`
	PrimaryIndex      byte           `json:"primary"`
	NextConsensus     string         `json:"nextconsensus"`
	Transactions      []util.Uint256 `json:"tx,omitempty"`
	Confirmations     uint32         `json:"confirmations,omitempty"`
	NextBlockHash     *util.Uint256  `json:"nextblockhash,omitempty"`
}

