// Package rpcclient implements the node client the Transaction Builder
// consumes: a thin JSON-RPC 2.0 caller exposing exactly the methods
// this package needs, plus a websocket-backed block subscription.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cityofzion/neow3j-go/pkg/crypto/keys"
	"github.com/cityofzion/neow3j-go/pkg/neorpc"
	"github.com/cityofzion/neow3j-go/pkg/smartcontract"
	"github.com/cityofzion/neow3j-go/pkg/util"
	"go.uber.org/zap"
)

// Client calls a Neo N3 node's JSON-RPC API over HTTP. It carries no
// chain state of its own; every method is a single request/response
// round trip.
type Client struct {
	endpoint string
	http     *http.Client
	log      *zap.Logger
	reqID    uint64
}

// Options configures a Client; the zero value is usable and picks
// sensible defaults.
type Options struct {
	// DialTimeout bounds each individual RPC call. Defaults to 10s.
	DialTimeout time.Duration
	// Log receives diagnostic entries; defaults to zap.NewNop().
	Log *zap.Logger
}

// New returns a Client talking to the node at endpoint (e.g.
// "http://127.0.0.1:10332").
func New(endpoint string, opts Options) *Client {
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 10 * time.Second
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: opts.DialTimeout},
		log:      opts.Log,
	}
}

// call performs one JSON-RPC round trip and decodes result into out
// (which may be nil if the caller doesn't need the payload).
func (c *Client) call(ctx context.Context, method string, params []interface{}, out interface{}) error {
	id := int(atomic.AddUint64(&c.reqID, 1))
	req := neorpc.NewRequest(id, method, params)

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("rpcclient: encode request: %w", err)
	}

	c.log.Debug("rpc call", zap.String("method", method), zap.Int("id", id))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("rpcclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, err)
	}
	defer resp.Body.Close()

	var raw neorpc.Raw
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("rpcclient: %s: decode response: %w", method, err)
	}
	if raw.Error != nil {
		return fmt.Errorf("rpcclient: %s: %w", method, raw.Error)
	}
	if out == nil || len(raw.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw.Result, out); err != nil {
		return fmt.Errorf("rpcclient: %s: decode result: %w", method, err)
	}
	return nil
}

func signersParam(signers []neorpc.SignerWithWitness) []interface{} {
	out := make([]interface{}, len(signers))
	for i, s := range signers {
		out[i] = s
	}
	return out
}

// InvokeScript asks the node to run script against the current chain
// state without relaying anything, reporting the resulting VM state,
// gas consumption, and stack.
func (c *Client) InvokeScript(ctx context.Context, script []byte, signers []neorpc.SignerWithWitness) (*neorpc.Invoke, error) {
	params := []interface{}{hexEncode(script)}
	if len(signers) > 0 {
		params = append(params, signersParam(signers))
	}
	var res neorpc.Invoke
	if err := c.call(ctx, "invoke_script", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// InvokeFunction is InvokeScript's higher-level sibling: the node
// builds the call script for method(params) against hash itself.
func (c *Client) InvokeFunction(ctx context.Context, hash util.Uint160, method string, params []smartcontract.Parameter, signers []neorpc.SignerWithWitness) (*neorpc.Invoke, error) {
	args := []interface{}{hash.StringLE(), method, params}
	if len(signers) > 0 {
		args = append(args, signersParam(signers))
	}
	var res neorpc.Invoke
	if err := c.call(ctx, "invoke_function", args, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CalculateNetworkFee asks the node to estimate the network fee a fully
// witnessed transaction would require, given the size and verification
// cost of its actual witnesses.
func (c *Client) CalculateNetworkFee(ctx context.Context, rawTx []byte) (int64, error) {
	var res struct {
		NetworkFee int64 `json:"networkfee,string"`
	}
	if err := c.call(ctx, "calculate_network_fee", []interface{}{hexEncode(rawTx)}, &res); err != nil {
		return 0, err
	}
	return res.NetworkFee, nil
}

// GetBlockCount returns the height of the best block plus one, the
// conventional default source for ValidUntilBlock.
func (c *Client) GetBlockCount(ctx context.Context) (uint32, error) {
	var count uint32
	if err := c.call(ctx, "get_block_count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// GetCommittee returns the public keys of the current committee
// members, in the order the node reports them.
func (c *Client) GetCommittee(ctx context.Context) (keys.PublicKeys, error) {
	var raw []string
	if err := c.call(ctx, "get_committee", nil, &raw); err != nil {
		return nil, err
	}
	out := make(keys.PublicKeys, len(raw))
	for i, s := range raw {
		pub, err := keys.NewPublicKeyFromString(s)
		if err != nil {
			return nil, fmt.Errorf("rpcclient: get_committee: %w", err)
		}
		out[i] = pub
	}
	return out, nil
}

// SendRawTransaction relays a fully signed transaction to the network.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx []byte) (*neorpc.RelayResult, error) {
	var res neorpc.RelayResult
	if err := c.call(ctx, "send_raw_transaction", []interface{}{hexEncode(rawTx)}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetApplicationLog fetches the execution log of a settled transaction,
// or an error if the node hasn't seen it (or it hasn't been included
// yet).
func (c *Client) GetApplicationLog(ctx context.Context, txHash util.Uint256) (*neorpc.ApplicationLog, error) {
	var res neorpc.ApplicationLog
	if err := c.call(ctx, "get_application_log", []interface{}{txHash.StringLE()}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetBlock fetches a block by index. verbose selects whether the node
// reports the block's transaction hashes alongside its header.
func (c *Client) GetBlock(ctx context.Context, index uint32, verbose bool) (*neorpc.Block, error) {
	var res neorpc.Block
	if err := c.call(ctx, "get_block", []interface{}{index, verbose}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func hexEncode(b []byte) string {
	return hex.EncodeToString(b)
}
