package rpcclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/cityofzion/neow3j-go/pkg/neorpc"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Subscriber streams blocks from a node's websocket endpoint, backing
// the Transaction Builder's block tracker (the node's
// subscribe_blocks websocket feed).
type Subscriber struct {
	conn *websocket.Conn
	log  *zap.Logger
}

// NewSubscriber dials the node's websocket endpoint (derived from its
// HTTP endpoint by swapping scheme and appending "/ws", the
// conventional node layout) and issues subscribe_blocks starting at
// fromIndex.
func NewSubscriber(ctx context.Context, httpEndpoint string, fromIndex uint32, log *zap.Logger) (*Subscriber, error) {
	if log == nil {
		log = zap.NewNop()
	}
	wsURL, err := toWebsocketURL(httpEndpoint)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: subscriber: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rpcclient: subscriber: dial: %w", err)
	}

	req := neorpc.NewRequest(1, "subscribe_blocks", []interface{}{fromIndex})
	if err := conn.WriteJSON(req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rpcclient: subscriber: subscribe: %w", err)
	}

	var ack neorpc.Raw
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, fmt.Errorf("rpcclient: subscriber: ack: %w", err)
	}
	if ack.Error != nil {
		conn.Close()
		return nil, fmt.Errorf("rpcclient: subscriber: %w", ack.Error)
	}

	return &Subscriber{conn: conn, log: log}, nil
}

func toWebsocketURL(httpEndpoint string) (string, error) {
	u, err := url.Parse(httpEndpoint)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if !strings.HasSuffix(u.Path, "/ws") {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	}
	return u.String(), nil
}

// Next blocks until the next block notification arrives, the context
// is canceled, or the connection fails.
func (s *Subscriber) Next(ctx context.Context) (*neorpc.Block, error) {
	type notification struct {
		Payload json.RawMessage `json:"payload"`
	}
	done := make(chan struct{})
	var n notification
	var readErr error
	go func() {
		readErr = s.conn.ReadJSON(&n)
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}
	if readErr != nil {
		return nil, fmt.Errorf("rpcclient: subscriber: read: %w", readErr)
	}
	var block neorpc.Block
	if err := json.Unmarshal(n.Payload, &block); err != nil {
		return nil, fmt.Errorf("rpcclient: subscriber: decode block: %w", err)
	}
	return &block, nil
}

// Close terminates the websocket connection.
func (s *Subscriber) Close() error {
	return s.conn.Close()
}
