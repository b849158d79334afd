// Package wallet exposes the blockchain wallet as an opaque capability: an
// address, a balance lookup, and submission of already-signed transactions.
// The forecast pipeline never touches this package; it exists for the
// dashboard's wallet panel.
package wallet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	mainnetEndpoint = "https://api.mainnet-beta.solana.com"
	lamportsPerSOL  = 1_000_000_000
	httpTimeout     = 10 * time.Second
)

// Wallet is the capability surface consumed by the API layer.
type Wallet interface {
	Address() string
	Balance(ctx context.Context, address string) (float64, error)
	SubmitTransaction(ctx context.Context, signedTx string) (string, error)
}

// RPCClient talks JSON-RPC to a Solana node.
type RPCClient struct {
	endpoint string
	client   *http.Client
}

// NewRPCClient constructs an RPCClient against mainnet; endpoint overrides
// the default when non-empty.
func NewRPCClient(endpoint string) *RPCClient {
	if endpoint == "" {
		endpoint = mainnetEndpoint
	}
	return &RPCClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: httpTimeout},
	}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *RPCClient) call(ctx context.Context, method string, params []any, result any) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("marshaling %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", c.endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("POST %s returned status %d", c.endpoint, resp.StatusCode)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Error  *rpcError       `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding %s response: %w", method, err)
	}
	if envelope.Error != nil {
		return fmt.Errorf("rpc %s failed: %s (code %d)", method, envelope.Error.Message, envelope.Error.Code)
	}
	if err := json.Unmarshal(envelope.Result, result); err != nil {
		return fmt.Errorf("decoding %s result: %w", method, err)
	}
	return nil
}

// Balance returns the SOL balance for the given address.
func (c *RPCClient) Balance(ctx context.Context, address string) (float64, error) {
	var result struct {
		Value int64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []any{address}, &result); err != nil {
		return 0, err
	}
	return float64(result.Value) / lamportsPerSOL, nil
}

// SubmitTransaction sends a base64-encoded signed transaction and returns
// its signature. Signing happens client-side; the server only relays.
func (c *RPCClient) SubmitTransaction(ctx context.Context, signedTx string) (string, error) {
	var signature string
	params := []any{signedTx, map[string]string{"encoding": "base64"}}
	if err := c.call(ctx, "sendTransaction", params, &signature); err != nil {
		return "", err
	}
	return signature, nil
}

// Connected binds an address to an RPC client, satisfying Wallet.
type Connected struct {
	address string
	rpc     *RPCClient
}

// NewConnected constructs a Connected wallet for the given address.
func NewConnected(address string, rpc *RPCClient) *Connected {
	return &Connected{address: address, rpc: rpc}
}

func (w *Connected) Address() string { return w.address }

func (w *Connected) Balance(ctx context.Context, address string) (float64, error) {
	if address == "" {
		address = w.address
	}
	return w.rpc.Balance(ctx, address)
}

func (w *Connected) SubmitTransaction(ctx context.Context, signedTx string) (string, error) {
	return w.rpc.SubmitTransaction(ctx, signedTx)
}

var _ Wallet = (*Connected)(nil)
