package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/logger"
)

// RPCClient implements QueryClient and SubmitClient against a cluster RPC gateway.
// Retries are bounded with exponential wait; after exhaustion the failure is
// surfaced as a types.NetworkError for that call only.
type RPCClient struct {
	client *resty.Client
}

// RPCOptions tunes retry behaviour.
type RPCOptions struct {
	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// DefaultRPCOptions returns the retry bounds used when none are configured.
func DefaultRPCOptions() RPCOptions {
	return RPCOptions{
		MaxRetries:     3,
		RetryDelay:     500 * time.Millisecond,
		RequestTimeout: 30 * time.Second,
	}
}

// NewRPCClient creates a client for the given cluster endpoint.
func NewRPCClient(baseURL string, opts RPCOptions) *RPCClient {
	if opts.MaxRetries == 0 {
		opts = DefaultRPCOptions()
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	// resty picks up proxy configuration from the environment automatically.
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(opts.RequestTimeout).
		SetRetryCount(opts.MaxRetries).
		SetRetryWaitTime(opts.RetryDelay).
		SetRetryMaxWaitTime(10 * opts.RetryDelay).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// honour Retry-After on rate limiting
			if resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
				}
				return 10 * opts.RetryDelay, nil
			}
			return 0, nil
		}).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() >= http.StatusInternalServerError ||
				resp.StatusCode() == http.StatusTooManyRequests
		})

	return &RPCClient{client: client}
}

// GetOrderbook fetches a raw orderbook snapshot.
func (c *RPCClient) GetOrderbook(ctx context.Context, marketAddress string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/v1/markets/%s/orderbook", marketAddress))
}

// GetAccountState fetches raw balances and open orders for one account.
func (c *RPCClient) GetAccountState(ctx context.Context, account types.AccountID) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/v1/accounts/%s", account))
}

// GetFills fetches raw fill records for a market.
func (c *RPCClient) GetFills(ctx context.Context, marketAddress string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/v1/markets/%s/fills", marketAddress))
}

// GetAccountsForOwner looks up trading accounts owned by an identity.
func (c *RPCClient) GetAccountsForOwner(ctx context.Context, programID string, owner types.OwnerID) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/v1/programs/%s/owners/%s/accounts", programID, owner))
}

// GetRootBanks fetches raw root bank records for a group.
func (c *RPCClient) GetRootBanks(ctx context.Context, groupAddress string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/v1/groups/%s/root-banks", groupAddress))
}

// SubmitOrder submits an order and waits for confirmation.
func (c *RPCClient) SubmitOrder(ctx context.Context, marketAddress string, payload OrderPayload) (*Receipt, error) {
	return c.submit(ctx, fmt.Sprintf("/v1/markets/%s/orders", marketAddress), payload)
}

// SubmitCancel submits a cancellation. A 404 from the venue means the order is
// already gone and is mapped to types.ErrUnknownOrder.
func (c *RPCClient) SubmitCancel(ctx context.Context, marketAddress string, orderID types.OrderID) (*Receipt, error) {
	body := map[string]string{"order_id": string(orderID)}
	return c.submit(ctx, fmt.Sprintf("/v1/markets/%s/cancel", marketAddress), body)
}

// SubmitSettle submits a settlement action for an account on a market.
func (c *RPCClient) SubmitSettle(ctx context.Context, account types.AccountID, marketAddress string) (*Receipt, error) {
	body := map[string]string{"market": marketAddress}
	return c.submit(ctx, fmt.Sprintf("/v1/accounts/%s/settle", account), body)
}

func (c *RPCClient) get(ctx context.Context, path string) ([]byte, error) {
	resp, err := c.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, &types.NetworkError{Op: "GET " + path, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, c.statusError("GET", path, resp)
	}
	return resp.Body(), nil
}

func (c *RPCClient) submit(ctx context.Context, path string, body any) (*Receipt, error) {
	var receipt Receipt
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&receipt).
		Post(path)
	if err != nil {
		return nil, &types.NetworkError{Op: "POST " + path, Err: err}
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, types.ErrUnknownOrder
	}
	if resp.StatusCode() == http.StatusUnprocessableEntity {
		return nil, c.decodeSubmitError(resp)
	}
	if !resp.IsSuccess() {
		return nil, c.statusError("POST", path, resp)
	}
	if receipt.Rejected {
		return nil, &types.RejectedOrderError{Reason: receipt.RejectReason}
	}
	logger.Debugf("submit %s confirmed: %s", path, receipt.Signature)
	return &receipt, nil
}

// decodeSubmitError maps a 422 body onto the typed taxonomy.
func (c *RPCClient) decodeSubmitError(resp *resty.Response) error {
	var payload struct {
		Code   string `json:"code"`
		Token  string `json:"token"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil {
		switch payload.Code {
		case "insufficient_balance":
			return &types.InsufficientBalanceError{Token: payload.Token}
		case "rejected":
			return &types.RejectedOrderError{Reason: payload.Reason}
		}
	}
	return errors.Errorf("submit failed: http %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
}

func (c *RPCClient) statusError(method, path string, resp *resty.Response) error {
	err := errors.Errorf("http %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	if resp.StatusCode() >= http.StatusInternalServerError ||
		resp.StatusCode() == http.StatusTooManyRequests ||
		resp.StatusCode() == http.StatusGatewayTimeout {
		// retries are already exhausted at this point
		return &types.NetworkError{Op: method + " " + path, Err: err}
	}
	return errors.Wrapf(err, "%s %s", method, path)
}
