package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/betbot/gomango/dex/types"
)

func testOptions() RPCOptions {
	return RPCOptions{
		MaxRetries:     2,
		RetryDelay:     time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}
}

func TestGetRetriesOn5xx(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"market":"PerpMkt111"}`))
	}))
	defer server.Close()

	client := NewRPCClient(server.URL, testOptions())
	raw, err := client.GetOrderbook(context.Background(), "PerpMkt111")
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if len(raw) == 0 {
		t.Fatalf("empty body")
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("got %d calls, want 3", got)
	}
}

func TestGetExhaustedRetriesIsNetworkError(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewRPCClient(server.URL, testOptions())
	_, err := client.GetOrderbook(context.Background(), "PerpMkt111")
	if !types.IsNetworkError(err) {
		t.Fatalf("exhausted retries should surface NetworkError, got %v", err)
	}
	// 初次请求 + MaxRetries 次重试，有界
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("got %d calls, want 3", got)
	}
}

func TestSubmitCancelUnknownOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewRPCClient(server.URL, testOptions())
	_, err := client.SubmitCancel(context.Background(), "PerpMkt111", "gone")
	if !errors.Is(err, types.ErrUnknownOrder) {
		t.Fatalf("404 on cancel should map to ErrUnknownOrder, got %v", err)
	}
}

func TestSubmitDecodes422Taxonomy(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		check func(error) bool
	}{
		{"insufficient balance", `{"code":"insufficient_balance","token":"USDC"}`, func(err error) bool {
			var ib *types.InsufficientBalanceError
			return errors.As(err, &ib) && ib.Token == "USDC"
		}},
		{"rejected", `{"code":"rejected","reason":"postOnly would cross"}`, types.IsRejectedOrder},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnprocessableEntity)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewRPCClient(server.URL, testOptions())
			_, err := client.SubmitOrder(context.Background(), "PerpMkt111", OrderPayload{})
			if err == nil || !tc.check(err) {
				t.Fatalf("422 body %s not mapped, got %v", tc.body, err)
			}
		})
	}
}

func TestSubmitRejectedReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Receipt{
			Signature:    "sig",
			Rejected:     true,
			RejectReason: "crossed the book",
		})
	}))
	defer server.Close()

	client := NewRPCClient(server.URL, testOptions())
	_, err := client.SubmitOrder(context.Background(), "PerpMkt111", OrderPayload{})
	if !types.IsRejectedOrder(err) {
		t.Fatalf("rejected receipt should map to RejectedOrderError, got %v", err)
	}
}

func TestSubmitSuccessReturnsReceipt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload OrderPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		_ = json.NewEncoder(w).Encode(Receipt{Signature: "sig", OrderID: "order-1"})
	}))
	defer server.Close()

	client := NewRPCClient(server.URL, testOptions())
	receipt, err := client.SubmitOrder(context.Background(), "PerpMkt111", OrderPayload{
		Account:     "Acct1",
		Side:        types.SideBuy,
		PriceNative: 39000000000,
		SizeNative:  100,
		Type:        types.OrderTypePostOnlySlide,
	})
	if err != nil {
		t.Fatalf("SubmitOrder error: %v", err)
	}
	if receipt.OrderID != "order-1" {
		t.Fatalf("receipt order id got=%s want=order-1", receipt.OrderID)
	}
}
