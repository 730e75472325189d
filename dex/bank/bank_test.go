package bank

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/config"
)

type fakeQuery struct {
	banks ledger.WireRootBankList
}

func (f *fakeQuery) GetRootBanks(ctx context.Context, groupAddress string) ([]byte, error) {
	return json.Marshal(f.banks)
}

func (f *fakeQuery) GetOrderbook(ctx context.Context, marketAddress string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuery) GetAccountState(ctx context.Context, account types.AccountID) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuery) GetFills(ctx context.Context, marketAddress string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuery) GetAccountsForOwner(ctx context.Context, programID string, owner types.OwnerID) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func testGroup() *config.GroupConfig {
	return &config.GroupConfig{
		Name:         "devnet.2",
		GroupAddress: "Group111",
		Tokens: []config.TokenDescriptor{
			{Symbol: "BTC", Mint: "MintBTC", RootKey: "RootBTC", Decimals: 6},
			{Symbol: "USDC", Mint: "MintUSDC", RootKey: "RootUSDC", Decimals: 6},
		},
	}
}

func TestLoadTokenInfo(t *testing.T) {
	q := &fakeQuery{banks: ledger.WireRootBankList{Banks: []ledger.WireRootBank{
		{RootKey: "RootBTC", DepositsNative: 4000000, BorrowsNative: 1000000, DepositRateBps: 120, BorrowRateBps: 500},
		{RootKey: "RootUSDC", DepositsNative: 0, BorrowsNative: 0, DepositRateBps: 0, BorrowRateBps: 0},
	}}}

	infos, err := New(q).LoadTokenInfo(context.Background(), testGroup())
	if err != nil {
		t.Fatalf("LoadTokenInfo error: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("got %d infos, want 2", len(infos))
	}

	btc := infos[0]
	if btc.Symbol != "BTC" || btc.TotalDeposits.String() != "4" || btc.TotalBorrows.String() != "1" {
		t.Fatalf("BTC figures wrong: %+v", btc)
	}
	if btc.Utilization.String() != "0.25" {
		t.Fatalf("utilization got=%s want=0.25", btc.Utilization)
	}
	if btc.DepositRate.String() != "0.012" || btc.BorrowRate.String() != "0.05" {
		t.Fatalf("rates wrong: deposit=%s borrow=%s", btc.DepositRate, btc.BorrowRate)
	}

	// 无存款时利用率为零而不是除零
	usdc := infos[1]
	if !usdc.Utilization.IsZero() {
		t.Fatalf("zero-deposit utilization got=%s want=0", usdc.Utilization)
	}
}

func TestLoadTokenInfoMissingBank(t *testing.T) {
	q := &fakeQuery{banks: ledger.WireRootBankList{Banks: []ledger.WireRootBank{
		{RootKey: "RootBTC", DepositsNative: 1},
	}}}

	_, err := New(q).LoadTokenInfo(context.Background(), testGroup())
	if err == nil {
		t.Fatalf("missing root bank for configured token should be an error")
	}
}
