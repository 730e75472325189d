package fills

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/types"
)

type fakeQuery struct {
	fills []byte
}

func (f *fakeQuery) GetFills(ctx context.Context, marketAddress string) ([]byte, error) {
	return f.fills, nil
}

func (f *fakeQuery) GetOrderbook(ctx context.Context, marketAddress string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuery) GetAccountState(ctx context.Context, account types.AccountID) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuery) GetAccountsForOwner(ctx context.Context, programID string, owner types.OwnerID) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQuery) GetRootBanks(ctx context.Context, groupAddress string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func marshalFills(t *testing.T, list []ledger.WireFill) []byte {
	t.Helper()
	raw, err := json.Marshal(ledger.WireFillList{Fills: list})
	if err != nil {
		t.Fatalf("marshal fills: %v", err)
	}
	return raw
}

func TestLoadFillsDecodesRolesAndSigns(t *testing.T) {
	market := types.Market{Symbol: "BTC", Kind: types.MarketKindPerp, Address: "PerpMkt111", BaseDecimals: 6, QuoteDecimals: 6}
	tracker := New(&fakeQuery{fills: marshalFills(t, []ledger.WireFill{
		{Maker: "A", Taker: "B", PriceNative: 39000000000, SizeNative: 250000, Side: "buy", MakerFill: true},
		{Maker: "A", Taker: "C", PriceNative: 39001000000, SizeNative: 250000, Side: "sell", MakerFill: false},
	})})

	list, err := tracker.LoadFills(context.Background(), market)
	if err != nil {
		t.Fatalf("LoadFills error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("got %d fills, want 2", len(list))
	}

	if list[0].Role != types.FillRoleMaker || list[1].Role != types.FillRoleTaker {
		t.Fatalf("roles decoded wrong: %s/%s", list[0].Role, list[1].Role)
	}
	if list[0].Price.String() != "39000" || list[0].Size.String() != "0.25" {
		t.Fatalf("decimal conversion broken: price=%s size=%s", list[0].Price, list[0].Size)
	}
	// 带符号数量：买正卖负
	if !list[0].SignedQuantity().IsPositive() || !list[1].SignedQuantity().IsNegative() {
		t.Fatalf("signed quantity convention broken")
	}
}

func TestQuoteValueScalesByMarketDecimals(t *testing.T) {
	buy := types.Fill{Side: types.SideBuy, NativeQuotePaid: 4100000, NativeQuoteReleased: 999}
	sell := types.Fill{Side: types.SideSell, NativeQuotePaid: 999, NativeQuoteReleased: 4100000}

	usdc := types.Market{QuoteDecimals: 6}
	if got := QuoteValue(buy, usdc).String(); got != "4.1" {
		t.Fatalf("buy quote value got=%s want=4.1", got)
	}
	if got := QuoteValue(sell, usdc).String(); got != "4.1" {
		t.Fatalf("sell quote value got=%s want=4.1", got)
	}

	// 同一原生数值在 9 位精度市场上是另一个金额：精度必须取自市场元数据
	nine := types.Market{QuoteDecimals: 9}
	if got := QuoteValue(buy, nine).String(); got != "0.0041" {
		t.Fatalf("9-decimal quote value got=%s want=0.0041", got)
	}
}
