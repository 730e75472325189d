package fills

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/fixedpoint"
)

// FillTracker 历史成交追踪器
type FillTracker struct {
	query ledger.QueryClient
}

// New 创建成交追踪器
func New(query ledger.QueryClient) *FillTracker {
	return &FillTracker{query: query}
}

// LoadFills 拉取市场的历史成交记录
func (t *FillTracker) LoadFills(ctx context.Context, market types.Market) ([]types.Fill, error) {
	raw, err := t.query.GetFills(ctx, market.Address)
	if err != nil {
		return nil, fmt.Errorf("load fills %s: %w", market.Symbol, err)
	}

	var wire ledger.WireFillList
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode fills %s: %w", market.Symbol, err)
	}

	out := make([]types.Fill, 0, len(wire.Fills))
	for _, w := range wire.Fills {
		role := types.FillRoleTaker
		if w.MakerFill {
			role = types.FillRoleMaker
		}
		out = append(out, types.Fill{
			Maker:               types.AccountID(w.Maker),
			Taker:               types.AccountID(w.Taker),
			Price:               fixedpoint.FromNative(w.PriceNative, market.QuoteDecimals),
			Size:                fixedpoint.FromNative(w.SizeNative, market.BaseDecimals),
			Side:                types.Side(w.Side),
			Role:                role,
			NativeQuotePaid:     w.NativeQuotePaid,
			NativeQuoteReleased: w.NativeQuoteReleased,
		})
	}
	return out, nil
}

// QuoteValue 现货成交的计价币金额：买方取支付数量，卖方取释放数量，
// 按市场声明的计价币精度换算。精度必须来自市场元数据，硬编码常量会把
// 名义金额算错几个数量级。
func QuoteValue(f types.Fill, market types.Market) fixedpoint.Value {
	native := f.NativeQuoteReleased
	if f.Side == types.SideBuy {
		native = f.NativeQuotePaid
	}
	return fixedpoint.FromNative(native, market.QuoteDecimals)
}
