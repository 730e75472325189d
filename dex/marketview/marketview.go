package marketview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/fixedpoint"
)

// MarketView 订单簿视图：拉取快照并转换为领域模型，无副作用
type MarketView struct {
	query ledger.QueryClient
}

// New 创建市场视图
func New(query ledger.QueryClient) *MarketView {
	return &MarketView{query: query}
}

// LoadSnapshot 拉取订单簿快照
// 底层查询超时时返回 ErrStaleData，调用方自行决定是否退避重试
func (v *MarketView) LoadSnapshot(ctx context.Context, market types.Market) (*types.OrderBookSnapshot, error) {
	raw, err := v.query.GetOrderbook(ctx, market.Address)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("load snapshot %s: %w", market.Symbol, types.ErrStaleData)
		}
		return nil, fmt.Errorf("load snapshot %s: %w", market.Symbol, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("load snapshot %s: %w", market.Symbol, types.ErrStaleData)
	}

	var wire ledger.WireOrderbook
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", market.Symbol, err)
	}

	snapshot := &types.OrderBookSnapshot{
		Market:    wire.Market,
		Bids:      make([]types.PriceLevel, 0, len(wire.Bids)),
		Asks:      make([]types.PriceLevel, 0, len(wire.Asks)),
		Orders:    make([]types.BookOrder, 0, len(wire.Orders)),
		FetchedAt: wire.Timestamp,
	}
	if snapshot.FetchedAt == 0 {
		snapshot.FetchedAt = time.Now().Unix()
	}

	for _, lvl := range wire.Bids {
		snapshot.Bids = append(snapshot.Bids, toLevel(lvl, market))
	}
	for _, lvl := range wire.Asks {
		snapshot.Asks = append(snapshot.Asks, toLevel(lvl, market))
	}
	for _, o := range wire.Orders {
		snapshot.Orders = append(snapshot.Orders, types.BookOrder{
			Owner:   types.AccountID(o.Owner),
			OrderID: types.OrderID(o.OrderID),
			Price:   fixedpoint.FromNative(o.PriceNative, market.QuoteDecimals),
			Size:    fixedpoint.FromNative(o.SizeNative, market.BaseDecimals),
			Side:    types.Side(o.Side),
		})
	}
	return snapshot, nil
}

// TopLevels 返回两侧各不超过 depth 档的 L2 价位，从优到劣。
// depth 限制输出规模，保护下游不被深盘撑爆内存。
func (v *MarketView) TopLevels(snapshot *types.OrderBookSnapshot, depth int) (bids, asks []types.PriceLevel) {
	if depth <= 0 {
		return nil, nil
	}
	bids = snapshot.Bids
	if len(bids) > depth {
		bids = bids[:depth]
	}
	asks = snapshot.Asks
	if len(asks) > depth {
		asks = asks[:depth]
	}
	return bids, asks
}

// AllOrders 返回快照中的全部 L3 挂单记录
func (v *MarketView) AllOrders(snapshot *types.OrderBookSnapshot) []types.BookOrder {
	return snapshot.Orders
}

func toLevel(lvl ledger.WireLevel, market types.Market) types.PriceLevel {
	return types.PriceLevel{
		Price: fixedpoint.FromNative(lvl.PriceNative, market.QuoteDecimals),
		Size:  fixedpoint.FromNative(lvl.SizeNative, market.BaseDecimals),
	}
}

// isTimeout 判断错误链中是否存在超时
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}
