package types

import "github.com/betbot/gomango/pkg/fixedpoint"

// Market 市场元数据（加载后不可变）
type Market struct {
	// Symbol 基础币符号，例如 BTC
	Symbol string `json:"symbol"`

	// Kind 市场类型（perp/spot）
	Kind MarketKind `json:"kind"`

	// Address 市场账户地址
	Address string `json:"address"`

	// MarketIndex 组内市场序号
	MarketIndex int `json:"market_index"`

	// BaseDecimals 基础币精度
	BaseDecimals int32 `json:"base_decimals"`

	// QuoteDecimals 计价币精度
	QuoteDecimals int32 `json:"quote_decimals"`
}

// PriceLevel L2 聚合价位
type PriceLevel struct {
	Price fixedpoint.Value `json:"price"`
	Size  fixedpoint.Value `json:"size"`
}

// BookOrder L3 单笔挂单记录
type BookOrder struct {
	// Owner 挂单账户地址
	Owner AccountID `json:"owner"`

	// OrderID 订单 ID
	OrderID OrderID `json:"order_id"`

	Price fixedpoint.Value `json:"price"`
	Size  fixedpoint.Value `json:"size"`
	Side  Side             `json:"side"`
}

// OrderBookSnapshot 订单簿快照（不可变，刷新 = 重新拉取，不做增量合并）
type OrderBookSnapshot struct {
	Market string `json:"market"`

	// Bids 买盘 L2 价位，按价格从优到劣（降序）
	Bids []PriceLevel `json:"bids"`

	// Asks 卖盘 L2 价位，按价格从优到劣（升序）
	Asks []PriceLevel `json:"asks"`

	// Orders L3 挂单记录（两侧合并）
	Orders []BookOrder `json:"orders"`

	// FetchedAt 拉取时间（Unix 秒）
	FetchedAt int64 `json:"fetched_at"`
}

// BestBid 最优买价，空盘时返回 false
func (s *OrderBookSnapshot) BestBid() (PriceLevel, bool) {
	if len(s.Bids) == 0 {
		return PriceLevel{}, false
	}
	return s.Bids[0], true
}

// BestAsk 最优卖价，空盘时返回 false
func (s *OrderBookSnapshot) BestAsk() (PriceLevel, bool) {
	if len(s.Asks) == 0 {
		return PriceLevel{}, false
	}
	return s.Asks[0], true
}
