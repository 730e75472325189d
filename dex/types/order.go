package types

import "github.com/betbot/gomango/pkg/fixedpoint"

// OrderRequest 下单请求
type OrderRequest struct {
	// Side 订单方向
	Side Side

	// Price 限价（人类可读单位）
	Price fixedpoint.Value

	// Size 数量（基础币）
	Size fixedpoint.Value

	// Type 订单类型策略
	Type OrderType

	// ExpiryTimestamp 过期时间戳（Unix 秒），0 表示不过期。
	// 过期后链上按"读取时已取消"处理；客户端必须在该时刻之后
	// 重新查询 open orders 才能观察到订单消失。
	ExpiryTimestamp int64

	// ClientOrderID 客户端关联 ID，空则由执行器生成
	ClientOrderID string
}

// OpenOrder 挂单（从成功下单存在到被取消/成交/过期）
type OpenOrder struct {
	OrderID OrderID          `json:"order_id"`
	Side    Side             `json:"side"`
	Price   fixedpoint.Value `json:"price"`
	Size    fixedpoint.Value `json:"size"`

	// Account 所属交易账户
	Account AccountID `json:"account"`

	// ClientOrderID 客户端关联 ID（可选）
	ClientOrderID string `json:"client_order_id,omitempty"`

	// ExpiryTimestamp 过期时间戳（Unix 秒），0 表示不过期
	ExpiryTimestamp int64 `json:"expiry_timestamp,omitempty"`
}

// Fill 历史成交记录（不可变）
type Fill struct {
	Maker AccountID `json:"maker"`
	Taker AccountID `json:"taker"`

	Price fixedpoint.Value `json:"price"`

	// Size 成交数量（恒为正）
	Size fixedpoint.Value `json:"size"`

	Side Side     `json:"side"`
	Role FillRole `json:"role"`

	// NativeQuotePaid 买方支付的计价币原生数量（现货）
	NativeQuotePaid int64 `json:"native_quote_paid,omitempty"`

	// NativeQuoteReleased 卖方释放的计价币原生数量（现货）
	NativeQuoteReleased int64 `json:"native_quote_released,omitempty"`
}

// SignedQuantity 带符号成交数量：买为正，卖为负
func (f Fill) SignedQuantity() fixedpoint.Value {
	if f.Side == SideBuy {
		return f.Size
	}
	return f.Size.Neg()
}

// TokenBalance 单币种余额
type TokenBalance struct {
	// Free 可释放（待结算）数量
	Free fixedpoint.Value `json:"free"`

	// Locked 锁定在挂单中的数量
	Locked fixedpoint.Value `json:"locked"`
}

// AccountBalances 账户余额（基础币 + 计价币）
type AccountBalances struct {
	Base  TokenBalance `json:"base"`
	Quote TokenBalance `json:"quote"`
}

// HasFreeBalance 任一币种存在严格大于零的可释放余额（结算动作的前置条件）
func (b AccountBalances) HasFreeBalance() bool {
	return b.Base.Free.IsPositive() || b.Quote.Free.IsPositive()
}
