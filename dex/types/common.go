package types

// Side 订单方向
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// Sign 方向符号：买为 +1，卖为 -1
func (s Side) Sign() int64 {
	if s == SideBuy {
		return 1
	}
	return -1
}

// Opposite 返回对手方向
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// Valid 检查方向是否合法
func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// OrderType 订单类型策略
type OrderType string

const (
	// OrderTypeLimit 限价单：不能立即成交的部分挂在订单簿上
	OrderTypeLimit OrderType = "limit"
	// OrderTypeIOC 立即成交剩余取消：只吃对手盘，剩余部分丢弃，绝不挂单
	OrderTypeIOC OrderType = "ioc"
	// OrderTypePostOnly 只挂单：如果会立即成交则整单拒绝
	OrderTypePostOnly OrderType = "postOnly"
	// OrderTypePostOnlySlide 滑动只挂单：价格向内调整到刚好不穿越对手盘，保证挂上
	OrderTypePostOnlySlide OrderType = "postOnlySlide"
)

// Valid 检查订单类型是否合法
func (t OrderType) Valid() bool {
	switch t {
	case OrderTypeLimit, OrderTypeIOC, OrderTypePostOnly, OrderTypePostOnlySlide:
		return true
	}
	return false
}

// MarketKind 市场类型
type MarketKind string

const (
	MarketKindPerp MarketKind = "perp"
	MarketKindSpot MarketKind = "spot"
)

// FillRole 成交角色
type FillRole string

const (
	FillRoleMaker FillRole = "maker"
	FillRoleTaker FillRole = "taker"
)

// OwnerID 所有者身份句柄（公钥的 base58 表示，内容对本库不透明）
type OwnerID string

// AccountID 交易账户地址
type AccountID string

// OrderID 订单 ID（市场内唯一）
type OrderID string
