package ledger

// 账本查询返回的 JSON 线格式。
// 数值金额一律是按市场精度放大的原生整数，解码后经 fixedpoint 换算。

// WireLevel L2 价位
type WireLevel struct {
	PriceNative int64 `json:"price"`
	SizeNative  int64 `json:"size"`
}

// WireBookOrder L3 挂单记录
type WireBookOrder struct {
	Owner       string `json:"owner"`
	OrderID     string `json:"order_id"`
	PriceNative int64  `json:"price"`
	SizeNative  int64  `json:"size"`
	Side        string `json:"side"`
}

// WireOrderbook 订单簿快照
type WireOrderbook struct {
	Market    string          `json:"market"`
	Bids      []WireLevel     `json:"bids"`
	Asks      []WireLevel     `json:"asks"`
	Orders    []WireBookOrder `json:"orders"`
	Timestamp int64           `json:"timestamp"`
}

// WireOpenOrder 账户挂单
type WireOpenOrder struct {
	OrderID         string `json:"order_id"`
	Market          string `json:"market"`
	Side            string `json:"side"`
	PriceNative     int64  `json:"price"`
	SizeNative      int64  `json:"size"`
	ClientOrderID   string `json:"client_order_id,omitempty"`
	ExpiryTimestamp int64  `json:"expiry_timestamp,omitempty"`
}

// WireBalances 账户余额
type WireBalances struct {
	BaseFreeNative    int64 `json:"base_free"`
	BaseLockedNative  int64 `json:"base_locked"`
	QuoteFreeNative   int64 `json:"quote_free"`
	QuoteLockedNative int64 `json:"quote_locked"`
}

// WireAccountState 账户状态
type WireAccountState struct {
	Account    string          `json:"account"`
	Owner      string          `json:"owner"`
	OpenOrders []WireOpenOrder `json:"open_orders"`
	Balances   WireBalances    `json:"balances"`
}

// WireAccountList 所有者账户列表
type WireAccountList struct {
	Accounts []WireAccountState `json:"accounts"`
}

// WireFill 成交记录
type WireFill struct {
	Maker               string `json:"maker"`
	Taker               string `json:"taker"`
	PriceNative         int64  `json:"price"`
	SizeNative          int64  `json:"size"`
	Side                string `json:"side"`
	MakerFill           bool   `json:"maker_fill"`
	NativeQuotePaid     int64  `json:"native_quote_paid,omitempty"`
	NativeQuoteReleased int64  `json:"native_quote_released,omitempty"`
}

// WireFillList 成交记录列表
type WireFillList struct {
	Fills []WireFill `json:"fills"`
}

// WireRootBank 代币银行
type WireRootBank struct {
	RootKey        string `json:"root_key"`
	DepositsNative int64  `json:"deposits"`
	BorrowsNative  int64  `json:"borrows"`
	DepositRateBps int64  `json:"deposit_rate_bps"`
	BorrowRateBps  int64  `json:"borrow_rate_bps"`
}

// WireRootBankList 代币银行列表
type WireRootBankList struct {
	Banks []WireRootBank `json:"banks"`
}
