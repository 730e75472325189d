package ledger

import (
	"context"

	"github.com/betbot/gomango/dex/types"
)

// QueryClient 账本查询能力（由宿主应用注入）
//
// 返回的是原始字节，由各组件解码成领域模型。
// 实现必须容忍最终一致性：刚下的单可能要过几个查询周期才出现。
type QueryClient interface {
	// GetOrderbook 拉取订单簿快照原始字节
	GetOrderbook(ctx context.Context, marketAddress string) ([]byte, error)

	// GetAccountState 拉取账户余额/挂单原始字节
	GetAccountState(ctx context.Context, account types.AccountID) ([]byte, error)

	// GetFills 拉取市场成交记录原始字节
	GetFills(ctx context.Context, marketAddress string) ([]byte, error)

	// GetAccountsForOwner 按所有者身份查找交易账户原始字节
	GetAccountsForOwner(ctx context.Context, programID string, owner types.OwnerID) ([]byte, error)

	// GetRootBanks 拉取组内代币银行原始字节
	GetRootBanks(ctx context.Context, groupAddress string) ([]byte, error)
}

// OrderPayload 提交订单载荷（价格/数量为链上原生整数）
type OrderPayload struct {
	Account         types.AccountID `json:"account"`
	Owner           types.OwnerID   `json:"owner"`
	Side            types.Side      `json:"side"`
	PriceNative     int64           `json:"price_native"`
	SizeNative      int64           `json:"size_native"`
	Type            types.OrderType `json:"order_type"`
	ExpiryTimestamp int64           `json:"expiry_timestamp,omitempty"`
	ClientOrderID   string          `json:"client_order_id,omitempty"`
}

// Receipt 提交回执（实现负责等待链上确认后才返回成功）
type Receipt struct {
	// Signature 交易签名
	Signature string `json:"signature"`

	// OrderID 远端分配的订单 ID（仅下单回执）
	OrderID types.OrderID `json:"order_id,omitempty"`

	// Rejected 远端按订单类型策略拒单
	Rejected bool `json:"rejected,omitempty"`

	// RejectReason 拒单原因
	RejectReason string `json:"reject_reason,omitempty"`
}

// SubmitClient 账本提交能力（由宿主应用注入）
//
// 所有提交都是 fire-and-confirm：实现负责等待远端确认后才返回成功。
// 签名在实现内部完成，本库只持有所有者身份句柄。
type SubmitClient interface {
	// SubmitOrder 提交订单
	SubmitOrder(ctx context.Context, marketAddress string, payload OrderPayload) (*Receipt, error)

	// SubmitCancel 提交取消
	SubmitCancel(ctx context.Context, marketAddress string, orderID types.OrderID) (*Receipt, error)

	// SubmitSettle 提交结算
	SubmitSettle(ctx context.Context, account types.AccountID, marketAddress string) (*Receipt, error)
}

// Identity 身份能力：提供稳定的所有者身份句柄。
// 密钥加载和签名不属于本库，由宿主注入的提交能力内部处理。
type Identity interface {
	Owner() types.OwnerID
}
