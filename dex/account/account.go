package account

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/fixedpoint"
)

// TradingAccount 交易账户的本地镜像
//
// 默认每个账户只由一个工作流驱动，不需要进程内锁；
// 这里仍然用读写锁保护，以便多个工作流指向同一账户时下单/取消能被串行化。
type TradingAccount struct {
	// Account 账户地址
	Account types.AccountID

	// Owner 所有者身份
	Owner types.OwnerID

	mu         sync.RWMutex
	openOrders map[types.OrderID]types.OpenOrder
	balances   types.AccountBalances
}

// NewTradingAccount 创建交易账户镜像
func NewTradingAccount(account types.AccountID, owner types.OwnerID) *TradingAccount {
	return &TradingAccount{
		Account:    account,
		Owner:      owner,
		openOrders: make(map[types.OrderID]types.OpenOrder),
	}
}

// OpenOrders 返回当前挂单的副本
func (a *TradingAccount) OpenOrders() []types.OpenOrder {
	a.mu.RLock()
	defer a.mu.RUnlock()

	orders := make([]types.OpenOrder, 0, len(a.openOrders))
	for _, o := range a.openOrders {
		orders = append(orders, o)
	}
	return orders
}

// HasOpenOrder 检查订单是否在挂单集合中
func (a *TradingAccount) HasOpenOrder(id types.OrderID) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	_, ok := a.openOrders[id]
	return ok
}

// NumOpenOrders 挂单数量
func (a *TradingAccount) NumOpenOrders() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.openOrders)
}

// Balances 返回当前余额快照
func (a *TradingAccount) Balances() types.AccountBalances {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.balances
}

// setOpenOrders 整体替换挂单集合（快照语义，不做增量合并，避免部分更新漂移）
func (a *TradingAccount) setOpenOrders(orders []types.OpenOrder) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.openOrders = make(map[types.OrderID]types.OpenOrder, len(orders))
	for _, o := range orders {
		a.openOrders[o.OrderID] = o
	}
}

// setBalances 整体替换余额
func (a *TradingAccount) setBalances(b types.AccountBalances) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.balances = b
}

// AccountState 账户状态服务：发现账户、刷新挂单和余额
type AccountState struct {
	query     ledger.QueryClient
	programID string
}

// New 创建账户状态服务
func New(query ledger.QueryClient, programID string) *AccountState {
	return &AccountState{query: query, programID: programID}
}

// DiscoverAccounts 按所有者身份查找交易账户。
// 没有账户时返回空切片而不是错误：调用方必须把"无账户"当作
// 合法的可操作状态处理，而不是故障。
func (s *AccountState) DiscoverAccounts(ctx context.Context, owner types.OwnerID) ([]*TradingAccount, error) {
	raw, err := s.query.GetAccountsForOwner(ctx, s.programID, owner)
	if err != nil {
		return nil, fmt.Errorf("discover accounts for %s: %w", owner, err)
	}

	var wire ledger.WireAccountList
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode accounts for %s: %w", owner, err)
	}

	accounts := make([]*TradingAccount, 0, len(wire.Accounts))
	for _, w := range wire.Accounts {
		accounts = append(accounts, NewTradingAccount(types.AccountID(w.Account), types.OwnerID(w.Owner)))
	}
	return accounts, nil
}

// RefreshOpenOrders 刷新账户在指定市场上的挂单（整体覆盖）
func (s *AccountState) RefreshOpenOrders(ctx context.Context, acct *TradingAccount, market types.Market) error {
	wire, err := s.fetchState(ctx, acct)
	if err != nil {
		return err
	}

	orders := make([]types.OpenOrder, 0, len(wire.OpenOrders))
	for _, w := range wire.OpenOrders {
		if w.Market != market.Address {
			continue
		}
		orders = append(orders, types.OpenOrder{
			OrderID:         types.OrderID(w.OrderID),
			Side:            types.Side(w.Side),
			Price:           fixedpoint.FromNative(w.PriceNative, market.QuoteDecimals),
			Size:            fixedpoint.FromNative(w.SizeNative, market.BaseDecimals),
			Account:         acct.Account,
			ClientOrderID:   w.ClientOrderID,
			ExpiryTimestamp: w.ExpiryTimestamp,
		})
	}
	acct.setOpenOrders(orders)
	return nil
}

// RefreshBalances 刷新账户余额（整体覆盖，按市场声明的精度换算）
func (s *AccountState) RefreshBalances(ctx context.Context, acct *TradingAccount, market types.Market) error {
	wire, err := s.fetchState(ctx, acct)
	if err != nil {
		return err
	}

	acct.setBalances(types.AccountBalances{
		Base: types.TokenBalance{
			Free:   fixedpoint.FromNative(wire.Balances.BaseFreeNative, market.BaseDecimals),
			Locked: fixedpoint.FromNative(wire.Balances.BaseLockedNative, market.BaseDecimals),
		},
		Quote: types.TokenBalance{
			Free:   fixedpoint.FromNative(wire.Balances.QuoteFreeNative, market.QuoteDecimals),
			Locked: fixedpoint.FromNative(wire.Balances.QuoteLockedNative, market.QuoteDecimals),
		},
	})
	return nil
}

// fetchState 拉取并解码账户状态。
// 已知账户查询失败（例如账户被外部关闭）会原样上抛，由调用方感知终态。
func (s *AccountState) fetchState(ctx context.Context, acct *TradingAccount) (*ledger.WireAccountState, error) {
	raw, err := s.query.GetAccountState(ctx, acct.Account)
	if err != nil {
		return nil, fmt.Errorf("fetch account %s: %w", acct.Account, err)
	}

	var wire ledger.WireAccountState
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", acct.Account, err)
	}
	return &wire, nil
}
