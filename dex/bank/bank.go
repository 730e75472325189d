package bank

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/pkg/config"
	"github.com/betbot/gomango/pkg/fixedpoint"
)

// TokenBankInfo 组内单个代币的银行概况
type TokenBankInfo struct {
	// Symbol 代币符号
	Symbol string

	// TotalDeposits 总存款（人类可读单位）
	TotalDeposits fixedpoint.Value

	// TotalBorrows 总借款
	TotalBorrows fixedpoint.Value

	// DepositRate 存款利率（小数，0.05 = 5%）
	DepositRate fixedpoint.Value

	// BorrowRate 借款利率
	BorrowRate fixedpoint.Value

	// Utilization 资金利用率 = borrows / deposits，无存款时为零
	Utilization fixedpoint.Value
}

// BankView 代币银行视图
type BankView struct {
	query ledger.QueryClient
}

// New 创建银行视图
func New(query ledger.QueryClient) *BankView {
	return &BankView{query: query}
}

// bps 基点换算分母
var bps = fixedpoint.FromInt(10000)

// LoadTokenInfo 拉取组内全部代币的存借款与利率概况。
// 利率和利用率一律走定点运算。
func (v *BankView) LoadTokenInfo(ctx context.Context, group *config.GroupConfig) ([]TokenBankInfo, error) {
	raw, err := v.query.GetRootBanks(ctx, group.GroupAddress)
	if err != nil {
		return nil, fmt.Errorf("load root banks %s: %w", group.Name, err)
	}

	var wire ledger.WireRootBankList
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, fmt.Errorf("decode root banks %s: %w", group.Name, err)
	}

	banksByKey := make(map[string]ledger.WireRootBank, len(wire.Banks))
	for _, b := range wire.Banks {
		banksByKey[b.RootKey] = b
	}

	infos := make([]TokenBankInfo, 0, len(group.Tokens))
	for _, token := range group.Tokens {
		bank, ok := banksByKey[token.RootKey]
		if !ok {
			return nil, fmt.Errorf("root bank for token %s (%s) not found", token.Symbol, token.RootKey)
		}

		deposits := fixedpoint.FromNative(bank.DepositsNative, token.Decimals)
		borrows := fixedpoint.FromNative(bank.BorrowsNative, token.Decimals)

		utilization := fixedpoint.Zero
		if deposits.IsPositive() {
			utilization = borrows.Div(deposits)
		}

		infos = append(infos, TokenBankInfo{
			Symbol:        token.Symbol,
			TotalDeposits: deposits,
			TotalBorrows:  borrows,
			DepositRate:   fixedpoint.FromInt(bank.DepositRateBps).Div(bps),
			BorrowRate:    fixedpoint.FromInt(bank.BorrowRateBps).Div(bps),
			Utilization:   utilization,
		})
	}
	return infos, nil
}
