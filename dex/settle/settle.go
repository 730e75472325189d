package settle

import (
	"context"
	"fmt"

	"github.com/betbot/gomango/dex/account"
	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/logger"
)

// SettlementCoordinator 结算协调器：检测可结算的可释放余额并触发结算
type SettlementCoordinator struct {
	state  *account.AccountState
	submit ledger.SubmitClient
}

// New 创建结算协调器
func New(state *account.AccountState, submit ledger.SubmitClient) *SettlementCoordinator {
	return &SettlementCoordinator{state: state, submit: submit}
}

// SettleIfNeeded 刷新余额后，当该账户自己的基础币或计价币可释放余额
// 严格大于零时提交一次结算，否则什么都不做。
//
// 幂等：重复调用安全；两币种可释放余额均为零是合法状态（返回 false, nil），
// 不是错误，交易开始前调用也安全。
func (c *SettlementCoordinator) SettleIfNeeded(ctx context.Context, acct *account.TradingAccount, market types.Market) (bool, error) {
	if err := c.state.RefreshBalances(ctx, acct, market); err != nil {
		return false, fmt.Errorf("settle %s: refresh balances: %w", market.Symbol, err)
	}

	balances := acct.Balances()
	if !balances.HasFreeBalance() {
		return false, nil
	}

	receipt, err := c.submit.SubmitSettle(ctx, acct.Account, market.Address)
	if err != nil {
		return false, fmt.Errorf("settle %s: %w", market.Symbol, err)
	}

	logger.WithField("market", market.Symbol).Infof(
		"settled funds for %s (base free=%s quote free=%s) sig=%s",
		acct.Account, balances.Base.Free, balances.Quote.Free, receipt.Signature)
	return true, nil
}
