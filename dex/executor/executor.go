package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/betbot/gomango/dex/account"
	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/marketview"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/fixedpoint"
	"github.com/betbot/gomango/pkg/logger"
)

// OrderExecutor 订单执行器：按类型策略下单、取消订单
type OrderExecutor struct {
	view   *marketview.MarketView
	submit ledger.SubmitClient
}

// New 创建订单执行器
func New(view *marketview.MarketView, submit ledger.SubmitClient) *OrderExecutor {
	return &OrderExecutor{view: view, submit: submit}
}

// Place 下单。类型策略语义：
//   - limit:         不能立即成交的部分挂在 req.Price
//   - ioc:           立即吃对手盘，剩余丢弃，绝不挂单
//   - postOnly:      会立即成交则整单拒绝（RejectedOrderError）
//   - postOnlySlide: 价格向内调整到刚好不穿越对手盘，保证挂上
//
// postOnly 的穿越检查先在客户端对最新快照做一次（快速拒绝，省一次提交），
// 同时远端回执的拒单也映射为同一个错误类型：快照和提交之间盘口可能移动。
func (e *OrderExecutor) Place(ctx context.Context, acct *account.TradingAccount, market types.Market, req types.OrderRequest) (types.OrderID, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	if req.ClientOrderID == "" {
		req.ClientOrderID = uuid.NewString()
	}

	price := req.Price
	if req.Type == types.OrderTypePostOnly || req.Type == types.OrderTypePostOnlySlide {
		snapshot, err := e.view.LoadSnapshot(ctx, market)
		if err != nil {
			return "", fmt.Errorf("place %s: %w", market.Symbol, err)
		}
		price, err = resolveMakerPrice(snapshot, market, req)
		if err != nil {
			return "", err
		}
	}

	payload := ledger.OrderPayload{
		Account:         acct.Account,
		Owner:           acct.Owner,
		Side:            req.Side,
		PriceNative:     price.Native(market.QuoteDecimals),
		SizeNative:      req.Size.Native(market.BaseDecimals),
		Type:            req.Type,
		ExpiryTimestamp: req.ExpiryTimestamp,
		ClientOrderID:   req.ClientOrderID,
	}

	receipt, err := e.submit.SubmitOrder(ctx, market.Address, payload)
	if err != nil {
		return "", fmt.Errorf("place %s %s %s@%s: %w",
			market.Symbol, req.Side, req.Size, price, err)
	}

	logger.WithField("market", market.Symbol).Infof(
		"placed %s %s %s@%s type=%s order_id=%s", req.Side, req.Size, market.Symbol, price, req.Type, receipt.OrderID)
	return receipt.OrderID, nil
}

// Cancel 取消挂单。目标已被成交/取消/过期时按成功处理（幂等），不升级为错误。
func (e *OrderExecutor) Cancel(ctx context.Context, acct *account.TradingAccount, market types.Market, order types.OpenOrder) error {
	_, err := e.submit.SubmitCancel(ctx, market.Address, order.OrderID)
	if err != nil {
		if errors.Is(err, types.ErrUnknownOrder) {
			logger.Debugf("cancel %s: order %s already gone", market.Symbol, order.OrderID)
			return nil
		}
		return fmt.Errorf("cancel %s order %s: %w", market.Symbol, order.OrderID, err)
	}
	logger.WithField("market", market.Symbol).Infof("cancelled order %s", order.OrderID)
	return nil
}

// resolveMakerPrice 处理 postOnly / postOnlySlide 的穿越逻辑
func resolveMakerPrice(snapshot *types.OrderBookSnapshot, market types.Market, req types.OrderRequest) (fixedpoint.Value, error) {
	opposite, ok := bestOpposite(snapshot, req.Side)
	if !ok {
		// 对手盘为空，任何价格都挂得上
		return req.Price, nil
	}

	crossing := false
	if req.Side == types.SideBuy {
		crossing = req.Price.Cmp(opposite) >= 0
	} else {
		crossing = req.Price.Cmp(opposite) <= 0
	}
	if !crossing {
		return req.Price, nil
	}

	if req.Type == types.OrderTypePostOnly {
		return fixedpoint.Zero, &types.RejectedOrderError{
			Reason: fmt.Sprintf("postOnly %s at %s would cross best %s %s",
				req.Side, req.Price, req.Side.Opposite(), opposite),
		}
	}

	// postOnlySlide：向内滑动一个最小价位，刚好不穿越
	tick := fixedpoint.FromNative(1, market.QuoteDecimals)
	if req.Side == types.SideBuy {
		return opposite.Sub(tick), nil
	}
	return opposite.Add(tick), nil
}

// bestOpposite 返回对手方向的最优价
func bestOpposite(snapshot *types.OrderBookSnapshot, side types.Side) (fixedpoint.Value, bool) {
	if side == types.SideBuy {
		if lvl, ok := snapshot.BestAsk(); ok {
			return lvl.Price, true
		}
		return fixedpoint.Zero, false
	}
	if lvl, ok := snapshot.BestBid(); ok {
		return lvl.Price, true
	}
	return fixedpoint.Zero, false
}

// validate 校验下单请求
func validate(req types.OrderRequest) error {
	if !req.Side.Valid() {
		return fmt.Errorf("invalid side: %q", req.Side)
	}
	if !req.Type.Valid() {
		return fmt.Errorf("invalid order type: %q", req.Type)
	}
	if !req.Price.IsPositive() {
		return fmt.Errorf("price must be positive, got %s", req.Price)
	}
	if !req.Size.IsPositive() {
		return fmt.Errorf("size must be positive, got %s", req.Size)
	}
	return nil
}
