package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/betbot/gomango/dex/account"
	"github.com/betbot/gomango/dex/executor"
	"github.com/betbot/gomango/dex/fills"
	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/marketview"
	"github.com/betbot/gomango/dex/settle"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/cache"
	"github.com/betbot/gomango/pkg/config"
	"github.com/betbot/gomango/pkg/fixedpoint"
	"github.com/betbot/gomango/pkg/logger"
)

// marketCacheTTL 市场元数据缓存时长
const marketCacheTTL = 5 * time.Minute

// snapshotDepth 工作流输出的 L2 档位深度
const snapshotDepth = 20

// Result 单个市场工作流的阶段输出
type Result struct {
	Market types.Market

	// Bids/Asks 快照头部 L2 价位
	Bids []types.PriceLevel
	Asks []types.PriceLevel

	// BookOrders 快照全部 L3 挂单
	BookOrders []types.BookOrder

	// PlacedOrderID 示例订单 ID
	PlacedOrderID types.OrderID

	// CancelledOrders 取消的挂单数量
	CancelledOrders int

	// Fills 历史成交
	Fills []types.Fill

	// Settled 是否触发了结算（仅现货）
	Settled bool
}

// TradingSession 交易会话：把各组件组合成 perp/spot 工作流。
//
// 单个市场内的各阶段严格按程序顺序执行，前一阶段的输出是后一阶段的输入；
// 任一阶段失败即中止该市场剩余阶段。perp 和 spot 工作流相互独立，
// 可以并发运行，互不共享可变状态，一个失败不影响另一个。
type TradingSession struct {
	cfg      *config.Config
	identity ledger.Identity

	view    *marketview.MarketView
	state   *account.AccountState
	exec    *executor.OrderExecutor
	settler *settle.SettlementCoordinator
	tracker *fills.FillTracker

	markets *cache.InMemoryCache[string, types.Market]
}

// New 创建交易会话
func New(cfg *config.Config, query ledger.QueryClient, submit ledger.SubmitClient, identity ledger.Identity) *TradingSession {
	view := marketview.New(query)
	state := account.New(query, cfg.Group.ProgramID)

	return &TradingSession{
		cfg:      cfg,
		identity: identity,
		view:     view,
		state:    state,
		exec:     executor.New(view, submit),
		settler:  settle.New(state, submit),
		tracker:  fills.New(query),
		markets:  cache.NewInMemoryCache[string, types.Market](marketCacheTTL),
	}
}

// Run 执行一个市场类型的完整工作流：
// 加载市场元数据 → 拉取订单簿（头部档位 + 全部挂单）→ 发现账户 →
// 下一笔示例订单 → 刷新挂单 → 取消该账户在该市场的全部挂单 →
// 拉取成交 → （仅现货）有可释放余额则结算。
func (s *TradingSession) Run(ctx context.Context, kind types.MarketKind, req types.OrderRequest) (*Result, error) {
	log := logger.WithField("kind", string(kind))

	market, err := s.loadMarket(kind)
	if err != nil {
		return nil, err
	}
	result := &Result{Market: market}
	log = log.WithField("market", market.Symbol)

	// 拉取订单簿
	snapshot, err := s.view.LoadSnapshot(ctx, market)
	if err != nil {
		return nil, err
	}
	result.Bids, result.Asks = s.view.TopLevels(snapshot, snapshotDepth)
	result.BookOrders = s.view.AllOrders(snapshot)
	log.Infof("orderbook: %d bid levels, %d ask levels, %d resting orders",
		len(result.Bids), len(result.Asks), len(result.BookOrders))

	// 发现账户。没有账户是合法状态：该市场的交易阶段无事可做。
	accounts, err := s.state.DiscoverAccounts(ctx, s.identity.Owner())
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		log.Warnf("owner %s has no trading account, skipping trading stages", s.identity.Owner())
		return result, nil
	}
	acct := accounts[0]

	// 下示例订单
	orderID, err := s.exec.Place(ctx, acct, market, req)
	if err != nil {
		return nil, err
	}
	result.PlacedOrderID = orderID

	// 刷新挂单并全部取消
	if err := s.state.RefreshOpenOrders(ctx, acct, market); err != nil {
		return nil, err
	}
	for _, order := range acct.OpenOrders() {
		if err := s.exec.Cancel(ctx, acct, market, order); err != nil {
			return nil, err
		}
		result.CancelledOrders++
	}

	// 拉取成交
	marketFills, err := s.tracker.LoadFills(ctx, market)
	if err != nil {
		return nil, err
	}
	result.Fills = marketFills
	s.logFills(log, market, marketFills)

	// 仅现货：结算可释放余额
	if kind == types.MarketKindSpot {
		settled, err := s.settler.SettleIfNeeded(ctx, acct, market)
		if err != nil {
			return nil, err
		}
		result.Settled = settled
	}

	return result, nil
}

// RunAll 并发执行 perp 和 spot 工作流。
// 两个工作流互不共享可变状态，一个市场的失败不会中止另一个，
// 各自的错误分别返回。
func (s *TradingSession) RunAll(ctx context.Context, requests map[types.MarketKind]types.OrderRequest) (map[types.MarketKind]*Result, map[types.MarketKind]error) {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make(map[types.MarketKind]*Result, len(requests))
		errs    = make(map[types.MarketKind]error)
	)

	for kind, req := range requests {
		wg.Add(1)
		go func(kind types.MarketKind, req types.OrderRequest) {
			defer wg.Done()
			result, err := s.Run(ctx, kind, req)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[kind] = err
				return
			}
			results[kind] = result
		}(kind, req)
	}
	wg.Wait()
	return results, errs
}

// loadMarket 加载市场元数据（组配置只读，解析结果带 TTL 缓存）
func (s *TradingSession) loadMarket(kind types.MarketKind) (types.Market, error) {
	key := s.cfg.BaseSymbol + "/" + string(kind)
	if market, ok := s.markets.Get(key); ok {
		return market, nil
	}

	descriptor, err := s.cfg.Group.MarketBySymbolAndKind(s.cfg.BaseSymbol, kind)
	if err != nil {
		return types.Market{}, fmt.Errorf("load market: %w", err)
	}
	market := descriptor.ToMarket()
	s.markets.Set(key, market, marketCacheTTL)
	return market, nil
}

// logFills 按市场类型输出成交口径：perp 记带符号数量，现货另记计价币金额
func (s *TradingSession) logFills(log *logrus.Entry, market types.Market, list []types.Fill) {
	for _, f := range list {
		signed := f.SignedQuantity()
		if market.Kind == types.MarketKindSpot {
			log.Infof("fill %s role=%s qty=%s quote=%s", f.Maker, f.Role, signed, fills.QuoteValue(f, market))
			continue
		}
		log.Infof("fill maker=%s taker=%s price=%s qty=%s", f.Maker, f.Taker, f.Price, signed)
	}
}

// ExemplarPerpRequest 原型 perp 示例订单：保证挂上并在 5 秒后自动过期
func ExemplarPerpRequest(now time.Time) types.OrderRequest {
	return types.OrderRequest{
		Side:            types.SideBuy,
		Price:           fixedpoint.FromFloat(39000),
		Size:            fixedpoint.FromFloat(0.0001),
		Type:            types.OrderTypePostOnlySlide,
		ExpiryTimestamp: now.Unix() + 5,
	}
}

// ExemplarSpotRequest 原型现货示例订单
func ExemplarSpotRequest() types.OrderRequest {
	return types.OrderRequest{
		Side:  types.SideBuy,
		Price: fixedpoint.FromFloat(41000),
		Size:  fixedpoint.FromFloat(0.0001),
		Type:  types.OrderTypeLimit,
	}
}
