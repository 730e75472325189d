package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/betbot/gomango/dex/bank"
	"github.com/betbot/gomango/dex/ledger"
	"github.com/betbot/gomango/dex/session"
	"github.com/betbot/gomango/dex/stream"
	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/config"
	"github.com/betbot/gomango/pkg/keystore"
	"github.com/betbot/gomango/pkg/logger"
)

// ownerIdentity 固定所有者身份句柄。签名由提交能力（RPC 网关）内部完成，
// 这里只需要一个稳定的身份标识。
type ownerIdentity struct {
	owner types.OwnerID
}

func (i ownerIdentity) Owner() types.OwnerID { return i.owner }

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "config.yaml", "配置文件路径 (.yaml/.yml/.json)")
	flag.Parse()

	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}

	identity, err := loadIdentity(cfg)
	if err != nil {
		logger.Errorf("加载身份失败: %v", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 信号处理：取消整个会话。注意不会自动撤掉已挂的订单——
	// 放弃挂单常常是有意的（postOnlySlide 的单就是要留在盘上）。
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warnf("收到信号 %v，停止会话", sig)
		cancel()
	}()

	rpc := ledger.NewRPCClient(cfg.Group.ClusterURL, ledger.RPCOptions{
		MaxRetries:     cfg.MaxRetries,
		RetryDelay:     cfg.RetryDelay,
		RequestTimeout: cfg.RequestTimeout,
	})

	sess := session.New(cfg, rpc, rpc, identity)

	// 开场打印组内代币银行概况，方便核对利率环境
	if len(cfg.Group.Tokens) > 0 {
		infos, err := bank.New(rpc).LoadTokenInfo(ctx, &cfg.Group)
		if err != nil {
			logger.Warnf("拉取代币银行概况失败: %v", err)
		} else {
			for _, info := range infos {
				logger.WithField("token", info.Symbol).Infof(
					"deposits=%s borrows=%s deposit_rate=%s borrow_rate=%s utilization=%s",
					info.TotalDeposits, info.TotalBorrows, info.DepositRate, info.BorrowRate, info.Utilization)
			}
		}
	}

	// 配置了事件流端点就顺带订阅成交推送：账本最终一致，
	// 推送往往比轮询更早看到自己的成交。
	if cfg.Group.StreamURL != "" {
		fillStream := stream.NewFillStream(cfg.Group.StreamURL, nil)
		if err := fillStream.Start(ctx); err != nil {
			logger.Warnf("成交事件流连接失败，继续走轮询: %v", err)
		} else {
			defer fillStream.Stop()
			for _, m := range cfg.Group.Markets {
				if err := fillStream.Subscribe(m.Address); err != nil {
					logger.Warnf("订阅 %s 成交事件失败: %v", m.Symbol, err)
				}
			}
			go func() {
				for {
					select {
					case <-ctx.Done():
						return
					case ev := <-fillStream.Events():
						logger.WithField("market", ev.Market).Infof(
							"fill event %s %s price=%d size=%d", ev.Side, ev.Maker, ev.PriceNative, ev.SizeNative)
					case err := <-fillStream.Errors():
						logger.Warnf("成交事件流错误: %v", err)
					}
				}
			}()
		}
	}

	requests := map[types.MarketKind]types.OrderRequest{
		types.MarketKindPerp: session.ExemplarPerpRequest(time.Now()),
		types.MarketKindSpot: session.ExemplarSpotRequest(),
	}

	results, errs := sess.RunAll(ctx, requests)

	for kind, result := range results {
		logResult(kind, result)
	}
	for kind, err := range errs {
		logger.Errorf("%s 工作流失败: %v", kind, err)
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
}

// loadIdentity 加载所有者身份：环境变量优先，其次身份密钥库
func loadIdentity(cfg *config.Config) (ledger.Identity, error) {
	if owner := strings.TrimSpace(os.Getenv("GOMANGO_OWNER_ID")); owner != "" {
		return ownerIdentity{owner: types.OwnerID(owner)}, nil
	}

	if cfg.KeystorePath == "" {
		return nil, fmt.Errorf("GOMANGO_OWNER_ID 未设置且 keystore_path 未配置")
	}

	store, err := keystore.Open(keystore.OpenOptions{
		Path:     cfg.KeystorePath,
		ReadOnly: true,
	})
	if err != nil {
		return nil, fmt.Errorf("打开密钥库失败: %w", err)
	}
	defer store.Close()

	raw, ok, err := store.GetKeypair("owner")
	if err != nil {
		return nil, fmt.Errorf("读取所有者身份失败: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("密钥库中没有 owner 条目")
	}
	return ownerIdentity{owner: types.OwnerID(strings.TrimSpace(string(raw)))}, nil
}

func logResult(kind types.MarketKind, result *session.Result) {
	log := logger.WithField("kind", string(kind))
	for _, lvl := range result.Bids {
		log.Infof("bid %s %s", lvl.Price, lvl.Size)
	}
	for _, lvl := range result.Asks {
		log.Infof("ask %s %s", lvl.Price, lvl.Size)
	}
	log.Infof("placed=%s cancelled=%d fills=%d settled=%v",
		result.PlacedOrderID, result.CancelledOrders, len(result.Fills), result.Settled)
}
