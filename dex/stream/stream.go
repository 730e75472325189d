// Package stream 提供成交事件 WebSocket 客户端。
// 推送通道只是轮询的补充：账本最终一致，刚下的单可能要过几个查询周期
// 才能在快照里看到，成交事件流能更早给出信号。
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/betbot/gomango/dex/types"
	"github.com/betbot/gomango/pkg/logger"
)

// FillEvent 成交事件
type FillEvent struct {
	Market      string     `json:"market"`
	Maker       string     `json:"maker"`
	Taker       string     `json:"taker"`
	PriceNative int64      `json:"price"`
	SizeNative  int64      `json:"size"`
	Side        types.Side `json:"side"`
	Timestamp   int64      `json:"timestamp"`
}

// Config 流客户端配置
type Config struct {
	// PingInterval 心跳间隔
	PingInterval time.Duration

	// PongTimeout 心跳响应超时，超过则判定连接死亡并重连
	PongTimeout time.Duration

	// ReconnectDelay 重连基础等待
	ReconnectDelay time.Duration

	// MaxReconnectAttempts 最大重连次数，0 表示不限
	MaxReconnectAttempts int

	// EventBufferSize 事件通道缓冲
	EventBufferSize int
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		PingInterval:         15 * time.Second,
		PongTimeout:          45 * time.Second,
		ReconnectDelay:       2 * time.Second,
		MaxReconnectAttempts: 10,
		EventBufferSize:      256,
	}
}

// FillStream 成交事件流客户端
type FillStream struct {
	url    string
	config *Config

	conn   *websocket.Conn
	connMu sync.Mutex

	// subscriptions 市场地址 -> 是否已订阅
	subscriptions map[string]bool
	subMu         sync.RWMutex

	events chan FillEvent
	errs   chan error

	running   bool
	runningMu sync.RWMutex
	cancel    context.CancelFunc
	doneCh    chan struct{}
}

// NewFillStream 创建成交事件流客户端
func NewFillStream(url string, config *Config) *FillStream {
	if config == nil {
		config = DefaultConfig()
	}
	return &FillStream{
		url:           url,
		config:        config,
		subscriptions: make(map[string]bool),
		events:        make(chan FillEvent, config.EventBufferSize),
		errs:          make(chan error, 8),
		doneCh:        make(chan struct{}),
	}
}

// Events 成交事件通道
func (s *FillStream) Events() <-chan FillEvent {
	return s.events
}

// Errors 错误通道
func (s *FillStream) Errors() <-chan error {
	return s.errs
}

// Start 建立连接并开始读取
func (s *FillStream) Start(ctx context.Context) error {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		return fmt.Errorf("fill stream already running")
	}
	s.running = true
	s.runningMu.Unlock()

	ctx, s.cancel = context.WithCancel(ctx)

	if err := s.connect(ctx); err != nil {
		s.setStopped()
		return err
	}

	go s.readLoop(ctx)
	go s.pingLoop(ctx)
	return nil
}

// Stop 关闭连接并停止
func (s *FillStream) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	s.connMu.Lock()
	if s.conn != nil {
		_ = s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	close(s.doneCh)
}

// Subscribe 订阅一个市场的成交事件
func (s *FillStream) Subscribe(marketAddress string) error {
	s.subMu.Lock()
	s.subscriptions[marketAddress] = true
	s.subMu.Unlock()

	return s.send(map[string]any{
		"op":     "subscribe",
		"stream": "fills",
		"market": marketAddress,
	})
}

func (s *FillStream) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", s.url, err)
	}

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	})
	_ = conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	// 重连后恢复既有订阅
	s.subMu.RLock()
	markets := make([]string, 0, len(s.subscriptions))
	for m := range s.subscriptions {
		markets = append(markets, m)
	}
	s.subMu.RUnlock()
	for _, m := range markets {
		if err := s.send(map[string]any{"op": "subscribe", "stream": "fills", "market": m}); err != nil {
			return err
		}
	}
	return nil
}

func (s *FillStream) readLoop(ctx context.Context) {
	attempts := 0
	for {
		if ctx.Err() != nil {
			return
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()
		if conn == nil {
			return
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			attempts++
			if s.config.MaxReconnectAttempts > 0 && attempts > s.config.MaxReconnectAttempts {
				s.pushErr(fmt.Errorf("fill stream: reconnect attempts exhausted: %w", err))
				return
			}
			logger.Warnf("fill stream read failed (attempt %d): %v", attempts, err)
			time.Sleep(s.config.ReconnectDelay * time.Duration(attempts))
			if err := s.connect(ctx); err != nil {
				s.pushErr(err)
			}
			continue
		}
		attempts = 0

		var event FillEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			logger.Debugf("fill stream: skipping unparseable message: %v", err)
			continue
		}

		select {
		case s.events <- event:
		default:
			// 消费方落后时丢弃最旧的事件语义过重，这里直接丢弃本条并记录
			logger.Warnf("fill stream: event buffer full, dropping fill for %s", event.Market)
		}
	}
}

func (s *FillStream) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.doneCh:
			return
		case <-ticker.C:
			s.connMu.Lock()
			conn := s.conn
			s.connMu.Unlock()
			if conn == nil {
				continue
			}
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
				logger.Debugf("fill stream ping failed: %v", err)
			}
		}
	}
}

func (s *FillStream) send(payload any) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("fill stream not connected")
	}
	return s.conn.WriteJSON(payload)
}

func (s *FillStream) pushErr(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func (s *FillStream) setStopped() {
	s.runningMu.Lock()
	s.running = false
	s.runningMu.Unlock()
}
