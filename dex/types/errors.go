package types

import (
	"errors"
	"fmt"
)

// 错误分类：
//   - ErrStaleData        查询超时/无可用快照，调用方退避重试后上抛
//   - RejectedOrderError  远端按订单类型策略拒单，不重试（请求对当前盘口无效）
//   - ErrUnknownOrder     取消目标已不存在，按成功处理
//   - InsufficientBalanceError 可用资金不足，不重试
//   - NetworkError        传输层失败，有界退避重试后作为该步骤的致命错误上抛

// ErrStaleData 查询超时或返回了不可用的快照
var ErrStaleData = errors.New("stale data: ledger query timed out or returned no usable snapshot")

// ErrUnknownOrder 取消目标已被成交/取消/过期
var ErrUnknownOrder = errors.New("unknown order: already filled, cancelled or expired")

// RejectedOrderError 远端订单簿按类型策略拒绝了订单
type RejectedOrderError struct {
	// Reason 拒绝原因（例如 postOnly 会立即成交）
	Reason string
}

func (e *RejectedOrderError) Error() string {
	return fmt.Sprintf("order rejected: %s", e.Reason)
}

// IsRejectedOrder 判断是否为拒单错误
func IsRejectedOrder(err error) bool {
	var re *RejectedOrderError
	return errors.As(err, &re)
}

// InsufficientBalanceError 下单/结算超出可用资金
type InsufficientBalanceError struct {
	Token string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for token %s", e.Token)
}

// NetworkError 传输层失败（重试耗尽后包装上抛）
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure on %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsNetworkError 判断是否为传输层错误
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
