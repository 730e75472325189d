package fixedpoint

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Value 定点数值对象
//
// 所有金额/价格/利率的运算都走这里，避免 float64 精度丢失。
// 链上返回的是按 token 精度放大的原生整数（native amount），
// 转换时必须传入市场声明的 decimals，禁止硬编码常量。
type Value struct {
	d decimal.Decimal
}

// Zero 零值
var Zero = Value{d: decimal.Zero}

// One 1
var One = Value{d: decimal.NewFromInt(1)}

// FromFloat 从 float64 创建（仅用于 API 边界，进入内部后立即定点化）
func FromFloat(f float64) Value {
	return Value{d: decimal.NewFromFloat(f)}
}

// FromInt 从 int64 创建
func FromInt(i int64) Value {
	return Value{d: decimal.NewFromInt(i)}
}

// FromString 从字符串创建
func FromString(s string) (Value, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("fixedpoint: invalid decimal %q: %w", s, err)
	}
	return Value{d: d}, nil
}

// FromNative 从链上原生整数创建（按 decimals 缩小）
// 例如 decimals=6 时 41000000000 -> 41000
func FromNative(native int64, decimals int32) Value {
	return Value{d: decimal.New(native, -decimals)}
}

// Native 转换为链上原生整数（按 decimals 放大，截断到整数）
func (v Value) Native(decimals int32) int64 {
	return v.d.Shift(decimals).Truncate(0).IntPart()
}

// Float64 转换为 float64（仅用于展示/日志）
func (v Value) Float64() float64 {
	f, _ := v.d.Float64()
	return f
}

// String 字符串表示
func (v Value) String() string {
	return v.d.String()
}

// Add 相加
func (v Value) Add(o Value) Value { return Value{d: v.d.Add(o.d)} }

// Sub 相减
func (v Value) Sub(o Value) Value { return Value{d: v.d.Sub(o.d)} }

// Mul 相乘
func (v Value) Mul(o Value) Value { return Value{d: v.d.Mul(o.d)} }

// Div 相除（o 不能为零）
func (v Value) Div(o Value) Value { return Value{d: v.d.Div(o.d)} }

// Neg 取负
func (v Value) Neg() Value { return Value{d: v.d.Neg()} }

// Cmp 比较：v<o 返回 -1，v==o 返回 0，v>o 返回 1
func (v Value) Cmp(o Value) int { return v.d.Cmp(o.d) }

// IsZero 是否为零
func (v Value) IsZero() bool { return v.d.IsZero() }

// IsPositive 是否严格大于零
func (v Value) IsPositive() bool { return v.d.IsPositive() }

// IsNegative 是否严格小于零
func (v Value) IsNegative() bool { return v.d.IsNegative() }

// GreaterThan 是否大于
func (v Value) GreaterThan(o Value) bool { return v.d.GreaterThan(o.d) }

// LessThan 是否小于
func (v Value) LessThan(o Value) bool { return v.d.LessThan(o.d) }

// Round 四舍五入到 places 位小数
func (v Value) Round(places int32) Value { return Value{d: v.d.Round(places)} }

// MarshalJSON 实现 json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	return v.d.MarshalJSON()
}

// UnmarshalJSON 实现 json.Unmarshaler
func (v *Value) UnmarshalJSON(data []byte) error {
	return v.d.UnmarshalJSON(data)
}
