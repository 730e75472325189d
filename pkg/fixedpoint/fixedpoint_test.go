package fixedpoint

import "testing"

func TestNativeRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		native   int64
		decimals int32
		want     string
	}{
		{"six decimals", 41000000000, 6, "41000"},
		{"nine decimals", 1500000000, 9, "1.5"},
		{"zero decimals", 42, 0, "42"},
		{"sub unit", 100, 6, "0.0001"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := FromNative(tc.native, tc.decimals)
			if got := v.String(); got != tc.want {
				t.Fatalf("FromNative(%d, %d) = %s, want %s", tc.native, tc.decimals, got, tc.want)
			}
			if back := v.Native(tc.decimals); back != tc.native {
				t.Fatalf("Native round trip got=%d want=%d", back, tc.native)
			}
		})
	}
}

func TestNativeDifferentScales(t *testing.T) {
	// 同一个人类可读数值在不同精度下的原生表示
	v := FromFloat(0.0001)
	if got := v.Native(6); got != 100 {
		t.Fatalf("Native(6) got=%d want=100", got)
	}
	if got := v.Native(9); got != 100000 {
		t.Fatalf("Native(9) got=%d want=100000", got)
	}
}

func TestArithmetic(t *testing.T) {
	a := FromFloat(0.1)
	b := FromFloat(0.2)
	if got := a.Add(b).String(); got != "0.3" {
		t.Fatalf("0.1+0.2 got=%s want=0.3", got)
	}

	if !FromInt(0).IsZero() {
		t.Fatalf("FromInt(0) should be zero")
	}
	if !FromFloat(1).IsPositive() || FromFloat(-1).IsPositive() {
		t.Fatalf("IsPositive sign check failed")
	}
	if FromFloat(2).Cmp(FromFloat(3)) != -1 {
		t.Fatalf("Cmp(2,3) should be -1")
	}
	if got := FromFloat(1.5).Neg().String(); got != "-1.5" {
		t.Fatalf("Neg got=%s want=-1.5", got)
	}
}

func TestDivPrecision(t *testing.T) {
	// 利用率口径：borrows / deposits 不能用 float 算
	deposits := FromNative(3000000, 6)
	borrows := FromNative(1000000, 6)
	util := borrows.Div(deposits)
	if got := util.Round(4).String(); got != "0.3333" {
		t.Fatalf("utilization got=%s want=0.3333", got)
	}
}
