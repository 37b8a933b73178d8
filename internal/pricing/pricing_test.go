package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculate(t *testing.T) {
	cases := []struct {
		name     string
		lines    []Line
		rate     string
		subtotal string
		tax      string
		total    string
	}{
		{"empty", nil, "10", "0", "0", "0"},
		{"single line", []Line{{2, d("10.00")}}, "10", "20", "2", "22"},
		{"no tax", []Line{{3, d("1.50")}}, "0", "4.5", "0", "4.5"},
		{"fractional rate", []Line{{1, d("19.99")}, {2, d("0.35")}}, "7.25", "20.69", "1.500025", "22.190025"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Calculate(tc.lines, d(tc.rate))
			assert.True(t, got.Subtotal.Equal(d(tc.subtotal)), "subtotal %s", got.Subtotal)
			assert.True(t, got.Tax.Equal(d(tc.tax)), "tax %s", got.Tax)
			assert.True(t, got.Total.Equal(d(tc.total)), "total %s", got.Total)
		})
	}
}

func TestRoundingOnlyAtBoundary(t *testing.T) {
	// Three items at 0.333 with 10% tax: rounding each step would drift.
	lines := []Line{{3, d("0.333")}}
	got := Calculate(lines, d("10"))

	assert.Equal(t, "0.999", got.Subtotal.String())
	assert.Equal(t, "0.0999", got.Tax.String())
	assert.Equal(t, "1.0989", got.Total.String())

	r := got.Rounded()
	assert.Equal(t, "1.00", Format(r.Subtotal))
	assert.Equal(t, "0.10", Format(r.Tax))
	assert.Equal(t, "1.10", Format(r.Total))
}

func TestChange(t *testing.T) {
	assert.Equal(t, "3", Change(d("25"), d("22")).String())
	assert.True(t, Change(d("20"), d("22")).IsZero(), "negative change clamps to zero")
	assert.True(t, Change(d("22"), d("22")).IsZero())
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, "0.13", Format(Round(d("0.125"))))
	assert.Equal(t, "2.00", Format(Round(d("1.995"))))
}
