package match

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCostMatches(t *testing.T) {
	tol := DefaultCostTolerance

	tests := []struct {
		name     string
		a        string
		b        string
		expected bool
	}{
		{"exact equal", "500", "500", true},
		{"both zero", "0", "0", true},
		{"left zero", "0", "5", false},
		{"right zero", "5", "0", false},
		{"within tolerance", "100", "100.5", true},
		{"at tolerance boundary", "100", "101", true},
		{"outside tolerance", "100", "102", false},
		{"large values within tolerance", "12000", "12060", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CostMatches(dec(tc.a), dec(tc.b), tol))
			assert.Equal(t, tc.expected, CostMatches(dec(tc.b), dec(tc.a), tol), "not commutative")
		})
	}
}

func TestCostDifference(t *testing.T) {
	assert.True(t, dec("200").Equal(CostDifference(dec("1000"), dec("1200"))))
	assert.True(t, dec("200").Equal(CostDifference(dec("1200"), dec("1000"))))
	assert.True(t, decimal.Zero.Equal(CostDifference(dec("7"), dec("7"))))
}

func TestCostDiffPercent(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected string
	}{
		{"sixth off", "1000", "1200", "16.7%"},
		{"order independent", "1200", "1000", "16.7%"},
		{"equal", "500", "500", "0.0%"},
		{"both zero", "0", "0", "0.0%"},
		{"one zero", "0", "250", "100.0%"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CostDiffPercent(dec(tc.a), dec(tc.b)))
		})
	}
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("acme", "acme"))
	assert.Equal(t, 100, Ratio("", ""))
	assert.Greater(t, Ratio("smith arborists", "smith arborsits"), 80)
	assert.Less(t, Ratio("ab trees", "cd trees"), 80)
}

func TestPartialRatio(t *testing.T) {
	assert.Equal(t, 100, PartialRatio("acme tree", "the acme tree company"))
	assert.Equal(t, 0, PartialRatio("", "acme"))
	assert.Less(t, PartialRatio("oak", "pine valley fencing"), 95)
}

func TestTokenSetRatio(t *testing.T) {
	assert.Equal(t, 100, TokenSetRatio("acme tree services ltd", "acme tree"))
	assert.Equal(t, 100, TokenSetRatio("tree acme", "acme tree"))
	assert.Equal(t, 0, TokenSetRatio("", "acme"))
	assert.Less(t, TokenSetRatio("smith & sons", "jones & co"), 90)
}
