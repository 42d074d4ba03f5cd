package ingestapp

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		raw      string
		expected string
		valid    bool
	}{
		{"$12.50", "12.5", true},
		{"12.50", "12.5", true},
		{"1,234.56", "1234.56", true},
		{"-3.00 USD", "-3", true},
		{"€ 0", "0", true},
		{"N/A", "", false},
		{"", "", false},
		{"1.2.3", "", false},
		{"--", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parseMoney(tt.raw)
			assert.Equal(t, tt.valid, got.Valid)
			if tt.valid {
				assert.True(t, decimal.RequireFromString(tt.expected).Equal(got.Decimal), "got %s", got.Decimal)
			}
		})
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		raw      string
		expected time.Time
	}{
		{"2024-03-01T10:20:30Z", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01 10:20:30 +0000", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01 10:20:30", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC)},
		{"2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"03/01/2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := parseTime(tt.raw)
			require.NotNil(t, got)
			assert.True(t, tt.expected.Equal(*got), "got %s", got)
		})
	}

	assert.Nil(t, parseTime(""))
	assert.Nil(t, parseTime("yesterday"))

	withZone := parseTime("2024-03-01 10:20:30 -0500")
	require.NotNil(t, withZone)
	assert.Equal(t, 15, withZone.UTC().Hour())
}

func TestParseQuantity(t *testing.T) {
	assert.Equal(t, 3, parseQuantity("3"))
	assert.Equal(t, 2, parseQuantity("2.5"))
	assert.Equal(t, 4, parseQuantity(" 4 pcs"))
	assert.Equal(t, 1, parseQuantity("0"))
	assert.Equal(t, 1, parseQuantity(""))
	assert.Equal(t, 1, parseQuantity("abc"))
	assert.Equal(t, -2, parseQuantity("-2"))
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Ada King Lovelace")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "King Lovelace", last)

	first, last = splitName("  Cher ")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)

	first, last = splitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}

func TestExternalOrderID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"#1001", "1001"},
		{"1001", "1001"},
		{" #1001 ", "1001"},
		{"#1001#B", "1001#B"},
		{"1001#", "1001#"},
		{"##7", "#7"},
		{"#", ""},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, externalOrderID(tt.raw))
		})
	}
}

func TestCoercionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("currency-formatted cents parse back exactly", prop.ForAll(
		func(cents int64, symbol string) bool {
			raw := fmt.Sprintf("%s%d.%02d", symbol, cents/100, cents%100)
			got := parseMoney(raw)
			return got.Valid && got.Decimal.Equal(decimal.New(cents, -2))
		},
		gen.Int64Range(0, 99_999_999_999),
		gen.OneConstOf("", "$", "€", "USD ", "£"),
	))

	properties.Property("text without digits is absent", prop.ForAll(
		func(s string) bool {
			return !parseMoney(s).Valid
		},
		gen.AlphaString(),
	))

	properties.Property("only yes and true are truthy", prop.ForAll(
		func(s string) bool {
			lower := strings.ToLower(strings.TrimSpace(s))
			return parseBool(s) == (lower == "yes" || lower == "true")
		},
		gen.OneGenOf(
			gen.AlphaString(),
			gen.OneConstOf("yes", "YES", "Yes", "true", "TRUE", " true ", "no", "false", "1", "y"),
		),
	))

	properties.Property("quantity is never zero", prop.ForAll(
		func(s string) bool {
			return parseQuantity(s) != 0
		},
		gen.OneGenOf(gen.AnyString(), gen.NumString()),
	))

	properties.Property("positive integers keep their value", prop.ForAll(
		func(n int) bool {
			return parseQuantity(fmt.Sprintf("%d", n)) == n
		},
		gen.IntRange(1, 1_000_000),
	))

	properties.TestingRun(t)
}
