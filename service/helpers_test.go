package service

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/MuhammadaminPy/gifts/config"
)

// dec parses a decimal literal, panicking on malformed test input
func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// decimalArg matches a decimal argument by numeric value rather than
// representation, since arithmetic results can carry different exponents.
func decimalArg(s string) interface{} {
	want := dec(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

// testConfig returns a config with the platform defaults, bypassing the
// environment-backed singleton.
func testConfig() *config.Config {
	return &config.Config{
		DefaultRefPercent:  10,
		RefTransferMinimum: decimal.NewFromInt(3),
		FreeCaseCooldown:   24 * time.Hour,
		OnlineWindow:       5 * time.Minute,
		NewUserWindow:      24 * time.Hour,
		Environment:        "test",
	}
}
