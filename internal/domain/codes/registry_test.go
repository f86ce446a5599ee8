package codes_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"djnml-feed/internal/domain/codes"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_KnownSymbols(t *testing.T) {
	tests := []struct {
		symbol string
		name   string
	}{
		{"N/GEN", "General News"},
		{"I/AIR", "Airlines"},
		{"R/EU", "Europe"},
		{"G/JUS", "Justice Department"},
		{"J/FDK", "Food & Drink"},
		{"M/EUR", "Euro European Union"},
		{"P/MWCM", "Credit Markets"},
		{"S/GRGP", "Greece GDP"},
		{"I/FOT", "Footwear"},
		{"N/DJCB", "Dow Jones Corporate Bond Service"},
		{"M/MMR", "More News to Follow"},
		{"P/TAP", "Press Releases Auto-Published on Ticker"},
		{"R/EC", "European Union"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			code, err := codes.Resolve(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.symbol, code.Symbol())
			assert.Equal(t, tt.name, code.Name())
		})
	}
}

func TestResolve_InvalidSymbols(t *testing.T) {
	for _, symbol := range []string{"", "   ", "X/NOPE", "n/gen", " N/GEN"} {
		t.Run(symbol, func(t *testing.T) {
			_, err := codes.Resolve(symbol)
			require.Error(t, err)
			assert.True(t, errors.Is(err, codes.ErrInvalidCode))

			var ice *codes.InvalidCodeError
			require.True(t, errors.As(err, &ice))
			assert.Equal(t, symbol, ice.Symbol)
		})
	}
}

func TestResolve_RepeatedLookupsAreEqual(t *testing.T) {
	a, err := codes.Resolve("R/GE")
	require.NoError(t, err)
	b, err := codes.Default().Resolve("R/GE")
	require.NoError(t, err)

	assert.True(t, a == b)
	assert.Same(t, codes.Default(), codes.Default())
}

func TestLoadRegistry(t *testing.T) {
	reg, err := codes.LoadRegistry(strings.NewReader("codes:\n  X/ONE: One\n  X/TWO: Two\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Len())

	got, err := reg.ResolveAll([]string{"X/TWO", "X/ONE"})
	require.NoError(t, err)
	assert.Equal(t, "Two", got[0].Name())
	assert.Equal(t, "One", got[1].Name())

	_, err = reg.Resolve("N/GEN")
	assert.ErrorIs(t, err, codes.ErrInvalidCode)
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := map[string]string{
		"not yaml": "codes: [unterminated",
		"empty":    "codes: {}\n",
		"blank":    "codes:\n  \" \": Blank\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := codes.LoadRegistry(strings.NewReader(input))
			assert.Error(t, err)
		})
	}
}

func TestResolveAll_StopsAtFirstInvalid(t *testing.T) {
	_, err := codes.Default().ResolveAll([]string{"N/GEN", "BOGUS", "R/EU"})

	var ice *codes.InvalidCodeError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, "BOGUS", ice.Symbol)
}

func TestCode_Axis(t *testing.T) {
	tests := map[string]codes.Axis{
		"N/GEN":  codes.AxisSubject,
		"I/AIR":  codes.AxisIndustry,
		"R/EU":   codes.AxisGeo,
		"G/JUS":  codes.AxisGovernment,
		"J/FDK":  codes.AxisJournal,
		"M/EUR":  codes.AxisMarket,
		"P/MWCM": codes.AxisProduct,
		"S/GRGP": codes.AxisStat,
	}
	for symbol, want := range tests {
		code, err := codes.Resolve(symbol)
		require.NoError(t, err)
		assert.Equal(t, want, code.Axis(), symbol)
	}

	reg := codes.NewRegistry(map[string]string{"PLAIN": "No prefix"})
	code, err := reg.Resolve("PLAIN")
	require.NoError(t, err)
	assert.Equal(t, codes.AxisUnknown, code.Axis())
}

func TestCode_MarshalJSON(t *testing.T) {
	code, err := codes.Resolve("N/GEN")
	require.NoError(t, err)

	b, err := json.Marshal(code)
	require.NoError(t, err)
	assert.JSONEq(t, `{"symbol":"N/GEN","name":"General News","axis":"subject"}`, string(b))
	assert.False(t, code.IsZero())
	assert.True(t, codes.Code{}.IsZero())
}
