package amount_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/timbrado-api/pkg/amount"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNormalizeAmount_ConvencionesDecimales(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"105,5", "105.50"},
		{"12,34", "12.34"},
		{"1,234", "1234"},
		{"1,234,567", "1234567"},
		{"1.234.567,89", "1234567.89"},
		{"1.234.567", "1234567"},
		{" $ 2 500,00 ", "2500.00"},
		{"-1.234,56", "-1234.56"},
		{"0.005", "0.01"},
		{"-0.005", "-0.01"},
		{"2.345", "2.35"},
		{"2.344", "2.34"},
		{json.Number("19.999"), "20.00"},
		{int64(42), "42.00"},
		{uint8(7), "7.00"},
		{1.005, "1.01"},
		{float32(0.1), "0.10"},
		{dec("99.995"), "100.00"},
		{"1e3", "1000.00"},
		{"1.5E2", "150.00"},
		{"-2.5e-1", "-0.25"},
		{json.Number("1e3"), "1000.00"},
		{json.Number("1.5E+2"), "150.00"},
	}
	for _, tc := range cases {
		got, err := amount.NormalizeAmount(tc.in, "total")
		require.NoError(t, err, "entrada %v", tc.in)
		assert.True(t, dec(tc.want).Equal(got), "entrada %v: esperado %s, obtenido %s", tc.in, tc.want, got)
	}
}

func TestNormalizeAmount_EsIdempotente(t *testing.T) {
	for _, in := range []any{"1.234,56", "0.125", 105.5, "-7,5", "9999999999999999.99"} {
		first, err := amount.NormalizeAmount(in, "total")
		require.NoError(t, err)
		second, err := amount.NormalizeAmount(first, "total")
		require.NoError(t, err)
		assert.True(t, first.Equal(second), "%v no es idempotente: %s vs %s", in, first, second)

		third, err := amount.NormalizeAmount(first.StringFixed(2), "total")
		require.NoError(t, err)
		assert.True(t, first.Equal(third))
	}
}

func TestNormalizeAmount_Invalidos(t *testing.T) {
	for _, in := range []any{nil, "", "   ", "abc", "1.2.3,4,5", "12a", "1e", "e3", "1e1000", math.NaN(), math.Inf(1), struct{}{}, (*decimal.Decimal)(nil)} {
		_, err := amount.NormalizeAmount(in, "subtotal")
		require.Error(t, err, "entrada %v", in)
		assert.ErrorIs(t, err, amount.ErrInvalidNumber)

		var fe *amount.FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "subtotal", fe.Field)
	}
}

func TestNormalizeAmount_FueraDeRango(t *testing.T) {
	_, err := amount.NormalizeAmount("10000000000000000", "total")
	assert.ErrorIs(t, err, amount.ErrOutOfRange)

	_, err = amount.NormalizeAmount("-10000000000000000.00", "total")
	assert.ErrorIs(t, err, amount.ErrOutOfRange)

	_, err = amount.NormalizeAmount(json.Number("1e16"), "total")
	assert.ErrorIs(t, err, amount.ErrOutOfRange)

	// Cabe antes de redondear pero no después.
	_, err = amount.NormalizeAmount("9999999999999999.999", "total")
	assert.ErrorIs(t, err, amount.ErrOutOfRange)

	got, err := amount.NormalizeAmount("9999999999999999.99", "total")
	require.NoError(t, err)
	assert.Equal(t, "9999999999999999.99", got.StringFixed(2))
}

func TestNormalizePercentage(t *testing.T) {
	_, err := amount.NormalizePercentage("150", "descuento", true)
	assert.ErrorIs(t, err, amount.ErrLogicalRange)

	got, err := amount.NormalizePercentage("150", "descuento", false)
	require.NoError(t, err)
	assert.Equal(t, "150.00", got.StringFixed(2))

	_, err = amount.NormalizePercentage("-1", "iva", true)
	assert.ErrorIs(t, err, amount.ErrLogicalRange)

	got, err = amount.NormalizePercentage("19,5", "iva", true)
	require.NoError(t, err)
	assert.Equal(t, "19.50", got.StringFixed(2))

	got, err = amount.NormalizePercentage(100, "iva", true)
	require.NoError(t, err)
	assert.Equal(t, "100.00", got.StringFixed(2))

	_, err = amount.NormalizePercentage("1000", "iva", false)
	assert.ErrorIs(t, err, amount.ErrOutOfRange)

	_, err = amount.NormalizePercentage("x", "iva", false)
	assert.ErrorIs(t, err, amount.ErrInvalidNumber)
}

func TestMustAmount(t *testing.T) {
	assert.Equal(t, "10.50", amount.MustAmount("10,5").StringFixed(2))
	assert.Panics(t, func() { amount.MustAmount("no-numero") })
}
