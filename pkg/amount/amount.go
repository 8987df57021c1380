// Package amount valida y redondea montos y porcentajes antes de que el resto
// del sistema confíe en ellos. Capacidades alineadas a las columnas
// NUMERIC(18,2) (montos) y NUMERIC(5,2) (porcentajes).
package amount

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de normalización. Se devuelven envueltos en *FieldError.
var (
	ErrInvalidNumber = errors.New("valor numérico inválido")
	ErrOutOfRange    = errors.New("valor excede la capacidad del campo")
	ErrLogicalRange  = errors.New("porcentaje fuera del rango 0-100")
)

const (
	amountIntegerDigits  = 16
	percentIntegerDigits = 3
	fractionDigits       = 2
)

var (
	amountLimit  = decimal.New(1, amountIntegerDigits)
	percentLimit = decimal.New(1, percentIntegerDigits)
	hundred      = decimal.NewFromInt(100)

	// Exponente acotado a 3 dígitos: 1e999 ya excede cualquier capacidad.
	plainNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d{1,3})?$`)
)

// FieldError indica qué campo falló y con qué valor.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v (%q)", e.Field, e.Err, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Err }

// NormalizeAmount convierte value a un monto de 2 decimales (18,2).
func NormalizeAmount(value any, field string) (decimal.Decimal, error) {
	return normalize(value, field, amountLimit)
}

// NormalizePercentage convierte value a un porcentaje de 2 decimales (5,2).
// Con enforceRange exige además 0 <= valor <= 100.
func NormalizePercentage(value any, field string, enforceRange bool) (decimal.Decimal, error) {
	d, raw, err := parse(value)
	if err != nil {
		return decimal.Zero, &FieldError{Field: field, Value: raw, Err: err}
	}
	if enforceRange && (d.IsNegative() || d.GreaterThan(hundred)) {
		return decimal.Zero, &FieldError{Field: field, Value: raw, Err: ErrLogicalRange}
	}
	return fit(d, raw, field, percentLimit)
}

// MustAmount es NormalizeAmount para literales conocidos (tests, constantes).
func MustAmount(value any) decimal.Decimal {
	d, err := NormalizeAmount(value, "literal")
	if err != nil {
		panic(err)
	}
	return d
}

func normalize(value any, field string, limit decimal.Decimal) (decimal.Decimal, error) {
	d, raw, err := parse(value)
	if err != nil {
		return decimal.Zero, &FieldError{Field: field, Value: raw, Err: err}
	}
	return fit(d, raw, field, limit)
}

// fit valida la capacidad antes y después de redondear.
// El redondeo es half-away-from-zero sobre enteros escalados: x*100 → entero → /100.
func fit(d decimal.Decimal, raw, field string, limit decimal.Decimal) (decimal.Decimal, error) {
	if d.Abs().GreaterThanOrEqual(limit) {
		return decimal.Zero, &FieldError{Field: field, Value: raw, Err: ErrOutOfRange}
	}
	rounded := d.Mul(hundred).Round(0).Shift(-fractionDigits)
	if rounded.Abs().GreaterThanOrEqual(limit) {
		return decimal.Zero, &FieldError{Field: field, Value: raw, Err: ErrOutOfRange}
	}
	return rounded, nil
}

func parse(value any) (decimal.Decimal, string, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, "", ErrInvalidNumber
	case decimal.Decimal:
		return v, v.String(), nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Zero, "", ErrInvalidNumber
		}
		return *v, v.String(), nil
	case string:
		return parseText(v)
	case json.Number:
		return parseText(string(v))
	case int:
		return decimal.NewFromInt(int64(v)), fmt.Sprint(v), nil
	case int8:
		return decimal.NewFromInt(int64(v)), fmt.Sprint(v), nil
	case int16:
		return decimal.NewFromInt(int64(v)), fmt.Sprint(v), nil
	case int32:
		return decimal.NewFromInt(int64(v)), fmt.Sprint(v), nil
	case int64:
		return decimal.NewFromInt(v), fmt.Sprint(v), nil
	case uint:
		return fromUint(uint64(v)), fmt.Sprint(v), nil
	case uint8:
		return fromUint(uint64(v)), fmt.Sprint(v), nil
	case uint16:
		return fromUint(uint64(v)), fmt.Sprint(v), nil
	case uint32:
		return fromUint(uint64(v)), fmt.Sprint(v), nil
	case uint64:
		return fromUint(v), fmt.Sprint(v), nil
	case float32:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, fmt.Sprint(v), ErrInvalidNumber
		}
		return decimal.NewFromFloat32(v), fmt.Sprint(v), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, fmt.Sprint(v), ErrInvalidNumber
		}
		return decimal.NewFromFloat(v), fmt.Sprint(v), nil
	default:
		return decimal.Zero, fmt.Sprintf("%v", v), ErrInvalidNumber
	}
}

func fromUint(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

// parseText resuelve la convención decimal del texto:
//   - con "." y "," el último que aparece es el separador decimal;
//   - solo ",": decimal si hay una única coma seguida de 1 o 2 dígitos
//     ("105,5", "12,34"); en otro caso separador de miles ("1,234");
//   - solo ".": decimal; varios puntos se toman como separadores de miles;
//   - se acepta notación exponencial ("1e3", "-2.5e-1"), como en JSON.
func parseText(raw string) (decimal.Decimal, string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "$")
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\u00a0' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return decimal.Zero, raw, ErrInvalidNumber
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		decimals := len(s) - lastComma - 1
		if strings.Count(s, ",") == 1 && decimals >= 1 && decimals <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	if !plainNumber.MatchString(s) {
		return decimal.Zero, raw, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, raw, ErrInvalidNumber
	}
	return d, raw, nil
}
