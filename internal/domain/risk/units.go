package risk

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

const cmPerInch = 2.54

// LengthUnit names the unit a height or waist value was entered in.
type LengthUnit string

const (
	UnitCentimetre LengthUnit = "cm"
	UnitFeet       LengthUnit = "ft"
	UnitInch       LengthUnit = "inch"
)

// ParseLengthUnit maps form spellings onto a LengthUnit, defaulting to centimetres.
func ParseLengthUnit(raw string) LengthUnit {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "ft", "feet", "foot", "imperial":
		return UnitFeet
	case "in", "inch", "inches":
		return UnitInch
	default:
		return UnitCentimetre
	}
}

// HeightToCm converts a height to centimetres. Metric values pass through;
// imperial heights use feet and inches. No rounding is applied.
func HeightToCm(unit LengthUnit, value, feet, inches float64) float64 {
	if unit == UnitFeet {
		return (feet*12 + inches) * cmPerInch
	}
	return value
}

// WaistToCm converts a waist circumference to centimetres.
func WaistToCm(unit LengthUnit, value float64) float64 {
	if unit == UnitInch {
		return value * cmPerInch
	}
	return value
}

// ComputeBMI returns weight/height² rounded to one decimal, or 0 when either
// input is not a positive finite number.
func ComputeBMI(heightCm, weightKg float64) float64 {
	if !positive(heightCm) || !positive(weightKg) {
		return 0
	}
	metres := heightCm / 100
	raw := weightKg / (metres * metres)
	if !positive(raw) {
		return 0
	}
	// Round the exact binary value, not its shortest decimal form, so 24.15
	// (stored as 24.1499...) gives 24.1.
	rounded, _ := decimal.NewFromFloatWithExponent(raw, -30).Round(1).Float64()
	return rounded
}

// positive rejects zero, negatives, NaN and infinities.
func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
