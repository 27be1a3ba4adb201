package converters

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	UnitMeter  = "Meter"
	UnitFoot   = "Foot"
	UnitDegree = "Degree"
)

// feet per meter, the factor used to re-express metric thresholds in foot based datasets
var feetPerMeter = decimal.RequireFromString("3.28084")

// Collapses the linear unit names found in spatial references into Meter or Foot.
// Foot_US and Foot are both treated as Foot
func NormalizeLinearUnit(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "foot_us", "us-ft", "us_survey_foot", "foot", "ft", "international_foot":
		return UnitFoot, nil
	case "meter", "metre", "m":
		return UnitMeter, nil
	case "degree", "degrees":
		return UnitDegree, nil
	}
	return "", fmt.Errorf("units not detected: %q", name)
}

func unitsPerMeter(unit string) (decimal.Decimal, error) {
	normalized, err := NormalizeLinearUnit(unit)
	if err != nil {
		return decimal.Zero, err
	}
	switch normalized {
	case UnitMeter:
		return decimal.NewFromInt(1), nil
	case UnitFoot:
		return feetPerMeter, nil
	}
	return decimal.Zero, fmt.Errorf("%s is not a linear unit, project the dataset first", normalized)
}

// Re-expresses a length given in meters in the given linear unit
func LengthFromMeters(meters float64, unit string) (float64, error) {
	factor, err := unitsPerMeter(unit)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromFloat(meters).Mul(factor).InexactFloat64(), nil
}

// Re-expresses an area given in square meters in the given linear unit
func AreaFromSquareMeters(squareMeters float64, unit string) (float64, error) {
	factor, err := unitsPerMeter(unit)
	if err != nil {
		return 0, err
	}
	return decimal.NewFromFloat(squareMeters).Mul(factor).Mul(factor).InexactFloat64(), nil
}
