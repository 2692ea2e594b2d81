package domain

const kgToLb = 2.2046226218

// Weight units accepted on input. Weight is stored in pounds.
const (
	UnitKg = "kg"
	UnitLb = "lb"
)

// ConvertWeight converts a weight value between "kg" and "lb".
// Returns v unchanged if from == to or if the units are unrecognised.
func ConvertWeight(v float64, from, to string) float64 {
	switch {
	case from == to:
		return v
	case from == UnitKg && to == UnitLb:
		return v * kgToLb
	case from == UnitLb && to == UnitKg:
		return v / kgToLb
	}
	return v
}

// ToPounds normalizes a weight in unit to pounds.
func ToPounds(v float64, unit string) float64 {
	return ConvertWeight(v, unit, UnitLb)
}
