package domain

// Category is the severity class of a reading
type Category int

const (
	CategoryNormal Category = iota
	CategoryElevated
	CategoryStage1
	CategoryStage2
	CategoryCrisis
)

// Tier is the display emphasis derived from a Category.
type Tier string

const (
	TierNone   Tier = "none"
	TierWarn   Tier = "warn"
	TierDanger Tier = "danger"
)

// Classify maps a systolic/diastolic pair to a category.
// Rules are evaluated in order and the first match wins; the ranges overlap.
func Classify(systolic, diastolic int) Category {
	switch {
	case systolic >= 180 || diastolic >= 120:
		return CategoryCrisis
	case systolic >= 140 || diastolic >= 90:
		return CategoryStage2
	case systolic >= 130 || diastolic >= 80:
		return CategoryStage1
	case systolic >= 120 || diastolic >= 80:
		return CategoryElevated
	default:
		return CategoryNormal
	}
}

// String returns the human-readable label
func (c Category) String() string {
	switch c {
	case CategoryNormal:
		return "Normal"
	case CategoryElevated:
		return "Elevated"
	case CategoryStage1:
		return "Hypertension-Stage1"
	case CategoryStage2:
		return "Hypertension-Stage2"
	case CategoryCrisis:
		return "Crisis"
	}
	return "Unknown"
}

// Tier returns the display emphasis for the category
func (c Category) Tier() Tier {
	switch c {
	case CategoryElevated, CategoryStage1:
		return TierWarn
	case CategoryStage2, CategoryCrisis:
		return TierDanger
	}
	return TierNone
}
