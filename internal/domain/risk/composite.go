package risk

import "math"

// MaxCompositeScore is the highest reachable composite total.
const MaxCompositeScore = 34

var compositeCategories = map[Category]CategoryInfo{
	CategoryLow:      {Label: "Low Risk", Message: "Lifestyle advice only", Icon: "🟢"},
	CategoryModerate: {Label: "Moderate Risk", Message: "Recommended screening within 1 year", Icon: "🟡"},
	CategoryHigh:     {Label: "High Risk", Message: "High probability of prediabetes", Icon: "🟠"},
	CategoryVeryHigh: {Label: "Very High Risk", Message: "Strongly suggest diagnostic testing", Icon: "🔴"},
}

// ScoreComposite computes the FINDRISC/ADA-style breakdown. Factors are
// independent step functions; missing or invalid inputs contribute 0.
func ScoreComposite(m Measurement) ScoreBreakdown {
	scores := SubScores{
		Age:               compositeAgePoints(m.Age),
		BMI:               compositeBMIPoints(m.BMI),
		Waist:             compositeWaistPoints(m.Sex, m.WaistCm),
		Activity:          compositeActivityPoints(m.Activity),
		FruitVeg:          boolPoints(!m.DailyFruitVeg, 1),
		BPMedication:      boolPoints(m.BPMedication, 2),
		HighSugarHistory:  boolPoints(m.PriorHighBloodSugar, 5),
		FamilyHistory:     compositeFamilyPoints(m.FamilyHistory),
		FastingBloodSugar: compositeFBSPoints(m.FastingBloodSugar),
	}
	total := scores.Sum()
	category := CompositeCategory(total)
	return ScoreBreakdown{
		Scores:   scores,
		Total:    total,
		Category: category,
		Info:     CompositeCategoryInfo(category),
	}
}

// CompositeCategory buckets a total using inclusive upper bounds.
func CompositeCategory(total int) Category {
	switch {
	case total <= 7:
		return CategoryLow
	case total <= 14:
		return CategoryModerate
	case total <= 20:
		return CategoryHigh
	default:
		return CategoryVeryHigh
	}
}

// CompositeCategoryInfo returns the fixed label, advice and icon for a category.
func CompositeCategoryInfo(c Category) CategoryInfo {
	return compositeCategories[c]
}

func compositeAgePoints(age int) int {
	switch {
	case age <= 0:
		return 0
	case age < 45:
		return 0
	case age <= 54:
		return 2
	case age <= 64:
		return 3
	default:
		return 4
	}
}

func compositeBMIPoints(bmi float64) int {
	switch {
	case !positive(bmi):
		return 0
	case bmi < 25:
		return 0
	case bmi < 30:
		return 1
	default:
		return 3
	}
}

func compositeWaistPoints(sex Sex, waist float64) int {
	if !positive(waist) {
		return 0
	}
	low, high := 80.0, 88.0
	if sex == SexMale {
		low, high = 94, 102
	}
	switch {
	case waist < low:
		return 0
	case waist <= high:
		return 3
	default:
		return 4
	}
}

func compositeActivityPoints(level ActivityLevel) int {
	switch level {
	case ActivityMild:
		return 1
	case ActivitySedentary:
		return 2
	default:
		return 0
	}
}

func compositeFamilyPoints(h FamilyHistory) int {
	switch h {
	case FamilyHistorySecond:
		return 3
	case FamilyHistoryFirst:
		return 5
	default:
		return 0
	}
}

func compositeFBSPoints(fbs float64) int {
	switch {
	case math.IsNaN(fbs) || fbs < 100:
		return 0
	case fbs < 110:
		return 2
	case fbs < 126:
		return 4
	default:
		return 6
	}
}

func boolPoints(cond bool, points int) int {
	if cond {
		return points
	}
	return 0
}
