package risk

// MaxIDRSScore is the highest reachable IDRS total.
const MaxIDRSScore = 100

var idrsCategories = map[Category]CategoryInfo{
	CategoryLow:      {Label: "Low Risk", Message: "Indicates low chance of diabetes. Maintain healthy habits.", Icon: "🟢"},
	CategoryModerate: {Label: "Moderate Risk", Message: "Moderate risk. Lifestyle changes strongly recommended.", Icon: "🟡"},
	CategoryHigh:     {Label: "High Risk", Message: "High chance of insulin resistance. Requires screening.", Icon: "🟠"},
	CategoryVeryHigh: {Label: "Very High Risk", Message: "Very high probability of diabetes. Medical evaluation advised.", Icon: "🔴"},
}

// ScoreIDRS computes the Indian Diabetes Risk Score from age, waist, sex,
// activity and family history only.
func ScoreIDRS(m Measurement) IdrsScore {
	scores := IdrsSubScores{
		Age:           idrsAgePoints(m.Age),
		Waist:         idrsWaistPoints(m.Sex, m.WaistCm),
		Activity:      idrsActivityPoints(m.Activity),
		FamilyHistory: idrsFamilyPoints(m.FamilyHistory),
	}
	total := scores.Sum()
	category := IDRSCategory(total)
	return IdrsScore{
		Scores:   scores,
		Total:    total,
		Category: category,
		Info:     idrsCategories[category],
	}
}

// IDRSCategory buckets a total using exclusive upper bounds, unlike the
// composite categories.
func IDRSCategory(total int) Category {
	switch {
	case total < 30:
		return CategoryLow
	case total < 50:
		return CategoryModerate
	case total < 70:
		return CategoryHigh
	default:
		return CategoryVeryHigh
	}
}

func idrsAgePoints(age int) int {
	switch {
	case age < 35:
		return 0
	case age < 50:
		return 20
	default:
		return 30
	}
}

func idrsWaistPoints(sex Sex, waist float64) int {
	if !positive(waist) {
		return 0
	}
	low, high := 80.0, 90.0
	if sex == SexMale {
		low, high = 90, 100
	}
	switch {
	case waist < low:
		return 0
	case waist < high:
		return 10
	default:
		return 20
	}
}

func idrsActivityPoints(level ActivityLevel) int {
	switch level {
	case ActivityModerate:
		return 10
	case ActivityMild:
		return 20
	case ActivitySedentary:
		return 30
	default:
		return 0
	}
}

func idrsFamilyPoints(h FamilyHistory) int {
	switch h {
	case FamilyHistorySecond:
		return 10
	case FamilyHistoryFirst:
		return 20
	default:
		return 0
	}
}
