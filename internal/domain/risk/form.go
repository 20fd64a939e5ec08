package risk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field is a raw form value. It decodes from JSON strings, numbers, booleans
// or null so clients may post either typed or string-typed forms.
type Field string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Field) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = Field(s)
		return nil
	}
	switch string(trimmed) {
	case "true":
		*f = "yes"
		return nil
	case "false":
		*f = "no"
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("form field must be a string, number or boolean: %w", err)
	}
	*f = Field(n.String())
	return nil
}

func (f Field) blank() bool {
	return strings.TrimSpace(string(f)) == ""
}

// number parses the field, reporting false for blanks and non-finite values.
func (f Field) number() (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(f)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// soft parses the field, degrading anything unparseable to 0.
func (f Field) soft() float64 {
	v, _ := f.number()
	return v
}

func (f Field) yes() bool {
	switch strings.ToLower(strings.TrimSpace(string(f))) {
	case "yes", "y", "true", "1":
		return true
	default:
		return false
	}
}

// Form is the raw, string-typed input gathered from a user.
type Form struct {
	Age            Field `json:"age"`
	BMIMode        Field `json:"bmiMode"`
	BMI            Field `json:"bmi"`
	HeightUnit     Field `json:"heightUnit"`
	HeightCm       Field `json:"heightCm"`
	HeightFeet     Field `json:"heightFeet"`
	HeightInches   Field `json:"heightInches"`
	Weight         Field `json:"weight"`
	Sex            Field `json:"sex"`
	WaistUnit      Field `json:"waistUnit"`
	Waist          Field `json:"waist"`
	Activity       Field `json:"physicalActivity"`
	FruitVeg       Field `json:"fruitVeg"`
	BPMedication   Field `json:"bpMedication"`
	HighBloodSugar Field `json:"highBloodSugar"`
	FamilyHistory  Field `json:"familyHistory"`
	FBS            Field `json:"fbs"`
	Systolic       Field `json:"systolic"`
	Diastolic      Field `json:"diastolic"`
	Pulse          Field `json:"pulse"`
}

func (f Form) directBMI() bool {
	return strings.EqualFold(strings.TrimSpace(string(f.BMIMode)), string(BMIDirect))
}

// Validate collects every violated rule; it never stops at the first problem.
func (f Form) Validate(requireVitals bool) []string {
	var problems []string
	add := func(msg string) { problems = append(problems, msg) }

	switch age, ok := f.Age.number(); {
	case f.Age.blank():
		add("Age is required")
	case !ok:
		add("Age must be a number")
	case age <= 0:
		add("Age must be greater than 0")
	case age > 120:
		add("Age cannot be greater than 120")
	}

	if f.directBMI() {
		switch bmi, ok := f.BMI.number(); {
		case f.BMI.blank():
			add("BMI is required")
		case !ok || bmi <= 0:
			add("BMI must be greater than 0")
		}
	} else {
		if ParseLengthUnit(string(f.HeightUnit)) == UnitFeet {
			if f.HeightFeet.blank() {
				add("Height in feet is required")
			}
			if f.HeightInches.blank() {
				add("Height in inches is required")
			}
			if !f.HeightFeet.blank() && !f.HeightInches.blank() &&
				HeightToCm(UnitFeet, 0, f.HeightFeet.soft(), f.HeightInches.soft()) <= 0 {
				add("Height must be greater than 0")
			}
		} else {
			switch h, ok := f.HeightCm.number(); {
			case f.HeightCm.blank():
				add("Height in cm is required")
			case !ok || h <= 0:
				add("Height must be greater than 0")
			}
		}
		switch w, ok := f.Weight.number(); {
		case f.Weight.blank():
			add("Weight is required")
		case !ok || w <= 0:
			add("Weight must be greater than 0")
		}
	}

	if !f.Sex.blank() {
		if _, ok := ParseSex(string(f.Sex)); !ok {
			add("Sex assigned at birth must be male or female")
		}
	}

	switch w, ok := f.Waist.number(); {
	case f.Waist.blank():
		add("Waist circumference is required")
	case !ok || w <= 0:
		add("Waist must be greater than 0")
	}

	if level, _ := ParseActivity(string(f.Activity)); level == ActivityUnknown {
		add("Please select your Physical Activity")
	}
	if ParseFamilyHistory(string(f.FamilyHistory)) == FamilyHistoryNone {
		add("Please select your family history")
	}

	switch fbs, ok := f.FBS.number(); {
	case f.FBS.blank():
		add("Fasting Blood Sugar is required")
	case !ok:
		add("Fasting Blood Sugar must be a number")
	case fbs < 0:
		add("FBS cannot be negative")
	}

	vitals := []struct {
		field Field
		name  string
	}{
		{f.Systolic, "Systolic BP"},
		{f.Diastolic, "Diastolic BP"},
		{f.Pulse, "Pulse Rate"},
	}
	for _, v := range vitals {
		if v.field.blank() {
			if requireVitals {
				add(v.name + " is required")
			}
			continue
		}
		if n, ok := v.field.number(); !ok || n <= 0 {
			add(v.name + " must be greater than 0")
		}
	}

	return problems
}

// LegacyActivity reports whether the activity answer used the yes/no form.
func (f Form) LegacyActivity() bool {
	_, legacy := ParseActivity(string(f.Activity))
	return legacy
}

// Normalize converts the form into a Measurement. Unparseable values become 0
// so that partially filled forms still score.
func (f Form) Normalize() Measurement {
	sex, ok := ParseSex(string(f.Sex))
	if !ok {
		sex = SexMale
	}
	activity, _ := ParseActivity(string(f.Activity))

	height := HeightToCm(ParseLengthUnit(string(f.HeightUnit)), f.HeightCm.soft(), f.HeightFeet.soft(), f.HeightInches.soft())
	weight := f.Weight.soft()

	m := Measurement{
		Age:                 int(math.Trunc(f.Age.soft())),
		Sex:                 sex,
		HeightCm:            height,
		WeightKg:            weight,
		WaistCm:             WaistToCm(ParseLengthUnit(string(f.WaistUnit)), f.Waist.soft()),
		Activity:            activity,
		DailyFruitVeg:       f.FruitVeg.yes(),
		BPMedication:        f.BPMedication.yes(),
		PriorHighBloodSugar: f.HighBloodSugar.yes(),
		FamilyHistory:       ParseFamilyHistory(string(f.FamilyHistory)),
		FastingBloodSugar:   f.FBS.soft(),
		Systolic:            int(math.Round(f.Systolic.soft())),
		Diastolic:           int(math.Round(f.Diastolic.soft())),
		Pulse:               int(math.Round(f.Pulse.soft())),
	}
	if f.directBMI() {
		m.BMI = f.BMI.soft()
		m.BMISource = BMIDirect
	} else {
		m.BMI = ComputeBMI(height, weight)
		m.BMISource = BMICalculated
	}
	return m
}
