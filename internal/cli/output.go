package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
)

var (
	veryHighColor = color.New(color.FgRed, color.Bold)
	highColor     = color.New(color.FgYellow, color.Bold)
	moderateColor = color.New(color.FgYellow)
	lowColor      = color.New(color.FgGreen)
	problemColor  = color.New(color.FgRed)
)

func categoryLabel(c risk.Category, label string) string {
	switch c {
	case risk.CategoryVeryHigh:
		return veryHighColor.Sprint(label)
	case risk.CategoryHigh:
		return highColor.Sprint(label)
	case risk.CategoryModerate:
		return moderateColor.Sprint(label)
	default:
		return lowColor.Sprint(label)
	}
}

func printProblems(w io.Writer, problems []string) {
	fmt.Fprintln(w, "The form has problems:")
	for _, p := range problems {
		fmt.Fprintf(w, "  - %s\n", problemColor.Sprint(p))
	}
}

func printJSON(w io.Writer, a risk.Assessment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a)
}

// printAssessment renders the per-factor points side by side for both scores.
func printAssessment(w io.Writer, a risk.Assessment) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Factor", "Composite", "IDRS"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	s, idrs := a.Breakdown.Scores, a.IDRS.Scores
	rows := [][]string{
		{"Age", strconv.Itoa(s.Age), strconv.Itoa(idrs.Age)},
		{"BMI", strconv.Itoa(s.BMI), "-"},
		{"Waist", strconv.Itoa(s.Waist), strconv.Itoa(idrs.Waist)},
		{"Physical activity", strconv.Itoa(s.Activity), strconv.Itoa(idrs.Activity)},
		{"Fruit and vegetables", strconv.Itoa(s.FruitVeg), "-"},
		{"BP medication", strconv.Itoa(s.BPMedication), "-"},
		{"High blood sugar history", strconv.Itoa(s.HighSugarHistory), "-"},
		{"Family history", strconv.Itoa(s.FamilyHistory), strconv.Itoa(idrs.FamilyHistory)},
		{"Fasting blood sugar", strconv.Itoa(s.FastingBloodSugar), "-"},
		{"Total", fmt.Sprintf("%d/%d", a.Breakdown.Total, risk.MaxCompositeScore), fmt.Sprintf("%d/%d", a.IDRS.Total, risk.MaxIDRSScore)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	info := a.Breakdown.Info
	fmt.Fprintf(w, "\nComposite risk: %s", categoryLabel(a.Breakdown.Category, info.Label))
	if info.Message != "" {
		fmt.Fprintf(w, " (%s)", info.Message)
	}
	fmt.Fprintf(w, "\nIDRS risk:      %s", categoryLabel(a.IDRS.Category, a.IDRS.Info.Label))
	if msg := a.IDRS.Info.Message; msg != "" {
		fmt.Fprintf(w, " (%s)", msg)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\nBMI %.1f: %s\n", a.Input.BMI, a.Vitals.BMI.Label)
	fmt.Fprintf(w, "Fasting sugar %.0f mg/dL: %s\n", a.Input.FastingBloodSugar, a.Vitals.FastingSugar.Label)
	if a.Input.Systolic > 0 && a.Input.Diastolic > 0 {
		fmt.Fprintf(w, "Blood pressure %d/%d: %s\n", a.Input.Systolic, a.Input.Diastolic, a.Vitals.BloodPressure.Label)
	}
	if a.Input.Pulse > 0 {
		fmt.Fprintf(w, "Pulse %d bpm: %s\n", a.Input.Pulse, a.Vitals.Pulse.Label)
	}
	return nil
}
