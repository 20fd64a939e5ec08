package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
	"github.com/yanqian/diabetes-risk/internal/infra/submission"
)

// Output formats accepted by --output.
const (
	outputTable = "table"
	outputJSON  = "json"
)

// errInvalidForm is returned after the validation problems were printed.
var errInvalidForm = errors.New("form has validation problems")

// formFlags maps each form field to its flag name.
var formFlags = []struct {
	name  string
	def   string
	usage string
	field func(*risk.Form) *risk.Field
}{
	{"age", "", "age in years", func(f *risk.Form) *risk.Field { return &f.Age }},
	{"bmi-mode", string(risk.BMICalculated), "calculated (from height and weight) or direct", func(f *risk.Form) *risk.Field { return &f.BMIMode }},
	{"bmi", "", "BMI when --bmi-mode=direct", func(f *risk.Form) *risk.Field { return &f.BMI }},
	{"height-unit", "cm", "cm or ft", func(f *risk.Form) *risk.Field { return &f.HeightUnit }},
	{"height-cm", "", "height in centimeters", func(f *risk.Form) *risk.Field { return &f.HeightCm }},
	{"height-feet", "", "height feet part when --height-unit=ft", func(f *risk.Form) *risk.Field { return &f.HeightFeet }},
	{"height-inches", "", "height inches part when --height-unit=ft", func(f *risk.Form) *risk.Field { return &f.HeightInches }},
	{"weight", "", "weight in kilograms", func(f *risk.Form) *risk.Field { return &f.Weight }},
	{"sex", "", "sex assigned at birth: male or female", func(f *risk.Form) *risk.Field { return &f.Sex }},
	{"waist-unit", "cm", "cm or inch", func(f *risk.Form) *risk.Field { return &f.WaistUnit }},
	{"waist", "", "waist circumference", func(f *risk.Form) *risk.Field { return &f.Waist }},
	{"activity", "", "vigorous, moderate, mild or sedentary", func(f *risk.Form) *risk.Field { return &f.Activity }},
	{"fruit-veg", "", "eats fruit or vegetables daily: yes or no", func(f *risk.Form) *risk.Field { return &f.FruitVeg }},
	{"bp-medication", "", "takes blood pressure medication: yes or no", func(f *risk.Form) *risk.Field { return &f.BPMedication }},
	{"high-blood-sugar", "", "ever had high blood sugar: yes or no", func(f *risk.Form) *risk.Field { return &f.HighBloodSugar }},
	{"family-history", "", "zero, second or first", func(f *risk.Form) *risk.Field { return &f.FamilyHistory }},
	{"fbs", "", "fasting blood sugar in mg/dL", func(f *risk.Form) *risk.Field { return &f.FBS }},
	{"systolic", "", "systolic blood pressure", func(f *risk.Form) *risk.Field { return &f.Systolic }},
	{"diastolic", "", "diastolic blood pressure", func(f *risk.Form) *risk.Field { return &f.Diastolic }},
	{"pulse", "", "pulse rate in bpm", func(f *risk.Form) *risk.Field { return &f.Pulse }},
}

func newScoreCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a risk form offline.",
		Long: `Validate and score a diabetes risk form from flags.

Prints the composite score breakdown, the IDRS score and the vitals
classification. With --submit the result is also posted to the record
collector at --api-url.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScore(cmd, v)
		},
	}
	for _, f := range formFlags {
		cmd.Flags().String(f.name, f.def, f.usage)
	}
	cmd.Flags().Bool("require-vitals", false, "treat blood pressure and pulse as required")
	cmd.Flags().StringP("output", "o", outputTable, "output format: table or json")
	cmd.Flags().Bool("submit", false, "post the result to the record collector")
	cmd.Flags().String("api-url", "http://localhost:8080", "base URL of the record collector")
	cmd.Flags().Duration("timeout", 10*time.Second, "submission timeout")
	return cmd
}

func runScore(cmd *cobra.Command, v *viper.Viper) error {
	var form risk.Form
	for _, f := range formFlags {
		*f.field(&form) = risk.Field(v.GetString(f.name))
	}
	output := strings.ToLower(v.GetString("output"))
	if output != outputTable && output != outputJSON {
		return fmt.Errorf("unsupported output %q", output)
	}

	out := cmd.OutOrStdout()
	if problems := form.Validate(v.GetBool("require-vitals")); len(problems) > 0 {
		printProblems(out, problems)
		return errInvalidForm
	}

	log := newLogger(v, cmd.ErrOrStderr())
	svc := risk.NewService(risk.Config{}, nil, nil, nil, log)
	assessment := svc.Evaluate(form.Normalize())

	var err error
	if output == outputJSON {
		err = printJSON(out, assessment)
	} else {
		err = printAssessment(out, assessment)
	}
	if err != nil {
		return err
	}

	if !v.GetBool("submit") {
		return nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), v.GetDuration("timeout"))
	defer cancel()
	client := submission.NewClient(v.GetString("api-url"), v.GetDuration("timeout"), log)
	if err := client.Submit(ctx, risk.NewSubmission(assessment)); err != nil {
		return fmt.Errorf("submit result: %w", err)
	}
	_, err = fmt.Fprintln(out, "Result submitted.")
	return err
}
