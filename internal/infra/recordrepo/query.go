package recordrepo

import (
	"fmt"
	"strings"

	"github.com/yanqian/diabetes-risk/internal/domain/records"
)

const recordColumns = `id, age, height_cm, weight_kg, bmi, waist_cm, sex_assigned_at_birth,
	physical_activity, daily_fruit_veg, bp_medication, high_blood_sugar_history,
	family_history, fbs, systolic, diastolic, pulse, total_score, risk_category, created_at`

// listQuery renders the filtered listing; placeholder formats the n-th bind
// variable for the target dialect.
func listQuery(filter records.ListFilter, placeholder func(n int) string) (string, []any) {
	var (
		where []string
		args  []any
	)
	if filter.RiskCategory != "" {
		args = append(args, filter.RiskCategory)
		where = append(where, "risk_category = "+placeholder(len(args)))
	}
	if filter.Sex != "" {
		args = append(args, filter.Sex)
		where = append(where, "sex_assigned_at_birth = "+placeholder(len(args)))
	}
	var b strings.Builder
	b.WriteString("SELECT " + recordColumns + " FROM diabetes_records")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	args = append(args, filter.Limit)
	limit := placeholder(len(args))
	args = append(args, filter.Offset)
	offset := placeholder(len(args))
	fmt.Fprintf(&b, " ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s", limit, offset)
	return b.String(), args
}

func dollarPlaceholder(n int) string { return fmt.Sprintf("$%d", n) }

func questionPlaceholder(int) string { return "?" }

type rowScanner interface {
	Scan(dest ...any) error
}
