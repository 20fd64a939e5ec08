package recordrepo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/diabetes-risk/internal/domain/records"
)

// PostgresRepository persists records in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Insert stores a record and returns it with its database ID.
func (r *PostgresRepository) Insert(ctx context.Context, record records.Record) (records.Record, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO diabetes_records (
			age, height_cm, weight_kg, bmi, waist_cm, sex_assigned_at_birth,
			physical_activity, daily_fruit_veg, bp_medication, high_blood_sugar_history,
			family_history, fbs, systolic, diastolic, pulse, total_score, risk_category, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING `+recordColumns,
		record.Age, record.HeightCm, record.WeightKg, record.BMI, record.WaistCm, record.Sex,
		record.PhysicalActivity, record.DailyFruitVeg, record.BPMedication, record.HighBloodSugarHistory,
		record.FamilyHistory, record.FBS, record.Systolic, record.Diastolic, record.Pulse,
		record.TotalScore, record.RiskCategory, record.CreatedAt,
	)
	return scanPostgresRecord(row)
}

// Get fetches by primary key.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (records.Record, bool, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+recordColumns+` FROM diabetes_records WHERE id = $1`, id)
	record, err := scanPostgresRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return records.Record{}, false, nil
	}
	if err != nil {
		return records.Record{}, false, err
	}
	return record, true, nil
}

// List filters and pages records, newest first.
func (r *PostgresRepository) List(ctx context.Context, filter records.ListFilter) ([]records.Record, error) {
	query, args := listQuery(filter, dollarPlaceholder)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []records.Record{}
	for rows.Next() {
		record, err := scanPostgresRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func scanPostgresRecord(row rowScanner) (records.Record, error) {
	var rec records.Record
	if err := row.Scan(
		&rec.ID, &rec.Age, &rec.HeightCm, &rec.WeightKg, &rec.BMI, &rec.WaistCm, &rec.Sex,
		&rec.PhysicalActivity, &rec.DailyFruitVeg, &rec.BPMedication, &rec.HighBloodSugarHistory,
		&rec.FamilyHistory, &rec.FBS, &rec.Systolic, &rec.Diastolic, &rec.Pulse,
		&rec.TotalScore, &rec.RiskCategory, &rec.CreatedAt,
	); err != nil {
		return records.Record{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}

var _ records.Repository = (*PostgresRepository)(nil)
