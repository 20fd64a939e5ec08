package recordrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yanqian/diabetes-risk/internal/domain/records"
	"github.com/yanqian/diabetes-risk/pkg/util"
)

// SQLiteDriver is the database/sql driver name registered by modernc.org/sqlite.
const SQLiteDriver = "sqlite"

// SQLiteRepository persists records in a local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

// OpenSQLite opens the database file and verifies the connection.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(SQLiteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	// SQLite serialises writers; a single connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}

// NewSQLiteRepository wraps an open database handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Insert stores a record and returns it with its row ID.
func (r *SQLiteRepository) Insert(ctx context.Context, record records.Record) (records.Record, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO diabetes_records (
			age, height_cm, weight_kg, bmi, waist_cm, sex_assigned_at_birth,
			physical_activity, daily_fruit_veg, bp_medication, high_blood_sugar_history,
			family_history, fbs, systolic, diastolic, pulse, total_score, risk_category, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.Age, record.HeightCm, record.WeightKg, record.BMI, record.WaistCm, record.Sex,
		record.PhysicalActivity, record.DailyFruitVeg, record.BPMedication, record.HighBloodSugarHistory,
		nullString(record.FamilyHistory), record.FBS,
		nullFloat(record.Systolic), nullFloat(record.Diastolic), nullFloat(record.Pulse),
		record.TotalScore, record.RiskCategory, util.FormatSortable(record.CreatedAt),
	)
	if err != nil {
		return records.Record{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return records.Record{}, err
	}
	record.ID = id
	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

// Get fetches by primary key.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (records.Record, bool, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM diabetes_records WHERE id = ?`, id)
	record, err := scanSQLiteRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return records.Record{}, false, nil
	}
	if err != nil {
		return records.Record{}, false, err
	}
	return record, true, nil
}

// List filters and pages records, newest first.
func (r *SQLiteRepository) List(ctx context.Context, filter records.ListFilter) ([]records.Record, error) {
	query, args := listQuery(filter, questionPlaceholder)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	out := []records.Record{}
	for rows.Next() {
		record, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func scanSQLiteRecord(row rowScanner) (records.Record, error) {
	var (
		rec                        records.Record
		family                     sql.NullString
		systolic, diastolic, pulse sql.NullFloat64
		created                    string
	)
	if err := row.Scan(
		&rec.ID, &rec.Age, &rec.HeightCm, &rec.WeightKg, &rec.BMI, &rec.WaistCm, &rec.Sex,
		&rec.PhysicalActivity, &rec.DailyFruitVeg, &rec.BPMedication, &rec.HighBloodSugarHistory,
		&family, &rec.FBS, &systolic, &diastolic, &pulse,
		&rec.TotalScore, &rec.RiskCategory, &created,
	); err != nil {
		return records.Record{}, err
	}
	ts, err := util.ParseSortable(created)
	if err != nil {
		return records.Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	rec.CreatedAt = ts.UTC()
	if family.Valid {
		rec.FamilyHistory = &family.String
	}
	rec.Systolic = floatPtr(systolic)
	rec.Diastolic = floatPtr(diastolic)
	rec.Pulse = floatPtr(pulse)
	return rec, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

var _ records.Repository = (*SQLiteRepository)(nil)
