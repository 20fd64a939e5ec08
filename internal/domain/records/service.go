package records

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yanqian/diabetes-risk/internal/domain/risk"
	apperrors "github.com/yanqian/diabetes-risk/pkg/errors"
	"github.com/yanqian/diabetes-risk/pkg/util"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// Service exposes the record collector.
type Service interface {
	Save(ctx context.Context, req SaveRequest) (SaveResponse, error)
	Get(ctx context.Context, id int64) (Record, error)
	List(ctx context.Context, filter ListFilter) ([]Record, error)
}

type service struct {
	cfg       Config
	repo      Repository
	archiver  Archiver
	publisher Publisher
	recorder  Recorder
	logger    *slog.Logger
}

// NewService wires the collector. archiver, publisher and recorder may be nil.
func NewService(cfg Config, repo Repository, archiver Archiver, publisher Publisher, recorder Recorder, logger *slog.Logger) Service {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = defaultListLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = maxListLimit
	}
	return &service{
		cfg:       cfg,
		repo:      repo,
		archiver:  archiver,
		publisher: publisher,
		recorder:  recorder,
		logger:    logger.With("component", "records.service"),
	}
}

func (s *service) Save(ctx context.Context, req SaveRequest) (SaveResponse, error) {
	if missing := req.missingFields(); len(missing) > 0 {
		s.count("rejected")
		return SaveResponse{}, apperrors.WithDetails("invalid_input", "missing fields: "+strings.Join(missing, ", "), missing)
	}
	if problems := req.invalidFields(); len(problems) > 0 {
		s.count("rejected")
		return SaveResponse{}, apperrors.WithDetails("invalid_input", "invalid fields", problems)
	}

	record, err := s.repo.Insert(ctx, req.toRecord())
	if err != nil {
		s.count("failed")
		s.logger.Error("record insert failed", "error", err)
		return SaveResponse{}, apperrors.Wrap("record_store_failed", "failed to save record", err)
	}
	s.count("saved")
	s.logger.Info("record saved", "id", record.ID, "total", record.TotalScore, "category", record.RiskCategory)

	if s.archiver != nil {
		if err := s.archiver.Archive(ctx, record); err != nil {
			s.logger.Warn("record archive failed", "id", record.ID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSaved(ctx, record); err != nil {
			s.logger.Warn("record event publish failed", "id", record.ID, "error", err)
		}
	}
	return SaveResponse{Message: "saved", ID: record.ID}, nil
}

func (s *service) Get(ctx context.Context, id int64) (Record, error) {
	if id <= 0 {
		return Record{}, apperrors.Wrap("record_not_found", "record not found", nil)
	}
	record, ok, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, apperrors.Wrap("record_store_failed", "failed to load record", err)
	}
	if !ok {
		return Record{}, apperrors.Wrap("record_not_found", "record not found", nil)
	}
	return record, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	filter.RiskCategory = strings.TrimSpace(filter.RiskCategory)
	filter.Sex = strings.ToLower(strings.TrimSpace(filter.Sex))
	if filter.Limit <= 0 {
		filter.Limit = s.cfg.DefaultLimit
	}
	if filter.Limit > s.cfg.MaxLimit {
		filter.Limit = s.cfg.MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	out, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap("record_store_failed", "failed to list records", err)
	}
	if out == nil {
		out = []Record{}
	}
	return out, nil
}

func (s *service) count(outcome string) {
	if s.recorder != nil {
		s.recorder.RecordSaved(outcome)
	}
}

// missingFields lists required keys that are absent, null or blank, in
// request order.
func (r SaveRequest) missingFields() []string {
	var missing []string
	check := func(name string, present bool) {
		if !present {
			missing = append(missing, name)
		}
	}
	check("age", r.Age != nil)
	check("height_cm", r.HeightCm != nil)
	check("weight_kg", r.WeightKg != nil)
	check("bmi", r.BMI != nil)
	check("waist_cm", r.WaistCm != nil)
	check("sex_assigned_at_birth", !blank(r.Sex))
	check("fbs", r.FBS != nil)
	check("total_score", r.TotalScore != nil)
	check("risk_category", !blank(r.RiskCategory))
	return missing
}

func (r SaveRequest) invalidFields() []string {
	var problems []string
	if *r.Age < 0 {
		problems = append(problems, "age must not be negative")
	}
	if _, ok := risk.ParseSex(*r.Sex); !ok {
		problems = append(problems, "sex_assigned_at_birth must be male or female")
	}
	if len(strings.TrimSpace(*r.RiskCategory)) > 20 {
		problems = append(problems, "risk_category must be at most 20 characters")
	}
	return problems
}

func (r SaveRequest) toRecord() Record {
	sex, _ := risk.ParseSex(*r.Sex)
	record := Record{
		Age:                   *r.Age,
		HeightCm:              *r.HeightCm,
		WeightKg:              *r.WeightKg,
		BMI:                   *r.BMI,
		WaistCm:               *r.WaistCm,
		Sex:                   string(sex),
		DailyFruitVeg:         flag(r.DailyFruitVeg),
		BPMedication:          flag(r.BPMedication),
		HighBloodSugarHistory: flag(r.HighBloodSugarHistory),
		FBS:                   *r.FBS,
		Systolic:              r.Systolic,
		Diastolic:             r.Diastolic,
		Pulse:                 r.Pulse,
		TotalScore:            *r.TotalScore,
		RiskCategory:          strings.TrimSpace(*r.RiskCategory),
		CreatedAt:             util.NowUTC(),
	}
	if r.PhysicalActivity != nil {
		record.PhysicalActivity = string(r.PhysicalActivity.Level)
	}
	if r.FamilyHistory != nil {
		if fh := risk.ParseFamilyHistory(*r.FamilyHistory); fh != risk.FamilyHistoryNone {
			value := string(fh)
			record.FamilyHistory = &value
		}
	}
	return record
}

func blank(v *string) bool {
	return v == nil || strings.TrimSpace(*v) == ""
}

func flag(v *bool) bool {
	return v != nil && *v
}
