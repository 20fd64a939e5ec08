package risk

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/diabetes-risk/pkg/errors"
	"github.com/yanqian/diabetes-risk/pkg/util"
)

const defaultSubmitTimeout = 10 * time.Second

// Service exposes the assessment workflow around the scoring engine.
type Service interface {
	Assess(ctx context.Context, req AssessRequest) (Assessment, error)
	Evaluate(m Measurement) Assessment
	LoadResult(ctx context.Context, sessionID string) (Assessment, bool, error)
	// Drain waits for in-flight submissions until ctx ends.
	Drain(ctx context.Context) error
}

type service struct {
	cfg      Config
	store    ResultStore
	sink     Sink
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	async    func(func())
	pending  sync.WaitGroup
}

// NewService wires up the assessment domain. sink may be nil when no remote
// collector is configured.
func NewService(cfg Config, store ResultStore, sink Sink, recorder Recorder, logger *slog.Logger) Service {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = defaultSubmitTimeout
	}
	return &service{
		cfg:      cfg,
		store:    store,
		sink:     sink,
		recorder: recorder,
		logger:   logger.With("component", "risk.service"),
		now:      util.NowUTC,
		newID:    uuid.NewString,
		async:    func(fn func()) { go fn() },
	}
}

func (s *service) Assess(ctx context.Context, req AssessRequest) (Assessment, error) {
	if problems := req.Form.Validate(s.cfg.RequireVitals); len(problems) > 0 {
		if s.recorder != nil {
			s.recorder.ValidationFailed()
		}
		return Assessment{}, apperrors.WithDetails("invalid_input", "form validation failed", problems)
	}
	if req.Form.LegacyActivity() {
		s.logger.Info("legacy yes/no activity answer collapsed", "activity", string(req.Form.Activity))
	}

	assessment := s.Evaluate(req.Form.Normalize())
	assessment.SessionID = strings.TrimSpace(req.SessionID)
	if assessment.SessionID == "" {
		assessment.SessionID = s.newID()
	}

	if s.store != nil {
		if err := s.store.Save(ctx, assessment.SessionID, assessment, s.cfg.ResultTTL); err != nil {
			s.logger.Warn("result slot save failed", "session", assessment.SessionID, "error", err)
		}
	}
	s.submit(ctx, assessment)

	if s.recorder != nil {
		s.recorder.ObserveAssessment(string(assessment.Breakdown.Category), string(assessment.IDRS.Category), assessment.Breakdown.Total)
	}
	s.logger.Info("assessment computed",
		"id", assessment.ID,
		"total", assessment.Breakdown.Total,
		"category", assessment.Breakdown.Category,
		"idrs", assessment.IDRS.Total,
	)
	return assessment, nil
}

// Evaluate scores a normalized measurement. It touches no storage.
func (s *service) Evaluate(m Measurement) Assessment {
	m = m.withDerivedBMI()
	return Assessment{
		ID:        s.newID(),
		Input:     m,
		Breakdown: ScoreComposite(m),
		IDRS:      ScoreIDRS(m),
		Vitals:    ClassifyVitals(m),
		CreatedAt: s.now(),
	}
}

func (s *service) LoadResult(ctx context.Context, sessionID string) (Assessment, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" || s.store == nil {
		return Assessment{}, false, nil
	}
	assessment, ok, err := s.store.Load(ctx, sessionID)
	if err != nil {
		s.logger.Warn("result slot load failed", "session", sessionID, "error", err)
		return Assessment{}, false, nil
	}
	return assessment, ok, nil
}

// submit hands the assessment to the sink without waiting on the outcome.
func (s *service) submit(ctx context.Context, assessment Assessment) {
	if s.sink == nil {
		return
	}
	payload := NewSubmission(assessment)
	parent := context.WithoutCancel(ctx)
	s.pending.Add(1)
	s.async(func() {
		defer s.pending.Done()
		submitCtx, cancel := context.WithTimeout(parent, s.cfg.SubmitTimeout)
		defer cancel()
		outcome := "ok"
		if err := s.sink.Submit(submitCtx, payload); err != nil {
			outcome = "failed"
			s.logger.Warn("submission failed", "id", assessment.ID, "error", err)
		}
		if s.recorder != nil {
			s.recorder.SubmissionResult(outcome)
		}
	})
}

func (s *service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
