package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/joelkehle/startup-valuation/internal/report"
	"github.com/joelkehle/startup-valuation/internal/store"
	"github.com/joelkehle/startup-valuation/internal/valuation"
)

var (
	ErrInvalidStage = errors.New("invalid stage")
	ErrOwnerMissing = errors.New("owner is required")
	ErrForbidden    = errors.New("valuation belongs to another owner")
	ErrNoRenderer   = errors.New("pdf renderer unavailable")
)

// Result is a computed valuation together with its insights.
type Result struct {
	Input    valuation.Input    `json:"input"`
	Snapshot valuation.Snapshot `json:"snapshot"`
	Insights []string           `json:"insights"`
}

// SharedView is the read-only projection served to share-link holders. It
// omits owner and share token.
type SharedView struct {
	CompanyName string             `json:"company_name"`
	Input       valuation.Input    `json:"input"`
	Snapshot    valuation.Snapshot `json:"snapshot"`
	Insights    []string           `json:"insights"`
}

type Service struct {
	store    store.Store
	profiles valuation.StageProfiles
	pdf      report.PDFRenderer
	logger   *zap.Logger
	tracer   trace.Tracer
}

func New(st store.Store, profiles valuation.StageProfiles, pdf report.PDFRenderer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    st,
		profiles: profiles,
		pdf:      pdf,
		logger:   logger,
		tracer:   otel.Tracer("github.com/joelkehle/startup-valuation/internal/service"),
	}
}

func (s *Service) Profiles() []valuation.StageProfile {
	return s.profiles.Ordered()
}

func (s *Service) checkStage(stage valuation.Stage) error {
	if _, err := valuation.ParseStage(string(stage)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStage, err)
	}
	if _, ok := s.profiles[stage]; !ok {
		return fmt.Errorf("%w: no profile for %q", ErrInvalidStage, stage)
	}
	return nil
}

// Compute runs the valuation without saving anything.
func (s *Service) Compute(ctx context.Context, in valuation.Input) (Result, error) {
	_, span := s.tracer.Start(ctx, "valuation.compute", trace.WithAttributes(attribute.String("stage", string(in.Stage))))
	defer span.End()
	if err := s.checkStage(in.Stage); err != nil {
		return Result{}, fail(span, err)
	}
	snap := valuation.ComputeValuation(in, s.profiles)
	span.SetAttributes(
		attribute.String("method", string(snap.Method)),
		attribute.Float64("base", snap.Base),
	)
	return Result{Input: in, Snapshot: snap, Insights: valuation.ComputeInsights(in, snap)}, nil
}

func (s *Service) Save(ctx context.Context, owner string, in valuation.Input) (store.Record, error) {
	ctx, span := s.tracer.Start(ctx, "valuation.save")
	defer span.End()
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return store.Record{}, fail(span, ErrOwnerMissing)
	}
	res, err := s.Compute(ctx, in)
	if err != nil {
		return store.Record{}, fail(span, err)
	}
	rec, err := s.store.Create(ctx, store.Record{Owner: owner, Input: res.Input, Snapshot: res.Snapshot})
	if err != nil {
		s.logger.Error("save valuation failed", zap.String("owner", owner), zap.Error(err))
		return store.Record{}, fail(span, err)
	}
	s.logger.Info("valuation saved",
		zap.String("id", rec.ID),
		zap.String("owner", owner),
		zap.String("stage", string(in.Stage)),
		zap.Float64("base", rec.Snapshot.Base))
	return rec, nil
}

func (s *Service) Update(ctx context.Context, id, owner string, in valuation.Input) (store.Record, error) {
	ctx, span := s.tracer.Start(ctx, "valuation.update", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	if _, err := s.owned(ctx, id, owner); err != nil {
		return store.Record{}, fail(span, err)
	}
	res, err := s.Compute(ctx, in)
	if err != nil {
		return store.Record{}, fail(span, err)
	}
	rec, err := s.store.Update(ctx, store.Record{ID: id, Input: res.Input, Snapshot: res.Snapshot})
	if err != nil {
		return store.Record{}, fail(span, err)
	}
	s.logger.Info("valuation updated", zap.String("id", id), zap.Float64("base", rec.Snapshot.Base))
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id, owner string) (store.Record, error) {
	ctx, span := s.tracer.Start(ctx, "valuation.get", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	rec, err := s.owned(ctx, id, owner)
	if err != nil {
		return store.Record{}, fail(span, err)
	}
	return rec, nil
}

func (s *Service) Delete(ctx context.Context, id, owner string) error {
	ctx, span := s.tracer.Start(ctx, "valuation.delete", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	if _, err := s.owned(ctx, id, owner); err != nil {
		return fail(span, err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fail(span, err)
	}
	s.logger.Info("valuation deleted", zap.String("id", id))
	return nil
}

func (s *Service) List(ctx context.Context, owner string) ([]store.Record, error) {
	ctx, span := s.tracer.Start(ctx, "valuation.list")
	defer span.End()
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, fail(span, ErrOwnerMissing)
	}
	recs, err := s.store.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("count", len(recs)))
	return recs, nil
}

// Verify recomputes a saved valuation and reports store.ErrIntegrity when
// the stored snapshot no longer matches.
func (s *Service) Verify(ctx context.Context, id, owner string) error {
	ctx, span := s.tracer.Start(ctx, "valuation.verify", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	rec, err := s.owned(ctx, id, owner)
	if err != nil {
		return fail(span, err)
	}
	if err := store.Verify(rec, s.profiles); err != nil {
		s.logger.Warn("integrity check failed", zap.String("id", id), zap.Error(err))
		return fail(span, err)
	}
	return nil
}

// Share issues a new share token, replacing any previous one.
func (s *Service) Share(ctx context.Context, id, owner string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "valuation.share", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	if _, err := s.owned(ctx, id, owner); err != nil {
		return "", fail(span, err)
	}
	token := store.NewShareToken()
	if err := s.store.SetShareToken(ctx, id, token); err != nil {
		return "", fail(span, err)
	}
	s.logger.Info("share link issued", zap.String("id", id))
	return token, nil
}

func (s *Service) Shared(ctx context.Context, token string) (SharedView, error) {
	ctx, span := s.tracer.Start(ctx, "valuation.shared")
	defer span.End()
	rec, err := s.store.GetByShareToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return SharedView{}, fail(span, err)
	}
	return SharedView{
		CompanyName: rec.Input.CompanyName,
		Input:       rec.Input,
		Snapshot:    rec.Snapshot,
		Insights:    valuation.ComputeInsights(rec.Input, rec.Snapshot),
	}, nil
}

func (s *Service) Report(ctx context.Context, id, owner string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "valuation.report", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	rec, err := s.owned(ctx, id, owner)
	if err != nil {
		return "", fail(span, err)
	}
	if err := s.checkStage(rec.Input.Stage); err != nil {
		return "", fail(span, err)
	}
	return report.BuildMarkdown(report.NewDocument(rec.ID, rec.Input, rec.Snapshot, s.profiles)), nil
}

func (s *Service) ReportPDF(ctx context.Context, id, owner string) ([]byte, error) {
	if s.pdf == nil {
		return nil, ErrNoRenderer
	}
	markdown, err := s.Report(ctx, id, owner)
	if err != nil {
		return nil, err
	}
	ctx, span := s.tracer.Start(ctx, "valuation.report_pdf", trace.WithAttributes(attribute.String("id", id)))
	defer span.End()
	pdf, err := s.pdf.Render(ctx, markdown)
	if err != nil {
		s.logger.Error("render report pdf failed", zap.String("id", id), zap.Error(err))
		return nil, fail(span, err)
	}
	return pdf, nil
}

func (s *Service) owned(ctx context.Context, id, owner string) (store.Record, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return store.Record{}, ErrOwnerMissing
	}
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return store.Record{}, err
	}
	if rec.Owner != owner {
		return store.Record{}, ErrForbidden
	}
	return rec, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
