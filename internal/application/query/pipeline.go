package query

import (
	"context"
	"strings"
	"time"

	"github.com/rhythm-hub/rhythm-core/internal/domain/birth"
	"github.com/rhythm-hub/rhythm-core/internal/domain/chart"
	"github.com/rhythm-hub/rhythm-core/internal/domain/content"
	"github.com/rhythm-hub/rhythm-core/internal/domain/rhythm"
	"github.com/rhythm-hub/rhythm-core/internal/domain/role"
	"github.com/rhythm-hub/rhythm-core/internal/domain/shared"
	"github.com/rhythm-hub/rhythm-core/pkg/logger"
	"github.com/rhythm-hub/rhythm-core/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENT
// ══════════════════════════════════════════════════════════════════════════════

// Document is the output of one pipeline run: the signal, the content built
// from it and, for non-neutral roles, what translation changed.
type Document struct {
	Scale  rhythm.Scale `json:"scale"`
	Period string       `json:"period"`
	Role   role.Role    `json:"role,omitempty"`

	Chart   chart.Chart     `json:"chart"`
	Signal  rhythm.Signal   `json:"signal"`
	Content content.Content `json:"content"`

	Substitutions []role.Substitution      `json:"substitutions,omitempty"`
	Preservation  *role.PreservationReport `json:"preservation,omitempty"`
}

// ══════════════════════════════════════════════════════════════════════════════
// PIPELINE
// ══════════════════════════════════════════════════════════════════════════════

// PipelineConfig configures a Pipeline.
type PipelineConfig struct {
	Charts     ChartComputer
	Analyzer   *rhythm.Analyzer
	Assembler  *content.Assembler
	Translator *role.Translator
	Features   FeatureGate
	Observer   Observer
	Logger     *logger.Logger

	// StrictSemantics turns preservation warnings into failures.
	StrictSemantics bool
}

// Pipeline runs chart -> rhythm -> content -> role for one period. It is safe
// for concurrent use.
type Pipeline struct {
	charts     ChartComputer
	analyzer   *rhythm.Analyzer
	assembler  *content.Assembler
	translator *role.Translator
	features   FeatureGate
	observer   Observer
	log        *logger.Logger
	strict     bool
}

// NewPipeline builds a pipeline, filling unset collaborators with defaults.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		charts:     cfg.Charts,
		analyzer:   cfg.Analyzer,
		assembler:  cfg.Assembler,
		translator: cfg.Translator,
		features:   cfg.Features,
		observer:   cfg.Observer,
		log:        cfg.Logger,
		strict:     cfg.StrictSemantics,
	}
	if p.charts == nil {
		p.charts = NewCalculatorComputer(chart.NewCalculator())
	}
	if p.analyzer == nil {
		p.analyzer = rhythm.NewAnalyzer()
	}
	if p.assembler == nil {
		p.assembler = content.NewAssembler(content.MustDefaultPools())
	}
	if p.translator == nil {
		p.translator = role.NewTranslator(role.MustDefaultVocabulary())
	}
	if p.features == nil {
		p.features = allowAll{}
	}
	if p.observer == nil {
		p.observer = NopObserver{}
	}
	if p.log == nil {
		p.log = logger.NewNop()
	}
	return p
}

// run carries the inputs of one pipeline execution for logging.
type run struct {
	op        string
	birth     birth.Info
	target    time.Time
	role      role.Role
	profileID string
}

func (p *Pipeline) day(ctx context.Context, r run, date time.Time) (*Document, error) {
	ch, err := p.chart(ctx, r)
	if err != nil {
		return nil, err
	}
	sig, err := p.stage(StageAnalyze, func() (rhythm.Signal, error) {
		return p.analyzer.AnalyzeDay(r.birth, date, ch)
	})
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}
	return p.finish(ctx, r, ch, sig)
}

func (p *Pipeline) month(ctx context.Context, r run, year, month int) (*Document, error) {
	ch, err := p.chart(ctx, r)
	if err != nil {
		return nil, err
	}
	sig, err := p.stage(StageAnalyze, func() (rhythm.Signal, error) {
		return p.analyzer.AnalyzeMonth(r.birth, year, month, ch)
	})
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}
	return p.finish(ctx, r, ch, sig)
}

func (p *Pipeline) year(ctx context.Context, r run, year int) (*Document, error) {
	ch, err := p.chart(ctx, r)
	if err != nil {
		return nil, err
	}
	sig, err := p.stage(StageAnalyze, func() (rhythm.Signal, error) {
		return p.analyzer.AnalyzeYear(r.birth, year, ch)
	})
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}
	return p.finish(ctx, r, ch, sig)
}

func (p *Pipeline) chart(ctx context.Context, r run) (chart.Chart, error) {
	start := time.Now()
	ch, err := p.charts.ComputeChart(ctx, r.birth, r.target)
	p.observer.ObserveStage(StageChart, time.Since(start), err)
	if err != nil {
		return chart.Chart{}, p.fail(ctx, r, err)
	}
	return ch, nil
}

func (p *Pipeline) stage(name string, fn func() (rhythm.Signal, error)) (rhythm.Signal, error) {
	start := time.Now()
	sig, err := fn()
	p.observer.ObserveStage(name, time.Since(start), err)
	return sig, err
}

func (p *Pipeline) finish(ctx context.Context, r run, ch chart.Chart, sig rhythm.Signal) (*Document, error) {
	start := time.Now()
	c, err := p.assembler.Assemble(sig)
	p.observer.ObserveStage(StageAssemble, time.Since(start), err)
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}

	start = time.Now()
	report := content.Validate(c)
	if !report.OK() {
		err = shared.NewDomainError("content", "Validate", shared.ErrAssembly,
			"assembled content failed validation: "+strings.Join(report.Messages(), "; "))
	}
	p.observer.ObserveStage(StageValidate, time.Since(start), err)
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}

	doc := &Document{
		Scale:   sig.Scale,
		Period:  sig.Period(),
		Role:    role.Neutral,
		Chart:   ch,
		Signal:  sig,
		Content: c,
	}
	if r.role.IsNeutral() {
		return doc, nil
	}

	if !p.features.IsEnabled(FeatureRoleTranslation, r.profileID) {
		return nil, shared.NewDomainError("query", r.op, shared.ErrFeatureDisabled,
			"role translation to "+r.role.String()+" is disabled")
	}

	start = time.Now()
	tr, err := p.translator.Translate(c, r.role)
	if err == nil && p.features.IsEnabled(FeatureSemanticCheck, r.profileID) {
		rep := p.translator.ValidateSemanticPreservation(c, tr)
		doc.Preservation = &rep
		switch {
		case !rep.OK():
			err = shared.Computationf("role", "ValidateSemanticPreservation",
				"translation to %s lost meaning: %s", r.role, strings.Join(rep.Messages(), "; "))
		case p.strict && !rep.Strict():
			err = shared.Computationf("role", "ValidateSemanticPreservation",
				"translation to %s drifted: %s", r.role, strings.Join(rep.Messages(), "; "))
		}
	}
	if err == nil {
		if report := content.Validate(tr.Content); !report.OK() {
			err = shared.NewDomainError("content", "Validate", shared.ErrAssembly,
				"translated content failed validation: "+strings.Join(report.Messages(), "; "))
		}
	}
	p.observer.ObserveStage(StageTranslate, time.Since(start), err)
	if err != nil {
		return nil, p.fail(ctx, r, err)
	}

	doc.Role = tr.Role
	doc.Content = tr.Content
	doc.Substitutions = tr.Substitutions
	return doc, nil
}

// fail logs defects with their full input. Validation errors are the
// caller's and pass through quietly.
func (p *Pipeline) fail(ctx context.Context, r run, err error) error {
	if shared.IsComputation(err) || shared.IsAssembly(err) {
		pl := r.birth.Place
		fields := []logger.Field{
			logger.Operation(r.op),
			logger.ProfileID(r.profileID),
			logger.Role(r.role.String()),
			logger.TargetDate(r.target),
			logger.String("birth_date", timeutil.FormatDate(r.birth.Date)),
			logger.String("birth_time", r.birth.Time.String()),
			logger.String("gender", string(r.birth.Gender)),
			logger.String("place", pl.Name),
			logger.Int("utc_offset_minutes", pl.Offset()),
			logger.Err(err),
		}
		if pl.Latitude != nil && pl.Longitude != nil {
			fields = append(fields, logger.Float64("lat", *pl.Latitude), logger.Float64("lng", *pl.Longitude))
		}
		logger.FromContextOr(ctx, p.log).Error("rhythm pipeline defect", fields...)
	}
	return err
}
