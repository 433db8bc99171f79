package report

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/KaramelBytes/fraudeda-cli/internal/analysis"
	"github.com/KaramelBytes/fraudeda-cli/internal/catalog"
	"github.com/KaramelBytes/fraudeda-cli/internal/dataset"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("fraudeda/report")

// Builder produces the tables of one section from the read-only input.
type Builder func(analysis.Input) Output

type tabler interface{ Tables() []analysis.Table }

type warner interface{ Warnings() []string }

func build[T tabler](fn func(analysis.Input) (T, error)) Builder {
	return func(in analysis.Input) Output {
		res, err := fn(in)
		if err != nil {
			return Output{Err: err}
		}
		out := Output{Tables: res.Tables()}
		if w, ok := any(res).(warner); ok {
			out.Warnings = w.Warnings()
		}
		return out
	}
}

func defaultBuilders() map[SectionID]Builder {
	return map[SectionID]Builder{
		Overview:                 build(analysis.Overview),
		DataDictionary:           build(analysis.Dictionary),
		FeatureFormulas:          build(analysis.Formulas),
		DescriptiveStats:         build(analysis.Describe),
		MissingValues:            build(analysis.Missing),
		GraphFeatures:            build(analysis.Graph),
		CategoricalDistributions: build(analysis.Categorical),
		RuleFeatures:             build(analysis.Rules),
		TemporalAnalysis:         build(analysis.Temporal),
		FraudTypeAnalysis:        build(analysis.FraudTypes),
		TopCorrelations:          build(analysis.Correlations),
	}
}

// Options controls a report run.
type Options struct {
	Analysis analysis.Options
	// Parallel runs the section builders concurrently.
	Parallel bool
	// OnSection is called after each section finishes. With Parallel set it
	// may be called from several goroutines at once.
	OnSection func(name string, failed bool)
	// Now stamps GeneratedAt; time.Now when nil.
	Now func() time.Time

	builders map[SectionID]Builder
}

// DefaultOptions returns sequential execution over the default column layout.
func DefaultOptions() Options {
	return Options{Analysis: analysis.DefaultOptions()}
}

// Run validates the schema, binds the rule registry and builds every
// section. Only a missing or non-numeric label, or a missing fraud type
// column, is fatal; section failures become placeholders.
func Run(ctx context.Context, ds *dataset.Dataset, cat *catalog.Catalog, opt Options) (*Report, error) {
	if err := ds.RequireNumeric(opt.Analysis.LabelColumn); err != nil {
		return nil, err
	}
	if err := ds.Require(opt.Analysis.FraudTypeColumn); err != nil {
		return nil, err
	}
	reg, err := catalog.NewRegistry(cat)
	if err != nil {
		return nil, fmt.Errorf("build rule registry: %w", err)
	}
	binding, err := reg.Bind(cat, ds.Names())
	if err != nil {
		return nil, fmt.Errorf("bind rules: %w", err)
	}

	log := slog.Default().With("dataset", ds.Name)
	log.Debug("rules bound", "rules", binding.Names())
	var warnings []string
	for _, name := range binding.Missing {
		log.Debug("catalogued rule not in dataset", "rule", name)
	}
	if n := len(binding.Missing); n > 0 {
		warnings = append(warnings, fmt.Sprintf("%d catalogued rule(s) not present in the dataset", n))
	}
	for _, name := range binding.Extra {
		log.Warn("rule column not in catalog", "rule", name)
		warnings = append(warnings, "rule column "+name+" is not catalogued; appended after catalogued rules")
	}
	for _, name := range ds.Names() {
		if _, ok := cat.Lookup(name); !ok {
			log.Warn("column not in catalog", "column", name)
			warnings = append(warnings, "column "+name+" has no catalog entry")
		}
	}

	in := analysis.Input{Data: ds, Catalog: cat, Rules: binding, Opt: opt.Analysis}
	builders := opt.builders
	if builders == nil {
		builders = defaultBuilders()
	}
	ids := Sections()
	outs := make([]Output, len(ids))

	if opt.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i, id := range ids {
			i, id := i, id
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				outs[i] = runSection(gctx, log, id, builders[id], in)
				opt.notify(id, outs[i])
				return nil
			})
		}
		// section failures are recorded in outs; only cancellation surfaces here
		if err := g.Wait(); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	} else {
		for i, id := range ids {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outs[i] = runSection(ctx, log, id, builders[id], in)
			opt.notify(id, outs[i])
		}
	}

	now := time.Now
	if opt.Now != nil {
		now = opt.Now
	}
	byID := make(map[SectionID]Output, len(ids))
	for i, id := range ids {
		byID[id] = outs[i]
	}
	return Assemble(Meta{
		RunID:       uuid.NewString(),
		Dataset:     ds.Name,
		GeneratedAt: now().UTC(),
		Rows:        ds.Rows(),
		Columns:     len(ds.Columns()),
		Warnings:    warnings,
	}, byID), nil
}

func (o Options) notify(id SectionID, out Output) {
	if o.OnSection != nil {
		o.OnSection(id.Name(), out.Err != nil)
	}
}

func runSection(ctx context.Context, log *slog.Logger, id SectionID, b Builder, in analysis.Input) (out Output) {
	_, span := tracer.Start(ctx, "section "+id.Name(),
		trace.WithAttributes(
			attribute.String("section", id.Name()),
			attribute.String("dataset", in.Data.Name),
		),
	)
	defer span.End()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Debug("section panic", "section", id.Name(), "stack", string(debug.Stack()))
			out = Output{Err: fmt.Errorf("panic: %v", r)}
		}
		if out.Err != nil {
			serr := &SectionError{Section: id.Name(), Err: out.Err}
			log.Error("section failed", "section", id.Name(), "error", out.Err)
			span.RecordError(serr)
			span.SetStatus(codes.Error, serr.Error())
			return
		}
		span.SetAttributes(attribute.Int("tables", len(out.Tables)))
		log.Debug("section built", "section", id.Name(), "tables", len(out.Tables), "elapsed", time.Since(start))
	}()
	if b == nil {
		return Output{Err: fmt.Errorf("no builder registered")}
	}
	return b(in)
}
