package asset

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abduss/blogd/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type variantGenerator interface {
	Generate(ctx context.Context, originalPath, assetName string) (GeneratedVariants, error)
}

// Lifecycle keeps the three variants of an asset consistent across create, update and delete.
type Lifecycle struct {
	namer     *Namer
	store     *Store
	generator variantGenerator
	mirror    Mirror
	log       *zap.Logger
}

// NewLifecycle wires the orchestrator. mirror and log may be nil.
func NewLifecycle(store *Store, generator variantGenerator, mirror Mirror, log *zap.Logger) *Lifecycle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lifecycle{
		namer:     NewNamer(),
		store:     store,
		generator: generator,
		mirror:    mirror,
		log:       log,
	}
}

// Store exposes the underlying asset store for read endpoints.
func (l *Lifecycle) Store() *Store {
	return l.store
}

// Create names the upload, stores the original and derives the variants. Naming errors and a
// failure to store the original are returned; derived-variant failures only degrade the
// outcome. An original that cannot be decoded is discarded and the outcome carries no asset.
func (l *Lifecycle) Create(ctx context.Context, up Upload) (CreateOutcome, error) {
	if up.Body == nil {
		return CreateOutcome{}, ErrEmptyUpload
	}
	a, err := l.namer.NameUpload(up.FieldName, up.Filename, up.ContentType)
	if err != nil {
		return CreateOutcome{}, err
	}

	originalPath, err := l.store.SaveOriginal(a.Name, up.Body)
	if err != nil {
		return CreateOutcome{}, fmt.Errorf("store original: %w", err)
	}

	log := l.log.With(zap.String("asset", a.Name))
	generated, genErr := l.generator.Generate(ctx, originalPath, a.Name)
	for _, r := range generated.Results() {
		metrics.ObserveVariantGeneration(string(r.Variant), r.Err)
	}

	if errors.Is(genErr, ErrUnsupportedFormat) {
		log.Warn("discarding undecodable upload", zap.Error(genErr))
		if _, err := l.store.DeleteVariant(originalPath); err != nil {
			log.Error("remove undecodable original", zap.Error(err))
		}
		return CreateOutcome{
			Variants: []VariantReport{
				{Variant: VariantOriginal, Error: genErr.Error()},
				{Variant: VariantResized, Error: genErr.Error()},
				{Variant: VariantThumbnail, Error: genErr.Error()},
			},
			Degraded: true,
			Warnings: []string{"image could not be decoded and was not attached"},
		}, nil
	}

	outcome := CreateOutcome{
		Asset:    &a,
		Variants: []VariantReport{{Variant: VariantOriginal, Present: true}},
	}
	for _, r := range generated.Results() {
		report := VariantReport{Variant: r.Variant, Present: r.Err == nil}
		if r.Err != nil {
			report.Error = r.Err.Error()
			outcome.Degraded = true
			outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("%s variant unavailable", r.Variant))
		}
		outcome.Variants = append(outcome.Variants, report)
	}
	if genErr != nil {
		log.Warn("variant generation degraded", zap.Error(genErr))
	}

	l.mirrorPresent(ctx, a.Name)
	return outcome, nil
}

// Delete removes all three variants independently and aggregates the result. Only an invalid
// name is returned as an error; missing files and I/O errors are itemized in the outcome.
func (l *Lifecycle) Delete(ctx context.Context, name string) (DeleteOutcome, error) {
	paths := make([]string, len(Variants))
	for i, v := range Variants {
		p, err := l.store.Resolve(v, name)
		if err != nil {
			return DeleteOutcome{}, err
		}
		paths[i] = p
	}

	results := make([]VariantDeletion, len(Variants))
	var g errgroup.Group
	for i, v := range Variants {
		g.Go(func() error {
			status, err := l.store.DeleteVariant(paths[i])
			results[i] = VariantDeletion{Variant: v, Status: status}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	outcome := aggregateDeletions(name, results)
	metrics.ObserveAssetDeletion(string(outcome.Outcome))
	l.unmirror(ctx, name, outcome.Variants)
	return outcome, nil
}

// Retire deletes an asset that is no longer referenced. Failures are logged and never returned;
// the outcome is nil when name is empty or invalid.
func (l *Lifecycle) Retire(ctx context.Context, name string) *DeleteOutcome {
	if name == "" {
		return nil
	}
	log := l.log.With(zap.String("asset", name))

	outcome, err := l.Delete(ctx, name)
	if err != nil {
		log.Error("retire asset", zap.Error(err))
		return nil
	}
	switch outcome.Outcome {
	case OutcomeFailure:
		log.Error("retire asset failed", zap.Any("variants", outcome.Failed()))
	case OutcomePartialSuccess:
		log.Warn("retired asset had missing variants", zap.Any("variants", outcome.Missing()))
	default:
		log.Debug("retired asset")
	}
	return &outcome
}

// Regenerate re-derives the variants of an existing original.
func (l *Lifecycle) Regenerate(ctx context.Context, name string) (GeneratedVariants, error) {
	originalPath, err := l.store.Resolve(VariantOriginal, name)
	if err != nil {
		return GeneratedVariants{}, err
	}
	if !l.store.Exists(originalPath) {
		return GeneratedVariants{}, ErrAssetNotFound
	}

	generated, err := l.generator.Generate(ctx, originalPath, name)
	for _, r := range generated.Results() {
		metrics.ObserveVariantGeneration(string(r.Variant), r.Err)
	}
	l.mirrorPresent(ctx, name)
	return generated, err
}

// Inspect reports which variants of name are on disk.
func (l *Lifecycle) Inspect(name string) (AssetReport, error) {
	report := AssetReport{Asset: name}
	for _, v := range Variants {
		p, err := l.store.Resolve(v, name)
		if err != nil {
			return AssetReport{}, err
		}
		report.Variants = append(report.Variants, VariantReport{Variant: v, Present: l.store.Exists(p)})
	}
	return report, nil
}

// MirrorURL returns a presigned mirror link for a variant that exists locally.
func (l *Lifecycle) MirrorURL(ctx context.Context, v Variant, name string) (string, time.Duration, error) {
	presigner, ok := l.mirror.(Presigner)
	if !ok {
		return "", 0, ErrMirrorDisabled
	}
	p, err := l.store.Resolve(v, name)
	if err != nil {
		return "", 0, err
	}
	if !l.store.Exists(p) {
		return "", 0, ErrAssetNotFound
	}
	return presigner.PresignGet(ctx, MirrorKey(v, name))
}

func (l *Lifecycle) mirrorPresent(ctx context.Context, name string) {
	if l.mirror == nil {
		return
	}
	for _, v := range Variants {
		p := l.store.Path(v, name)
		if !l.store.Exists(p) {
			continue
		}
		if err := l.mirror.Put(ctx, MirrorKey(v, name), p); err != nil {
			l.log.Warn("mirror variant", zap.String("asset", name), zap.String("variant", string(v)), zap.Error(err))
		}
	}
}

// unmirror drops mirror objects of variants that are gone locally. A variant that failed to
// delete keeps its mirror copy so the two stores stay in step for a retry.
func (l *Lifecycle) unmirror(ctx context.Context, name string, results []VariantDeletion) {
	if l.mirror == nil {
		return
	}
	for _, r := range results {
		if r.Status == StatusError {
			continue
		}
		if err := l.mirror.Remove(ctx, MirrorKey(r.Variant, name)); err != nil {
			l.log.Warn("unmirror variant", zap.String("asset", name), zap.String("variant", string(r.Variant)), zap.Error(err))
		}
	}
}
