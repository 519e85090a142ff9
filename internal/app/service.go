// Package service wires the vector builders, classifiers and tier mapping
// into the prediction service consumed by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/enhealth/internal/adapters/cache"
	"github.com/okian/enhealth/internal/adapters/repository"
	"github.com/okian/enhealth/internal/domain/features"
	"github.com/okian/enhealth/internal/domain/model"
	"github.com/okian/enhealth/internal/domain/tiers"
	"github.com/okian/enhealth/internal/domain/types"
	"github.com/okian/enhealth/pkg/logger"
	"github.com/okian/enhealth/pkg/metrics"
)

// positiveClass is the label whose probability the binary models report.
const positiveClass = "1"

// predictor bundles everything needed to serve one condition. It is built once
// in Start and never mutated afterwards, apart from its counters.
type predictor struct {
	condition types.Condition
	spec      features.Spec
	clf       model.Classifier
	schema    []string
	classes   model.ClassIndex
	ladder    tiers.Ladder // nil for sleep

	served   atomic.Int64
	rejected atomic.Int64
	failed   atomic.Int64
}

// Service serves predictions for every supported condition.
type Service struct {
	mu sync.RWMutex

	// Collaborators
	store       repository.Store
	classifiers map[types.Condition]model.Classifier

	// Configuration
	modelDir   string
	modelFiles map[types.Condition]string
	cacheSize  int

	// State
	started    bool
	predictors map[types.Condition]*predictor

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithModelDir sets the directory artifact names are resolved against.
func WithModelDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.modelDir = dir
		}
	}
}

// WithModelFiles overrides artifact file names by condition name. Unknown
// names are ignored.
func WithModelFiles(files map[string]string) Option {
	return func(s *Service) {
		for _, c := range types.Conditions {
			if f := files[string(c)]; f != "" {
				s.modelFiles[c] = f
			}
		}
	}
}

// WithCacheSize sets the per-model inference cache size; 0 disables caching.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.cacheSize = size
		}
	}
}

// WithStore replaces the artifact store used by Start.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClassifiers supplies ready classifiers; conditions listed here skip the
// artifact store.
func WithClassifiers(clfs map[types.Condition]model.Classifier) Option {
	return func(s *Service) {
		for c, clf := range clfs {
			s.classifiers[c] = clf
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		classifiers: make(map[types.Condition]model.Classifier),
		modelDir:    "models",
		modelFiles: map[types.Condition]string{
			types.Diabetes: "diabetes.yaml",
			types.Lung:     "lung.yaml",
			types.Covid:    "covid.yaml",
			types.Sleep:    "sleep.yaml",
		},
		cacheSize:  1024,
		predictors: make(map[types.Condition]*predictor),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start loads every model once and prepares its predictor. It fails if any
// artifact is missing, invalid, or does not fit its endpoint.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...",
		logger.String("modelDir", s.modelDir),
		logger.Int("cacheSize", s.cacheSize),
	)

	predictors := make(map[types.Condition]*predictor, len(types.Conditions))
	for _, c := range types.Conditions {
		p, err := s.load(ctx, c)
		if err != nil {
			return err
		}
		predictors[c] = p
	}

	s.predictors = predictors
	s.started = true
	metrics.UpdateModelsLoaded(len(predictors))

	s.logger.Info(ctx, "prediction service started", logger.Int("models", len(predictors)))
	return nil
}

func (s *Service) load(ctx context.Context, c types.Condition) (*predictor, error) {
	clf, ok := s.classifiers[c]
	if !ok {
		if s.store == nil {
			store, err := repository.NewFileStore(
				repository.WithDir(s.modelDir),
				repository.WithLogger(s.logger.Named("repository")),
			)
			if err != nil {
				return nil, err
			}
			s.store = store
		}
		var err error
		clf, err = s.store.Load(ctx, s.modelFiles[c])
		if err != nil {
			return nil, fmt.Errorf("load %s model: %w", c, err)
		}
	}

	p := &predictor{
		condition: c,
		schema:    clf.FeatureNames(),
		classes:   model.NewClassIndex(clf.ClassLabels()),
	}
	switch c {
	case types.Diabetes:
		p.spec, p.ladder = features.Diabetes, tiers.Diabetes
	case types.Lung:
		p.spec, p.ladder = features.Lung, tiers.Lung
	case types.Covid:
		p.spec, p.ladder = features.Covid, tiers.Covid
	case types.Sleep:
		p.spec = features.Sleep
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, c)
	}

	if p.ladder != nil {
		if _, ok := p.classes.Lookup(positiveClass); !ok {
			return nil, fmt.Errorf("%w: %s classes %v lack positive class %q",
				ErrModelContract, c, clf.ClassLabels(), positiveClass)
		}
	} else {
		for _, label := range clf.ClassLabels() {
			if _, ok := tiers.SleepLabels[label]; !ok {
				s.logger.Warn(ctx, "sleep model has a class without a category",
					logger.String("class", label))
			}
		}
	}

	if uncovered := p.spec.Uncovered(p.schema); len(uncovered) > 0 {
		// Requests will be rejected with "Missing values for" until the
		// artifact and the payload rules agree.
		s.logger.Warn(ctx, "model expects features no payload field provides",
			logger.String("condition", string(c)),
			logger.Any("features", uncovered),
		)
	}

	wrapped, err := cache.Wrap(clf, string(c), s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("cache %s model: %w", c, err)
	}
	p.clf = wrapped
	return p, nil
}

// Stop marks the service as stopped. Loaded models are released.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.predictors = make(map[types.Condition]*predictor)
	s.started = false
	metrics.UpdateModelsLoaded(0)
	s.logger.Info(context.Background(), "prediction service stopped")
}

// Predict validates payload, scores it with the condition's model and maps
// the output onto an advisory. Validation problems are returned as
// *features.ValidationError; anything else is an internal failure.
func (s *Service) Predict(ctx context.Context, condition types.Condition, payload map[string]any) (types.Result, error) {
	p, err := s.predictor(condition)
	if err != nil {
		return types.Result{}, err
	}

	vec, err := features.Build(p.spec, p.schema, payload)
	if err != nil {
		var verr *features.ValidationError
		if errors.As(err, &verr) {
			p.rejected.Add(1)
			metrics.RecordValidationFailure(string(condition))
		}
		return types.Result{}, err
	}

	start := time.Now()
	result, err := s.infer(ctx, p, vec.Values)
	metrics.RecordInferenceLatency(string(condition), float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		p.failed.Add(1)
		metrics.RecordInferenceError(string(condition))
		return types.Result{}, fmt.Errorf("%w: %s: %v", ErrInference, condition, err)
	}

	p.served.Add(1)
	metrics.RecordPrediction(string(condition), result.RiskLevel)
	s.logger.Debug(ctx, "prediction served",
		logger.String("condition", string(condition)),
		logger.String("riskLevel", result.RiskLevel),
		logger.Float64("probability", result.Probability),
	)
	return result, nil
}

func (s *Service) infer(ctx context.Context, p *predictor, x []float64) (types.Result, error) {
	proba, err := p.clf.PredictProba(x)
	if err != nil {
		return types.Result{}, err
	}

	if p.ladder != nil {
		i, _ := p.classes.Lookup(positiveClass)
		if i >= len(proba) {
			return types.Result{}, fmt.Errorf("%w: %d probabilities for %d classes", model.ErrShape, len(proba), len(p.classes))
		}
		return p.ladder.Classify(proba[i]), nil
	}

	predicted, err := p.clf.Predict(x)
	if err != nil {
		return types.Result{}, err
	}
	confidence := 0.0
	if i, ok := p.classes.Lookup(predicted); ok && i < len(proba) {
		confidence = proba[i]
	} else {
		s.logger.Warn(ctx, "predicted sleep class missing from class index",
			logger.String("class", predicted),
			logger.Any("classes", p.clf.ClassLabels()),
		)
	}
	return tiers.ClassifySleep(predicted, confidence), nil
}

func (s *Service) predictor(c types.Condition) (*predictor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}
	p, ok := s.predictors[c]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCondition, c)
	}
	return p, nil
}

// Conditions lists the loaded conditions in endpoint order.
func (s *Service) Conditions() []types.Condition {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Condition, 0, len(s.predictors))
	for _, c := range types.Conditions {
		if _, ok := s.predictors[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// Fields lists the payload keys a condition reads.
func (s *Service) Fields(c types.Condition) ([]string, error) {
	p, err := s.predictor(c)
	if err != nil {
		return nil, err
	}
	return p.spec.Fields(), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":   s.started,
		"modelDir":  s.modelDir,
		"cacheSize": s.cacheSize,
	}

	if s.started {
		models := make(map[string]interface{}, len(s.predictors))
		for c, p := range s.predictors {
			entry := map[string]interface{}{
				"features": len(p.schema),
				"classes":  p.clf.ClassLabels(),
				"served":   p.served.Load(),
				"rejected": p.rejected.Load(),
				"failed":   p.failed.Load(),
			}
			if cc, ok := p.clf.(*cache.Classifier); ok {
				entry["cached"] = cc.Len()
			}
			models[string(c)] = entry
		}
		stats["models"] = models
	}

	return stats
}
