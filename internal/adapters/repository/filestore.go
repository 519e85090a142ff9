package repository

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/okian/enhealth/internal/domain/model"
	"github.com/okian/enhealth/pkg/logger"
	"github.com/okian/enhealth/pkg/metrics"
)

//go:embed artifact.schema.json
var artifactSchema []byte

const artifactSchemaURL = "enhealth://artifact.schema.json"

// FileStore loads YAML or JSON artifacts from a directory.
type FileStore struct {
	dir    string
	schema *jsonschema.Schema
	logger logger.Logger
}

// NewFileStore compiles the artifact schema and applies opts.
func NewFileStore(opts ...Option) (*FileStore, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(artifactSchema))
	if err != nil {
		return nil, fmt.Errorf("parse artifact schema: %w", err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(artifactSchemaURL, doc); err != nil {
		return nil, fmt.Errorf("add artifact schema: %w", err)
	}
	compiled, err := c.Compile(artifactSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile artifact schema: %w", err)
	}

	s := &FileStore{schema: compiled}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load reads the artifact at name, checks it against the artifact schema and
// builds its classifier.
func (s *FileStore) Load(ctx context.Context, name string) (model.Classifier, error) {
	path := resolve(s.dir, name)

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		metrics.RecordModelLoadError()
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadArtifact, path, err)
	}

	if err := s.validate(k.Raw()); err != nil {
		metrics.RecordModelLoadError()
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}

	var a model.Artifact
	if err := k.UnmarshalWithConf("", &a, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		metrics.RecordModelLoadError()
		return nil, fmt.Errorf("%w: %s: %v", ErrLoadArtifact, path, err)
	}

	clf, err := a.Classifier()
	if err != nil {
		metrics.RecordModelLoadError()
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, path, err)
	}

	if s.logger != nil {
		s.logger.Info(ctx, "model artifact loaded",
			logger.String("path", path),
			logger.String("kind", a.Kind),
			logger.Int("features", len(a.FeatureNames)),
			logger.Any("classes", a.Classes),
		)
	}
	return clf, nil
}

// validate round-trips the decoded document through JSON so the validator sees
// plain JSON values regardless of the source format.
func (s *FileStore) validate(raw map[string]interface{}) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return err
	}
	return s.schema.Validate(inst)
}
