// Package modelstore persists fitted regression trees in a blob store.
//
// A stored model is a versioned envelope holding the hyper-parameters, the
// number of features and the pre-order node list of the tree. The envelope
// is encoded with gob or JSON, optionally compressed with LZ4 or zstd, and
// written under "<name>.scitree".
//
//	blobs, _ := modelstore.NewLocalStore("models")
//	store := modelstore.NewStore(blobs, modelstore.WithCodec(modelstore.CodecZstd))
//	if err := store.Save(ctx, "housing", reg); err != nil {
//	    return err
//	}
//	reg, err := store.Load(ctx, "housing")
package modelstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/YuminosukeSato/scitree/core/model"
	"github.com/YuminosukeSato/scitree/pkg/errors"
	"github.com/YuminosukeSato/scitree/pkg/log"
	"github.com/YuminosukeSato/scitree/sklearn/tree"
)

// FormatVersion is the envelope version written by this package.
const FormatVersion = 1

const (
	blobSuffix = ".scitree"
	modelName  = "DecisionTreeRegressor"
)

// Format is the serialisation of the envelope. It is the first byte of the
// decompressed payload.
type Format uint8

const (
	// FormatGob encodes the envelope with encoding/gob.
	FormatGob Format = 1
	// FormatJSON encodes the envelope as a scikit-learn style JSON document.
	FormatJSON Format = 2
)

func (f Format) String() string {
	switch f {
	case FormatGob:
		return "gob"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// envelope is the stored representation of a fitted tree.
type envelope struct {
	Version   int             `json:"version"`
	NFeatures int             `json:"n_features"`
	Config    tree.Config     `json:"config"`
	Nodes     []tree.FlatNode `json:"nodes"`
	SavedAt   time.Time       `json:"saved_at"`
}

func newEnvelope(t *tree.Tree) *envelope {
	return &envelope{
		Version:   FormatVersion,
		NFeatures: t.NFeatures,
		Config:    t.Config,
		Nodes:     t.Flatten(),
		SavedAt:   time.Now().UTC(),
	}
}

// Marshal encodes a fitted tree into a self-describing blob.
func Marshal(t *tree.Tree, format Format, codec Codec) ([]byte, error) {
	return marshalEnvelope(newEnvelope(t), format, codec)
}

func marshalEnvelope(env *envelope, format Format, codec Codec) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(byte(format))
	switch format {
	case FormatGob:
		if err := model.SaveModelToWriter(env, &buf); err != nil {
			return nil, errors.Wrap(err, "modelstore.Marshal")
		}
	case FormatJSON:
		if err := model.WriteSKLearnModel(&buf, modelName, fmt.Sprint(FormatVersion), env); err != nil {
			return nil, errors.Wrap(err, "modelstore.Marshal")
		}
	default:
		return nil, errors.NewValidationError("format", "must be gob or json", format)
	}
	return compress(buf.Bytes(), codec)
}

// Unmarshal decodes a blob written by Marshal.
func Unmarshal(blob []byte) (*tree.Tree, error) {
	payload, err := decompress(blob)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, errors.NewValueError("modelstore.Unmarshal", "empty payload")
	}

	var env envelope
	r := bytes.NewReader(payload[1:])
	switch Format(payload[0]) {
	case FormatGob:
		if err := model.LoadModelFromReader(&env, r); err != nil {
			return nil, errors.Wrap(err, "modelstore.Unmarshal")
		}
	case FormatJSON:
		if _, err := model.ReadSKLearnModel(r, modelName, &env); err != nil {
			return nil, errors.Wrap(err, "modelstore.Unmarshal")
		}
	default:
		return nil, errors.NewValueError("modelstore.Unmarshal", fmt.Sprintf("unknown format byte %d", payload[0]))
	}

	return fromEnvelope(&env)
}

// SaveFile writes the fitted tree of reg to path as an uncompressed gob
// envelope, outside of any blob store.
func SaveFile(path string, reg *tree.DecisionTreeRegressor) error {
	if !reg.IsFitted() {
		return errors.NewNotFittedError(modelName, "SaveFile")
	}
	if err := model.SaveModel(newEnvelope(reg.Tree()), path); err != nil {
		return errors.Wrapf(err, "modelstore: save %s", path)
	}
	return nil
}

// LoadFile reads a regressor written by SaveFile.
func LoadFile(path string, opts ...tree.Option) (*tree.DecisionTreeRegressor, error) {
	var env envelope
	if err := model.LoadModel(&env, path); err != nil {
		return nil, errors.Wrapf(err, "modelstore: load %s", path)
	}
	t, err := fromEnvelope(&env)
	if err != nil {
		return nil, errors.Wrapf(err, "modelstore: load %s", path)
	}
	return tree.FromTree(t, opts...), nil
}

func fromEnvelope(env *envelope) (*tree.Tree, error) {
	if env.Version != FormatVersion {
		return nil, errors.NewValueError("modelstore.Unmarshal",
			fmt.Sprintf("unsupported format version %d, want %d", env.Version, FormatVersion))
	}
	if err := env.Config.Validate(); err != nil {
		return nil, err
	}
	return tree.Unflatten(env.Nodes, env.NFeatures, env.Config)
}

// Store saves and loads regressors by name.
type Store struct {
	blobs  BlobStore
	format Format
	codec  Codec
	logger log.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects gob (default) or JSON encoding.
func WithFormat(f Format) Option {
	return func(s *Store) { s.format = f }
}

// WithCodec selects the compression codec. The default is CodecNone.
func WithCodec(c Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithLogger replaces the store logger.
func WithLogger(l log.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store on top of blobs.
func NewStore(blobs BlobStore, opts ...Option) *Store {
	s := &Store{blobs: blobs, format: FormatGob, codec: CodecNone}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("modelstore")
	}
	return s
}

func blobName(name string) (string, error) {
	if name == "" || strings.HasSuffix(name, "/") {
		return "", errors.NewValidationError("name", "must be a non-empty model name", name)
	}
	return name + blobSuffix, nil
}

// Save stores the fitted tree of reg under name, replacing any previous
// model with that name.
func (s *Store) Save(ctx context.Context, name string, reg *tree.DecisionTreeRegressor) error {
	if !reg.IsFitted() {
		return errors.NewNotFittedError(modelName, "Save")
	}
	key, err := blobName(name)
	if err != nil {
		return err
	}

	blob, err := Marshal(reg.Tree(), s.format, s.codec)
	if err != nil {
		return err
	}
	if err := s.blobs.Put(ctx, key, blob); err != nil {
		s.logger.Error("Save failed", err, log.OperationKey, log.OperationSave, log.SourceKey, key)
		return err
	}

	s.logger.Info("Model saved",
		log.OperationKey, log.OperationSave,
		log.SourceKey, key,
		log.DataSizeKey, len(blob),
		"codec", s.codec.String(),
		"format", s.format.String(),
	)
	return nil
}

// Load restores the regressor saved under name. A missing model yields an
// error satisfying errors.Is(err, ErrNotFound).
func (s *Store) Load(ctx context.Context, name string, opts ...tree.Option) (*tree.DecisionTreeRegressor, error) {
	key, err := blobName(name)
	if err != nil {
		return nil, err
	}
	blob, err := s.blobs.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	t, err := Unmarshal(blob)
	if err != nil {
		return nil, errors.Wrapf(err, "modelstore: load %q", name)
	}

	s.logger.Info("Model loaded",
		log.OperationKey, log.OperationLoad,
		log.SourceKey, key,
		log.DataSizeKey, len(blob),
		log.NodesKey, t.NNodes(),
	)
	return tree.FromTree(t, opts...), nil
}

// List returns the sorted names of the stored models.
func (s *Store) List(ctx context.Context) ([]string, error) {
	keys, err := s.blobs.List(ctx, "")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, k := range keys {
		if name, ok := strings.CutSuffix(k, blobSuffix); ok {
			names = append(names, name)
		}
	}
	return names, nil
}

// Delete removes the model saved under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	key, err := blobName(name)
	if err != nil {
		return err
	}
	return s.blobs.Delete(ctx, key)
}
