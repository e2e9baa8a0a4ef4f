// Package artifact reads and writes serialized classifier artifacts.
//
// An artifact is a gob-encoded Envelope. The envelope names the model
// family, the feature columns the model was trained on and the class
// labels; Payload holds the gob encoding of the family's parameters.
package artifact

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/okian/diabetes-predictor/internal/domain/features"
	"github.com/okian/diabetes-predictor/internal/domain/predictor"
)

// Artifact header constants.
const (
	Magic   = "DPMA"
	Version = 1
)

// Model families.
const (
	KindLogistic = "logistic"
	KindTree     = "tree"
	KindForest   = "forest"
	KindCentroid = "centroid"
)

// Envelope is the on-disk representation of an artifact.
type Envelope struct {
	Magic    string
	Version  int
	Kind     string
	Features []string
	Classes  []int
	Payload  []byte
}

// Model is a classifier the codec can serialize.
type Model interface {
	predictor.Classifier
	predictor.Describer
	predictor.Shaped
}

// params is implemented by every model family.
type params interface {
	Model
	validate() error
	setClasses(classes []int)
}

func newParams(kind string) (params, error) {
	switch kind {
	case KindLogistic:
		return &Logistic{}, nil
	case KindTree:
		return &Tree{}, nil
	case KindForest:
		return &Forest{}, nil
	case KindCentroid:
		return &Centroid{}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported model kind %q", ErrDecode, kind)
	}
}

// Load reads the artifact at path. A missing file yields ErrNotFound; any
// other read or decode failure yields ErrDecode.
func Load(ctx context.Context, path string) (Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode reads one artifact from r.
func Decode(r io.Reader) (Model, error) {
	var env Envelope
	if err := gob.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if env.Magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrDecode, env.Magic)
	}
	if env.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrDecode, env.Version)
	}
	if len(env.Features) > 0 && !features.MatchesNames(env.Features) {
		return nil, fmt.Errorf("%w: feature columns %v do not match %v", ErrDecode, env.Features, features.Names)
	}
	if len(env.Classes) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 classes, got %d", ErrDecode, len(env.Classes))
	}
	m, err := newParams(env.Kind)
	if err != nil {
		return nil, err
	}
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(m); err != nil {
		return nil, fmt.Errorf("%w: %s payload: %w", ErrDecode, env.Kind, err)
	}
	m.setClasses(env.Classes)
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, env.Kind, err)
	}
	return m, nil
}

// Encode writes m to w, stamping the current feature column order.
func Encode(w io.Writer, m Model) error {
	return encode(w, m, features.Names[:])
}

func encode(w io.Writer, m Model, cols []string) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(m); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	env := Envelope{
		Magic:    Magic,
		Version:  Version,
		Kind:     m.Kind(),
		Features: cols,
		Classes:  m.Classes(),
		Payload:  payload.Bytes(),
	}
	if err := gob.NewEncoder(w).Encode(env); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}

// Save writes m to path, replacing any existing file.
func Save(path string, m Model) error {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}
