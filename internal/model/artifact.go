package model

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// CurrentArtifactVersion is the newest artifact format this build understands.
const CurrentArtifactVersion = 1

// Artifact is the serialized form of an exported model.
type Artifact struct {
	Type          ModelType `json:"type"`
	Version       int       `json:"version"`
	SchemaVersion string    `json:"schema_version,omitempty"`

	// Features lists input columns in the order the model was fit on.
	Features []string `json:"features"`

	// Categories lists the known levels of each categorical feature.
	// Tree models use the level index as the encoded value.
	Categories map[string][]string `json:"categories,omitempty"`

	// Constant, linear and polynomial models.
	Intercept    float64              `json:"intercept,omitempty"`
	Coefficients map[string][]float64 `json:"coefficients,omitempty"`

	// CategoryWeights holds one-hot weights of categorical features for additive models.
	CategoryWeights map[string]map[string]float64 `json:"category_weights,omitempty"`

	// Tree ensembles.
	BaseScore    float64 `json:"base_score,omitempty"`
	LearningRate float64 `json:"learning_rate,omitempty"`
	Trees        []Tree  `json:"trees,omitempty"`

	// FeatureImportances is aligned with Features. Optional.
	FeatureImportances []float64 `json:"feature_importances,omitempty"`
}

// Tree is a binary regression tree stored as a flat node list; node 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Node is a split or a leaf. Split nodes send x[Feature] <= Threshold to Left.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      int     `json:"left,omitempty"`
	Right     int     `json:"right,omitempty"`
	Gain      float64 `json:"gain,omitempty"`
}

// Validate checks the structural parts common to all model types.
func (a *Artifact) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("unknown model type: %s", a.Type)
	}
	if a.Version > CurrentArtifactVersion {
		return fmt.Errorf("artifact version %d is newer than supported version %d", a.Version, CurrentArtifactVersion)
	}
	if len(a.Features) == 0 {
		return fmt.Errorf("artifact has no features")
	}

	seen := make(map[string]bool, len(a.Features))
	for _, f := range a.Features {
		if f == "" {
			return fmt.Errorf("artifact has an empty feature name")
		}
		if seen[f] {
			return fmt.Errorf("duplicate feature %q", f)
		}
		seen[f] = true
	}

	for name := range a.Categories {
		if !seen[name] {
			return fmt.Errorf("categories given for unknown feature %q", name)
		}
	}

	if len(a.FeatureImportances) > 0 && len(a.FeatureImportances) != len(a.Features) {
		return fmt.Errorf("feature_importances has %d values for %d features",
			len(a.FeatureImportances), len(a.Features))
	}

	return nil
}

// Decode reads an artifact and builds its predictor.
func Decode(r io.Reader) (Predictor, error) {
	var a Artifact
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}
	return New(&a)
}

// Load reads a model artifact from disk.
func Load(path string) (Predictor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer file.Close()

	p, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Save writes an artifact to path atomically through a temp file.
func Save(path string, a *Artifact) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create model directory: %w", err)
	}

	tempPath := path + ".tmp"
	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(a); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode model artifact: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Info describes an artifact file on disk.
type Info struct {
	Exists    bool      `json:"exists"`
	Path      string    `json:"path"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Stat returns information about the artifact at path.
func Stat(path string) Info {
	info := Info{Path: path}

	stat, err := os.Stat(path)
	if err != nil {
		return info
	}

	info.Exists = true
	info.Size = stat.Size()
	info.UpdatedAt = stat.ModTime()
	return info
}
