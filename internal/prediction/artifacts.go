package prediction

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
)

// ArtifactStore reads and writes fitted model artifacts under one directory.
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store rooted at dir.
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Path resolves an artifact file name inside the store.
func (s *ArtifactStore) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

// LoadScaler reads and validates a scaler artifact.
func (s *ArtifactStore) LoadScaler(name string) (*StandardScaler, error) {
	path := s.Path(name)

	var scaler StandardScaler
	if err := readJSON(path, &scaler); err != nil {
		return nil, apperrors.NewModelLoadError("scaler", path, err)
	}
	if err := scaler.Validate(); err != nil {
		return nil, apperrors.NewModelLoadError("scaler", path, err)
	}

	return &scaler, nil
}

// LoadRegressor reads and validates a regressor artifact.
func (s *ArtifactStore) LoadRegressor(name string) (Regressor, error) {
	path := s.Path(name)

	var doc RegressorDocument
	if err := readJSON(path, &doc); err != nil {
		return nil, apperrors.NewModelLoadError("regressor", path, err)
	}

	reg, err := doc.Build()
	if err != nil {
		return nil, apperrors.NewModelLoadError("regressor", path, err)
	}

	return reg, nil
}

// SaveScaler writes a scaler artifact.
func (s *ArtifactStore) SaveScaler(name string, scaler *StandardScaler) error {
	if err := scaler.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid scaler: %w", err)
	}
	return s.writeJSON(name, scaler)
}

// SaveRegressor writes a regressor artifact.
func (s *ArtifactStore) SaveRegressor(name string, reg Regressor) error {
	doc, err := DocumentFor(reg)
	if err != nil {
		return err
	}
	if _, err := doc.Build(); err != nil {
		return fmt.Errorf("refusing to save invalid regressor: %w", err)
	}
	return s.writeJSON(name, doc)
}

func (s *ArtifactStore) writeJSON(name string, v interface{}) error {
	path := s.Path(name)

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create artifact file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode artifact: %w", err)
	}

	return nil
}

func readJSON(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open artifact: %w", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("failed to decode artifact: %w", err)
	}

	return nil
}
