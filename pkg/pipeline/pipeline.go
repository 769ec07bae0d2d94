// Package pipeline scales features and chains the scaler with a classifier
// into a unit that is fitted, persisted and applied as one.
package pipeline

import (
	"fmt"
	"log/slog"
	"slices"

	"cancerml/pkg/data"
	"cancerml/pkg/dataprep"
	"cancerml/pkg/model"
)

// Output file names.
const (
	ScaledTrainFile  = "scaled_cancer_train.csv"
	ScaledTestFile   = "scaled_cancer_test.csv"
	PreprocessorFile = "cancer_preprocessor.json"
	PipelineFile     = "cancer_pipeline.json"
)

// Preprocess fits a ColumnScaler on train, writes both scaled datasets to
// dataTo and the fitted scaler to preprocessorTo.
func Preprocess(train, test *data.Dataset, dataTo, preprocessorTo string, logger *slog.Logger) (*ColumnScaler, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if train == nil || test == nil {
		return nil, fmt.Errorf("%w: train and test datasets are required", data.ErrInvalidInput)
	}
	scaler := NewColumnScaler()
	scaledTrain, err := scaler.FitTransform(train)
	if err != nil {
		return nil, fmt.Errorf("scale train: %w", err)
	}
	scaledTest, err := scaler.Transform(test)
	if err != nil {
		return nil, fmt.Errorf("scale test: %w", err)
	}
	logger.Debug("fitted preprocessor", slog.Int("numeric_columns", len(scaler.Numeric)))

	for _, out := range []struct {
		ds   *data.Dataset
		name string
	}{{scaledTrain, ScaledTrainFile}, {scaledTest, ScaledTestFile}} {
		path, err := data.WriteCSV(out.ds, dataTo, out.name)
		if err != nil {
			return nil, err
		}
		logger.Info("wrote scaled data", slog.String("path", path), slog.Int("rows", out.ds.Len()))
	}
	path, err := SaveScaler(scaler, preprocessorTo, PreprocessorFile)
	if err != nil {
		return nil, err
	}
	logger.Info("wrote preprocessor", slog.String("path", path))
	return scaler, nil
}

// Pipeline scales the features of a dataset and classifies each row as the
// positive or the negative label.
type Pipeline struct {
	Label    string        `json:"label"`
	Positive string        `json:"positive"`
	Negative string        `json:"negative"`
	Scaler   *ColumnScaler `json:"preprocessor"`
	Model    *model.KNN    `json:"model"`
}

// New returns an unfitted pipeline.
func New(scaler *ColumnScaler, m *model.KNN, label, positive string) *Pipeline {
	return &Pipeline{Label: label, Positive: positive, Scaler: scaler, Model: m}
}

// Fit fits the scaler and the model on ds, whose label column must hold the
// positive label and at most one other.
func (p *Pipeline) Fit(ds *data.Dataset) error {
	X, labels, err := p.split(ds)
	if err != nil {
		return err
	}
	classes := slices.Compact(slices.Sorted(slices.Values(labels)))
	negatives := slices.DeleteFunc(slices.Clone(classes), func(c string) bool { return c == p.Positive })
	if len(negatives) > 1 {
		return fmt.Errorf("%w: label %q has more than two classes %v", data.ErrInvalidInput, p.Label, classes)
	}
	p.Negative = ""
	if len(negatives) == 1 {
		p.Negative = negatives[0]
	}

	if err := p.Scaler.Fit(X); err != nil {
		return fmt.Errorf("fit preprocessor: %w", err)
	}
	features, err := p.Scaler.Features(X)
	if err != nil {
		return err
	}
	return p.Model.Fit(features, dataprep.BinaryEncode(labels, p.Positive))
}

// Predict labels every row of ds. A label column, if present, is ignored.
func (p *Pipeline) Predict(ds *data.Dataset) ([]string, error) {
	X, err := p.features(ds)
	if err != nil {
		return nil, err
	}
	codes, err := p.Model.Predict(X)
	if err != nil {
		return nil, err
	}
	return dataprep.BinaryDecode(codes, p.Positive, p.Negative), nil
}

// Score evaluates the pipeline on a labelled dataset.
func (p *Pipeline) Score(ds *data.Dataset, beta float64) (model.Metrics, error) {
	X, labels, err := p.split(ds)
	if err != nil {
		return model.Metrics{}, err
	}
	features, err := p.Scaler.Features(X)
	if err != nil {
		return model.Metrics{}, err
	}
	return model.Evaluate(p.Model, features, dataprep.BinaryEncode(labels, p.Positive), beta)
}

// Save writes the pipeline as JSON to dir/filename and returns the path.
func (p *Pipeline) Save(dir, filename string) (string, error) {
	return writeJSON(p, dir, filename)
}

// LoadPipeline reads a pipeline written by Save.
func LoadPipeline(path string) (*Pipeline, error) {
	var p Pipeline
	if err := readJSON(path, "pipeline", &p); err != nil {
		return nil, err
	}
	if p.Scaler == nil || p.Model == nil {
		return nil, fmt.Errorf("%w: pipeline %s is missing its preprocessor or model", data.ErrInvalidInput, path)
	}
	return &p, nil
}

// split separates the label column from the features.
func (p *Pipeline) split(ds *data.Dataset) (*data.Dataset, []string, error) {
	if ds == nil {
		return nil, nil, fmt.Errorf("%w: dataset must not be nil", data.ErrInvalidInput)
	}
	labels, err := ds.Column(p.Label)
	if err != nil {
		return nil, nil, fmt.Errorf("label: %w", err)
	}
	X, err := ds.Drop(p.Label)
	if err != nil {
		return nil, nil, err
	}
	return X, labels, nil
}

func (p *Pipeline) features(ds *data.Dataset) ([][]float64, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset must not be nil", data.ErrInvalidInput)
	}
	if ds.HasColumn(p.Label) {
		var err error
		if ds, err = ds.Drop(p.Label); err != nil {
			return nil, err
		}
	}
	return p.Scaler.Features(ds)
}
