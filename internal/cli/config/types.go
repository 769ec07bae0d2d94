// Package config provides configuration management for the cancerml CLI.
package config

// Defaults.
const (
	DefaultConfigFile    = "cancerml.yaml"
	DefaultStateFile     = ".cancerml/state.db"
	DefaultSeed          = 123
	DefaultLogFormat     = "text"
	DefaultLabelColumn   = "diagnosis"
	DefaultPositiveLabel = "Malignant"
	DefaultTrainSize     = 0.7
)

// Config holds all CLI configuration options.
type Config struct {
	Seed          int64       `koanf:"seed"`
	Verbose       bool        `koanf:"verbose"`
	LogFormat     string      `koanf:"log_format"`
	StatePath     string      `koanf:"state_path"` // empty disables the run ledger
	LabelColumn   string      `koanf:"label_column"`
	PositiveLabel string      `koanf:"positive_label"`
	TrainSize     float64     `koanf:"train_size"`
	Split         SplitConfig `koanf:"split"`
	Tune          TuneConfig  `koanf:"tune"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

// SplitConfig holds the split check thresholds.
type SplitConfig struct {
	MinSizeRatio    float64 `koanf:"min_size_ratio"`
	MaxLabelDrift   float64 `koanf:"max_label_drift"`
	MaxFeatureDrift float64 `koanf:"max_feature_drift"`
}

// TuneConfig holds the grid search settings.
type TuneConfig struct {
	KMin    int     `koanf:"k_min"`
	KMax    int     `koanf:"k_max"`
	KStep   int     `koanf:"k_step"`
	Folds   int     `koanf:"folds"`
	Beta    float64 `koanf:"beta"`
	Workers int     `koanf:"workers"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Seed:          DefaultSeed,
		LogFormat:     DefaultLogFormat,
		StatePath:     DefaultStateFile,
		LabelColumn:   DefaultLabelColumn,
		PositiveLabel: DefaultPositiveLabel,
		TrainSize:     DefaultTrainSize,
		Split: SplitConfig{
			MinSizeRatio:    0.2,
			MaxLabelDrift:   0.4,
			MaxFeatureDrift: 0.4,
		},
		Tune: TuneConfig{
			KMin:  1,
			KMax:  99,
			KStep: 3,
			Folds: 30,
			Beta:  2,
		},
	}
}

func defaultsMap() map[string]any {
	d := Default()
	return map[string]any{
		"seed":                    d.Seed,
		"verbose":                 d.Verbose,
		"log_format":              d.LogFormat,
		"state_path":              d.StatePath,
		"label_column":            d.LabelColumn,
		"positive_label":          d.PositiveLabel,
		"train_size":              d.TrainSize,
		"split.min_size_ratio":    d.Split.MinSizeRatio,
		"split.max_label_drift":   d.Split.MaxLabelDrift,
		"split.max_feature_drift": d.Split.MaxFeatureDrift,
		"tune.k_min":              d.Tune.KMin,
		"tune.k_max":              d.Tune.KMax,
		"tune.k_step":             d.Tune.KStep,
		"tune.folds":              d.Tune.Folds,
		"tune.beta":               d.Tune.Beta,
		"tune.workers":            d.Tune.Workers,
	}
}
