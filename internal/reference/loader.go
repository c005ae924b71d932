package reference

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Paths locates the reference datasets. Files ending in .yaml or .yml are
// decoded as YAML, everything else as JSON. An empty path is skipped.
type Paths struct {
	Substances        string
	CommonIngredients string
	CommonRegulated   string
}

// Load reads every dataset named in paths. A missing or malformed file is
// logged and contributes nothing, so the resulting index degrades to
// classifying phrases as unidentified instead of failing startup.
func Load(paths Paths, opts ...Option) Sources {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	logger := o.logger.Named("reference")

	var src Sources
	readDataset(logger, "substances", paths.Substances, &src.Substances)
	readDataset(logger, "common_ingredients", paths.CommonIngredients, &src.CommonIngredients)
	readDataset(logger, "common_regulated", paths.CommonRegulated, &src.CommonRegulated)
	return src
}

// LoadIndex loads the datasets in paths and builds an index from them.
func LoadIndex(paths Paths, opts ...Option) *Index {
	return Build(Load(paths, opts...), opts...)
}

func readDataset[T any](logger *zap.Logger, dataset, path string, dst *[]T) {
	if path == "" {
		return
	}
	if err := DecodeFile(path, dst); err != nil {
		logger.Warn("reference dataset unavailable, loading as empty",
			zap.String("dataset", dataset),
			zap.String("path", path),
			zap.Error(err),
		)
		*dst = nil
		return
	}
	logger.Debug("reference dataset loaded",
		zap.String("dataset", dataset),
		zap.String("path", path),
		zap.Int("records", len(*dst)),
	)
}

// DecodeFile decodes a JSON or YAML file into dst based on its extension.
func DecodeFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, dst)
	default:
		err = json.Unmarshal(data, dst)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
