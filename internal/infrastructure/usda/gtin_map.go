package usda

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/foodtrust/backend/internal/domain"
)

// GTINMap resolves GTINs to FoodData Central IDs from a local table, so that
// known products skip the branded search round trip.
type GTINMap struct {
	ids map[string]string
}

var _ domain.FdcResolver = (*GTINMap)(nil)

// NewGTINMap builds a map from gtin -> FDC ID pairs
func NewGTINMap(pairs map[string]string) *GTINMap {
	m := &GTINMap{ids: make(map[string]string, len(pairs))}
	for gtin, id := range pairs {
		if gtin = strings.TrimSpace(gtin); gtin != "" && id != "" {
			m.ids[canonicalGTIN(gtin)] = id
		}
	}
	return m
}

// LoadGTINMap reads a JSON object of gtin -> FDC ID. IDs may be strings or
// numbers. A missing or malformed file is logged and yields an empty map.
func LoadGTINMap(path string, logger *zap.Logger) *GTINMap {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return NewGTINMap(nil)
	}

	pairs, err := readGTINFile(path)
	if err != nil {
		logger.Warn("GTIN map unavailable, using USDA search only", zap.String("path", path), zap.Error(err))
		return NewGTINMap(nil)
	}
	logger.Info("GTIN map loaded", zap.String("path", path), zap.Int("entries", len(pairs)))
	return NewGTINMap(pairs)
}

func readGTINFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		var quoted map[string]string
		if err2 := json.Unmarshal(data, &quoted); err2 != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return quoted, nil
	}

	pairs := make(map[string]string, len(raw))
	for gtin, id := range raw {
		pairs[gtin] = id.String()
	}
	return pairs, nil
}

// Resolve returns the FDC ID for gtin, ignoring leading zero padding
func (m *GTINMap) Resolve(gtin string) (string, bool) {
	id, ok := m.ids[canonicalGTIN(gtin)]
	return id, ok
}

// Len returns the number of mapped GTINs
func (m *GTINMap) Len() int {
	return len(m.ids)
}

func canonicalGTIN(gtin string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(gtin), "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
