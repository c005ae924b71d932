package usecase

import (
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/reference"
	"github.com/foodtrust/backend/internal/stats"
	"github.com/foodtrust/backend/internal/textnorm"
)

// Classify runs the whole classification pipeline for one raw ingredient
// declaration against idx. It performs no I/O and is safe to call
// concurrently as long as idx is not mutated, which reference.Index never is.
func Classify(raw string, idx *reference.Index) domain.ClassificationResult {
	return classify(raw, func(phrase string) Match {
		return ClassifyPhrase(phrase, idx)
	})
}

// IndexSource supplies the reference index snapshot for a classification.
type IndexSource interface {
	Current() *reference.Index
}

// EngineConfig holds configuration for the classification engine
type EngineConfig struct {
	// PhraseMemoSize bounds the memo of phrase matches; zero disables it.
	PhraseMemoSize int
}

type phraseKey struct {
	generation uint64
	phrase     string
}

// Engine classifies declarations against whatever index its source currently
// publishes, memoizing phrase matches per index generation.
type Engine struct {
	indexes IndexSource
	memo    *lru.Cache[phraseKey, Match]
	stats   stats.Collector
	logger  *zap.Logger
}

// NewEngine creates an engine. Nil collector and logger fall back to no-ops.
func NewEngine(indexes IndexSource, config EngineConfig, collector stats.Collector, logger *zap.Logger) (*Engine, error) {
	if indexes == nil {
		return nil, fmt.Errorf("engine: index source is required")
	}
	if collector == nil {
		collector = stats.NewNoop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	e := &Engine{
		indexes: indexes,
		stats:   collector,
		logger:  logger.Named("engine"),
	}
	if config.PhraseMemoSize > 0 {
		memo, err := lru.New[phraseKey, Match](config.PhraseMemoSize)
		if err != nil {
			return nil, fmt.Errorf("engine: phrase memo: %w", err)
		}
		e.memo = memo
	}
	return e, nil
}

// Index returns the index snapshot the next classification would use.
func (e *Engine) Index() *reference.Index {
	return e.indexes.Current()
}

// Classify classifies raw against the current index snapshot.
func (e *Engine) Classify(raw string) domain.ClassificationResult {
	idx := e.indexes.Current()
	start := time.Now()

	result := classify(raw, func(phrase string) Match {
		return e.matchPhrase(phrase, idx)
	})

	e.stats.IncCounter(stats.MetricClassifications, 1)
	e.stats.ObserveHistogram(stats.MetricClassifySeconds, time.Since(start).Seconds())
	e.logger.Debug("classified ingredients",
		zap.Uint64("generation", idx.Generation()),
		zap.Int("phrases", result.TotalPhrases()),
		zap.Float64("completeness", result.CompletenessScore),
		zap.Int("processing_level", int(result.ProcessingLevel)),
	)
	return result
}

func (e *Engine) matchPhrase(phrase string, idx *reference.Index) Match {
	if e.memo == nil {
		return ClassifyPhrase(phrase, idx)
	}
	key := phraseKey{generation: idx.Generation(), phrase: phrase}
	if m, ok := e.memo.Get(key); ok {
		e.stats.IncCounter(stats.MetricPhraseMemoHits, 1)
		return m
	}
	m := ClassifyPhrase(phrase, idx)
	e.memo.Add(key, m)
	return m
}

// nameList keeps names unique by key, in first-seen order.
type nameList struct {
	seen  map[string]struct{}
	names []string
}

func newNameList() *nameList {
	return &nameList{seen: make(map[string]struct{}), names: []string{}}
}

func (l *nameList) add(key, name string) bool {
	if _, ok := l.seen[key]; ok {
		return false
	}
	l.seen[key] = struct{}{}
	l.names = append(l.names, name)
	return true
}

func classify(raw string, match func(string) Match) domain.ClassificationResult {
	var (
		nonCommon    = newNameList()
		regCommon    = newNameList()
		commonOnly   = newNameList()
		unidentified = newNameList()

		phrases           = []domain.IngredientPhrase{}
		substances        []domain.SubstanceDetail
		unidentifiedCount int
	)

	for _, original := range Segment(textnorm.Clean(raw)) {
		normalized := textnorm.Phrase(original)
		if normalized == "" {
			continue
		}
		m := Match{Category: domain.CategoryUnidentified}
		if key := textnorm.Name(normalized); key != "" {
			m = match(key)
		}
		phrases = append(phrases, domain.IngredientPhrase{
			Original:    original,
			Normalized:  normalized,
			Category:    m.Category,
			MatchedName: m.Name,
		})

		switch m.Category {
		case domain.CategoryRegulatedNonCommon, domain.CategoryRegulatedCommon:
			list := nonCommon
			if m.Category == domain.CategoryRegulatedCommon {
				list = regCommon
			}
			if list.add(m.Substance.Key, m.Name) {
				substances = append(substances, m.Substance.Detail())
			}
		case domain.CategoryCommonOnly:
			commonOnly.add(m.Name, m.Name)
		case domain.CategoryUnidentified:
			unidentifiedCount++
			unidentified.add(normalized, displayPhrase(original))
		}
	}

	counts := CategoryCounts{
		RegulatedNonCommon: len(nonCommon.names),
		RegulatedCommon:    len(regCommon.names),
		CommonOnly:         len(commonOnly.names),
		Unidentified:       len(unidentified.names),
	}
	score, level := Completeness(len(phrases)-unidentifiedCount, len(phrases))
	processing, description := EstimateProcessing(counts)

	return domain.ClassificationResult{
		RegulatedNonCommon:    nonCommon.names,
		RegulatedCommon:       regCommon.names,
		CommonOnly:            commonOnly.names,
		Unidentified:          unidentified.names,
		Phrases:               phrases,
		Substances:            substances,
		CompletenessScore:     score,
		CompletenessLevel:     level,
		ProcessingLevel:       processing,
		ProcessingDescription: description,
		Disclaimer:            domain.ProcessingDisclaimer,
	}
}

func displayPhrase(original string) string {
	return strings.TrimSpace(strings.TrimRight(original, `.,'" `))
}
