// Package reference builds the read-only dictionaries that ingredient phrases
// are matched against: the regulated-substance alias map and the
// common-ingredient set.
package reference

import (
	"sort"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/textnorm"
)

// SubstanceRecord is one regulated-substance row of the reference dataset.
type SubstanceRecord struct {
	Name       string   `json:"Substance Name (Heading)" yaml:"name"`
	Substance  string   `json:"Substance" yaml:"substance"`
	OtherNames []string `json:"Other Names" yaml:"other_names"`
	UsedFor    string   `json:"Used for (Technical Effect)" yaml:"used_for"`
	CASNumber  string   `json:"CAS Reg No (or other ID)" yaml:"cas_number"`
}

// Sources is the raw input of Build.
type Sources struct {
	Substances        []SubstanceRecord
	CommonIngredients []string
	// CommonRegulated names regulated substances that are everyday foods even
	// when the common-ingredient list spells them differently.
	CommonRegulated []string
}

// Substance is a regulated substance as held by the index.
type Substance struct {
	Key              string
	Name             string
	Aliases          []string
	Common           bool
	Effects          []domain.TechnicalEffect
	EffectCategories []string
	OtherNames       []string
	CASNumber        string
}

// Detail returns the display form of the substance.
func (s *Substance) Detail() domain.SubstanceDetail {
	return domain.SubstanceDetail{
		Name:             s.Name,
		Common:           s.Common,
		EffectCategories: s.EffectCategories,
		Effects:          s.Effects,
		OtherNames:       s.OtherNames,
		CASNumber:        s.CASNumber,
	}
}

// Collision records an alias that two substances both claimed.
// The later registration (Winner) replaced the earlier one (Loser).
type Collision struct {
	Alias  string `json:"alias"`
	Loser  string `json:"loser"`
	Winner string `json:"winner"`
}

// Index is immutable once Build returns; all methods are safe for concurrent use.
type Index struct {
	generation uint64

	aliases    map[string]string
	substances map[string]*Substance
	common     map[string]string
	collisions []Collision
}

var generations atomic.Uint64

// Build constructs an index from the given sources. Records without a
// canonical name are skipped. Alias collisions resolve last-registration-wins
// and are logged at warn level.
func Build(src Sources, opts ...Option) *Index {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	logger := o.logger.Named("reference")

	idx := &Index{
		generation: generations.Add(1),
		aliases:    make(map[string]string),
		substances: make(map[string]*Substance),
		common:     make(map[string]string),
	}

	for _, rec := range src.Substances {
		idx.addSubstance(rec, logger)
	}

	for _, name := range src.CommonIngredients {
		key := textnorm.Name(name)
		if key == "" {
			continue
		}
		idx.common[key] = name
	}

	for key, s := range idx.substances {
		if _, ok := idx.common[key]; ok {
			s.Common = true
		}
	}
	for _, name := range src.CommonRegulated {
		key := textnorm.Name(name)
		if canonical, ok := idx.aliases[key]; ok {
			key = canonical
		}
		if s, ok := idx.substances[key]; ok {
			s.Common = true
		} else if key != "" {
			logger.Debug("common-regulated entry matches no substance", zap.String("name", name))
		}
	}

	for _, s := range idx.substances {
		sort.Strings(s.Aliases)
	}

	logger.Info("reference index built",
		zap.Uint64("generation", idx.generation),
		zap.Int("substances", len(idx.substances)),
		zap.Int("aliases", len(idx.aliases)),
		zap.Int("common_ingredients", len(idx.common)),
		zap.Int("collisions", len(idx.collisions)),
	)
	return idx
}

func (idx *Index) addSubstance(rec SubstanceRecord, logger *zap.Logger) {
	key := textnorm.Name(rec.Name)
	if key == "" {
		return
	}

	effects, categories := ParseEffects(rec.UsedFor)
	s, ok := idx.substances[key]
	if !ok {
		s = &Substance{Key: key}
		idx.substances[key] = s
	}
	s.Name = rec.Name
	s.Effects = effects
	s.EffectCategories = categories
	s.OtherNames = rec.OtherNames
	s.CASNumber = rec.CASNumber

	names := make([]string, 0, len(rec.OtherNames)+4)
	names = append(names, rec.Name, rec.Substance, key)
	names = append(names, rec.OtherNames...)
	names = append(names, curatedAliases(key)...)

	for _, name := range names {
		alias := textnorm.Name(name)
		if alias == "" {
			continue
		}
		prev, exists := idx.aliases[alias]
		if exists && prev == key {
			continue
		}
		if exists {
			idx.collisions = append(idx.collisions, Collision{Alias: alias, Loser: prev, Winner: key})
			logger.Warn("alias collision, last registration wins",
				zap.String("alias", alias),
				zap.String("previous", prev),
				zap.String("current", key),
			)
			idx.substances[prev].removeAlias(alias)
		}
		idx.aliases[alias] = key
		s.Aliases = append(s.Aliases, alias)
	}
}

func (s *Substance) removeAlias(alias string) {
	for i, a := range s.Aliases {
		if a == alias {
			s.Aliases = append(s.Aliases[:i], s.Aliases[i+1:]...)
			return
		}
	}
}

// Generation identifies this index among all indexes built by the process.
func (idx *Index) Generation() uint64 { return idx.generation }

// LookupAlias resolves a normalized alias to its substance.
func (idx *Index) LookupAlias(alias string) (*Substance, bool) {
	key, ok := idx.aliases[alias]
	if !ok {
		return nil, false
	}
	return idx.substances[key], true
}

// LookupCommon resolves a normalized name to its preferred display casing.
func (idx *Index) LookupCommon(name string) (string, bool) {
	display, ok := idx.common[name]
	return display, ok
}

// IsCommonRegulated reports whether the canonical key names a regulated
// substance that is also an everyday food.
func (idx *Index) IsCommonRegulated(key string) bool {
	s, ok := idx.substances[key]
	return ok && s.Common
}

// Substance returns the substance stored under a canonical key.
func (idx *Index) Substance(key string) (*Substance, bool) {
	s, ok := idx.substances[key]
	return s, ok
}

// Collisions returns a copy of the alias collisions seen during Build.
func (idx *Index) Collisions() []Collision {
	out := make([]Collision, len(idx.collisions))
	copy(out, idx.collisions)
	return out
}

// Stats summarizes the index size.
type Stats struct {
	Generation        uint64 `json:"generation"`
	Substances        int    `json:"substances"`
	Aliases           int    `json:"aliases"`
	CommonIngredients int    `json:"commonIngredients"`
	CommonRegulated   int    `json:"commonRegulated"`
	Collisions        int    `json:"collisions"`
}

func (idx *Index) Stats() Stats {
	st := Stats{
		Generation:        idx.generation,
		Substances:        len(idx.substances),
		Aliases:           len(idx.aliases),
		CommonIngredients: len(idx.common),
		Collisions:        len(idx.collisions),
	}
	for _, s := range idx.substances {
		if s.Common {
			st.CommonRegulated++
		}
	}
	return st
}

// Empty returns an index with no entries.
func Empty() *Index {
	return Build(Sources{})
}
