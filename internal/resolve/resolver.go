// Package resolve maps raw gene names and accessions to canonical
// identifiers usable by annotation sources.
package resolve

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
)

// Identifier types understood by the annotation gateway's mapping source.
const (
	TypeAlias     = "ALIAS"
	TypeAccession = "ACCNUM"
	TypeEntrez    = "ENTREZID"
	TypeSymbol    = "SYMBOL"
)

// Strategy records which resolution attempt produced a mapping.
type Strategy string

const (
	StrategyAlias           Strategy = "ALIAS"
	StrategyEnsemblStripped Strategy = "ENSEMBL_STRIPPED"
)

// Mapping is one resolved identifier. A raw input with no match produces
// no Mapping at all; it is dropped, never defaulted.
type Mapping struct {
	From     string
	To       string
	Strategy Strategy
}

// Mapper is the identifier-mapping capability of the annotation gateway.
// A returned error indicates the lookup itself failed structurally;
// per-identifier misses are simply absent from the result map.
type Mapper interface {
	MapIdentifiers(ids []string, fromType, toType string) (map[string]string, error)
}

// versionSuffix matches trailing ".<version>" on versioned accessions
// such as ENSG00000141510.4.
var versionSuffix = regexp.MustCompile(`\.\d+$`)

// Resolver resolves raw gene names with a single fallback level: inputs
// are first treated as alias-style symbols; if that attempt fails
// structurally they are re-resolved as version-stripped accessions.
type Resolver struct {
	mapper Mapper
	logger *zap.Logger
}

// NewResolver creates a resolver backed by the given mapper.
func NewResolver(m Mapper) *Resolver {
	return &Resolver{
		mapper: m,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for fallback and drop messages.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Resolve maps raw names to canonical identifiers, preserving input
// order. When several raw inputs collide on the same canonical id, only
// the first-encountered input's mapping is kept.
func (r *Resolver) Resolve(names []string) ([]Mapping, error) {
	mapped, aliasErr := r.mapper.MapIdentifiers(names, TypeAlias, TypeEntrez)
	if aliasErr == nil {
		return r.collect(names, names, mapped, StrategyAlias), nil
	}

	// Structural failure of the alias attempt. Strip version suffixes
	// and re-resolve by accession type. This is the only fallback level.
	r.logger.Warn("alias resolution failed structurally, retrying as versioned accessions",
		zap.Error(aliasErr))

	stripped := make([]string, len(names))
	for i, name := range names {
		stripped[i] = StripVersion(name)
	}

	mapped, accErr := r.mapper.MapIdentifiers(stripped, TypeAccession, TypeEntrez)
	if accErr != nil {
		return nil, fmt.Errorf("identifier resolution failed: alias attempt: %v; accession attempt: %w", aliasErr, accErr)
	}

	return r.collect(names, stripped, mapped, StrategyEnsemblStripped), nil
}

// collect builds mappings in input order, dropping unmatched inputs and
// deduplicating canonical-id collisions first-wins.
func (r *Resolver) collect(names, queried []string, mapped map[string]string, strategy Strategy) []Mapping {
	seen := make(map[string]struct{}, len(mapped))
	var mappings []Mapping

	for i, name := range names {
		canonical, ok := mapped[queried[i]]
		if !ok || canonical == "" {
			continue
		}
		if _, dup := seen[canonical]; dup {
			r.logger.Debug("dropping duplicate mapping",
				zap.String("from", name),
				zap.String("to", canonical))
			continue
		}
		seen[canonical] = struct{}{}
		mappings = append(mappings, Mapping{
			From:     name,
			To:       canonical,
			Strategy: strategy,
		})
	}

	return mappings
}

// StripVersion removes a trailing ".<version>" suffix from an accession.
func StripVersion(name string) string {
	return versionSuffix.ReplaceAllString(name, "")
}
