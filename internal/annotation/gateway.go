// Package annotation provides species-keyed access to identifier-mapping
// sources and gene-set collections.
package annotation

import (
	"fmt"
	"sort"
)

// GeneSet is one annotated gene set (term) from a catalog collection.
// MemberNames is index-aligned with MemberIDs.
type GeneSet struct {
	TermID      string
	TermName    string
	MemberIDs   []string
	MemberNames []string
}

// Gateway is the capability bundle bound to one species: identifier
// mapping, gene-set collections, and reverse id-to-name lookup.
type Gateway interface {
	// MapIdentifiers maps ids of fromType to toType. Per-id misses are
	// absent from the result; an error means the lookup itself failed.
	MapIdentifiers(ids []string, fromType, toType string) (map[string]string, error)

	// GeneSets returns all gene sets of a collection (e.g. "GO", "KEGG",
	// "MSigDB").
	GeneSets(collection string) ([]GeneSet, error)

	// GeneNames reverse-maps canonical ids to display names. Ids with no
	// known name are absent from the result.
	GeneNames(ids []string) (map[string]string, error)
}

// UnsupportedSpeciesError names a species identifier with no registered
// gateway binding.
type UnsupportedSpeciesError struct {
	Species string
}

func (e *UnsupportedSpeciesError) Error() string {
	return fmt.Sprintf("unsupported species %q: no annotation source registered", e.Species)
}

// Registry maps species identifiers to gateway bindings. Catalogs name
// the same organism differently (e.g. "Homo sapiens", "org.Hs.eg.db",
// "hsa"), so one gateway is typically registered under several keys.
type Registry struct {
	bindings map[string]Gateway
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{bindings: make(map[string]Gateway)}
}

// Register binds a species identifier to a gateway.
func (r *Registry) Register(species string, gw Gateway) {
	r.bindings[species] = gw
}

// Lookup returns the gateway for a species identifier. Unknown keys fail
// with UnsupportedSpeciesError, never an absent value.
func (r *Registry) Lookup(species string) (Gateway, error) {
	gw, ok := r.bindings[species]
	if !ok {
		return nil, &UnsupportedSpeciesError{Species: species}
	}
	return gw, nil
}

// Validate checks at startup that every given species identifier has a
// binding, returning the first unsupported one.
func (r *Registry) Validate(species ...string) error {
	for _, s := range species {
		if _, err := r.Lookup(s); err != nil {
			return err
		}
	}
	return nil
}

// Species returns the registered species identifiers, sorted.
func (r *Registry) Species() []string {
	keys := make([]string, 0, len(r.bindings))
	for k := range r.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
