package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct{}

func (stubGateway) MapIdentifiers(ids []string, fromType, toType string) (map[string]string, error) {
	return nil, nil
}
func (stubGateway) GeneSets(collection string) ([]GeneSet, error) { return nil, nil }
func (stubGateway) GeneNames(ids []string) (map[string]string, error) {
	return nil, nil
}

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry()
	r.Register("org.Hs.eg.db", stubGateway{})
	r.Register("hsa", stubGateway{})

	gw, err := r.Lookup("hsa")
	require.NoError(t, err)
	assert.NotNil(t, gw)
}

func TestRegistry_UnsupportedSpeciesNamesIdentifier(t *testing.T) {
	r := NewRegistry()
	r.Register("org.Hs.eg.db", stubGateway{})

	_, err := r.Lookup("org.Xx.eg.db")
	require.Error(t, err)

	var unsupported *UnsupportedSpeciesError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "org.Xx.eg.db", unsupported.Species)
	assert.Contains(t, err.Error(), "org.Xx.eg.db")
}

func TestRegistry_Validate(t *testing.T) {
	r := NewRegistry()
	r.Register("Homo sapiens", stubGateway{})
	r.Register("org.Hs.eg.db", stubGateway{})
	r.Register("hsa", stubGateway{})

	require.NoError(t, r.Validate("Homo sapiens", "org.Hs.eg.db", "hsa"))

	err := r.Validate("Homo sapiens", "mmu")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mmu")
}
