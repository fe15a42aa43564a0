package annotation

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.duckdb")

	s, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	if err := s.CreateSchema(); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	return s
}

func seedGenes(t *testing.T, s *Store) {
	t.Helper()
	genes := [][3]string{
		{"7157", "TP53", "tumor protein p53"},
		{"3845", "KRAS", "KRAS proto-oncogene"},
		{"672", "BRCA1", "BRCA1 DNA repair associated"},
	}
	for _, g := range genes {
		if err := s.InsertGene(g[0], g[1], g[2]); err != nil {
			t.Fatalf("InsertGene %s: %v", g[0], err)
		}
	}

	aliases := [][3]string{
		{"TP53", "ALIAS", "7157"},
		{"P53", "ALIAS", "7157"},
		{"KRAS", "ALIAS", "3845"},
		{"ENSG00000141510", "ACCNUM", "7157"},
	}
	for _, a := range aliases {
		if err := s.InsertAlias(a[0], a[1], a[2]); err != nil {
			t.Fatalf("InsertAlias %s: %v", a[0], err)
		}
	}
}

func TestStore_MapIdentifiers(t *testing.T) {
	s := newTestStore(t)
	seedGenes(t, s)

	mapped, err := s.MapIdentifiers([]string{"TP53", "KRAS", "UNKNOWN"}, "ALIAS", "ENTREZID")
	if err != nil {
		t.Fatalf("MapIdentifiers: %v", err)
	}
	if len(mapped) != 2 {
		t.Errorf("len(mapped) = %d, want 2", len(mapped))
	}
	if mapped["TP53"] != "7157" {
		t.Errorf("mapped[TP53] = %q, want 7157", mapped["TP53"])
	}
	if _, ok := mapped["UNKNOWN"]; ok {
		t.Error("UNKNOWN should be absent from the result, not defaulted")
	}
}

func TestStore_MapIdentifiersByAccession(t *testing.T) {
	s := newTestStore(t)
	seedGenes(t, s)

	mapped, err := s.MapIdentifiers([]string{"ENSG00000141510"}, "ACCNUM", "ENTREZID")
	if err != nil {
		t.Fatalf("MapIdentifiers: %v", err)
	}
	if mapped["ENSG00000141510"] != "7157" {
		t.Errorf("mapped[ENSG00000141510] = %q, want 7157", mapped["ENSG00000141510"])
	}
}

func TestStore_MapIdentifiersUnsupportedTypeIsStructural(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.MapIdentifiers([]string{"TP53"}, "REFSEQ", "ENTREZID"); err == nil {
		t.Fatal("expected error for unsupported identifier type")
	}
}

func TestStore_GeneSets(t *testing.T) {
	s := newTestStore(t)
	seedGenes(t, s)

	set := GeneSet{
		TermID:      "hsa04110",
		TermName:    "Cell cycle",
		MemberIDs:   []string{"7157", "3845"},
		MemberNames: []string{"TP53", "KRAS"},
	}
	if err := s.InsertGeneSet("KEGG", set); err != nil {
		t.Fatalf("InsertGeneSet: %v", err)
	}

	sets, err := s.GeneSets("KEGG")
	if err != nil {
		t.Fatalf("GeneSets: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("len(sets) = %d, want 1", len(sets))
	}
	got := sets[0]
	if got.TermID != "hsa04110" || got.TermName != "Cell cycle" {
		t.Errorf("set = %+v", got)
	}
	if len(got.MemberIDs) != 2 || got.MemberIDs[0] != "7157" || got.MemberNames[1] != "KRAS" {
		t.Errorf("members = %v / %v", got.MemberIDs, got.MemberNames)
	}

	// Other collections are independent.
	empty, err := s.GeneSets("GO")
	if err != nil {
		t.Fatalf("GeneSets(GO): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("len(GO sets) = %d, want 0", len(empty))
	}
}

func TestStore_GeneNames(t *testing.T) {
	s := newTestStore(t)
	seedGenes(t, s)

	names, err := s.GeneNames([]string{"7157", "672", "99999"})
	if err != nil {
		t.Fatalf("GeneNames: %v", err)
	}
	if names["7157"] != "TP53" || names["672"] != "BRCA1" {
		t.Errorf("names = %v", names)
	}
	if _, ok := names["99999"]; ok {
		t.Error("unknown id should be absent")
	}
}

func TestStore_SpeciesKeys(t *testing.T) {
	s := newTestStore(t)

	for _, k := range []string{"Homo sapiens", "org.Hs.eg.db", "hsa"} {
		if err := s.AddSpeciesKey(k); err != nil {
			t.Fatalf("AddSpeciesKey %s: %v", k, err)
		}
	}

	keys, err := s.SpeciesKeys()
	if err != nil {
		t.Fatalf("SpeciesKeys: %v", err)
	}
	if len(keys) != 3 {
		t.Errorf("len(keys) = %d, want 3", len(keys))
	}
}
