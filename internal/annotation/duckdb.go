package annotation

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/marcboeker/go-duckdb"
)

// Identifier types with a column binding in the store.
var identifierColumns = map[string]string{
	"ALIAS":    "alias",
	"ACCNUM":   "alias",
	"ENTREZID": "entrez_id",
	"SYMBOL":   "symbol",
}

// Store provides gene annotation data from a DuckDB database built by
// `vibe-pathway prepare`. It implements Gateway.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens a DuckDB-backed annotation store.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the annotation store schema.
func (s *Store) CreateSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS species_keys (
			species VARCHAR PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS genes (
			entrez_id VARCHAR PRIMARY KEY,
			symbol VARCHAR,
			description VARCHAR
		);

		CREATE TABLE IF NOT EXISTS gene_aliases (
			alias VARCHAR,
			alias_type VARCHAR,
			entrez_id VARCHAR,
			PRIMARY KEY (alias, alias_type)
		);

		CREATE TABLE IF NOT EXISTS gene_sets (
			collection VARCHAR,
			term_id VARCHAR,
			term_name VARCHAR,
			PRIMARY KEY (collection, term_id)
		);

		CREATE TABLE IF NOT EXISTS gene_set_members (
			collection VARCHAR,
			term_id VARCHAR,
			position INTEGER,
			entrez_id VARCHAR,
			symbol VARCHAR,
			PRIMARY KEY (collection, term_id, position)
		);

		CREATE INDEX IF NOT EXISTS idx_aliases_type ON gene_aliases(alias_type, alias);
		CREATE INDEX IF NOT EXISTS idx_members_term ON gene_set_members(collection, term_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AddSpeciesKey records a species identifier served by this store.
func (s *Store) AddSpeciesKey(species string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO species_keys (species) VALUES (?)`, species)
	return err
}

// SpeciesKeys returns all species identifiers served by this store.
func (s *Store) SpeciesKeys() ([]string, error) {
	rows, err := s.db.Query(`SELECT species FROM species_keys ORDER BY species`)
	if err != nil {
		return nil, fmt.Errorf("query species keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// InsertGene inserts a gene record.
func (s *Store) InsertGene(entrezID, symbol, description string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO genes (entrez_id, symbol, description)
		VALUES (?, ?, ?)
	`, entrezID, symbol, description)
	if err != nil {
		return fmt.Errorf("insert gene: %w", err)
	}
	return nil
}

// InsertAlias inserts one alias row.
func (s *Store) InsertAlias(alias, aliasType, entrezID string) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO gene_aliases (alias, alias_type, entrez_id)
		VALUES (?, ?, ?)
	`, alias, aliasType, entrezID)
	if err != nil {
		return fmt.Errorf("insert alias: %w", err)
	}
	return nil
}

// InsertGeneSet inserts a gene set and its members into a collection.
func (s *Store) InsertGeneSet(collection string, set GeneSet) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO gene_sets (collection, term_id, term_name)
		VALUES (?, ?, ?)
	`, collection, set.TermID, set.TermName)
	if err != nil {
		return fmt.Errorf("insert gene set: %w", err)
	}

	for i, id := range set.MemberIDs {
		name := ""
		if i < len(set.MemberNames) {
			name = set.MemberNames[i]
		}
		_, err := s.db.Exec(`
			INSERT OR REPLACE INTO gene_set_members (collection, term_id, position, entrez_id, symbol)
			VALUES (?, ?, ?, ?, ?)
		`, collection, set.TermID, i, id, name)
		if err != nil {
			return fmt.Errorf("insert gene set member: %w", err)
		}
	}
	return nil
}

// MapIdentifiers maps ids of fromType to toType through the alias table.
// An unsupported identifier type is a structural failure.
func (s *Store) MapIdentifiers(ids []string, fromType, toType string) (map[string]string, error) {
	if _, ok := identifierColumns[fromType]; !ok {
		return nil, fmt.Errorf("unsupported identifier type %q", fromType)
	}
	toCol, ok := identifierColumns[toType]
	if !ok || toCol == "alias" {
		return nil, fmt.Errorf("unsupported target identifier type %q", toType)
	}

	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	query := fmt.Sprintf(`
		SELECT a.alias, g.%s
		FROM gene_aliases a
		JOIN genes g ON g.entrez_id = a.entrez_id
		WHERE a.alias_type = ? AND a.alias IN (%s)
	`, toCol, placeholders(len(ids)))

	args := make([]any, 0, len(ids)+1)
	args = append(args, fromType)
	for _, id := range ids {
		args = append(args, id)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query aliases: %w", err)
	}
	defer rows.Close()

	mapped := make(map[string]string)
	for rows.Next() {
		var alias string
		var target sql.NullString
		if err := rows.Scan(&alias, &target); err != nil {
			return nil, fmt.Errorf("scan alias: %w", err)
		}
		if target.Valid && target.String != "" {
			// First row wins when an alias has several target rows.
			if _, dup := mapped[alias]; !dup {
				mapped[alias] = target.String
			}
		}
	}
	return mapped, rows.Err()
}

// GeneSets returns all gene sets of a collection, members in stored order.
func (s *Store) GeneSets(collection string) ([]GeneSet, error) {
	setRows, err := s.db.Query(`
		SELECT term_id, term_name
		FROM gene_sets
		WHERE collection = ?
		ORDER BY term_id
	`, collection)
	if err != nil {
		return nil, fmt.Errorf("query gene sets: %w", err)
	}
	defer setRows.Close()

	var sets []GeneSet
	for setRows.Next() {
		var set GeneSet
		if err := setRows.Scan(&set.TermID, &set.TermName); err != nil {
			return nil, fmt.Errorf("scan gene set: %w", err)
		}
		sets = append(sets, set)
	}
	if err := setRows.Err(); err != nil {
		return nil, err
	}

	for i := range sets {
		if err := s.loadMembers(collection, &sets[i]); err != nil {
			return nil, err
		}
	}
	return sets, nil
}

// loadMembers loads the member lists of a gene set.
func (s *Store) loadMembers(collection string, set *GeneSet) error {
	rows, err := s.db.Query(`
		SELECT entrez_id, symbol
		FROM gene_set_members
		WHERE collection = ? AND term_id = ?
		ORDER BY position
	`, collection, set.TermID)
	if err != nil {
		return fmt.Errorf("query gene set members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var symbol sql.NullString
		if err := rows.Scan(&id, &symbol); err != nil {
			return fmt.Errorf("scan gene set member: %w", err)
		}
		set.MemberIDs = append(set.MemberIDs, id)
		set.MemberNames = append(set.MemberNames, symbol.String)
	}
	return rows.Err()
}

// GeneNames reverse-maps canonical ids to display symbols.
func (s *Store) GeneNames(ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return map[string]string{}, nil
	}

	query := fmt.Sprintf(`
		SELECT entrez_id, symbol
		FROM genes
		WHERE entrez_id IN (%s)
	`, placeholders(len(ids)))

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query gene names: %w", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id string
		var symbol sql.NullString
		if err := rows.Scan(&id, &symbol); err != nil {
			return nil, fmt.Errorf("scan gene name: %w", err)
		}
		if symbol.Valid && symbol.String != "" {
			names[id] = symbol.String
		}
	}
	return names, rows.Err()
}

// placeholders returns n comma-separated SQL placeholders.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
