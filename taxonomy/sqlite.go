// seqannot: a tool for annotating mmCIF structure records with reference
// sequence alignments and source organism taxonomies.
// Copyright (c) 2024-2026 structbio.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/structbio/seqannot/blob/master/LICENSE.txt>.

package taxonomy

import (
	"database/sql"
	"log"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// maxMergeHops bounds merged-identifier chains so that a cyclic merged
// table cannot hang canonicalization.
const maxMergeHops = 10

// maxLineageDepth bounds parent walks so that a cyclic nodes table
// cannot hang lineage assembly.
const maxLineageDepth = 100

// A DB is a Service backed by the SQLite resource written by
// ImportTaxdump. It is safe for concurrent use.
type DB struct {
	db *sql.DB
}

// OpenDB opens the taxonomy resource at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close closes the underlying database handle.
func (t *DB) Close() error {
	return t.db.Close()
}

// MergedID implements Service. Chained merges are followed to their
// final successor, so canonicalization is idempotent.
func (t *DB) MergedID(taxID int) int {
	for hop := 0; hop < maxMergeHops; hop++ {
		var next int
		err := t.db.QueryRow(`SELECT new_id FROM merged WHERE old_id = ?`, taxID).Scan(&next)
		if err == sql.ErrNoRows {
			return taxID
		}
		if err != nil {
			log.Printf("Error canonicalizing taxId %v: %v", taxID, err)
			return taxID
		}
		taxID = next
	}
	log.Printf("Merged taxId chain too long for taxId %v", taxID)
	return taxID
}

// ScientificName implements Service.
func (t *DB) ScientificName(taxID int) string {
	var name string
	err := t.db.QueryRow(`SELECT name FROM names WHERE tax_id = ? AND class = 'scientific name'`, taxID).Scan(&name)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error fetching scientific name for taxId %v: %v", taxID, err)
		}
		return ""
	}
	return name
}

func (t *DB) parent(taxID int) (parentID, depth int, ok bool) {
	err := t.db.QueryRow(`SELECT parent_id, depth FROM nodes WHERE tax_id = ?`, taxID).Scan(&parentID, &depth)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error fetching node for taxId %v: %v", taxID, err)
		}
		return 0, 0, false
	}
	return parentID, depth, true
}

// ParentScientificName implements Service.
func (t *DB) ParentScientificName(taxID int) string {
	parentID, _, ok := t.parent(taxID)
	if !ok || parentID == taxID {
		return ""
	}
	return t.ScientificName(parentID)
}

// CommonNames implements Service.
func (t *DB) CommonNames(taxID int) []string {
	rows, err := t.db.Query(`SELECT name FROM names WHERE tax_id = ? AND class IN ('common name', 'genbank common name') ORDER BY rowid`, taxID)
	if err != nil {
		log.Printf("Error fetching common names for taxId %v: %v", taxID, err)
		return nil
	}
	defer func() {
		_ = rows.Close()
	}()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			log.Printf("Error fetching common names for taxId %v: %v", taxID, err)
			return nil
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		log.Printf("Error fetching common names for taxId %v: %v", taxID, err)
		return nil
	}
	return names
}

// LineageWithNames implements Service. The walk follows parent links to
// the root; any missing node or name yields a nil lineage.
func (t *DB) LineageWithNames(taxID int) []LineageEntry {
	var reversed []LineageEntry
	for current := taxID; len(reversed) < maxLineageDepth; {
		parentID, depth, ok := t.parent(current)
		if !ok {
			return nil
		}
		name := t.ScientificName(current)
		if name == "" {
			return nil
		}
		reversed = append(reversed, LineageEntry{Depth: depth, TaxID: current, Name: name})
		if parentID == current {
			lineage := make([]LineageEntry, 0, len(reversed))
			for i := len(reversed) - 1; i >= 0; i-- {
				lineage = append(lineage, reversed[i])
			}
			return lineage
		}
		current = parentID
	}
	log.Printf("Lineage too deep for taxId %v", taxID)
	return nil
}

// IDByScientificName implements Service.
func (t *DB) IDByScientificName(name string) int {
	var taxID int
	err := t.db.QueryRow(`SELECT tax_id FROM names WHERE name = ? AND class = 'scientific name'`, name).Scan(&taxID)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Error fetching taxId for name %v: %v", name, err)
		}
		return 0
	}
	return taxID
}
