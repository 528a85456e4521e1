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
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/structbio/seqannot/internal"
)

// splitDmp splits one line of an NCBI .dmp file into its fields. The
// field separator is "\t|\t" and every line ends with "\t|".
func splitDmp(line string) []string {
	line = strings.TrimSuffix(line, "\t|")
	return strings.Split(line, "\t|\t")
}

// forEachDmpLine calls f for every non-empty line of a .dmp file. A
// non-nil error from f stops the iteration and is returned.
func forEachDmpLine(dumpDir, name string, f func(fields []string) error) (err error) {
	pathname, err := filepath.Abs(filepath.Join(dumpDir, name))
	if err != nil {
		return err
	}
	file, err := os.Open(pathname)
	if err != nil {
		return err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			if err := f(splitDmp(line)); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

// nodeDepths assigns root-to-self depths to all taxa, with the root at
// depth 1. Nodes on a cyclic or dangling parent chain are reported and
// assigned depth 0.
func nodeDepths(parents map[int]int) map[int]int {
	depths := make(map[int]int, len(parents))
	var chain []int
	for taxID := range parents {
		current := taxID
		chain = chain[:0]
		for {
			if _, done := depths[current]; done {
				break
			}
			parent, found := parents[current]
			if !found || len(chain) >= maxLineageDepth {
				log.Printf("Broken parent chain at taxId %v", current)
				depths[current] = 0
				break
			}
			if parent == current {
				depths[current] = 1
				break
			}
			chain = append(chain, current)
			current = parent
		}
		for i := len(chain) - 1; i >= 0; i-- {
			depths[chain[i]] = depths[parents[chain[i]]] + 1
		}
	}
	return depths
}

// ImportTaxdump loads an NCBI-style taxonomy dump (names.dmp,
// nodes.dmp, merged.dmp) into the SQLite resource consumed by the
// annotators. An existing file at dbPath is overwritten.
func ImportTaxdump(dumpDir, dbPath string) (err error) {
	pathname, err := filepath.Abs(dbPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pathname), 0700); err != nil {
		return err
	}
	if err := os.Remove(pathname); err != nil && !os.IsNotExist(err) {
		return err
	}
	tdb, err := OpenDB(pathname)
	if err != nil {
		return err
	}
	defer func() {
		nerr := tdb.Close()
		if err == nil {
			err = nerr
		}
	}()
	db := tdb.db
	if _, err := db.Exec(`
		CREATE TABLE merged (old_id INTEGER PRIMARY KEY, new_id INTEGER NOT NULL);
		CREATE TABLE nodes (tax_id INTEGER PRIMARY KEY, parent_id INTEGER NOT NULL, rank TEXT NOT NULL, depth INTEGER NOT NULL);
		CREATE TABLE names (tax_id INTEGER NOT NULL, name TEXT NOT NULL, class TEXT NOT NULL);
		CREATE INDEX names_tax_id ON names (tax_id);
		CREATE INDEX names_name ON names (name);
	`); err != nil {
		return err
	}

	parents := make(map[int]int)
	ranks := make(map[int]string)
	err = forEachDmpLine(dumpDir, "nodes.dmp", func(fields []string) error {
		taxID := int(internal.ParseInt(fields[0], 10, 64))
		parents[taxID] = int(internal.ParseInt(fields[1], 10, 64))
		if len(fields) > 2 {
			ranks[taxID] = fields[2]
		}
		return nil
	})
	if err != nil {
		return err
	}
	depths := nodeDepths(parents)

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	insertNode, err := tx.Prepare(`INSERT INTO nodes (tax_id, parent_id, rank, depth) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	for taxID, parentID := range parents {
		if _, err := insertNode.Exec(taxID, parentID, ranks[taxID], depths[taxID]); err != nil {
			return err
		}
	}
	insertName, err := tx.Prepare(`INSERT INTO names (tax_id, name, class) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	nNames := 0
	err = forEachDmpLine(dumpDir, "names.dmp", func(fields []string) error {
		if len(fields) < 4 {
			log.Printf("Skipping short names.dmp line %v", fields)
			return nil
		}
		taxID := int(internal.ParseInt(fields[0], 10, 64))
		if _, err := insertName.Exec(taxID, fields[1], fields[3]); err != nil {
			return err
		}
		nNames++
		return nil
	})
	if err != nil {
		return err
	}
	insertMerged, err := tx.Prepare(`INSERT INTO merged (old_id, new_id) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	nMerged := 0
	err = forEachDmpLine(dumpDir, "merged.dmp", func(fields []string) error {
		oldID := int(internal.ParseInt(fields[0], 10, 64))
		newID := int(internal.ParseInt(fields[1], 10, 64))
		if _, err := insertMerged.Exec(oldID, newID); err != nil {
			return err
		}
		nMerged++
		return nil
	})
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("Imported %v nodes, %v names, %v merged ids into %v", len(parents), nNames, nMerged, dbPath)
	return nil
}
