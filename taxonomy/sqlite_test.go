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
	"os"
	"path/filepath"
	"testing"
)

const sampleNodes = "1\t|\t1\t|\tno rank\t|\n" +
	"131567\t|\t1\t|\tno rank\t|\n" +
	"2759\t|\t131567\t|\tsuperkingdom\t|\n" +
	"9605\t|\t2759\t|\tgenus\t|\n" +
	"9606\t|\t9605\t|\tspecies\t|\n"

const sampleNames = "1\t|\troot\t|\t\t|\tscientific name\t|\n" +
	"131567\t|\tcellular organisms\t|\t\t|\tscientific name\t|\n" +
	"2759\t|\tEukaryota\t|\t\t|\tscientific name\t|\n" +
	"9605\t|\tHomo\t|\t\t|\tscientific name\t|\n" +
	"9606\t|\tHomo sapiens\t|\t\t|\tscientific name\t|\n" +
	"9606\t|\thuman\t|\t\t|\tgenbank common name\t|\n"

const sampleMerged = "63221\t|\t9606\t|\n"

func importSampleTaxdump(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	for name, content := range map[string]string{
		"nodes.dmp":  sampleNodes,
		"names.dmp":  sampleNames,
		"merged.dmp": sampleMerged,
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0666); err != nil {
			t.Fatal(err)
		}
	}
	dbPath := filepath.Join(t.TempDir(), "taxonomy.db")
	if err := ImportTaxdump(dir, dbPath); err != nil {
		t.Fatal(err)
	}
	tdb, err := OpenDB(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := tdb.Close(); err != nil {
			t.Error(err)
		}
	})
	return tdb
}

func TestImportedLookups(t *testing.T) {
	tdb := importSampleTaxdump(t)
	if name := tdb.ScientificName(9606); name != "Homo sapiens" {
		t.Error("unexpected scientific name", name)
	}
	if name := tdb.ParentScientificName(9606); name != "Homo" {
		t.Error("unexpected parent scientific name", name)
	}
	if id := tdb.MergedID(63221); id != 9606 {
		t.Error("unexpected canonical taxId", id)
	}
	if id := tdb.MergedID(9606); id != 9606 {
		t.Error("expected canonical taxIds to map to themselves, got", id)
	}
	if names := tdb.CommonNames(9606); len(names) != 1 || names[0] != "human" {
		t.Error("unexpected common names", names)
	}
	if id := tdb.IDByScientificName("Eukaryota"); id != 2759 {
		t.Error("unexpected taxId for Eukaryota", id)
	}
}

func TestImportedLineage(t *testing.T) {
	tdb := importSampleTaxdump(t)
	lineage := tdb.LineageWithNames(9606)
	if len(lineage) != 5 {
		t.Fatal("unexpected lineage length", len(lineage))
	}
	for i, entry := range lineage {
		if entry.Depth != i+1 {
			t.Error("unexpected depth at position", i, entry)
		}
	}
	if lineage[4].TaxID != 9606 || lineage[4].Name != "Homo sapiens" {
		t.Error("unexpected lineage tail", lineage[4])
	}
	if lineage[0].Name != "root" {
		t.Error("unexpected lineage root", lineage[0])
	}
}
