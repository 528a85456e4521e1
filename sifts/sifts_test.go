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

package sifts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/structbio/seqannot/align"
)

const sampleSummary = `# chain mapping summary for 1abc
A	UNP	P01901	-	1	25	100
A	UNP	P01901	-	110	140	20
B	UNP	P01902	P01902-2	1	1	90
C	UNP	broken	-	x	1	90
`

func TestChainAlignments(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "1abc.tsv"), []byte(sampleSummary), 0666); err != nil {
		t.Fatal(err)
	}
	summary := NewSummary(dir)

	segments := summary.ChainAlignments("1ABC", "A")
	if len(segments) != 2 {
		t.Fatal("expected 2 segments for chain A, got", len(segments))
	}
	expected := align.Segment{
		DatabaseName:      "UNP",
		DatabaseAccession: "P01901",
		EntitySeqIDBeg:    1,
		DBSeqIDBeg:        25,
		AlignLength:       100,
	}
	if segments[0] != expected {
		t.Error("unexpected first segment", segments[0])
	}

	segments = summary.ChainAlignments("1ABC", "B")
	if len(segments) != 1 {
		t.Fatal("expected 1 segment for chain B, got", len(segments))
	}
	if segments[0].DatabaseIsoform != "P01902-2" {
		t.Error("unexpected isoform", segments[0].DatabaseIsoform)
	}

	// the malformed chain C line is skipped
	if segments = summary.ChainAlignments("1ABC", "C"); segments != nil {
		t.Error("expected no segments for chain C, got", segments)
	}
}

func TestMissingEntry(t *testing.T) {
	summary := NewSummary(t.TempDir())
	if segments := summary.ChainAlignments("2XYZ", "A"); segments != nil {
		t.Error("expected no segments for a missing entry, got", segments)
	}
}
