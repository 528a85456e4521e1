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

package annotate

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/structbio/seqannot/align"
	"github.com/structbio/seqannot/cif"
)

type stubSource map[string][]align.Segment

func (s stubSource) ChainAlignments(entryID, authAsymID string) []align.Segment {
	return s[authAsymID]
}

func newAlignRecord() *cif.Record {
	rec := cif.NewRecord("1ABC")

	entry := cif.NewCategory("entry", []string{"id"})
	entry.SetValue("1ABC", "id", 0)
	rec.Append(entry)

	entity := cif.NewCategory("entity", []string{"id", "type"})
	entity.SetValue("1", "id", 0)
	entity.SetValue("polymer", "type", 0)
	rec.Append(entity)

	structRef := cif.NewCategory("struct_ref", []string{"id", "db_name", "pdbx_db_accession", "pdbx_db_isoform", "entity_id"})
	structRef.SetValue("1", "id", 0)
	structRef.SetValue("UNP", "db_name", 0)
	structRef.SetValue("P01901", "pdbx_db_accession", 0)
	structRef.SetValue("?", "pdbx_db_isoform", 0)
	structRef.SetValue("1", "entity_id", 0)
	rec.Append(structRef)

	structRefSeq := cif.NewCategory("struct_ref_seq", []string{"ref_id", "seq_align_beg", "seq_align_end", "db_align_beg"})
	structRefSeq.SetValue("1", "ref_id", 0)
	structRefSeq.SetValue("1", "seq_align_beg", 0)
	structRefSeq.SetValue("100", "seq_align_end", 0)
	structRefSeq.SetValue("25", "db_align_beg", 0)
	rec.Append(structRefSeq)

	structAsym := cif.NewCategory("struct_asym", []string{"id", "entity_id"})
	structAsym.SetValue("A", "id", 0)
	structAsym.SetValue("1", "entity_id", 0)
	rec.Append(structAsym)

	return rec
}

func TestRefAlignmentsEmbedded(t *testing.T) {
	rec := newAlignRecord()
	applied, err := NewRefAlignments(nil, false).Annotate(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatal("expected the annotator to apply")
	}
	cat := rec.Get(AlignCategory)
	if cat == nil || cat.RowCount() != 1 {
		t.Fatal("expected 1 alignment row")
	}
	if v := cat.Value("reference_database_name", 0); v != "UniProt" {
		t.Error("unexpected database display name", v)
	}
	if v := cat.Value("reference_database_accession", 0); v != "P01901" {
		t.Error("unexpected accession", v)
	}
	if v := cat.Value("provenance_source", 0); v != align.ProvenancePDB {
		t.Error("unexpected provenance", v)
	}
	if v := cat.Value("aligned_regions_ref_beg_seq_id", 0); v != "25" {
		t.Error("unexpected reference begin", v)
	}
	if v := cat.Value("aligned_regions_entity_beg_seq_id", 0); v != "1" {
		t.Error("unexpected entity begin", v)
	}
	if v := cat.Value("aligned_regions_length", 0); v != "100" {
		t.Error("unexpected length", v)
	}
	if cat.HasAttribute("reference_database_isoform") {
		t.Error("expected no isoform attribute for alignments without isoform")
	}
}

func TestRefAlignmentsZeroReferenceBegin(t *testing.T) {
	rec := newAlignRecord()
	rec.Get("struct_ref_seq").SetValue("0", "db_align_beg", 0)
	applied, err := NewRefAlignments(nil, false).Annotate(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatal("expected the annotator to apply")
	}
	if v := rec.Get(AlignCategory).Value("aligned_regions_ref_beg_seq_id", 0); v != "1" {
		t.Error("expected a zero reference begin to normalize to 1, got", v)
	}
}

func TestRefAlignmentsExternalOverride(t *testing.T) {
	rec := newAlignRecord()
	src := stubSource{
		"A": {{
			DatabaseName:      "UNP",
			DatabaseAccession: "Q99999",
			EntitySeqIDBeg:    1,
			DBSeqIDBeg:        30,
			AlignLength:       110,
		}},
	}
	applied, err := NewRefAlignments(src, true).Annotate(rec)
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatal("expected the annotator to apply")
	}
	cat := rec.Get(AlignCategory)
	if cat.RowCount() != 1 {
		t.Fatal("expected the external result to replace the embedded one")
	}
	if v := cat.Value("reference_database_accession", 0); v != "Q99999" {
		t.Error("unexpected accession", v)
	}
	if v := cat.Value("provenance_source", 0); v != align.ProvenanceSIFTS {
		t.Error("unexpected provenance", v)
	}
}

func TestRefAlignmentsUnsupportedDatabase(t *testing.T) {
	rec := newAlignRecord()
	rec.Get("struct_ref").SetValue("XYZ", "db_name", 0)
	applied, err := NewRefAlignments(nil, false).Annotate(rec)
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Error("expected no annotation when all databases are unsupported")
	}
	if rec.Exists(AlignCategory) {
		t.Error("expected no alignment category")
	}
}

func TestAuditReplaces(t *testing.T) {
	rec := newAlignRecord()
	audit := &Audit{RunID: "fixed-run-id"}
	for i := 0; i < 2; i++ {
		if _, err := audit.Annotate(rec); err != nil {
			t.Fatal(err)
		}
	}
	cat := rec.Get(AuditCategory)
	if cat == nil || cat.RowCount() != 1 {
		t.Fatal("expected exactly 1 audit row")
	}
	if v := cat.Value("run_id", 0); v != "fixed-run-id" {
		t.Error("unexpected run id", v)
	}
}

func TestAnnotateRecordIsIdempotent(t *testing.T) {
	runner := &Runner{Annotators: []Annotator{
		NewRefAlignments(nil, false),
		&Audit{RunID: "fixed-run-id"},
	}}
	rec := newAlignRecord()
	runner.AnnotateRecord(rec)
	var first bytes.Buffer
	if err := cif.Write(&first, rec); err != nil {
		t.Fatal(err)
	}
	runner.AnnotateRecord(rec)
	var second bytes.Buffer
	if err := cif.Write(&second, rec); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("reannotating an annotated record changed its content")
	}
}

type panicAnnotator struct{}

func (panicAnnotator) Name() string { return "panic" }

func (panicAnnotator) Annotate(rec *cif.Record) (bool, error) {
	panic("broken record data")
}

func TestAnnotateRecordRecoversPanics(t *testing.T) {
	runner := &Runner{Annotators: []Annotator{
		panicAnnotator{},
		&Audit{RunID: "fixed-run-id"},
	}}
	rec := newAlignRecord()
	runner.AnnotateRecord(rec)
	if !rec.Exists(AuditCategory) {
		t.Error("expected the remaining annotators to run after a panic")
	}
}

func TestRunnerRun(t *testing.T) {
	inputDir := t.TempDir()
	outputDir := t.TempDir()
	rec := newAlignRecord()
	input := filepath.Join(inputDir, "1abc.cif")
	if err := cif.WriteFile(rec, input); err != nil {
		t.Fatal(err)
	}
	runner := &Runner{
		Annotators: []Annotator{
			NewRefAlignments(nil, false),
			&Audit{RunID: "fixed-run-id"},
		},
		OutputDir: outputDir,
	}
	if err := runner.Run([]string{input}); err != nil {
		t.Fatal(err)
	}
	annotated, err := cif.ReadFile(filepath.Join(outputDir, "1abc.cif"))
	if err != nil {
		t.Fatal(err)
	}
	if !annotated.Exists(AlignCategory) {
		t.Error("expected the annotated output to carry alignments")
	}
	if v := annotated.Get(AuditCategory).Value("run_id", 0); v != "fixed-run-id" {
		t.Error("unexpected run id in output", v)
	}
}

func TestLoadConf(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seqannot.yaml")
	content := "use-sifts-alignments: false\nsifts-dir: /data/sifts\ntaxonomy-db: /data/taxonomy.db\n"
	if err := os.WriteFile(path, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}
	conf, err := LoadConf(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.UseSiftsAlignments == nil || *conf.UseSiftsAlignments {
		t.Error("unexpected use-sifts-alignments setting")
	}
	if conf.SiftsDir != "/data/sifts" || conf.TaxonomyDB != "/data/taxonomy.db" {
		t.Error("unexpected paths", conf.SiftsDir, conf.TaxonomyDB)
	}
}
