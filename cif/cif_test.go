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

package cif

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

const sampleBlock = `data_1ABC
#
_entry.id 1ABC
#
loop_
_entity.id
_entity.type
_entity.pdbx_description
1 polymer "hemoglobin subunit alpha"
2 water .
#
_struct.title
;A structure
with a two-line title
;
#
`

func TestRead(t *testing.T) {
	rec, err := Read(strings.NewReader(sampleBlock))
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != "1ABC" {
		t.Error("unexpected block name", rec.Name)
	}
	if rec.EntryID() != "1ABC" {
		t.Error("unexpected entry id", rec.EntryID())
	}
	entity := rec.Get("entity")
	if entity == nil {
		t.Fatal("missing entity category")
	}
	if entity.RowCount() != 2 {
		t.Error("expected 2 entity rows, got", entity.RowCount())
	}
	if v := entity.Value("pdbx_description", 0); v != "hemoglobin subunit alpha" {
		t.Error("unexpected quoted value", v)
	}
	if v := entity.Value("pdbx_description", 1); !Absent(v) {
		t.Error("expected absent description for water, got", v)
	}
	title := rec.Get("struct")
	if title == nil {
		t.Fatal("missing struct category")
	}
	if v := title.Value("title", 0); v != "A structure\nwith a two-line title" {
		t.Error("unexpected text field value", v)
	}
}

func TestRoundTrip(t *testing.T) {
	rec, err := Read(strings.NewReader(sampleBlock))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := Write(&buf, rec); err != nil {
		t.Fatal(err)
	}
	again, err := Read(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if again.Name != rec.Name {
		t.Error("block name changed across round trip:", again.Name)
	}
	if len(again.Categories) != len(rec.Categories) {
		t.Fatal("category count changed across round trip")
	}
	for i, cat := range rec.Categories {
		other := again.Categories[i]
		if other.Name != cat.Name {
			t.Error("category order changed across round trip:", other.Name)
		}
		if !reflect.DeepEqual(other.Attributes, cat.Attributes) {
			t.Error("attributes changed across round trip for", cat.Name)
		}
		for row := 0; row < cat.RowCount(); row++ {
			for _, attr := range cat.Attributes {
				if other.Value(attr, row) != cat.Value(attr, row) {
					t.Errorf("value changed across round trip for %v.%v row %v", cat.Name, attr, row)
				}
			}
		}
	}
}

func TestWriteIsStable(t *testing.T) {
	rec, err := Read(strings.NewReader(sampleBlock))
	if err != nil {
		t.Fatal(err)
	}
	var first bytes.Buffer
	if err := Write(&first, rec); err != nil {
		t.Fatal(err)
	}
	again, err := Read(bytes.NewReader(first.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	var second bytes.Buffer
	if err := Write(&second, again); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("formatting is not stable across a read/write cycle")
	}
}

func TestCategoryEdit(t *testing.T) {
	cat := NewCategory("rcsb_entity_source_organism", []string{"entity_id"})
	cat.SetValue("1", "entity_id", 0)
	cat.SetValue("9606", "ncbi_taxonomy_id", 0)
	cat.SetValue("2", "entity_id", 1)
	if !cat.HasAttribute("ncbi_taxonomy_id") {
		t.Fatal("expected the attribute to be appended")
	}
	if v := cat.Value("ncbi_taxonomy_id", 1); v != "?" {
		t.Error("expected placeholder padding for new cells, got", v)
	}
	rows := cat.SelectRowsWhere("entity_id", "1")
	if len(rows) != 1 || rows[0] != 0 {
		t.Error("unexpected row selection", rows)
	}
	values := cat.SelectValuesWhere([]string{"ncbi_taxonomy_id"}, "1", "entity_id")
	if len(values) != 1 || values[0][0] != "9606" {
		t.Error("unexpected value selection", values)
	}
}

func TestRecordAppendReplaces(t *testing.T) {
	rec := NewRecord("1ABC")
	first := NewCategory("rcsb_annotation_audit", []string{"run_id"})
	first.SetValue("a", "run_id", 0)
	rec.Append(first)
	second := NewCategory("rcsb_annotation_audit", []string{"run_id"})
	second.SetValue("b", "run_id", 0)
	rec.Append(second)
	if len(rec.Categories) != 1 {
		t.Fatal("expected the category to be replaced in place")
	}
	if v := rec.Get("rcsb_annotation_audit").Value("run_id", 0); v != "b" {
		t.Error("unexpected value after replacement", v)
	}
}
