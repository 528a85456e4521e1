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

// A Category is an mmCIF data category: an ordered list of attributes
// and row-major string values. Absent values are represented by the
// mmCIF placeholders "." and "?".
type Category struct {
	Name       string
	Attributes []string
	rows       [][]string
}

// NewCategory returns an empty category with the given name and
// attribute list.
func NewCategory(name string, attributes []string) *Category {
	return &Category{Name: name, Attributes: append([]string(nil), attributes...)}
}

// RowCount returns the number of rows in the category.
func (cat *Category) RowCount() int {
	return len(cat.rows)
}

func (cat *Category) attributeIndex(attr string) int {
	for i, a := range cat.Attributes {
		if a == attr {
			return i
		}
	}
	return -1
}

// HasAttribute tells whether the category carries the given attribute.
func (cat *Category) HasAttribute(attr string) bool {
	return cat.attributeIndex(attr) >= 0
}

// AppendAttribute adds an attribute to the category if it is not
// already present. Existing rows are padded with the "?" placeholder.
func (cat *Category) AppendAttribute(attr string) {
	if cat.HasAttribute(attr) {
		return
	}
	cat.Attributes = append(cat.Attributes, attr)
	for i := range cat.rows {
		cat.rows[i] = append(cat.rows[i], "?")
	}
}

// Absent tells whether an mmCIF value is missing, either empty or one
// of the "." / "?" placeholders.
func Absent(value string) bool {
	return value == "" || value == "." || value == "?"
}

// Value returns the raw value of attr in the given row, or the empty
// string when the attribute or row does not exist.
func (cat *Category) Value(attr string, row int) string {
	i := cat.attributeIndex(attr)
	if i < 0 || row < 0 || row >= len(cat.rows) {
		return ""
	}
	return cat.rows[row][i]
}

// ValueOrDefault returns the value of attr in the given row, or def
// when the value is absent.
func (cat *Category) ValueOrDefault(attr string, row int, def string) string {
	if v := cat.Value(attr, row); !Absent(v) {
		return v
	}
	return def
}

// SetValue stores a value for attr in the given row, appending the
// attribute and growing the row table as needed. New cells are filled
// with the "?" placeholder.
func (cat *Category) SetValue(value, attr string, row int) {
	i := cat.attributeIndex(attr)
	if i < 0 {
		cat.AppendAttribute(attr)
		i = len(cat.Attributes) - 1
	}
	for len(cat.rows) <= row {
		cells := make([]string, len(cat.Attributes))
		for j := range cells {
			cells[j] = "?"
		}
		cat.rows = append(cat.rows, cells)
	}
	cat.rows[row][i] = value
}

// AttributeValues returns the values of attr for all rows, in row order.
func (cat *Category) AttributeValues(attr string) []string {
	i := cat.attributeIndex(attr)
	if i < 0 {
		return nil
	}
	values := make([]string, 0, len(cat.rows))
	for _, row := range cat.rows {
		values = append(values, row[i])
	}
	return values
}

// SelectRowsWhere returns the indices of all rows whose value for attr
// equals the given value.
func (cat *Category) SelectRowsWhere(attr, value string) []int {
	i := cat.attributeIndex(attr)
	if i < 0 {
		return nil
	}
	var rows []int
	for r, row := range cat.rows {
		if row[i] == value {
			rows = append(rows, r)
		}
	}
	return rows
}

// SelectValuesWhere returns, for every row whose matchAttr value equals
// match, the values of the given attributes in attribute order.
func (cat *Category) SelectValuesWhere(attrs []string, match, matchAttr string) [][]string {
	var result [][]string
	for _, r := range cat.SelectRowsWhere(matchAttr, match) {
		values := make([]string, 0, len(attrs))
		for _, attr := range attrs {
			values = append(values, cat.Value(attr, r))
		}
		result = append(result, values)
	}
	return result
}

// A Record is a single mmCIF data block: a named, ordered collection of
// categories.
type Record struct {
	Name       string
	Categories []*Category
	index      map[string]*Category
}

// NewRecord returns an empty record with the given block name.
func NewRecord(name string) *Record {
	return &Record{Name: name, index: make(map[string]*Category)}
}

// Get returns the category with the given name, or nil.
func (rec *Record) Get(name string) *Category {
	return rec.index[name]
}

// Exists tells whether the record contains a category with the given name.
func (rec *Record) Exists(name string) bool {
	_, found := rec.index[name]
	return found
}

// Append adds a category to the record. A category with the same name
// replaces the previous one in place.
func (rec *Record) Append(cat *Category) {
	if old, found := rec.index[cat.Name]; found {
		for i, c := range rec.Categories {
			if c == old {
				rec.Categories[i] = cat
				break
			}
		}
	} else {
		rec.Categories = append(rec.Categories, cat)
	}
	rec.index[cat.Name] = cat
}

// IsComputational tells whether the record describes a computationally
// derived model rather than an experimental structure.
func (rec *Record) IsComputational() bool {
	return rec.Exists("ma_data")
}

// EntryID returns the record's entry identifier from the entry category,
// falling back to the data block name.
func (rec *Record) EntryID() string {
	if entry := rec.Get("entry"); entry != nil && entry.RowCount() > 0 {
		if id := entry.Value("id", 0); !Absent(id) {
			return id
		}
	}
	return rec.Name
}
