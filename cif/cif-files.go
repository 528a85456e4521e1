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
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenValue
	tokenName
	tokenLoop
	tokenData
)

type token struct {
	kind  tokenKind
	value string
}

type parser struct {
	scanner *bufio.Scanner
	sc      StringScanner
	lineno  int
	pending *token
	eof     bool
}

func newParser(r io.Reader) *parser {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 16*1024*1024)
	return &parser{scanner: scanner}
}

func (p *parser) nextLine() bool {
	if p.eof {
		return false
	}
	if p.scanner.Scan() {
		p.lineno++
		p.sc.Reset(p.scanner.Text())
		return true
	}
	p.eof = true
	return false
}

// next returns the next token in the file. Multiline ;-delimited text
// fields are returned as a single value token.
func (p *parser) next() (token, error) {
	if p.pending != nil {
		tok := *p.pending
		p.pending = nil
		return tok, nil
	}
	for {
		if p.sc.Len() == 0 || !p.sc.SkipSpace() {
			if !p.nextLine() {
				if err := p.scanner.Err(); err != nil {
					return token{}, err
				}
				return token{kind: tokenEOF}, nil
			}
			if line := p.scanner.Text(); strings.HasPrefix(line, ";") {
				return p.textField(line[1:])
			}
			continue
		}
		quoted := p.sc.data[p.sc.index] == '\'' || p.sc.data[p.sc.index] == '"'
		value, ok := p.sc.ParseValue()
		if !ok {
			if err := p.sc.Err(); err != nil {
				return token{}, fmt.Errorf("%v at line %v", err, p.lineno)
			}
			continue
		}
		if quoted {
			return token{kind: tokenValue, value: value}, nil
		}
		switch {
		case strings.EqualFold(value, "loop_"):
			return token{kind: tokenLoop}, nil
		case len(value) > 5 && strings.EqualFold(value[:5], "data_"):
			return token{kind: tokenData, value: value[5:]}, nil
		case value[0] == '_':
			return token{kind: tokenName, value: value[1:]}, nil
		default:
			return token{kind: tokenValue, value: value}, nil
		}
	}
}

// textField collects a ;-delimited multiline value, starting after the
// opening semicolon.
func (p *parser) textField(first string) (token, error) {
	var text strings.Builder
	text.WriteString(first)
	for p.nextLine() {
		line := p.scanner.Text()
		if strings.HasPrefix(line, ";") {
			p.sc.Reset(line[1:])
			return token{kind: tokenValue, value: text.String()}, nil
		}
		text.WriteByte('\n')
		text.WriteString(line)
	}
	if err := p.scanner.Err(); err != nil {
		return token{}, err
	}
	return token{}, fmt.Errorf("unterminated text field at line %v", p.lineno)
}

func (p *parser) peek() (token, error) {
	if p.pending == nil {
		tok, err := p.next()
		if err != nil {
			return token{}, err
		}
		p.pending = &tok
	}
	return *p.pending, nil
}

func splitItemName(name string, lineno int) (string, string, error) {
	dot := strings.IndexByte(name, '.')
	if dot <= 0 || dot == len(name)-1 {
		return "", "", fmt.Errorf("invalid item name _%v at line %v", name, lineno)
	}
	return name[:dot], name[dot+1:], nil
}

// Read parses the first data block of an mmCIF file into a Record.
func Read(r io.Reader) (*Record, error) {
	p := newParser(r)
	tok, err := p.next()
	if err != nil {
		return nil, err
	}
	for tok.kind != tokenData {
		if tok.kind == tokenEOF {
			return nil, fmt.Errorf("missing data block")
		}
		tok, err = p.next()
		if err != nil {
			return nil, err
		}
	}
	rec := NewRecord(tok.value)
	for {
		tok, err = p.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenEOF:
			return rec, nil
		case tokenData:
			// only the first data block is annotated
			return rec, nil
		case tokenName:
			catName, attr, err := splitItemName(tok.value, p.lineno)
			if err != nil {
				return nil, err
			}
			value, err := p.next()
			if err != nil {
				return nil, err
			}
			if value.kind != tokenValue {
				return nil, fmt.Errorf("missing value for item _%v at line %v", tok.value, p.lineno)
			}
			cat := rec.Get(catName)
			if cat == nil {
				cat = NewCategory(catName, nil)
				rec.Append(cat)
			}
			cat.SetValue(value.value, attr, 0)
		case tokenLoop:
			if err := p.parseLoop(rec); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unexpected value %v at line %v", tok.value, p.lineno)
		}
	}
}

func (p *parser) parseLoop(rec *Record) error {
	var cat *Category
	var attrs []string
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.kind != tokenName {
			break
		}
		p.pending = nil
		catName, attr, err := splitItemName(tok.value, p.lineno)
		if err != nil {
			return err
		}
		if cat == nil {
			cat = NewCategory(catName, nil)
			rec.Append(cat)
		} else if cat.Name != catName {
			return fmt.Errorf("mixed categories %v and %v in loop at line %v", cat.Name, catName, p.lineno)
		}
		cat.AppendAttribute(attr)
		attrs = append(attrs, attr)
	}
	if cat == nil {
		return fmt.Errorf("empty loop at line %v", p.lineno)
	}
	row, col := 0, 0
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.kind != tokenValue {
			if col != 0 {
				return fmt.Errorf("incomplete row in loop %v at line %v", cat.Name, p.lineno)
			}
			return nil
		}
		p.pending = nil
		cat.SetValue(tok.value, attrs[col], row)
		if col++; col == len(attrs) {
			col = 0
			row++
		}
	}
}

// ReadFile parses the first data block of the given mmCIF file.
func ReadFile(filename string) (rec *Record, err error) {
	pathname, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	rec, err = Read(file)
	if err != nil {
		return nil, fmt.Errorf("%v, while parsing mmCIF file %v", err, filename)
	}
	return rec, nil
}

func needsQuoting(value string) bool {
	if strings.ContainsAny(value, " \t") {
		return true
	}
	switch value[0] {
	case '_', '#', '$', '\'', '"', '[', ']', ';':
		return true
	}
	if strings.EqualFold(value, "loop_") {
		return true
	}
	return len(value) > 5 && strings.EqualFold(value[:5], "data_")
}

// formatValue renders a value in mmCIF syntax. Multiline values are
// reported separately because they cannot be embedded in a row.
func formatValue(value string) (s string, multiline bool) {
	if value == "" {
		return "?", false
	}
	if strings.ContainsRune(value, '\n') {
		return value, true
	}
	if !needsQuoting(value) {
		return value, false
	}
	if !strings.ContainsRune(value, '\'') {
		return "'" + value + "'", false
	}
	if !strings.ContainsRune(value, '"') {
		return "\"" + value + "\"", false
	}
	return value, true
}

func writeValue(out *bufio.Writer, value string) {
	s, multiline := formatValue(value)
	if multiline {
		out.WriteString("\n;")
		out.WriteString(s)
		out.WriteString("\n;\n")
	} else {
		out.WriteString(s)
	}
}

// Write formats a Record as an mmCIF data block. Single-row categories
// are written as item/value pairs, others as loops.
func Write(w io.Writer, rec *Record) error {
	out := bufio.NewWriter(w)
	out.WriteString("data_")
	out.WriteString(rec.Name)
	out.WriteString("\n")
	for _, cat := range rec.Categories {
		out.WriteString("#\n")
		if cat.RowCount() == 1 {
			width := 0
			for _, attr := range cat.Attributes {
				if n := len(cat.Name) + 1 + len(attr); n > width {
					width = n
				}
			}
			for _, attr := range cat.Attributes {
				fmt.Fprintf(out, "_%-*s ", width, cat.Name+"."+attr)
				writeValue(out, cat.Value(attr, 0))
				out.WriteString("\n")
			}
		} else {
			out.WriteString("loop_\n")
			for _, attr := range cat.Attributes {
				out.WriteString("_")
				out.WriteString(cat.Name)
				out.WriteString(".")
				out.WriteString(attr)
				out.WriteString("\n")
			}
			for row := 0; row < cat.RowCount(); row++ {
				for i, attr := range cat.Attributes {
					if i > 0 {
						out.WriteString(" ")
					}
					writeValue(out, cat.Value(attr, row))
				}
				out.WriteString("\n")
			}
		}
	}
	out.WriteString("#\n")
	return out.Flush()
}

// WriteFile formats a Record into the given file.
func WriteFile(rec *Record, filename string) (err error) {
	pathname, err := filepath.Abs(filename)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(pathname), 0700); err != nil {
		return err
	}
	file, err := os.Create(pathname)
	if err != nil {
		return err
	}
	defer func() {
		nerr := file.Close()
		if err == nil {
			err = nerr
		}
	}()
	return Write(file, rec)
}
