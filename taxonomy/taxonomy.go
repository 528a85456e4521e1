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

// Package taxonomy resolves organism identifiers against an NCBI-style
// taxonomy resource: merged identifiers are canonicalized, names are
// fetched, and full root-to-self lineages are assembled.
package taxonomy

import (
	"log"
	"strings"

	"github.com/structbio/seqannot/utils"
)

// A LineageEntry is one ancestor in a root-to-self lineage.
type LineageEntry struct {
	Depth int
	TaxID int
	Name  string
}

// A Service answers lookups against a read-only taxonomy resource.
// Lookup misses yield zero values, never errors.
type Service interface {
	// MergedID maps a possibly retired identifier to its canonical
	// successor. Canonical identifiers map to themselves.
	MergedID(taxID int) int

	// ScientificName returns the scientific name, or "".
	ScientificName(taxID int) string

	// ParentScientificName returns the parent taxon's scientific name, or "".
	ParentScientificName(taxID int) string

	// CommonNames returns the common names in resource order.
	CommonNames(taxID int) []string

	// LineageWithNames returns the root-to-self lineage, or nil when it
	// cannot be assembled.
	LineageWithNames(taxID int) []LineageEntry

	// IDByScientificName returns the identifier registered for a
	// scientific name, or 0.
	IDByScientificName(name string) int
}

// A Node is a fully resolved taxon.
type Node struct {
	TaxID                int
	ScientificName       string
	ParentScientificName string
	CommonNames          []string
	Lineage              []LineageEntry
}

// FilterCaseDuplicates removes case-insensitive duplicates from a name
// list, keeping the first-seen casing of each name.
func FilterCaseDuplicates(names []string) []string {
	seen := make(utils.StringMap)
	var result []string
	for _, name := range names {
		if seen.SetUniqueEntry(strings.ToUpper(name), name) {
			result = append(result, name)
		}
	}
	return result
}

// dedupLineage drops repeated entries while preserving order.
func dedupLineage(lineage []LineageEntry) []LineageEntry {
	var result []LineageEntry
	seen := make(map[LineageEntry]bool)
	for _, entry := range lineage {
		if !seen[entry] {
			seen[entry] = true
			result = append(result, entry)
		}
	}
	return result
}

// validLineage checks that the lineage is non-empty, that depths
// increase strictly, and that the lineage ends at the given taxon.
func validLineage(lineage []LineageEntry, taxID int) bool {
	if len(lineage) == 0 {
		return false
	}
	for i, entry := range lineage {
		if i > 0 && entry.Depth <= lineage[i-1].Depth {
			return false
		}
	}
	return lineage[len(lineage)-1].TaxID == taxID
}

// Resolve maps a raw, possibly retired taxonomy identifier to a fully
// resolved Node. It returns false when the identifier cannot be
// resolved to a named taxon. A missing lineage is reported but not
// fatal: the remaining fields still populate.
func Resolve(svc Service, rawTaxID int) (Node, bool) {
	if rawTaxID <= 0 {
		return Node{}, false
	}
	taxID := svc.MergedID(rawTaxID)
	if taxID <= 0 {
		return Node{}, false
	}
	node := Node{TaxID: taxID}
	node.ScientificName = svc.ScientificName(taxID)
	if node.ScientificName == "" {
		return node, false
	}
	node.ParentScientificName = svc.ParentScientificName(taxID)
	node.CommonNames = FilterCaseDuplicates(svc.CommonNames(taxID))
	if lineage := svc.LineageWithNames(taxID); lineage == nil {
		log.Printf("Missing lineage for taxId %v", taxID)
	} else if lineage = dedupLineage(lineage); !validLineage(lineage, taxID) {
		log.Printf("Inconsistent lineage for taxId %v: %v", taxID, lineage)
	} else {
		node.Lineage = lineage
	}
	return node, true
}
