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

package align

// Provenance sources for reconciled reference sequence alignments.
const (
	// ProvenancePDB marks alignments embedded in the deposited record.
	ProvenancePDB = "PDB"

	// ProvenanceSIFTS marks alignments taken from the external curated
	// chain mapping resource.
	ProvenanceSIFTS = "SIFTS"

	// ProvenanceModel marks embedded alignments of computationally
	// derived models.
	ProvenanceModel = "UniProt"
)

// A Segment is one contiguous aligned region between an entity (or
// chain) sequence and a reference database sequence. Segments are
// values; identity is structural.
type Segment struct {
	DatabaseName      string
	DatabaseAccession string
	DatabaseIsoform   string
	EntitySeqIDBeg    int
	DBSeqIDBeg        int
	AlignLength       int
}

// An AccessionKey identifies one reference sequence.
type AccessionKey struct {
	DatabaseName      string
	DatabaseAccession string
	DatabaseIsoform   string
}

// Key returns the reference sequence the segment is aligned against.
func (s Segment) Key() AccessionKey {
	return AccessionKey{s.DatabaseName, s.DatabaseAccession, s.DatabaseIsoform}
}

// A Group is an ordered sequence of segments that belong to one logical
// alignment attempt against one reference sequence.
type Group []Segment

// Coverage returns the summed aligned length of all segments in the group.
func (g Group) Coverage() int {
	length := 0
	for _, s := range g {
		length += s.AlignLength
	}
	return length
}

// An EntityKey identifies the alignments of one entity from one
// provenance source.
type EntityKey struct {
	EntryID    string
	EntityID   string
	Provenance string
}

// EntityAlignments maps entities to their winning segment lists per
// reference sequence. At most one winning list exists per accession key
// per provenance source.
type EntityAlignments map[EntityKey]map[AccessionKey]Group

// A Chain is one physical instance of an entity in the modeled structure.
type Chain struct {
	AsymID     string
	AuthAsymID string
	EntityID   string
	Kind       string
}

// A ChainSource provides the reference sequence alignments of one chain
// from the external curated mapping resource. An empty result means the
// resource has no data for the chain.
type ChainSource interface {
	ChainAlignments(entryID, authAsymID string) []Segment
}
