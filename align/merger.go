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

// Merge combines the embedded and external collector outputs under the
// source priority policy: for every entity with any external result,
// all embedded entries for that entity are dropped, whatever accessions
// they referenced, and replaced by the external entries. The override
// is total per entity because mixing provenance sources within one
// entity would produce inconsistent chain numbering. Entities absent
// from the external output keep their embedded entries untouched.
//
// The result is a fresh map; the inputs are not modified.
func Merge(embedded, external EntityAlignments) EntityAlignments {
	overridden := make(map[string]bool, len(external))
	for key := range external {
		overridden[key.EntityID] = true
	}
	result := make(EntityAlignments, len(embedded)+len(external))
	for key, refs := range embedded {
		if !overridden[key.EntityID] {
			result[key] = refs
		}
	}
	for key, refs := range external {
		result[key] = refs
	}
	return result
}

// Resolve produces the canonical per-entity alignment map for one
// record: the embedded alignments, overridden per entity by the
// external curated mapping when reconciliation is enabled and the
// resource has data for the record. src may be nil when reconciliation
// is disabled.
func Resolve(entryID string, entitySegments map[string][]Segment, computational bool, chains []Chain, src ChainSource, useExternal bool) EntityAlignments {
	provenance := ProvenancePDB
	if computational {
		provenance = ProvenanceModel
	}
	embedded := CollectEmbedded(entryID, entitySegments, provenance)
	if !useExternal || src == nil {
		return embedded
	}
	return Merge(embedded, CollectExternal(entryID, chains, src))
}
