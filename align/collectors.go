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

import (
	"log"
)

// groupByKey splits segments by accession key, preserving first-seen
// key order and input order within each key.
func groupByKey(segments []Segment) ([]AccessionKey, map[AccessionKey][]Segment) {
	var keys []AccessionKey
	byKey := make(map[AccessionKey][]Segment)
	for _, seg := range segments {
		key := seg.Key()
		if _, found := byKey[key]; !found {
			keys = append(keys, key)
		}
		byKey[key] = append(byKey[key], seg)
	}
	return keys, byKey
}

// collectEntity selects the winning segment list for every accession
// key of one entity. A failure in one entity's segment data never
// escapes to its siblings.
func collectEntity(entryID, entityID string, segments []Segment) (refs map[AccessionKey]Group) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Skipping entity %v of %v after error: %v", entityID, entryID, r)
			refs = nil
		}
	}()
	keys, byKey := groupByKey(segments)
	for _, key := range keys {
		if group, ok := SelectGroup(entryID, entityID, key, byKey[key]); ok {
			if refs == nil {
				refs = make(map[AccessionKey]Group)
			}
			refs[key] = group
		}
	}
	return refs
}

// CollectEmbedded gathers the alignments carried directly in the
// deposited record, one winning segment list per accession key per
// entity. Entities without embedded alignments are absent from the
// result. The provenance is ProvenancePDB for experimental records and
// ProvenanceModel for computationally derived models.
func CollectEmbedded(entryID string, entitySegments map[string][]Segment, provenance string) EntityAlignments {
	result := make(EntityAlignments)
	for entityID, segments := range entitySegments {
		if refs := collectEntity(entryID, entityID, segments); refs != nil {
			result[EntityKey{entryID, entityID, provenance}] = refs
		}
	}
	return result
}

// CollectExternal gathers alignments from the external curated chain
// mapping resource. The resource maps physical chains, not entities:
// per entity, only the single chain with the greatest total aligned
// length is retained, and segments from different chains of the same
// entity are never mixed into one alignment. Ties keep the first
// encountered chain. Only polymer and branched chains are consulted.
func CollectExternal(entryID string, chains []Chain, src ChainSource) EntityAlignments {
	chainSegments := make(map[string][]Segment)
	chainLength := make(map[string]int)
	for _, chain := range chains {
		if chain.Kind != "polymer" && chain.Kind != "branched" {
			continue
		}
		segments := src.ChainAlignments(entryID, chain.AuthAsymID)
		length := 0
		for _, seg := range segments {
			length += seg.AlignLength
		}
		if length > chainLength[chain.EntityID] {
			chainSegments[chain.EntityID] = segments
			chainLength[chain.EntityID] = length
		}
	}
	result := make(EntityAlignments)
	for entityID, segments := range chainSegments {
		if refs := collectEntity(entryID, entityID, segments); refs != nil {
			result[EntityKey{entryID, entityID, ProvenanceSIFTS}] = refs
		}
	}
	return result
}
