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

	"github.com/willf/bitset"
)

// SplitGroups partitions a flat list of segments sharing one accession
// key into alignment groups. A segment continues the current group when
// its entity begin position advances past the previous segment's begin
// position; otherwise it starts a competing alignment attempt. Input
// order is preserved within and across groups.
func SplitGroups(segments []Segment) []Group {
	var groups []Group
	for _, seg := range segments {
		if n := len(groups); n > 0 {
			current := groups[n-1]
			if seg.EntitySeqIDBeg > current[len(current)-1].EntitySeqIDBeg {
				groups[n-1] = append(current, seg)
				continue
			}
		}
		groups = append(groups, Group{seg})
	}
	return groups
}

// checkOverlap reports winning groups whose segments cover the same
// entity positions more than once. Such alignments are kept, but they
// usually indicate questionable upstream segment data.
func checkOverlap(entryID, entityID string, key AccessionKey, group Group) {
	end := 0
	for _, seg := range group {
		if e := seg.EntitySeqIDBeg + seg.AlignLength; e > end {
			end = e
		}
	}
	if end <= 0 {
		return
	}
	covered := bitset.New(uint(end))
	for _, seg := range group {
		for pos := seg.EntitySeqIDBeg; pos < seg.EntitySeqIDBeg+seg.AlignLength; pos++ {
			if pos < 0 {
				continue
			}
			if covered.Test(uint(pos)) {
				log.Printf("Overlapping aligned regions in %v entity %v against %v %v", entryID, entityID, key.DatabaseName, key.DatabaseAccession)
				return
			}
			covered.Set(uint(pos))
		}
	}
}

// SelectGroup partitions the segments for one accession key into
// alignment groups and returns the group with the largest coverage.
// Ties are broken in favor of the first-encountered group. A winning
// group with coverage <= 0 indicates inconsistent upstream begin/length
// data; it is rejected with a warning.
func SelectGroup(entryID, entityID string, key AccessionKey, segments []Segment) (Group, bool) {
	groups := SplitGroups(segments)
	if len(groups) == 0 {
		return nil, false
	}
	best := groups[0]
	bestCoverage := best.Coverage()
	for _, group := range groups[1:] {
		if coverage := group.Coverage(); coverage > bestCoverage {
			best = group
			bestCoverage = coverage
		}
	}
	if bestCoverage <= 0 {
		log.Printf("Skipping %v inconsistent alignment for entity %v against %v %v", entryID, entityID, key.DatabaseName, key.DatabaseAccession)
		return nil, false
	}
	checkOverlap(entryID, entityID, key, best)
	return best, true
}
