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
	"reflect"
	"testing"
)

func unp(accession string, entityBeg, dbBeg, length int) Segment {
	return Segment{
		DatabaseName:      "UNP",
		DatabaseAccession: accession,
		EntitySeqIDBeg:    entityBeg,
		DBSeqIDBeg:        dbBeg,
		AlignLength:       length,
	}
}

func TestSplitGroups(t *testing.T) {
	segments := []Segment{
		unp("P01901", 1, 25, 100),
		unp("P01901", 110, 140, 20),
		unp("P01901", 1, 25, 45),
	}
	groups := SplitGroups(segments)
	if len(groups) != 2 {
		t.Fatal("expected 2 groups, got", len(groups))
	}
	if len(groups[0]) != 2 || len(groups[1]) != 1 {
		t.Error("unexpected group sizes", len(groups[0]), len(groups[1]))
	}
	if groups[0].Coverage() != 120 || groups[1].Coverage() != 45 {
		t.Error("unexpected group coverages", groups[0].Coverage(), groups[1].Coverage())
	}
}

func TestSelectGroupLongestWins(t *testing.T) {
	key := AccessionKey{"UNP", "P01901", ""}
	segments := []Segment{
		unp("P01901", 1, 25, 100),
		unp("P01901", 110, 140, 20),
		unp("P01901", 1, 25, 45),
	}
	winner, ok := SelectGroup("1abc", "1", key, segments)
	if !ok {
		t.Fatal("expected a winning group")
	}
	if winner.Coverage() != 120 {
		t.Error("expected winner coverage 120, got", winner.Coverage())
	}
	if len(winner) != 2 {
		t.Error("expected 2 segments in winner, got", len(winner))
	}
}

func TestSelectGroupFirstWinsOnTie(t *testing.T) {
	key := AccessionKey{"UNP", "P01901", ""}
	segments := []Segment{
		unp("P01901", 1, 25, 50),
		unp("P01901", 10, 30, 50),
	}
	winner, ok := SelectGroup("1abc", "1", key, segments)
	if !ok {
		t.Fatal("expected a winning group")
	}
	if winner[0].DBSeqIDBeg != 25 {
		t.Error("expected the first group to win the tie")
	}
}

func TestSelectGroupRejectsNonPositiveCoverage(t *testing.T) {
	key := AccessionKey{"UNP", "P01901", ""}
	segments := []Segment{
		unp("P01901", 1, 25, 0),
	}
	if winner, ok := SelectGroup("1abc", "1", key, segments); ok {
		t.Error("expected no winner for non-positive coverage, got", winner)
	}
}

func TestCollectEmbedded(t *testing.T) {
	entitySegments := map[string][]Segment{
		"1": {
			unp("P01901", 1, 25, 100),
			unp("P01901", 1, 25, 45),
		},
	}
	result := CollectEmbedded("1abc", entitySegments, ProvenancePDB)
	key := EntityKey{"1abc", "1", ProvenancePDB}
	refs, found := result[key]
	if !found {
		t.Fatal("missing entity key", key)
	}
	group, found := refs[AccessionKey{"UNP", "P01901", ""}]
	if !found || group.Coverage() != 100 {
		t.Error("unexpected winning group", group)
	}
}

type fakeChainSource map[string][]Segment

func (f fakeChainSource) ChainAlignments(entryID, authAsymID string) []Segment {
	return f[authAsymID]
}

func TestCollectExternalKeepsLongestChain(t *testing.T) {
	chains := []Chain{
		{AsymID: "A", AuthAsymID: "A", EntityID: "1", Kind: "polymer"},
		{AsymID: "B", AuthAsymID: "B", EntityID: "1", Kind: "polymer"},
		{AsymID: "C", AuthAsymID: "C", EntityID: "2", Kind: "water"},
	}
	src := fakeChainSource{
		"A": {unp("P01901", 1, 25, 80)},
		"B": {unp("P01902", 1, 25, 120)},
		"C": {unp("P99999", 1, 1, 500)},
	}
	result := CollectExternal("1abc", chains, src)
	if len(result) != 1 {
		t.Fatal("expected 1 entity, got", len(result))
	}
	refs := result[EntityKey{"1abc", "1", ProvenanceSIFTS}]
	if len(refs) != 1 {
		t.Fatal("expected 1 reference for entity 1, got", len(refs))
	}
	if _, found := refs[AccessionKey{"UNP", "P01902", ""}]; !found {
		t.Error("expected the longer chain B to represent entity 1")
	}
}

func TestCollectExternalFirstChainWinsOnTie(t *testing.T) {
	chains := []Chain{
		{AsymID: "A", AuthAsymID: "A", EntityID: "1", Kind: "polymer"},
		{AsymID: "B", AuthAsymID: "B", EntityID: "1", Kind: "polymer"},
	}
	src := fakeChainSource{
		"A": {unp("P01901", 1, 25, 80)},
		"B": {unp("P01902", 1, 25, 80)},
	}
	refs := CollectExternal("1abc", chains, src)[EntityKey{"1abc", "1", ProvenanceSIFTS}]
	if _, found := refs[AccessionKey{"UNP", "P01901", ""}]; !found {
		t.Error("expected the first chain A to win the tie")
	}
}

func TestMergeOverridesPerEntity(t *testing.T) {
	embedded := EntityAlignments{
		EntityKey{"1abc", "1", ProvenancePDB}: {
			AccessionKey{"UNP", "P01901", ""}:   {unp("P01901", 1, 25, 100)},
			AccessionKey{"EMBL", "CAB4134", ""}: {Segment{DatabaseName: "EMBL", DatabaseAccession: "CAB4134", EntitySeqIDBeg: 1, DBSeqIDBeg: 1, AlignLength: 60}},
		},
		EntityKey{"1abc", "2", ProvenancePDB}: {
			AccessionKey{"UNP", "P01902", ""}: {unp("P01902", 1, 1, 90)},
		},
	}
	external := EntityAlignments{
		EntityKey{"1abc", "1", ProvenanceSIFTS}: {
			AccessionKey{"UNP", "Q99999", ""}: {unp("Q99999", 1, 30, 110)},
		},
	}
	result := Merge(embedded, external)
	if len(result) != 2 {
		t.Fatal("expected 2 entities, got", len(result))
	}
	if _, found := result[EntityKey{"1abc", "1", ProvenancePDB}]; found {
		t.Error("embedded entries for overridden entity 1 must be dropped")
	}
	refs := result[EntityKey{"1abc", "1", ProvenanceSIFTS}]
	if len(refs) != 1 {
		t.Error("expected only the external reference for entity 1, got", len(refs))
	}
	if !reflect.DeepEqual(result[EntityKey{"1abc", "2", ProvenancePDB}], embedded[EntityKey{"1abc", "2", ProvenancePDB}]) {
		t.Error("embedded entries for entity 2 must survive untouched")
	}
}

func TestResolveProvenance(t *testing.T) {
	entitySegments := map[string][]Segment{
		"1": {unp("P01901", 1, 25, 100)},
	}
	result := Resolve("ma-1abc", entitySegments, true, nil, nil, false)
	if _, found := result[EntityKey{"ma-1abc", "1", ProvenanceModel}]; !found {
		t.Error("expected model provenance for computational records")
	}
	result = Resolve("1abc", entitySegments, false, nil, nil, false)
	if _, found := result[EntityKey{"1abc", "1", ProvenancePDB}]; !found {
		t.Error("expected embedded provenance for experimental records")
	}
}
