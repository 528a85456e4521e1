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
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/structbio/seqannot/align"
	"github.com/structbio/seqannot/cif"
	"github.com/structbio/seqannot/utils"
)

// AlignCategory is the derived category holding the reconciled
// per-entity reference sequence alignments.
const AlignCategory = "rcsb_polymer_entity_align"

// databaseDisplayNames maps deposited reference database codes to their
// display names. Codes outside this map are not supported and their
// alignments are skipped.
var databaseDisplayNames = utils.StringMap{
	"UNP":    "UniProt",
	"GB":     "GenBank",
	"PDB":    "PDB",
	"EMBL":   "EMBL",
	"GENP":   "GenBank",
	"NDB":    "NDB",
	"NOR":    "NORINE",
	"PIR":    "PIR",
	"PRF":    "PRF",
	"REF":    "RefSeq",
	"TPG":    "GenBank",
	"TREMBL": "UniProt",
	"SWS":    "UniProt",
	"SWALL":  "UniProt",
}

// A RefAlignments annotator reconciles the alignments embedded in a
// record with the external curated chain mapping resource and emits the
// winning alignments per entity.
type RefAlignments struct {
	src         align.ChainSource
	useExternal bool
}

// NewRefAlignments returns the reference alignment annotator. src may
// be nil when external reconciliation is disabled.
func NewRefAlignments(src align.ChainSource, useExternal bool) *RefAlignments {
	return &RefAlignments{src: src, useExternal: useExternal}
}

// Name implements Annotator.
func (a *RefAlignments) Name() string {
	return "reference-alignments"
}

// embeddedSegments joins struct_ref_seq rows to their struct_ref parent
// and collects the aligned segments per entity, in deposition order.
func embeddedSegments(rec *cif.Record) map[string][]align.Segment {
	structRef := rec.Get("struct_ref")
	structRefSeq := rec.Get("struct_ref_seq")
	if structRef == nil || structRefSeq == nil {
		return nil
	}
	entitySegments := make(map[string][]align.Segment)
	for row := 0; row < structRefSeq.RowCount(); row++ {
		refID := structRefSeq.Value("ref_id", row)
		refRows := structRef.SelectRowsWhere("id", refID)
		if len(refRows) == 0 {
			log.Printf("Skipping alignment with unknown reference %v in record %v", refID, rec.Name)
			continue
		}
		refRow := refRows[0]
		entityID := structRef.Value("entity_id", refRow)
		begSeq, err1 := strconv.Atoi(structRefSeq.Value("seq_align_beg", row))
		endSeq, err2 := strconv.Atoi(structRefSeq.Value("seq_align_end", row))
		begDB, err3 := strconv.Atoi(structRefSeq.ValueOrDefault("db_align_beg", row, "1"))
		if err1 != nil || err2 != nil || err3 != nil {
			log.Printf("Skipping malformed alignment boundaries for entity %v of record %v", entityID, rec.Name)
			continue
		}
		// a deposited reference begin of 0 means position 1
		if begDB == 0 {
			begDB = 1
		}
		isoform := structRef.Value("pdbx_db_isoform", refRow)
		if cif.Absent(isoform) {
			isoform = ""
		}
		entitySegments[entityID] = append(entitySegments[entityID], align.Segment{
			DatabaseName:      structRef.Value("db_name", refRow),
			DatabaseAccession: structRef.Value("pdbx_db_accession", refRow),
			DatabaseIsoform:   isoform,
			EntitySeqIDBeg:    begSeq,
			DBSeqIDBeg:        begDB,
			AlignLength:       endSeq - begSeq + 1,
		})
	}
	return entitySegments
}

// recordChains lists the physical chains of a record with their entity,
// kind, and author chain identifier. The author identifier comes from
// the polymer sequence scheme and falls back to the asym identifier.
func recordChains(rec *cif.Record) []align.Chain {
	structAsym := rec.Get("struct_asym")
	if structAsym == nil {
		return nil
	}
	entityKinds := make(map[string]string)
	if entity := rec.Get("entity"); entity != nil {
		for row := 0; row < entity.RowCount(); row++ {
			entityKinds[entity.Value("id", row)] = entity.Value("type", row)
		}
	}
	authAsym := make(map[string]string)
	if scheme := rec.Get("pdbx_poly_seq_scheme"); scheme != nil {
		for row := 0; row < scheme.RowCount(); row++ {
			asymID := scheme.Value("asym_id", row)
			if strandID := scheme.Value("pdb_strand_id", row); !cif.Absent(strandID) {
				if _, found := authAsym[asymID]; !found {
					authAsym[asymID] = strandID
				}
			}
		}
	}
	var chains []align.Chain
	for row := 0; row < structAsym.RowCount(); row++ {
		asymID := structAsym.Value("id", row)
		entityID := structAsym.Value("entity_id", row)
		authAsymID, found := authAsym[asymID]
		if !found {
			authAsymID = asymID
		}
		chains = append(chains, align.Chain{
			AsymID:     asymID,
			AuthAsymID: authAsymID,
			EntityID:   entityID,
			Kind:       entityKinds[entityID],
		})
	}
	return chains
}

// entityIDLess orders entity identifiers numerically where possible.
func entityIDLess(a, b string) bool {
	na, err1 := strconv.Atoi(a)
	nb, err2 := strconv.Atoi(b)
	if err1 == nil && err2 == nil {
		return na < nb
	}
	return a < b
}

type alignRow struct {
	entityID   string
	key        align.AccessionKey
	provenance string
	group      align.Group
}

// sortedAlignRows flattens the alignment map into a deterministic row
// order: by entity, database, accession, then isoform.
func sortedAlignRows(alignments align.EntityAlignments) []alignRow {
	var rows []alignRow
	for entityKey, refs := range alignments {
		for accessionKey, group := range refs {
			rows = append(rows, alignRow{entityKey.EntityID, accessionKey, entityKey.Provenance, group})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ri, rj := rows[i], rows[j]
		if ri.entityID != rj.entityID {
			return entityIDLess(ri.entityID, rj.entityID)
		}
		if ri.key.DatabaseName != rj.key.DatabaseName {
			return ri.key.DatabaseName < rj.key.DatabaseName
		}
		if ri.key.DatabaseAccession != rj.key.DatabaseAccession {
			return ri.key.DatabaseAccession < rj.key.DatabaseAccession
		}
		return ri.key.DatabaseIsoform < rj.key.DatabaseIsoform
	})
	return rows
}

func joinSegmentInts(group align.Group, f func(align.Segment) int) string {
	parts := make([]string, len(group))
	for i, s := range group {
		parts[i] = strconv.Itoa(f(s))
	}
	return strings.Join(parts, ",")
}

// Annotate implements Annotator.
func (a *RefAlignments) Annotate(rec *cif.Record) (bool, error) {
	entitySegments := embeddedSegments(rec)
	chains := recordChains(rec)
	src := a.src
	if !a.useExternal {
		src = nil
	}
	alignments := align.Resolve(rec.EntryID(), entitySegments, rec.IsComputational(), chains, src, a.useExternal)
	if len(alignments) == 0 {
		return false, nil
	}
	cat := cif.NewCategory(AlignCategory, nil)
	row := 0
	for _, r := range sortedAlignRows(alignments) {
		displayName, supported := databaseDisplayNames[r.key.DatabaseName]
		if !supported {
			log.Printf("Skipping alignment against unsupported database %v for entity %v of record %v",
				r.key.DatabaseName, r.entityID, rec.Name)
			continue
		}
		cat.SetValue(strconv.Itoa(row+1), "ordinal", row)
		cat.SetValue(rec.EntryID(), "entry_id", row)
		cat.SetValue(r.entityID, "entity_id", row)
		cat.SetValue(displayName, "reference_database_name", row)
		cat.SetValue(r.key.DatabaseAccession, "reference_database_accession", row)
		if r.key.DatabaseIsoform != "" {
			cat.SetValue(r.key.DatabaseIsoform, "reference_database_isoform", row)
		}
		cat.SetValue(r.provenance, "provenance_source", row)
		cat.SetValue(joinSegmentInts(r.group, func(s align.Segment) int { return s.DBSeqIDBeg }), "aligned_regions_ref_beg_seq_id", row)
		cat.SetValue(joinSegmentInts(r.group, func(s align.Segment) int { return s.EntitySeqIDBeg }), "aligned_regions_entity_beg_seq_id", row)
		cat.SetValue(joinSegmentInts(r.group, func(s align.Segment) int { return s.AlignLength }), "aligned_regions_length", row)
		row++
	}
	if row == 0 {
		return false, nil
	}
	rec.Append(cat)
	return true, nil
}
