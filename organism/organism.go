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

// Package organism aggregates the per-entity source and host organism
// rows of a structure record into derived categories with resolved
// taxonomies and entity-level summary counters.
package organism

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/structbio/seqannot/cif"
	"github.com/structbio/seqannot/taxonomy"
)

var reNonDigit = regexp.MustCompile(`[^\d]+`)

// Derived category and attribute names.
const (
	SourceCategory = "rcsb_entity_source_organism"
	HostCategory   = "rcsb_entity_host_organism"

	primaryDataProvenance = "Primary Data"
)

// An attrMapping maps a deposited attribute to its derived name.
type attrMapping struct {
	src, dst string
}

// A sourceCategory describes one deposited source category in
// preference order.
type sourceCategory struct {
	name       string
	sourceType string
	mappings   []attrMapping
}

var genMappings = []attrMapping{
	{"entity_id", "entity_id"},
	{"pdbx_gene_src_scientific_name", "scientific_name"},
	{"gene_src_common_name", "common_name"},
	{"pdbx_gene_src_ncbi_taxonomy_id", "ncbi_taxonomy_id"},
	{"pdbx_src_id", "pdbx_src_id"},
	{"pdbx_beg_seq_num", "beg_seq_num"},
	{"pdbx_end_seq_num", "end_seq_num"},
}

var hostMappings = []attrMapping{
	{"entity_id", "entity_id"},
	{"pdbx_host_org_scientific_name", "scientific_name"},
	{"pdbx_host_org_common_name", "common_name"},
	{"pdbx_host_org_ncbi_taxonomy_id", "ncbi_taxonomy_id"},
	{"pdbx_src_id", "pdbx_src_id"},
	{"pdbx_beg_seq_num", "beg_seq_num"},
	{"pdbx_end_seq_num", "end_seq_num"},
}

var natMappings = []attrMapping{
	{"entity_id", "entity_id"},
	{"pdbx_organism_scientific", "scientific_name"},
	{"nat_common_name", "common_name"},
	{"pdbx_ncbi_taxonomy_id", "ncbi_taxonomy_id"},
	{"pdbx_src_id", "pdbx_src_id"},
	{"pdbx_beg_seq_num", "beg_seq_num"},
	{"pdbx_end_seq_num", "end_seq_num"},
}

var synMappings = []attrMapping{
	{"entity_id", "entity_id"},
	{"organism_scientific", "scientific_name"},
	{"organism_common_name", "common_name"},
	{"ncbi_taxonomy_id", "ncbi_taxonomy_id"},
	{"pdbx_src_id", "pdbx_src_id"},
	{"beg_seq_num", "beg_seq_num"},
	{"end_seq_num", "end_seq_num"},
}

// sourceCategories in selection preference order: once a category
// yields rows for an entity, later categories are not consulted for
// that entity.
var sourceCategories = []sourceCategory{
	{"entity_src_gen", "genetically engineered", genMappings},
	{"entity_src_nat", "natural", natMappings},
	{"pdbx_entity_src_syn", "synthetic", synMappings},
}

// presentMappings keeps only the mappings whose deposited attribute
// exists in the category.
func presentMappings(cat *cif.Category, mappings []attrMapping) (srcAttrs, dstAttrs []string) {
	if cat == nil {
		return nil, nil
	}
	for _, m := range mappings {
		if cat.HasAttribute(m.src) {
			srcAttrs = append(srcAttrs, m.src)
			dstAttrs = append(dstAttrs, m.dst)
		}
	}
	return srcAttrs, dstAttrs
}

// salvageTargets pairs the scientific-name attribute of each deposited
// source category with its taxonomy-id attribute.
var salvageTargets = []struct {
	category, nameAttr, taxIDAttr string
}{
	{"entity_src_gen", "pdbx_gene_src_scientific_name", "pdbx_gene_src_ncbi_taxonomy_id"},
	{"entity_src_gen", "pdbx_host_org_scientific_name", "pdbx_host_org_ncbi_taxonomy_id"},
	{"entity_src_nat", "pdbx_organism_scientific", "pdbx_ncbi_taxonomy_id"},
	{"pdbx_entity_src_syn", "organism_scientific", "ncbi_taxonomy_id"},
}

// salvageTaxonomy fills in missing taxonomy identifiers using the
// scientific name as a surrogate lookup key. A category's name-based
// lookup runs only for rows whose own taxonomy-id field is empty.
func salvageTaxonomy(rec *cif.Record, svc taxonomy.Service) {
	for _, target := range salvageTargets {
		cat := rec.Get(target.category)
		if cat == nil {
			continue
		}
		for row := 0; row < cat.RowCount(); row++ {
			if !cif.Absent(cat.Value(target.taxIDAttr, row)) {
				continue
			}
			name := cat.Value(target.nameAttr, row)
			if cif.Absent(name) {
				continue
			}
			if taxID := svc.IDByScientificName(name); taxID > 0 {
				log.Printf("%v salvaged taxId %v using %v", rec.Name, taxID, name)
				cat.SetValue(strconv.Itoa(taxID), target.taxIDAttr, row)
			}
		}
	}
}

// An assignmentRow is one selected source or host organism row before
// delimited-field expansion.
type assignmentRow struct {
	entityID   string
	sourceType string
	attrs      []string
	values     []string
}

// normalizeDelimited expands one row whose fields hold comma-delimited
// value lists into count parallel rows. Single values repeat; shorter
// lists pad with the "?" placeholder; longer lists truncate.
func normalizeDelimited(values []string, count int) [][]string {
	columns := make([][]string, len(values))
	for i, value := range values {
		parts := strings.Split(value, ",")
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		if len(parts) == 1 {
			for len(parts) < count {
				parts = append(parts, parts[0])
			}
		}
		for len(parts) < count {
			parts = append(parts, "?")
		}
		columns[i] = parts[:count]
	}
	rows := make([][]string, count)
	for r := range rows {
		row := make([]string, len(columns))
		for c := range columns {
			row[c] = columns[c][r]
		}
		rows[r] = row
	}
	return rows
}

// expandRow turns one assignment row into its per-taxon rows. A row
// whose taxonomy-id field packs N comma-delimited values expands into N
// rows with the part index rewritten 1..N.
func expandRow(row assignmentRow) [][]string {
	taxIdx := indexOf(row.attrs, "ncbi_taxonomy_id")
	if taxIdx < 0 {
		return [][]string{row.values}
	}
	taxValues := strings.Split(row.values[taxIdx], ",")
	if len(taxValues) < 2 {
		return [][]string{row.values}
	}
	rows := normalizeDelimited(row.values, len(taxValues))
	if partIdx := indexOf(row.attrs, "pdbx_src_id"); partIdx >= 0 {
		for i := range rows {
			rows[i][partIdx] = strconv.Itoa(i + 1)
		}
	}
	return rows
}

func indexOf(attrs []string, attr string) int {
	for i, a := range attrs {
		if a == attr {
			return i
		}
	}
	return -1
}

// entityProvenance returns the per-entity provenance of a computational
// model, read from the transient provenance attribute of the natural
// source category. It returns "" when no usable value exists.
func entityProvenance(rec *cif.Record, entityID string) string {
	cat := rec.Get("entity_src_nat")
	if cat == nil || !cat.HasAttribute("rcsb_provenance_source") {
		return ""
	}
	for _, row := range cat.SelectRowsWhere("entity_id", entityID) {
		if v := cat.Value("rcsb_provenance_source", row); !cif.Absent(v) {
			return v
		}
	}
	return ""
}

// joinInts renders integers as a ";"-joined list.
func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ";")
}

// emitTaxonomy resolves the taxonomy-id cell of one emitted row and
// populates the derived taxonomy attributes. It returns the canonical
// taxon id, or 0 when the cell holds no usable identifier.
func emitTaxonomy(cat *cif.Category, svc taxonomy.Service, value string, row int) int {
	digits := reNonDigit.ReplaceAllString(value, "")
	if digits == "" {
		return 0
	}
	rawID, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	node, ok := taxonomy.Resolve(svc, rawID)
	if node.TaxID <= 0 {
		return 0
	}
	cat.SetValue(strconv.Itoa(node.TaxID), "ncbi_taxonomy_id", row)
	if !ok {
		return node.TaxID
	}
	cat.SetValue(node.ScientificName, "ncbi_scientific_name", row)
	if node.ParentScientificName != "" {
		cat.SetValue(node.ParentScientificName, "ncbi_parent_scientific_name", row)
	}
	if len(node.CommonNames) > 0 {
		cat.SetValue(strings.Join(node.CommonNames, ";"), "ncbi_common_names", row)
	}
	if node.Lineage != nil {
		depths := make([]int, len(node.Lineage))
		ids := make([]int, len(node.Lineage))
		names := make([]string, len(node.Lineage))
		for i, entry := range node.Lineage {
			depths[i] = entry.Depth
			ids[i] = entry.TaxID
			names[i] = entry.Name
		}
		cat.SetValue(joinInts(depths), "taxonomy_lineage_depth", row)
		cat.SetValue(joinInts(ids), "taxonomy_lineage_id", row)
		cat.SetValue(strings.Join(names, ";"), "taxonomy_lineage_name", row)
	}
	return node.TaxID
}

// Aggregate builds the derived source and host organism categories and
// the entity-level summary counters for one record. It returns false
// when the record carries no source information at all.
func Aggregate(rec *cif.Record, svc taxonomy.Service) bool {
	if !rec.Exists("entity_src_gen") && !rec.Exists("entity_src_nat") && !rec.Exists("pdbx_entity_src_syn") {
		return false
	}
	entity := rec.Get("entity")
	if entity == nil {
		return false
	}
	salvageTaxonomy(rec, svc)

	isCompModel := rec.IsComputational()

	var srcRows, hostRows []assignmentRow
	partCount := make(map[string]int)
	hostSrcAttrs, hostDstAttrs := presentMappings(rec.Get("entity_src_gen"), hostMappings)
	for _, entityID := range entity.AttributeValues("id") {
		partCount[entityID] = 0
		for _, source := range sourceCategories {
			cat := rec.Get(source.name)
			srcAttrs, dstAttrs := presentMappings(cat, source.mappings)
			if len(srcAttrs) == 0 {
				continue
			}
			values := cat.SelectValuesWhere(srcAttrs, entityID, "entity_id")
			if source.name == "entity_src_gen" && len(hostSrcAttrs) > 0 {
				for _, v := range cat.SelectValuesWhere(hostSrcAttrs, entityID, "entity_id") {
					hostRows = append(hostRows, assignmentRow{entityID, source.sourceType, hostDstAttrs, v})
				}
			}
			if len(values) == 0 {
				continue
			}
			for _, v := range values {
				srcRows = append(srcRows, assignmentRow{entityID, source.sourceType, dstAttrs, v})
			}
			partCount[entityID] = len(values)
			break
		}
	}

	entityTaxIDs := make(map[string]map[int]bool)

	srcCat := cif.NewCategory(SourceCategory, nil)
	iRow := 0
	for _, row := range srcRows {
		rows := expandRow(row)
		if len(rows) > 1 {
			partCount[row.entityID] = len(rows)
		}
		provenance := primaryDataProvenance
		if isCompModel {
			provenance = entityProvenance(rec, row.entityID)
		}
		for _, values := range rows {
			srcCat.SetValue(row.sourceType, "source_type", iRow)
			srcCat.SetValue(provenance, "provenance_source", iRow)
			for i, attr := range row.attrs {
				srcCat.SetValue(values[i], attr, iRow)
				if attr == "ncbi_taxonomy_id" && !cif.Absent(values[i]) {
					if taxID := emitTaxonomy(srcCat, svc, values[i], iRow); taxID > 0 {
						if entityTaxIDs[row.entityID] == nil {
							entityTaxIDs[row.entityID] = make(map[int]bool)
						}
						entityTaxIDs[row.entityID][taxID] = true
					}
				}
			}
			iRow++
		}
	}
	if iRow > 0 {
		rec.Append(srcCat)
	}

	hostCat := cif.NewCategory(HostCategory, nil)
	iRow = 0
	for _, row := range hostRows {
		rows := expandRow(row)
		provenance := primaryDataProvenance
		if isCompModel {
			provenance = entityProvenance(rec, row.entityID)
		}
		for _, values := range rows {
			hostCat.SetValue(provenance, "provenance_source", iRow)
			for i, attr := range row.attrs {
				hostCat.SetValue(values[i], attr, iRow)
				if attr == "ncbi_taxonomy_id" && !cif.Absent(values[i]) {
					emitTaxonomy(hostCat, svc, values[i], iRow)
				}
			}
			iRow++
		}
	}
	if iRow > 0 {
		rec.Append(hostCat)
	}

	// entity summary counters and the record-level taxonomy count
	taxCountTotal := 0
	for row := 0; row < entity.RowCount(); row++ {
		entityID := entity.Value("id", row)
		flag := "N"
		if partCount[entityID] > 1 {
			flag = "Y"
		}
		entity.SetValue(strconv.Itoa(partCount[entityID]), "rcsb_source_part_count", row)
		entity.SetValue(flag, "rcsb_multiple_source_flag", row)
		taxCount := len(entityTaxIDs[entityID])
		entity.SetValue(strconv.Itoa(taxCount), "rcsb_source_taxonomy_count", row)
		taxCountTotal += taxCount
	}
	if info := rec.Get("rcsb_entry_info"); info != nil {
		info.SetValue(strconv.Itoa(taxCountTotal), "polymer_entity_taxonomy_count", 0)
	}
	return true
}
