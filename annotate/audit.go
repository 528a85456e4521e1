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
	"github.com/structbio/seqannot/cif"
	"github.com/structbio/seqannot/utils"
)

// AuditCategory records which annotation run produced a file.
const AuditCategory = "rcsb_annotation_audit"

// An Audit annotator stamps every record with the run identifier and
// the program version. Replacing any previous stamp keeps reannotation
// idempotent for a fixed run identifier.
type Audit struct {
	RunID string
}

// Name implements Annotator.
func (a *Audit) Name() string {
	return "audit"
}

// Annotate implements Annotator.
func (a *Audit) Annotate(rec *cif.Record) (bool, error) {
	cat := cif.NewCategory(AuditCategory, nil)
	cat.SetValue(a.RunID, "run_id", 0)
	cat.SetValue(utils.ProgramName, "program", 0)
	cat.SetValue(utils.ProgramVersion, "version", 0)
	rec.Append(cat)
	return true, nil
}
