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
	"github.com/structbio/seqannot/organism"
	"github.com/structbio/seqannot/taxonomy"
)

// A SourceOrganisms annotator aggregates the deposited source and host
// organism rows into derived categories with resolved taxonomies.
type SourceOrganisms struct {
	svc taxonomy.Service
}

// NewSourceOrganisms returns the source organism annotator.
func NewSourceOrganisms(svc taxonomy.Service) *SourceOrganisms {
	return &SourceOrganisms{svc: svc}
}

// Name implements Annotator.
func (a *SourceOrganisms) Name() string {
	return "source-organisms"
}

// Annotate implements Annotator.
func (a *SourceOrganisms) Annotate(rec *cif.Record) (bool, error) {
	return organism.Aggregate(rec, a.svc), nil
}
