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

// Package annotate runs derived-category annotators over batches of
// mmCIF structure records.
package annotate

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/exascience/pargo/pipeline"

	"github.com/structbio/seqannot/cif"
)

// An Annotator derives categories for a single record. Annotate reports
// whether the annotator applied to the record, and returns an error
// only when the record must be considered unannotated by it.
type Annotator interface {
	Name() string
	Annotate(rec *cif.Record) (bool, error)
}

// A Runner applies a fixed annotator sequence to a set of record files
// and writes the annotated records to an output directory. Annotators
// must be safe for concurrent use: the runner processes multiple files
// at the same time.
type Runner struct {
	Annotators []Annotator
	OutputDir  string
	nofBatches int
}

// NofBatches sets the number of file batches for the next Run. With a
// value < 1 the pipeline chooses a reasonable default that takes
// runtime.GOMAXPROCS(0) into account.
func (r *Runner) NofBatches(n int) {
	r.nofBatches = n
}

// applyAnnotator turns an annotator panic into an error, so that one
// broken record cannot take down the whole run.
func applyAnnotator(a Annotator, rec *cif.Record) (applied bool, err error) {
	defer func() {
		if x := recover(); x != nil {
			err = fmt.Errorf("panic in annotator %v: %v", a.Name(), x)
		}
	}()
	return a.Annotate(rec)
}

// AnnotateRecord applies the runner's annotators to one record in
// order. An annotator error or panic is reported and skipped; the
// remaining annotators still run.
func (r *Runner) AnnotateRecord(rec *cif.Record) {
	for _, a := range r.Annotators {
		if _, err := applyAnnotator(a, rec); err != nil {
			log.Printf("Skipping annotator %v for record %v: %v", a.Name(), rec.Name, err)
		}
	}
}

func (r *Runner) processFile(p *pipeline.Pipeline, path string) {
	rec, err := cif.ReadFile(path)
	if err != nil {
		log.Printf("Skipping input file %v: %v", path, err)
		return
	}
	r.AnnotateRecord(rec)
	output := filepath.Join(r.OutputDir, filepath.Base(path))
	if err := cif.WriteFile(rec, output); err != nil {
		p.SetErr(err)
	}
}

// Run annotates all input files with a pargo pipeline. Unreadable
// inputs and failing annotators are reported and skipped; an output
// write failure aborts the run.
func (r *Runner) Run(inputFiles []string) error {
	var p pipeline.Pipeline
	p.Source(inputFiles)
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		for _, path := range data.([]string) {
			r.processFile(&p, path)
		}
		return data
	})))
	p.NofBatches(r.nofBatches)
	r.nofBatches = 0
	p.Run()
	return p.Err()
}
