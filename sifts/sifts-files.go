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

// Package sifts reads per-entry summary files of the external curated
// chain-to-reference-sequence mapping resource.
package sifts

import (
	"bufio"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/structbio/seqannot/align"
)

// A Summary provides chain alignments from tab-separated per-entry
// summary files under a root directory. Each <entryid>.tsv file holds
// one aligned segment per line:
//
//	authAsymId  dbName  dbAccession  dbIsoform  entityBeg  dbBeg  length
//
// Lines starting with # are skipped. A missing file means the resource
// has no data for the entry. Summary values are safe for concurrent use.
type Summary struct {
	dir     string
	mutex   sync.Mutex
	entries map[string]map[string][]align.Segment
}

// NewSummary returns a Summary reading per-entry files below dir.
func NewSummary(dir string) *Summary {
	return &Summary{dir: dir, entries: make(map[string]map[string][]align.Segment)}
}

// ChainAlignments implements align.ChainSource.
func (s *Summary) ChainAlignments(entryID, authAsymID string) []align.Segment {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	chains, found := s.entries[entryID]
	if !found {
		chains = s.parseEntry(entryID)
		s.entries[entryID] = chains
	}
	return chains[authAsymID]
}

func parseSeqID(field string) (int, bool) {
	value, err := strconv.Atoi(field)
	return value, err == nil
}

func (s *Summary) parseEntry(entryID string) map[string][]align.Segment {
	chains := make(map[string][]align.Segment)
	filename := filepath.Join(s.dir, strings.ToLower(entryID)+".tsv")
	file, err := os.Open(filename)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Ignoring chain mapping summary %v: %v", filename, err)
		}
		return chains
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Printf("Error closing chain mapping summary %v: %v", filename, err)
		}
	}()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) < 7 {
			log.Printf("Skipping short line in chain mapping summary %v: %v", filename, line)
			continue
		}
		entityBeg, ok1 := parseSeqID(fields[4])
		dbBeg, ok2 := parseSeqID(fields[5])
		length, ok3 := parseSeqID(fields[6])
		if !ok1 || !ok2 || !ok3 {
			log.Printf("Skipping malformed line in chain mapping summary %v: %v", filename, line)
			continue
		}
		isoform := fields[3]
		if isoform == "." || isoform == "?" || isoform == "-" {
			isoform = ""
		}
		chains[fields[0]] = append(chains[fields[0]], align.Segment{
			DatabaseName:      fields[1],
			DatabaseAccession: fields[2],
			DatabaseIsoform:   isoform,
			EntitySeqIDBeg:    entityBeg,
			DBSeqIDBeg:        dbBeg,
			AlignLength:       length,
		})
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Error reading chain mapping summary %v: %v", filename, err)
	}
	return chains
}
