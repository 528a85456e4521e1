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

// seqannot derives reference sequence alignment and source organism
// annotations for mmCIF structure records, reconciling alignments embedded
// in the deposited records with an external curated chain mapping resource,
// and expanding taxonomy identifiers into full lineages.
//
// Please see https://github.com/structbio/seqannot for a documentation
// of the tool, and below for the API documentation.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/structbio/seqannot/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: annotate, taxdump-to-db")
	fmt.Fprint(os.Stderr, "\n", cmd.AnnotateHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.TaxdumpToDbHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "annotate":
		err = cmd.Annotate()
	case "taxdump-to-db":
		err = cmd.TaxdumpToDb()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Printf("Unknown command %v.\n", os.Args[1])
		fmt.Fprint(os.Stderr, cmd.HelpMessage)
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal(err)
	}
}
