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

package cmd

import (
	"errors"
	"flag"
	"os"

	"github.com/structbio/seqannot/internal"
	"github.com/structbio/seqannot/taxonomy"
)

// TaxdumpToDbHelp is the help string for the taxdump-to-db command.
const TaxdumpToDbHelp = "\ntaxdump-to-db parameters:\n" +
	"seqannot taxdump-to-db taxdump-directory output-db\n" +
	"[--log-path path]\n" +
	"[--timed]\n" +
	"[--help]\n"

// TaxdumpToDb parses the command line for the taxdump-to-db command and
// imports an NCBI-style taxonomy dump into the database consumed by the
// annotate command.
func TaxdumpToDb() error {
	var flags flag.FlagSet

	var (
		logPath string
		timed   bool
	)

	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")

	parseFlags(flags, 4, TaxdumpToDbHelp)

	dumpDir := getFilename(os.Args[2], TaxdumpToDbHelp)
	dbPath := getFilename(os.Args[3], TaxdumpToDbHelp)

	setLogOutput(logPath)

	if !checkExist("", dumpDir) {
		return errors.New("missing taxonomy dump directory")
	}

	fullDumpDir, err := internal.FullPathname(dumpDir)
	if err != nil {
		return err
	}
	fullDbPath, err := internal.FullPathname(dbPath)
	if err != nil {
		return err
	}

	return timedRun(timed, "", "Importing taxonomy dump.", 1, func() error {
		return taxonomy.ImportTaxdump(fullDumpDir, fullDbPath)
	})
}
