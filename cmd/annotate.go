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
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"

	"github.com/structbio/seqannot/annotate"
	"github.com/structbio/seqannot/internal"
	"github.com/structbio/seqannot/sifts"
	"github.com/structbio/seqannot/taxonomy"
)

// AnnotateHelp is the help string for the annotate command.
const AnnotateHelp = "\nannotate parameters:\n" +
	"seqannot annotate mmcif-input mmcif-output-dir\n" +
	"[--config file]\n" +
	"[--sifts dir]\n" +
	"[--taxonomy-db file]\n" +
	"[--use-sifts-alignments [true | false]]\n" +
	"[--nr-of-threads number]\n" +
	"[--log-path path]\n" +
	"[--timed]\n" +
	"[--profile file]\n" +
	"[--help]\n"

// Annotate parses the command line for the annotate command and runs
// the annotators over all input records.
func Annotate() error {
	var flags flag.FlagSet

	var (
		configFile  string
		siftsDir    string
		taxonomyDB  string
		useSifts    bool
		nrOfThreads int
		logPath     string
		timed       bool
		profile     string
	)

	flags.StringVar(&configFile, "config", "", "annotation configuration file")
	flags.StringVar(&siftsDir, "sifts", "", "directory with per-entry chain mapping summary files")
	flags.StringVar(&taxonomyDB, "taxonomy-db", "", "taxonomy database file")
	flags.BoolVar(&useSifts, "use-sifts-alignments", true, "reconcile alignments against the chain mapping resource")
	flags.IntVar(&nrOfThreads, "nr-of-threads", 0, "number of worker threads")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profile, "profile", "", "write a runtime profile to the specified file")

	parseFlags(flags, 4, AnnotateHelp)

	input := getFilename(os.Args[2], AnnotateHelp)
	output := getFilename(os.Args[3], AnnotateHelp)

	setLogOutput(logPath)

	explicit := make(map[string]bool)
	flags.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	if configFile != "" {
		if !checkExist("--config", configFile) {
			return errors.New("missing configuration file")
		}
		conf, err := annotate.LoadConf(configFile)
		if err != nil {
			return err
		}
		if !explicit["sifts"] && conf.SiftsDir != "" {
			siftsDir = conf.SiftsDir
		}
		if !explicit["taxonomy-db"] && conf.TaxonomyDB != "" {
			taxonomyDB = conf.TaxonomyDB
		}
		if !explicit["use-sifts-alignments"] && conf.UseSiftsAlignments != nil {
			useSifts = *conf.UseSiftsAlignments
		}
	}

	if nrOfThreads > 0 {
		runtime.GOMAXPROCS(nrOfThreads)
	}
	raiseRlimit()

	if useSifts && siftsDir != "" && !checkExist("--sifts", siftsDir) {
		return errors.New("missing chain mapping summary directory")
	}
	if taxonomyDB != "" && !checkExist("--taxonomy-db", taxonomyDB) {
		return errors.New("missing taxonomy database")
	}

	runID := uuid.New().String()
	log.Println("Annotation run", runID)

	var annotators []annotate.Annotator

	var src *sifts.Summary
	if siftsDir != "" {
		fullSiftsDir, err := internal.FullPathname(siftsDir)
		if err != nil {
			return err
		}
		src = sifts.NewSummary(fullSiftsDir)
	} else if useSifts {
		log.Println("Warning: No chain mapping summary directory given. Alignments are not reconciled.")
		useSifts = false
	}
	annotators = append(annotators, annotate.NewRefAlignments(src, useSifts))

	if taxonomyDB != "" {
		tdb, err := taxonomy.OpenDB(taxonomyDB)
		if err != nil {
			return err
		}
		defer func() {
			if err := tdb.Close(); err != nil {
				log.Println("Error closing taxonomy database:", err)
			}
		}()
		annotators = append(annotators, annotate.NewSourceOrganisms(tdb))
	} else {
		log.Println("Warning: No taxonomy database given. Source organisms are not annotated.")
	}

	annotators = append(annotators, &annotate.Audit{RunID: runID})

	fullInput, err := internal.FullPathname(input)
	if err != nil {
		return err
	}
	fullOutput, err := internal.FullPathname(output)
	if err != nil {
		return err
	}
	internal.MkdirAll(fullOutput, 0700)

	names, err := internal.Directory(fullInput)
	if err != nil {
		return err
	}
	inputDir := fullInput
	if info, err := os.Stat(fullInput); err == nil && !info.IsDir() {
		inputDir = filepath.Dir(fullInput)
	}
	inputFiles := make([]string, 0, len(names))
	for _, name := range names {
		inputFiles = append(inputFiles, filepath.Join(inputDir, name))
	}
	if len(inputFiles) == 0 {
		log.Println("Warning: No input files to annotate.")
		return nil
	}

	runner := &annotate.Runner{Annotators: annotators, OutputDir: fullOutput}
	return timedRun(timed, profile, "Annotating records.", 1, func() error {
		return runner.Run(inputFiles)
	})
}
