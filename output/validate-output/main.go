package main

import (
	"flag"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/tccmaps/atlas/output"
)

func main() {
	var outputDir string
	flag.StringVar(&outputDir, "o", "output", "output directory")
	flag.Parse()

	ok := true

	mergedPath := filepath.Join(outputDir, output.MergedFile)
	report, err := output.ValidateMerged(mergedPath)
	if err != nil {
		log.WithError(err).Fatal("validation failed to run")
	}
	logReport(mergedPath, report)
	ok = ok && report.OK()

	topoPath := filepath.Join(outputDir, "tcc-330-markers.json")
	if _, err := os.Stat(topoPath); err == nil {
		tr, err := output.ValidateTopology(topoPath)
		if err != nil {
			log.WithError(err).Fatal("validation failed to run")
		}
		logReport(topoPath, tr)
		ok = ok && tr.OK()
	}

	if !ok {
		log.Error("validation FAILED")
		os.Exit(1)
	}
	log.Info("validation PASSED")
}

func logReport(path string, r *output.Report) {
	log.Infof("%s: %d features", path, r.Features)
	if len(r.Missing) > 0 {
		log.Warnf("missing indices (%d): %v", len(r.Missing), r.Missing)
	}
	if len(r.Extra) > 0 {
		log.Warnf("extra indices: %v", r.Extra)
	}
	for _, e := range r.Errors {
		log.Errorf("%s", e)
	}
}
