// Package style implements the extractor battery that summarizes a Python
// project's structure: conventional file/directory presence, inferred
// license, test engine, line counts, shebangs, __future__ usage, declared
// requirements, and pycodestyle violations.
//
// Each extractor is a pure function from a working-tree path to a partial
// record. Extractors never mutate the tree and never depend on each other,
// so a failing one is logged and skipped without affecting the rest.
package style

import (
	"fmt"
	"maps"
	"strings"

	"github.com/charmbracelet/log"
)

// Record is the flat key-value summary computed for one project.
// Values are strings or ints only, so a record marshals cleanly to JSON
// and flattens to a CSV row.
type Record map[string]any

// Merge copies every entry of other into r, overwriting existing keys.
func (r Record) Merge(other Record) {
	maps.Copy(r, other)
}

// Extractor computes one slice of a project's style record.
type Extractor struct {
	Name string
	Run  func(root string) (Record, error)
}

// Battery returns the full extractor battery in its fixed order.
func Battery() []Extractor {
	return []Extractor{
		{Name: "has_file", Run: HasTypicalFiles},
		{Name: "has_dir", Run: HasTypicalDirs},
		{Name: "license", Run: InferLicense},
		{Name: "detect_test_engine", Run: DetectTestEngine},
		{Name: "lines_of_code", Run: CountLinesOfCode},
		{Name: "pep8_infringement", Run: CountPep8Infringements},
		{Name: "shebang", Run: CountShebangs},
		{Name: "dunder_future", Run: DunderFuture},
		{Name: "requirements", Run: InferRequirements},
	}
}

// InferStyle runs the battery against the working tree at root and merges
// the partial records. If only is non-empty, extractors whose name does
// not contain it are skipped, enabling partial re-runs.
//
// A failing or panicking extractor contributes nothing; the failure is
// logged with the project path and the remaining extractors still run.
func InferStyle(root, only string, logger *log.Logger) Record {
	if logger == nil {
		logger = log.Default()
	}

	record := Record{}
	for _, ex := range Battery() {
		if only != "" && !strings.Contains(ex.Name, only) {
			continue
		}
		partial, err := runExtractor(ex, root)
		if err != nil {
			logger.Error("extractor failed", "extractor", ex.Name, "repo", root, "err", err)
			continue
		}
		record.Merge(partial)
	}
	return record
}

// runExtractor invokes one extractor, converting a panic into an error so
// a single misbehaving extractor can never take down a batch worker.
func runExtractor(ex Extractor, root string) (record Record, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", ex.Name, r)
		}
	}()
	return ex.Run(root)
}
