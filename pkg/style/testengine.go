package style

import (
	"os"
	"path/filepath"
	"strings"
)

// testEngineFiles is the fixed list of metadata files scanned for test
// engine mentions.
var testEngineFiles = []string{
	"README.txt",
	"README",
	"README.md",
	"README.rst",
	"tox.ini",
	"requirements.txt",
	"requirements-dev.txt",
	"requirements_dev.txt",
	"dev-requirements.txt",
	"requirements-test.txt",
	"test-requirements.txt",
	"test_requirements.txt",
}

// knownEngines are matched by substring, most frequently mentioned wins.
var knownEngines = []string{"nose", "pytest", "unittest"}

// DetectTestEngine scans the metadata file list for known test engine
// names and records the most frequently mentioned one, or an empty string
// when none is found.
func DetectTestEngine(root string) (Record, error) {
	counts := make(map[string]int, len(knownEngines))
	for _, name := range testEngineFiles {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		text := string(data)
		for _, engine := range knownEngines {
			if strings.Contains(text, engine) {
				counts[engine]++
			}
		}
	}

	best := ""
	bestCount := 0
	// Iterate the fixed list so ties resolve deterministically.
	for _, engine := range knownEngines {
		if counts[engine] > bestCount {
			best = engine
			bestCount = counts[engine]
		}
	}
	return Record{"test_engine": best}, nil
}
