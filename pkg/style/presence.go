package style

import (
	"os"
	"path/filepath"
)

// typicalFiles is the fixed catalog of conventional top-level files whose
// presence says something about how a project is maintained.
var typicalFiles = []string{
	".gitignore",
	".noserc",
	"AUTHORS.md",
	"AUTHORS.rst",
	"CHANGELOG.md",
	"CHANGELOG.rst",
	"CONTRIBUTING.md",
	"CONTRIBUTING.rst",
	"LICENSE",
	"LICENSE.txt",
	"MANIFEST.in",
	"Makefile",
	"Pipfile",
	"Pipfile.lock",
	"README",
	"README.md",
	"README.rst",
	"README.txt",
	"nose.cfg",
	"pyproject.toml",
	"pytest.ini",
	"requirements.txt",
	"requirements_dev.txt",
	"setup.cfg",
	"setup.py",
	"test-requirements.txt",
	"tox.ini",
}

// typicalDirs is the fixed catalog of conventional top-level directories.
var typicalDirs = []string{
	"doc/",
	"docs/",
	"examples/",
	"src/",
	"test/",
	"tests/",
}

// TypicalFiles returns the file catalog checked by HasTypicalFiles.
func TypicalFiles() []string { return append([]string(nil), typicalFiles...) }

// TypicalDirs returns the directory catalog checked by HasTypicalDirs.
func TypicalDirs() []string { return append([]string(nil), typicalDirs...) }

// HasTypicalFiles emits one "file:<name>" entry per catalog item, 1 if a
// regular file with that name exists at the tree root and 0 otherwise.
func HasTypicalFiles(root string) (Record, error) {
	record := Record{}
	for _, name := range typicalFiles {
		record["file:"+name] = boolToInt(isFile(filepath.Join(root, name)))
	}
	return record, nil
}

// HasTypicalDirs emits one "dir:<name>" entry per catalog item, 1 if a
// directory with that name exists at the tree root and 0 otherwise.
func HasTypicalDirs(root string) (Record, error) {
	record := Record{}
	for _, name := range typicalDirs {
		record["dir:"+name] = boolToInt(isDir(filepath.Join(root, name)))
	}
	return record, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
