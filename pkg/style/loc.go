package style

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// locExtensions is the allow-list of extensions whose line counts are
// worth recording.
var locExtensions = map[string]bool{
	"c":     true,
	"csv":   true,
	"ini":   true,
	"ipynb": true,
	"json":  true,
	"po":    true,
	"py":    true,
	"toml":  true,
	"xml":   true,
	"yaml":  true,
}

// CountLinesOfCode sums line counts per extension over the tree, emitting
// one "lines_of:<ext>" entry per allow-listed extension encountered.
// Version-control internals and unreadable files are skipped.
func CountLinesOfCode(root string) (Record, error) {
	record := Record{}
	err := walkTree(root, func(path string) {
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
		if !locExtensions[ext] {
			return
		}
		lines, err := countLines(path)
		if err != nil {
			return
		}
		key := "lines_of:" + ext
		if prev, ok := record[key].(int); ok {
			record[key] = prev + lines
		} else {
			record[key] = lines
		}
	})
	return record, err
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lines := 0
	for scanner.Scan() {
		lines++
	}
	return lines, scanner.Err()
}

// walkTree visits every regular file under root except anything inside a
// .git directory. Walk errors on individual entries are skipped, matching
// the "signal absent" policy for broken symlinks and permission holes.
func walkTree(root string, visit func(path string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			visit(path)
		}
		return nil
	})
}
