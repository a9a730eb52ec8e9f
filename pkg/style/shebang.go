package style

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

var pythonVersionRE = regexp.MustCompile(`(?i)python[0-9.]*`)

// CountShebangs reads the first line of every Python file, tallies
// interpreter versions under "shebang:<version>" keys, and records
// "shebangs_pct", the percentage of Python files carrying a shebang.
// Zero Python files yields a percentage of 0, not an error.
func CountShebangs(root string) (Record, error) {
	record := Record{}
	pyFiles := 0
	withShebang := 0

	err := walkTree(root, func(path string) {
		if !strings.HasSuffix(path, ".py") {
			return
		}
		pyFiles++
		first, err := firstLine(path)
		if err != nil || !strings.HasPrefix(first, "#!") {
			return
		}
		withShebang++
		if version := pythonVersionRE.FindString(first); version != "" {
			key := "shebang:" + strings.ToLower(version)
			if prev, ok := record[key].(int); ok {
				record[key] = prev + 1
			} else {
				record[key] = 1
			}
		}
	})
	if err != nil {
		return nil, err
	}

	pct := 0
	if pyFiles > 0 {
		pct = 100 * withShebang / pyFiles
	}
	record["shebangs_pct"] = pct
	return record, nil
}

// DunderFuture records "dunder_future_pct", the percentage of Python files
// containing a `from __future__ import` compatibility import.
func DunderFuture(root string) (Record, error) {
	pyFiles := 0
	found := 0

	err := walkTree(root, func(path string) {
		if !strings.HasSuffix(path, ".py") {
			return
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return
		}
		pyFiles++
		if strings.Contains(string(data), "from __future__ import") {
			found++
		}
	})
	if err != nil {
		return nil, err
	}

	pct := 0
	if pyFiles > 0 {
		pct = 100 * found / pyFiles
	}
	return Record{"dunder_future_pct": pct}, nil
}

func firstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	return "", scanner.Err()
}
