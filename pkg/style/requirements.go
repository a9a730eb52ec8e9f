package style

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

var reqNameRE = regexp.MustCompile(`^([a-zA-Z0-9][-a-zA-Z0-9._]*)`)

// InferRequirements finds a project's declared dependencies and records
// them as a JSON-encoded, sorted list under "requirements". Sources are
// tried in order: requirements*.txt files at the root, pyproject.toml,
// Pipfile. A project declaring nothing yields "[]".
func InferRequirements(root string) (Record, error) {
	names := requirementsTxt(root)
	if len(names) == 0 {
		names = pyprojectDeps(root)
	}
	if len(names) == 0 {
		names = pipfileDeps(root)
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	encoded, err := json.Marshal(sorted)
	if err != nil {
		return nil, err
	}
	return Record{"requirements": string(encoded)}, nil
}

// requirementsTxt parses every requirements-style .txt file at the root.
func requirementsTxt(root string) map[string]bool {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	names := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() || !isRequirementsFile(entry.Name()) {
			continue
		}
		parseRequirementsFile(filepath.Join(root, entry.Name()), names)
	}
	return names
}

func isRequirementsFile(name string) bool {
	if !strings.HasSuffix(name, ".txt") {
		return false
	}
	return strings.HasPrefix(name, "requirements") || strings.Contains(name, "-requirements") || strings.Contains(name, "_requirements")
}

func parseRequirementsFile(path string, names map[string]bool) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '-' {
			continue
		}
		if strings.Contains(line, "://") || strings.HasPrefix(line, "git+") {
			continue
		}
		if m := reqNameRE.FindStringSubmatch(line); len(m) > 1 {
			names[normalizeReqName(m[1])] = true
		}
	}
}

// pyprojectDeps reads PEP 621 and poetry dependency declarations.
func pyprojectDeps(root string) map[string]bool {
	data, err := os.ReadFile(filepath.Join(root, "pyproject.toml"))
	if err != nil {
		return nil
	}

	var pyproject struct {
		Project struct {
			Dependencies []string `toml:"dependencies"`
		} `toml:"project"`
		Tool struct {
			Poetry struct {
				Dependencies map[string]any `toml:"dependencies"`
			} `toml:"poetry"`
		} `toml:"tool"`
	}
	if err := toml.Unmarshal(data, &pyproject); err != nil {
		return nil
	}

	names := make(map[string]bool)
	for _, dep := range pyproject.Project.Dependencies {
		if m := reqNameRE.FindStringSubmatch(strings.TrimSpace(dep)); len(m) > 1 {
			names[normalizeReqName(m[1])] = true
		}
	}
	for dep := range pyproject.Tool.Poetry.Dependencies {
		if dep == "python" {
			continue
		}
		names[normalizeReqName(dep)] = true
	}
	return names
}

// pipfileDeps reads the [packages] table of a Pipfile.
func pipfileDeps(root string) map[string]bool {
	data, err := os.ReadFile(filepath.Join(root, "Pipfile"))
	if err != nil {
		return nil
	}

	var pipfile struct {
		Packages map[string]any `toml:"packages"`
	}
	if err := toml.Unmarshal(data, &pipfile); err != nil {
		return nil
	}

	names := make(map[string]bool)
	for dep := range pipfile.Packages {
		names[normalizeReqName(dep)] = true
	}
	return names
}

// normalizeReqName applies PEP 503 normalization.
func normalizeReqName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
}
