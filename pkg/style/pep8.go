package style

import (
	"os/exec"
	"strconv"
	"strings"
)

// CountPep8Infringements invokes pycodestyle on the tree and records the
// total violation count it reports. The counter is the last line of the
// tool's stderr when run with --count; anything unparsable (including a
// missing pycodestyle binary) yields 0, never an error.
func CountPep8Infringements(root string) (Record, error) {
	cmd := exec.Command("pycodestyle", "--exclude=.git", "--statistics", "--count", root)
	cmd.Stdout = nil

	var stderr strings.Builder
	cmd.Stderr = &stderr
	_ = cmd.Run() // Non-zero exit just means violations were found.

	return Record{"pep8_infringement": parsePep8Count(stderr.String())}, nil
}

func parsePep8Count(stderr string) int {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	count, err := strconv.Atoi(last)
	if err != nil {
		// Probably a warning about pycodestyle itself.
		return 0
	}
	return count
}
