package poll

import "strings"

// loadAverageLabel is the marker uptime(1) prints before the three
// load figures. Linux emits "load average:", macOS "load averages:".
const loadAverageLabel = "load average"

// ExtractLoadAverage pulls the load-average figures out of raw uptime
// output: everything after the label's colon up to end of line, trimmed.
// Returns false when the label is absent; it never guesses at a partial
// match.
func ExtractLoadAverage(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, loadAverageLabel)
		if idx == -1 {
			continue
		}

		rest := strings.TrimPrefix(line[idx+len(loadAverageLabel):], "s")
		if !strings.HasPrefix(rest, ":") {
			continue
		}

		return strings.TrimSpace(rest[1:]), true
	}
	return "", false
}
