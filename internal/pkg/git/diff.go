package git

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// hunkHeaderPattern matches "@@ -a[,b] +c[,d] @@".
var hunkHeaderPattern = regexp.MustCompile(`^@@ -\d+(?:,(\d+))? \+\d+(?:,(\d+))? @@`)

// NormalizeDiff rewrites unified diff output so that added and removed
// lines keep their +/- prefix while context lines lose their leading space.
// File and hunk headers are kept as is. Line counts from each hunk header
// decide where a hunk ends, so a removed line starting with "--" is never
// mistaken for a file header.
func NormalizeDiff(raw string) string {
	if raw == "" {
		return ""
	}

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))

	oldLeft, newLeft := 0, 0
	for _, line := range lines {
		inHunk := oldLeft > 0 || newLeft > 0

		if !inHunk {
			if m := hunkHeaderPattern.FindStringSubmatch(line); m != nil {
				oldLeft = hunkCount(m[1])
				newLeft = hunkCount(m[2])
			}
			out = append(out, line)
			continue
		}

		switch {
		case strings.HasPrefix(line, "+"):
			newLeft--
			out = append(out, line)
		case strings.HasPrefix(line, "-"):
			oldLeft--
			out = append(out, line)
		case strings.HasPrefix(line, " "):
			oldLeft--
			newLeft--
			out = append(out, line[1:])
		case strings.HasPrefix(line, `\`):
			// "\ No newline at end of file"
			out = append(out, line)
		case line == "":
			// Some tools strip the space from empty context lines.
			oldLeft--
			newLeft--
			out = append(out, line)
		default:
			// Malformed counts; fall back to header handling.
			oldLeft, newLeft = 0, 0
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

func hunkCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// DiffStats summarizes a normalized diff.
type DiffStats struct {
	TotalFiles     int
	TotalAdditions int
	TotalDeletions int
}

// String returns a compact "N files, +A -D" summary.
func (s DiffStats) String() string {
	noun := "files"
	if s.TotalFiles == 1 {
		noun = "file"
	}
	return fmt.Sprintf("%d %s, +%d -%d", s.TotalFiles, noun, s.TotalAdditions, s.TotalDeletions)
}

// Stats counts files and changed lines in a diff produced by this package.
// It is a display summary: a context line whose text begins with + or -
// is counted as a change once normalization has removed its leading space.
func Stats(diff string) DiffStats {
	var stats DiffStats
	oldLeft, newLeft := 0, 0

	for _, line := range strings.Split(diff, "\n") {
		if oldLeft > 0 || newLeft > 0 {
			switch {
			case strings.HasPrefix(line, "+"):
				stats.TotalAdditions++
				newLeft--
			case strings.HasPrefix(line, "-"):
				stats.TotalDeletions++
				oldLeft--
			case strings.HasPrefix(line, `\`):
			default:
				oldLeft--
				newLeft--
			}
			continue
		}

		if strings.HasPrefix(line, "diff --git ") {
			stats.TotalFiles++
			continue
		}
		if m := hunkHeaderPattern.FindStringSubmatch(line); m != nil {
			oldLeft = hunkCount(m[1])
			newLeft = hunkCount(m[2])
		}
	}

	return stats
}
