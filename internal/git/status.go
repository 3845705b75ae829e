package git

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrMalformedStatus = errors.New("malformed status line")

// ConflictRecords reads the live status and parses it. A failed status read
// is returned as an error, never as an empty result.
func (repo *GitRepo) ConflictRecords(ctx context.Context) ([]ConflictRecord, error) {
	status, err := repo.Status(ctx)
	if err != nil {
		return nil, err
	}
	return ParseStatus(status)
}

// ParseStatus parses porcelain v1 output. The two status columns are at
// offsets 0 and 1, offset 2 is skipped and the path runs from offset 3 to the
// end of the line. Identical lines collapse; the result is sorted by path,
// then ours, then theirs.
func ParseStatus(output string) ([]ConflictRecord, error) {
	set := make(map[ConflictRecord]struct{})
	scanner := bufio.NewScanner(strings.NewReader(output))

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		if len(line) < 4 {
			return nil, fmt.Errorf("%w %d: %q", ErrMalformedStatus, lineNo, line)
		}

		filePath := line[3:]

		// Git quotes filenames with special characters
		if len(filePath) > 1 && strings.HasPrefix(filePath, "\"") && strings.HasSuffix(filePath, "\"") {
			if unquoted, err := strconv.Unquote(filePath); err == nil {
				filePath = unquoted
			}
		}

		set[ConflictRecord{
			Ours:   StatusCode(line[0]),
			Theirs: StatusCode(line[1]),
			Path:   filePath,
		}] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan status: %w", err)
	}

	records := make([]ConflictRecord, 0, len(set))
	for r := range set {
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Ours != b.Ours {
			return a.Ours < b.Ours
		}
		return a.Theirs < b.Theirs
	})

	return records, nil
}
