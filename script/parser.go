package script

import (
	"fmt"
	"strings"

	"shorts-pipeline/types"
)

// Parse splits a raw script into the ordered segment sequence. A line wrapped
// in square brackets is an image description; any other non-blank line is
// narration. Parsing is deterministic: the same script always yields the same
// sequence, which downstream stages rely on for index-derived filenames.
func Parse(script string) ([]types.Segment, error) {
	var segments []types.Segment
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			desc := strings.TrimSpace(line[1 : len(line)-1])
			if desc == "" {
				continue
			}
			segments = append(segments, types.Segment{Type: types.KindImage, Description: desc})
		} else {
			segments = append(segments, types.Segment{Type: types.KindNarration, Text: line})
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("script contains no usable lines")
	}
	return segments, nil
}
