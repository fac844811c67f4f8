package video

import (
	"fmt"
	"math"
	"strings"

	"shorts-pipeline/types"
)

// captionStyle is the resolved rendering style after defaults are applied.
type captionStyle struct {
	font         string
	fontSize     int
	color        string
	strokeColor  string
	strokeWidth  float64
	marginBottom int
}

func styleFor(cs *types.CaptionSettings) captionStyle {
	st := captionStyle{
		font:         "Arial",
		fontSize:     22,
		color:        "#FFFFFF",
		strokeColor:  "#000000",
		strokeWidth:  2,
		marginBottom: 80,
	}
	if cs == nil {
		return st
	}
	if cs.Font != "" {
		st.font = cs.Font
	}
	if cs.FontSize > 0 {
		st.fontSize = cs.FontSize
	}
	if cs.Color != "" {
		st.color = cs.Color
	}
	if cs.StrokeColor != "" {
		st.strokeColor = cs.StrokeColor
	}
	if cs.StrokeWidth > 0 {
		st.strokeWidth = cs.StrokeWidth
	}
	if cs.MarginBottom > 0 {
		st.marginBottom = cs.MarginBottom
	}
	return st
}

func captionsEnabled(cs *types.CaptionSettings) bool {
	if cs == nil || cs.Enabled == nil {
		return true
	}
	return *cs.Enabled
}

// forceStyle renders the ffmpeg subtitles filter style string.
func (st captionStyle) forceStyle() string {
	return fmt.Sprintf(
		"FontName=%s,FontSize=%d,PrimaryColour=%s,OutlineColour=%s,Outline=%.0f,Alignment=2,MarginV=%d",
		st.font,
		st.fontSize,
		assColor(st.color),
		assColor(st.strokeColor),
		st.strokeWidth,
		st.marginBottom,
	)
}

// assColor converts "#RRGGBB" to the ASS "&H00BBGGRR" form. Anything that is
// not a 7-char hex color is passed through untouched.
func assColor(c string) string {
	if len(c) != 7 || !strings.HasPrefix(c, "#") {
		return c
	}
	r, g, b := c[1:3], c[3:5], c[5:7]
	return "&H00" + strings.ToUpper(b+g+r)
}

// buildSRT renders one caption entry per narration slot, spanning exactly the
// slot's playback window.
func buildSRT(slots []slot) string {
	var sb strings.Builder
	var elapsed float64
	for i, s := range slots {
		start := elapsed
		end := elapsed + s.duration
		elapsed = end

		sb.WriteString(fmt.Sprintf("%d\n", i+1))
		sb.WriteString(srtTimestamp(start) + " --> " + srtTimestamp(end) + "\n")
		sb.WriteString(s.text + "\n\n")
	}
	return sb.String()
}

func srtTimestamp(sec float64) string {
	if sec < 0 {
		sec = 0
	}
	ms := int(math.Round(sec * 1000))
	h := ms / 3600000
	m := ms % 3600000 / 60000
	s := ms % 60000 / 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms%1000)
}

func escapeSubtitlePath(path string) string {
	// The ffmpeg subtitles filter needs escaped colons and backslashes.
	path = strings.ReplaceAll(path, "\\", "/")
	path = strings.ReplaceAll(path, ":", "\\:")
	return path
}
