package types

import "fmt"

// Segment kinds as stored in data.json.
const (
	KindNarration = "narration"
	KindImage     = "image"
)

// Segment is one element of the ordered script breakdown. Exactly one of
// Text (narration) or Description (image) is set, depending on Type.
type Segment struct {
	Type        string `json:"type"`
	Text        string `json:"text,omitempty"`
	Description string `json:"description,omitempty"`
}

// NarrationFile returns the artifact name for the narration segment at
// 1-based position pos in the full segment sequence. The numbering counts
// every segment, not just narration ones, so positions stay stable when
// image segments are interleaved.
func NarrationFile(pos int) string {
	return fmt.Sprintf("narration_%d.mp3", pos)
}

// ImageFile returns the artifact name for the ordinal-th image-kind segment
// (1-based, counting image segments only). ext is provider-defined.
func ImageFile(ordinal int, ext string) string {
	return fmt.Sprintf("image_%d.%s", ordinal, ext)
}

// UploadConfig mirrors upload_config.json.
type UploadConfig struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	FilePath      string `json:"file_path"`
	Category      string `json:"category"`
	PrivacyStatus string `json:"privacy_status"`
}

// CaptionSettings is the optional caption-rendering document. Zero values
// mean "use the built-in default"; unknown keys in the JSON are ignored.
type CaptionSettings struct {
	Enabled      *bool   `json:"enabled,omitempty"`
	Font         string  `json:"font,omitempty"`
	FontSize     int     `json:"font_size,omitempty"`
	Color        string  `json:"color,omitempty"`
	StrokeColor  string  `json:"stroke_color,omitempty"`
	StrokeWidth  float64 `json:"stroke_width,omitempty"`
	MarginBottom int     `json:"margin_bottom,omitempty"`
}

// RunResult is what both the fresh-run and regeneration drivers hand back.
type RunResult struct {
	Basedir    string `json:"basedir"`
	VideoFile  string `json:"video_file"`
	ConfigFile string `json:"config_file"`
}
