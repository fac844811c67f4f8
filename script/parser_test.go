package script

import (
	"testing"

	"shorts-pipeline/types"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		script string
		want   []types.Segment
	}{
		{
			"narration and image interleaved",
			"Lions are apex predators.\n[a lion on a savanna]\nThey live in prides.\n",
			[]types.Segment{
				{Type: types.KindNarration, Text: "Lions are apex predators."},
				{Type: types.KindImage, Description: "a lion on a savanna"},
				{Type: types.KindNarration, Text: "They live in prides."},
			},
		},
		{
			"blank lines skipped",
			"\n\nOne line.\n\n   \n[a scene]\n\n",
			[]types.Segment{
				{Type: types.KindNarration, Text: "One line."},
				{Type: types.KindImage, Description: "a scene"},
			},
		},
		{
			"bracket padding trimmed",
			"[  foggy forest  ]",
			[]types.Segment{
				{Type: types.KindImage, Description: "foggy forest"},
			},
		},
		{
			"empty bracket line dropped",
			"[]\nStill a script.",
			[]types.Segment{
				{Type: types.KindNarration, Text: "Still a script."},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.script)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() = %d segments, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("segment %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseDeterministic(t *testing.T) {
	script := "A.\n[b]\nC.\n[d]\nE."
	first, err := Parse(script)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	second, err := Parse(script)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("Parse() not deterministic at segment %d", i)
		}
	}
}

func TestParseEmpty(t *testing.T) {
	for _, script := range []string{"", "\n\n   \n", "[]"} {
		if _, err := Parse(script); err == nil {
			t.Errorf("Parse(%q) expected error, got nil", script)
		}
	}
}

func TestNormalizePunctuation(t *testing.T) {
	got := normalizePunctuation("It’s “great”… `really`")
	want := `It's "great"... 'really'`
	if got != want {
		t.Errorf("normalizePunctuation() = %q, want %q", got, want)
	}
}
