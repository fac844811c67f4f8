package sound

import (
	"context"
	"strings"
	"testing"

	"shorts-pipeline/store"
)

func TestNormalizeRequiresRawVideo(t *testing.T) {
	run, err := store.NewRoot(t.TempDir()).NewRun()
	if err != nil {
		t.Fatal(err)
	}

	err = Normalize(context.Background(), run)
	if err == nil {
		t.Fatal("expected error when short.avi is missing")
	}
	if !strings.Contains(err.Error(), "video stage") {
		t.Errorf("error = %v, should point at redoing the video stage", err)
	}
}
