package youtube

import (
	"context"
	"errors"
	"log"
	"os"

	"google.golang.org/api/googleapi"
	yt "google.golang.org/api/youtube/v3"

	"shorts-pipeline/types"
)

// Upload performs a single resumable upload of the finished video with its
// metadata. It returns true on success; any remote-reported error is logged
// and yields false. No retry: reinvocation is the recovery path.
func (p *Publisher) Upload(ctx context.Context, cfg *types.UploadConfig) bool {
	f, err := os.Open(cfg.FilePath)
	if err != nil {
		log.Printf("[upload] Open video file: %v", err)
		return false
	}
	defer f.Close()

	if fi, err := f.Stat(); err == nil {
		log.Printf("[upload] Uploading %q (%.1f MB)", cfg.Title, float64(fi.Size())/1024/1024)
	}

	video := &yt.Video{
		Snippet: &yt.VideoSnippet{
			Title:       cfg.Title,
			Description: cfg.Description,
			CategoryId:  cfg.Category,
		},
		Status: &yt.VideoStatus{PrivacyStatus: cfg.PrivacyStatus},
	}

	call := p.svc.Videos.Insert([]string{"snippet", "status"}, video).Media(f)
	resp, err := call.Context(ctx).Do()
	if err != nil {
		var gerr *googleapi.Error
		if errors.As(err, &gerr) {
			log.Printf("[upload] An HTTP error %d occurred: %s", gerr.Code, gerr.Message)
		} else {
			log.Printf("[upload] Upload failed: %v", err)
		}
		return false
	}

	log.Printf("[upload] ✅ Video uploaded successfully! Video ID: %s", resp.Id)
	return true
}
