package youtube

import (
	"context"
	"fmt"
	"log"
	"strings"

	yt "google.golang.org/api/youtube/v3"
)

// maxPageSize is the listing endpoint's hard cap.
const maxPageSize = 50

// AppendDisclaimer walks the channel's entire upload history and appends
// disclaimer to the description of every video that does not already end with
// it. Each page costs one listing read, one batched metadata read, and at
// most one grouped write. The suffix check makes repeated runs idempotent:
// a second pass over unchanged data updates zero items.
//
// Returns how many items were actually updated and how many were scanned.
func (p *Publisher) AppendDisclaimer(ctx context.Context, disclaimer string, pageSize int64) (updated, scanned int, err error) {
	if strings.TrimSpace(disclaimer) == "" {
		return 0, 0, fmt.Errorf("disclaimer text is empty")
	}
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	playlistID, err := p.uploadsPlaylistID(ctx)
	if err != nil {
		return 0, 0, err
	}

	pageToken := ""
	for {
		page, err := p.svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(pageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return updated, scanned, fmt.Errorf("list uploads page: %w", err)
		}
		if len(page.Items) == 0 {
			break
		}

		ids := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			ids = append(ids, item.ContentDetails.VideoId)
		}

		videos, err := p.svc.Videos.List([]string{"snippet"}).Id(ids...).Context(ctx).Do()
		if err != nil {
			return updated, scanned, fmt.Errorf("read video metadata: %w", err)
		}
		scanned += len(videos.Items)

		var batch []*yt.Video
		for _, v := range videos.Items {
			if v.Snippet == nil || strings.HasSuffix(v.Snippet.Description, disclaimer) {
				continue
			}
			v.Snippet.Description = appendToDescription(v.Snippet.Description, disclaimer)
			batch = append(batch, &yt.Video{Id: v.Id, Snippet: v.Snippet})
		}

		if len(batch) > 0 {
			n, err := p.batch.UpdateVideos(ctx, batch)
			updated += n
			if err != nil {
				return updated, scanned, fmt.Errorf("submit update batch: %w", err)
			}
			log.Printf("[bulk] Page done: %d update(s) submitted", n)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	log.Printf("[bulk] ✅ Updated %d of %d scanned video(s)", updated, scanned)
	return updated, scanned, nil
}

func appendToDescription(description, disclaimer string) string {
	if description == "" {
		return disclaimer
	}
	return description + "\n\n" + disclaimer
}
