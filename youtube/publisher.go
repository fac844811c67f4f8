// Package youtube is the publishing half of the pipeline: credential
// lifecycle, single-video upload, and quota-batched bulk metadata updates.
// It talks only to artifacts the generation half leaves behind.
package youtube

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"
)

// Publisher wraps an authenticated service for upload and bulk operations.
// Its lifetime is scoped to one publishing invocation; concurrent publishers
// against the same credential file must be externally serialized.
type Publisher struct {
	svc   *yt.Service
	batch *BatchClient
}

// NewPublisher builds a Publisher. httpClient must carry the same credential
// as svc; it is used for the grouped batch endpoint the discovery client does
// not cover.
func NewPublisher(svc *yt.Service, httpClient *http.Client) *Publisher {
	return &Publisher{svc: svc, batch: NewBatchClient(httpClient)}
}

// Publisher builds an authenticated Publisher from this credential manager.
func (a *Authenticator) Publisher(ctx context.Context) (*Publisher, error) {
	httpClient, err := a.Client(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := yt.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("youtube service: %w", err)
	}
	return NewPublisher(svc, httpClient), nil
}

// uploadsPlaylistID resolves the authenticated channel's canonical
// "all uploads" playlist.
func (p *Publisher) uploadsPlaylistID(ctx context.Context) (string, error) {
	resp, err := p.svc.Channels.List([]string{"contentDetails"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("resolve channel: %w", err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("no channel for the authenticated account")
	}
	id := resp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if id == "" {
		return "", fmt.Errorf("channel has no uploads playlist")
	}
	return id, nil
}
