package youtube

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	yt "google.golang.org/api/youtube/v3"
)

const defaultBatchEndpoint = "https://www.googleapis.com/batch/youtube/v3"

// BatchClient submits grouped API mutations as a single multipart/mixed
// round trip against the batch endpoint. The discovery-based Go client has
// no batch support, so the wire format is built by hand: one
// application/http part per inner request, matched to per-part responses by
// Content-ID.
type BatchClient struct {
	httpClient *http.Client
	Endpoint   string
}

func NewBatchClient(httpClient *http.Client) *BatchClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &BatchClient{httpClient: httpClient, Endpoint: defaultBatchEndpoint}
}

// UpdateVideos submits one videos.update per entry, all in one network call.
// It returns the number of updates the remote acknowledged with a 2xx part
// status; any failed part turns into an error after the whole response has
// been read.
func (b *BatchClient) UpdateVideos(ctx context.Context, videos []*yt.Video) (int, error) {
	if len(videos) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, v := range videos {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type": {"application/http"},
			"Content-ID":   {fmt.Sprintf("<item-%d>", i+1)},
		})
		if err != nil {
			return 0, err
		}
		body, err := json.Marshal(v)
		if err != nil {
			return 0, err
		}
		fmt.Fprintf(part, "PUT /youtube/v3/videos?part=snippet HTTP/1.1\r\n")
		fmt.Fprintf(part, "Content-Type: application/json\r\n")
		fmt.Fprintf(part, "Content-Length: %d\r\n\r\n", len(body))
		part.Write(body)
	}
	if err := mw.Close(); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", b.Endpoint, &buf)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "multipart/mixed; boundary="+mw.Boundary())

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("batch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return 0, fmt.Errorf("batch endpoint HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	mediaType, params, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return 0, fmt.Errorf("unexpected batch response content type %q", resp.Header.Get("Content-Type"))
	}

	ok := 0
	var failures []string
	mr := multipart.NewReader(resp.Body, params["boundary"])
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ok, fmt.Errorf("read batch response: %w", err)
		}
		contentID := part.Header.Get("Content-Id")

		inner, err := http.ReadResponse(bufio.NewReader(part), nil)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: unreadable part (%v)", contentID, err))
			continue
		}
		if inner.StatusCode >= 200 && inner.StatusCode < 300 {
			ok++
		} else {
			failures = append(failures, fmt.Sprintf("%s: HTTP %d", contentID, inner.StatusCode))
		}
		inner.Body.Close()
	}

	if len(failures) > 0 {
		return ok, fmt.Errorf("%d of %d updates failed: %s", len(failures), len(videos), strings.Join(failures, "; "))
	}
	return ok, nil
}
