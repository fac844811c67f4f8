package youtube

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

// UploadedTitles pages through the channel's uploads playlist and collects
// every video title.
func (p *Publisher) UploadedTitles(ctx context.Context) ([]string, error) {
	playlistID, err := p.uploadsPlaylistID(ctx)
	if err != nil {
		return nil, err
	}

	var titles []string
	pageToken := ""
	for {
		page, err := p.svc.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(maxPageSize).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return nil, fmt.Errorf("list uploads page: %w", err)
		}
		for _, item := range page.Items {
			if item.Snippet != nil {
				titles = append(titles, item.Snippet.Title)
			}
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}
	return titles, nil
}

// LoadAnimals reads the topic file, one animal per line.
func LoadAnimals(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var animals []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			animals = append(animals, line)
		}
	}
	return animals, nil
}

// UnusedAnimals filters out every animal that already appears in an uploaded
// video title (case-insensitive substring match).
func UnusedAnimals(animals, titles []string) []string {
	used := make(map[string]bool)
	for _, title := range titles {
		lower := strings.ToLower(title)
		for _, animal := range animals {
			if strings.Contains(lower, strings.ToLower(animal)) {
				used[animal] = true
			}
		}
	}
	var unused []string
	for _, animal := range animals {
		if !used[animal] {
			unused = append(unused, animal)
		}
	}
	return unused
}

// PickTopic picks a random animal from the list.
func PickTopic(animals []string) (string, error) {
	if len(animals) == 0 {
		return "", fmt.Errorf("no animals left to pick from")
	}
	return animals[rand.Intn(len(animals))], nil
}
