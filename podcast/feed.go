package podcast

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// Episode is the feed metadata needed to download and document one episode.
type Episode struct {
	// Title is the episode title as published in the feed.
	Title string
	// Link is the episode page URL.
	Link string
	// EnclosureURL is the direct audio URL.
	EnclosureURL string
	// Description is the show-notes text from the feed.
	Description string
	// Duration is the iTunes duration string, if the feed provides one.
	Duration string
	// Published is the episode publish time; zero when the feed omits it.
	Published time.Time
	// FeedTitle names the podcast the episode belongs to.
	FeedTitle string
	// FeedURL is the feed the episode was resolved from.
	FeedURL string
}

// Resolver fetches feeds and picks episodes out of them.
type Resolver struct {
	parser *gofeed.Parser
}

// NewResolver creates a feed resolver.
func NewResolver() *Resolver {
	return &Resolver{parser: gofeed.NewParser()}
}

// Resolve fetches the feed and returns the newest episode, or the item
// matching episodeURL when one is given (matched against item link, GUID,
// or enclosure URL).
func (r *Resolver) Resolve(ctx context.Context, feedURL string, episodeURL string) (*Episode, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("podcast: fetch feed %s: %w", feedURL, err)
	}
	if len(feed.Items) == 0 {
		return nil, ErrNoEpisodes
	}

	var item *gofeed.Item
	if episodeURL != "" {
		item = matchEpisode(feed.Items, episodeURL)
		if item == nil {
			return nil, ErrEpisodeNotFound
		}
	} else {
		item = newestItem(feed.Items)
	}

	return episodeFromItem(feed, feedURL, item), nil
}

// matchEpisode finds the item whose link, GUID, or enclosure equals the
// requested URL. Trailing slashes are ignored.
func matchEpisode(items []*gofeed.Item, url string) *gofeed.Item {
	want := strings.TrimRight(url, "/")
	for _, item := range items {
		if strings.TrimRight(item.Link, "/") == want || item.GUID == url {
			return item
		}
		for _, enc := range item.Enclosures {
			if strings.TrimRight(enc.URL, "/") == want {
				return item
			}
		}
	}
	return nil
}

// newestItem prefers publish dates when present and otherwise keeps the
// feed's own ordering, which is newest-first in practice.
func newestItem(items []*gofeed.Item) *gofeed.Item {
	newest := items[0]
	for _, item := range items[1:] {
		if itemTime(item).After(itemTime(newest)) {
			newest = item
		}
	}
	return newest
}

func itemTime(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

func episodeFromItem(feed *gofeed.Feed, feedURL string, item *gofeed.Item) *Episode {
	ep := &Episode{
		Title:       item.Title,
		Link:        item.Link,
		Description: item.Description,
		Published:   itemTime(item),
		FeedTitle:   feed.Title,
		FeedURL:     feedURL,
	}
	if ep.Description == "" {
		ep.Description = item.Content
	}
	for _, enc := range item.Enclosures {
		if enc.URL != "" && (enc.Type == "" || strings.HasPrefix(enc.Type, "audio/")) {
			ep.EnclosureURL = enc.URL
			break
		}
	}
	if item.ITunesExt != nil {
		ep.Duration = item.ITunesExt.Duration
	}
	return ep
}
