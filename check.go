package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
)

// how far back into a feed to look for the last seen entry, and how many
// entries to report when it is not found
const (
	lookbackLimit   = 20
	unknownFallback = 5
)

// checkFeeds looks for new entries in every tracked comic's feed and
// records the new feed state. Nothing is posted anywhere
func checkFeeds(ctx context.Context, out io.Writer, st *store, fetcher *feedFetcher) error {
	comics, err := st.tracked(ctx)
	if err != nil {
		return err
	}

	for _, tc := range comics {
		err := checkFeed(ctx, out, tc, st, fetcher)
		if err != nil {
			log.Warn().Err(err).Str("comic", tc.name).Msg("feed check failed")
		}
	}

	return nil
}

// checkFeed checks a single comic, skipping unchanged feeds by their
// caching headers and then by their hash
func checkFeed(ctx context.Context, out io.Writer, tc trackedComic, st *store, fetcher *feedFetcher) error {
	feed, err := fetcher.fetchConditional(ctx, tc.url, tc.cache)
	if err != nil {
		return fmt.Errorf("failed to fetch feed for %s: %w", tc.name, err)
	}

	if feed.notModified {
		fmt.Fprintf(out, "%s not modified\n", tc.name)
		return nil
	}

	if bytes.Equal(feed.hash, tc.feedHash) {
		fmt.Fprintf(out, "%s no changes\n", tc.name)
		return nil
	}

	newEntries, found := newEntries(feed.entries, tc.lastUpdate)
	if !found {
		log.Warn().Str("comic", tc.name).Str("last_update", tc.lastUpdate).Msg("last seen entry not in feed")
	}

	fmt.Fprintf(out, "%s %d new entries\n", tc.name, len(newEntries))
	for _, entry := range newEntries {
		fmt.Fprintf(out, "\t%s\n", entry)
	}

	if len(feed.entries) > 0 {
		err = st.setLastUpdate(ctx, tc.name, feed.entries[0])
		if err != nil {
			return err
		}
	}

	return st.setFeedCache(ctx, tc.name, feed)
}

// newEntries returns the entries newer than lastSeen, oldest first. Entries
// are newest first; when lastSeen is not within the lookback limit the
// newest few entries are returned and found is false
func newEntries(entries []string, lastSeen string) (fresh []string, found bool) {
	limit := min(len(entries), lookbackLimit)

	n := -1
	for i := 0; i < limit; i++ {
		if entries[i] == lastSeen {
			n = i
			break
		}
	}

	found = n >= 0
	if !found {
		n = min(len(entries), unknownFallback)
	}

	fresh = make([]string, 0, n)
	for i := n - 1; i >= 0; i-- {
		fresh = append(fresh, entries[i])
	}
	return fresh, found
}
