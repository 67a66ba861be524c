package cache

import (
	"fmt"
	"strings"
	"time"
)

// ListingTTL bounds the staleness of cached anonymous post listings.
const ListingTTL = 30 * time.Second

// ListingKey builds the cache key for an anonymous post-listing query.
// Only viewer-independent listings are cached, so the filter fields fully
// identify the result.
func ListingKey(tags []string, sort string, authorID int64, page int, before time.Time, search string) string {
	var ts int64
	if !before.IsZero() {
		ts = before.Unix()
	}
	return fmt.Sprintf("posts:%s:%s:%d:%d:%d:%s",
		strings.Join(tags, ","), sort, authorID, page, ts, search)
}
