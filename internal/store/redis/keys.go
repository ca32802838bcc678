package redis

// Key prefixes for all Linkmark data stored in Redis.
const (
	KeyPrefixMetadata = "linkmark:metadata:"
)

// MetadataKey returns the cache key for a page URL's enrichment result.
// urlKey is the deterministic per-URL hash fragment.
func MetadataKey(urlKey string) string {
	return KeyPrefixMetadata + urlKey
}
