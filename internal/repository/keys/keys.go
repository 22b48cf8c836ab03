// Package keys centralizes the Redis key layout shared by the collection,
// document, and postings repositories so the FT index's PREFIX clause always
// matches the hash keys the postings engine actually writes.
package keys

import "github.com/kailas-cloud/nestidx/internal/domain"

// CollectionMeta is the key holding a collection's serialized schema.
func CollectionMeta(name string) string {
	return domain.KeyPrefix + "collection:" + name
}

// CollectionScanPattern matches every collection metadata key.
func CollectionScanPattern() string {
	return domain.KeyPrefix + "collection:*"
}

// IndexName is the FT index name for a collection's postings.
func IndexName(collection string) string {
	return domain.KeyPrefix + collection + ":idx"
}

// PostingsPrefix is the hash key prefix the FT index watches: one hash per
// document, with each field named by its flattened dotted leaf path.
func PostingsPrefix(collection string) string {
	return domain.KeyPrefix + "postings:" + collection + ":"
}

// Postings returns the hash key for one document's leaf values.
func Postings(collection, docID string) string {
	return PostingsPrefix(collection) + docID
}

// DocPrefix is the JSON envelope key prefix for a collection's stored bodies.
func DocPrefix(collection string) string {
	return domain.KeyPrefix + "doc:" + collection + ":"
}

// Doc returns the JSON envelope key for one document's stored body.
func Doc(collection, docID string) string {
	return DocPrefix(collection) + docID
}
