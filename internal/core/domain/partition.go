package domain

import (
	"strings"
	"time"
)

// partitionSeparator joins tenant URL and user ID into a partition key.
// This format is part of the storage contract: changing it requires a
// migration of every persisted record key.
const partitionSeparator = "::"

// recordKeySeparator joins partition, application ID and structural path
// into a record primary key.
const recordKeySeparator = ":"

// PartitionKey builds the cache partition key for a tenant/user pair.
// All records, metadata and favourites belonging to one user's cache of
// one tenant live under this key.
func PartitionKey(tenantURL, userID string) string {
	return tenantURL + partitionSeparator + userID
}

// SplitPartitionKey breaks a partition key back into tenant URL and user ID.
// Returns empty strings if the key is not in the expected format.
func SplitPartitionKey(partition string) (tenantURL, userID string) {
	idx := strings.LastIndex(partition, partitionSeparator)
	if idx < 0 {
		return "", ""
	}
	return partition[:idx], partition[idx+len(partitionSeparator):]
}

// RecordKey builds the primary key for an index record. The structural
// path is only unique within one application, so the key namespaces it
// by partition and application ID.
func RecordKey(partition, appID, path string) string {
	return partition + recordKeySeparator + appID + recordKeySeparator + path
}

// PartitionInfo summarises what is cached for one tenant/user pair.
// Used by the manage-data surface to enumerate caches without loading them.
type PartitionInfo struct {
	// TenantUser is the partition key.
	TenantUser string

	// AppCount is the number of applications with cached metadata.
	AppCount int

	// RecordCount is the number of index records stored.
	RecordCount int

	// LastSync is the most recent successful application load.
	LastSync time.Time
}
