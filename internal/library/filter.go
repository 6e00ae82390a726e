package library

// RequestSort orders request listings.
type RequestSort string

const (
	SortAdded    RequestSort = "added"    // newest first
	SortModified RequestSort = "modified" // most recently updated first
)

// RequestFilter specifies criteria for listing requests.
// Empty slices and nil pointers match everything.
type RequestFilter struct {
	Statuses      []RequestStatus
	MediaStatuses []MediaStatus // matched against the request's own variant
	RequestedBy   *int64
	MediaID       *int64
	Type          *MediaType
	Is4K          *bool
	Sort          RequestSort
	Limit         int // 0 = no limit
	Offset        int
}
