package events

// Event type constants
const (
	EventRequestCreated        = "request.created"
	EventRequestStatusChanged  = "request.status.changed"
	EventRequestUpdated        = "request.updated"
	EventRequestDeleted        = "request.deleted"
	EventRequestRetried        = "request.retried"
	EventMediaStatusChanged    = "media.status.changed"
	EventDispatchSubmitted     = "dispatch.submitted"
	EventDispatchSucceeded     = "dispatch.succeeded"
	EventDispatchFailed        = "dispatch.failed"
	EventDispatchSkipped       = "dispatch.skipped"
	EventNotificationRequested = "notification.requested"
)

// RequestCreated is emitted after a request is persisted.
type RequestCreated struct {
	BaseEvent
	RequestID   int64  `json:"request_id"`
	MediaID     int64  `json:"media_id"`
	MediaType   string `json:"media_type"`
	Is4K        bool   `json:"is_4k"`
	Status      string `json:"status"`
	RequestedBy int64  `json:"requested_by"`
	Seasons     []int  `json:"seasons,omitempty"`
}

// RequestStatusChanged is emitted when an operator moves a request between statuses.
type RequestStatusChanged struct {
	BaseEvent
	RequestID  int64  `json:"request_id"`
	MediaID    int64  `json:"media_id"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	ModifiedBy *int64 `json:"modified_by,omitempty"`
}

// RequestUpdated is emitted when a request's overrides or seasons are edited.
type RequestUpdated struct {
	BaseEvent
	RequestID int64 `json:"request_id"`
	MediaID   int64 `json:"media_id"`
	Seasons   []int `json:"seasons,omitempty"`
}

// RequestDeleted is emitted after a request and its seasons are removed.
type RequestDeleted struct {
	BaseEvent
	RequestID int64 `json:"request_id"`
	MediaID   int64 `json:"media_id"`
	Is4K      bool  `json:"is_4k"`
}

// RequestRetried is emitted when an operator re-runs dispatch for a request.
type RequestRetried struct {
	BaseEvent
	RequestID int64 `json:"request_id"`
	MediaID   int64 `json:"media_id"`
}

// MediaStatusChanged is emitted when one variant of a media item changes status.
type MediaStatusChanged struct {
	BaseEvent
	MediaID   int64  `json:"media_id"`
	Variant   string `json:"variant"` // "standard" or "4k"
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// DispatchSubmitted is emitted when a request is handed to an acquisition service.
type DispatchSubmitted struct {
	BaseEvent
	JobID      string `json:"job_id"`
	RequestID  int64  `json:"request_id"`
	MediaID    int64  `json:"media_id"`
	Service    string `json:"service"` // "radarr" or "sonarr"
	InstanceID int64  `json:"instance_id"`
}

// DispatchSucceeded is emitted when the service accepted the title.
type DispatchSucceeded struct {
	BaseEvent
	JobID      string `json:"job_id"`
	RequestID  int64  `json:"request_id"`
	MediaID    int64  `json:"media_id"`
	InstanceID int64  `json:"instance_id"`
	ExternalID int64  `json:"external_id"`
	TitleSlug  string `json:"title_slug"`
}

// DispatchFailed is emitted when the service rejected the title or was unreachable.
type DispatchFailed struct {
	BaseEvent
	JobID      string `json:"job_id"`
	RequestID  int64  `json:"request_id"`
	MediaID    int64  `json:"media_id"`
	InstanceID int64  `json:"instance_id"`
	Reason     string `json:"reason"`
}

// DispatchSkipped is emitted when dispatch stopped before submission.
type DispatchSkipped struct {
	BaseEvent
	RequestID int64  `json:"request_id"`
	MediaID   int64  `json:"media_id"`
	Kind      string `json:"kind"` // error class, e.g. "config" or "precondition"
	Reason    string `json:"reason"`
}

// NotificationField is an extra labelled value of a notification.
type NotificationField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NotificationRequested asks the notification handler to deliver a notification.
type NotificationRequested struct {
	BaseEvent
	Kind         uint32              `json:"kind"`
	Subject      string              `json:"subject"`
	Message      string              `json:"message,omitempty"`
	Image        string              `json:"image,omitempty"`
	Extra        []NotificationField `json:"extra,omitempty"`
	NotifyUserID *int64              `json:"notify_user_id,omitempty"`
	MediaID      *int64              `json:"media_id,omitempty"`
	RequestID    *int64              `json:"request_id,omitempty"`
}
