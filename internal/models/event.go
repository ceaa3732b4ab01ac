package models

// Image lifecycle event operations.
const (
	ImageEventUploaded = "uploaded"
	ImageEventDeleted  = "deleted"
)

// ImageEvent represents an image lifecycle event published to Kafka after a
// successful mutation.
type ImageEvent struct {
	EventID   string `json:"event_id"`  // EventID is a unique identifier for the event.
	Timestamp int64  `json:"timestamp"` // Timestamp is the Unix timestamp (in seconds) when the mutation happened.
	ImageID   string `json:"image_id"`  // ImageID is the identifier of the affected image.
	AuthorID  string `json:"author_id"` // AuthorID is the identifier of the image's owner.
	Operation string `json:"operation"` // Operation is the mutation type, "uploaded" or "deleted".
}
