package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-image-share/internal/logger"
	"github.com/sbilibin2017/gw-image-share/internal/models"
	"github.com/segmentio/kafka-go"
)

var (
	// ErrImageNotFound is returned when an image id does not resolve.
	ErrImageNotFound = errors.New("image not found")
	// ErrForbidden is returned when the caller is not the image's author.
	ErrForbidden = errors.New("caller is not the image author")
	// ErrStorage is returned when the blob upload fails during image creation.
	ErrStorage = errors.New("failed to store image")
)

const (
	// presignTTL bounds the lifetime of read URLs handed to clients.
	presignTTL = time.Hour
	// uniqueNameBytes is the entropy of a blob key; keys are its hex form.
	uniqueNameBytes = 32
)

// ImageWriter defines metadata mutations. Update and Delete enforce
// ownership inside the mutation itself and return nil when no owned row
// matched.
type ImageWriter interface {
	Save(ctx context.Context, authorID uuid.UUID, uniqueName, title string, description *string, tags []string, isPublic bool) (*models.ImageDB, error)
	Update(ctx context.Context, imageID, authorID uuid.UUID, title, description *string, tags []string, isPublic *bool) (*models.ImageDB, error)
	Delete(ctx context.Context, imageID, authorID uuid.UUID) (*models.ImageDB, error)
	DeleteByID(ctx context.Context, imageID uuid.UUID) error
}

// ImageReader defines metadata queries.
type ImageReader interface {
	GetByID(ctx context.Context, imageID uuid.UUID) (*models.ImageDB, error)
	GetAuthorID(ctx context.Context, imageID uuid.UUID) (uuid.UUID, error)
	Find(ctx context.Context, opts models.ImageSearchOptions, authorID *uuid.UUID) ([]models.ImageDB, error)
}

// BlobStorage defines the blob-store operations the lifecycle needs.
type BlobStorage interface {
	Upload(ctx context.Context, uniqueName string, data []byte, contentType string) error
	GetURL(ctx context.Context, uniqueName string, expires time.Duration) (string, error)
	Delete(ctx context.Context, uniqueName string) error
}

// URLCache caches presigned read URLs.
type URLCache interface {
	GetURL(ctx context.Context, uniqueName string) (string, error)
	SetURL(ctx context.Context, uniqueName, url string) error
	DeleteURL(ctx context.Context, uniqueName string) error
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// ImageService orchestrates the image lifecycle across the metadata store
// and the blob store, and runs the listing query.
type ImageService struct {
	writeRepo   ImageWriter
	readRepo    ImageReader
	blob        BlobStorage
	urlCache    URLCache
	kafkaWriter KafkaWriter
}

// NewImageService creates a new ImageService.
func NewImageService(
	writeRepo ImageWriter,
	readRepo ImageReader,
	blob BlobStorage,
	urlCache URLCache,
	kafkaWriter KafkaWriter,
) *ImageService {
	return &ImageService{
		writeRepo:   writeRepo,
		readRepo:    readRepo,
		blob:        blob,
		urlCache:    urlCache,
		kafkaWriter: kafkaWriter,
	}
}

// newUniqueName generates the random blob key correlating a metadata row
// with its blob. Generated once per image, never user-supplied.
func newUniqueName() (string, error) {
	buf := make([]byte, uniqueNameBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// publishEvent publishes an image lifecycle event to Kafka. Failures are
// logged and never affect the operation's outcome.
func (s *ImageService) publishEvent(ctx context.Context, event models.ImageEvent) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event_id", event.EventID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal image event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.ImageID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish image event to Kafka", "event_id", event.EventID, "error", err)
	} else {
		logger.Log.Infow("Image event published to Kafka", "event_id", event.EventID, "operation", event.Operation)
	}
}

// getURL resolves a presigned read URL through the cache, signing and
// caching on a miss. Cache write failures are logged only.
func (s *ImageService) getURL(ctx context.Context, uniqueName string) (string, error) {
	if s.urlCache != nil {
		if url, err := s.urlCache.GetURL(ctx, uniqueName); err == nil {
			return url, nil
		}
	}

	url, err := s.blob.GetURL(ctx, uniqueName, presignTTL)
	if err != nil {
		return "", err
	}

	if s.urlCache != nil {
		if err := s.urlCache.SetURL(ctx, uniqueName, url); err != nil {
			logger.Log.Errorw("failed to cache image url", "key", uniqueName, "error", err)
		}
	}

	return url, nil
}

// Upload creates an image: the metadata row is written first so the blob
// key is unique and attributable before the more fallible network upload
// runs. If the upload fails, the row is deleted as compensation and the
// operation fails with ErrStorage; a failed compensation leaves an orphan
// metadata row and is logged as a storage inconsistency.
func (s *ImageService) Upload(ctx context.Context, authorID uuid.UUID, title string, description *string, tags []string, isPublic bool, data []byte, contentType string) (*models.ImageWithURL, error) {
	uniqueName, err := newUniqueName()
	if err != nil {
		logger.Log.Errorw("failed to generate blob key", "error", err)
		return nil, err
	}

	if tags == nil {
		tags = []string{}
	}

	image, err := s.writeRepo.Save(ctx, authorID, uniqueName, title, description, tags, isPublic)
	if err != nil {
		logger.Log.Errorw("failed to save image metadata", "authorID", authorID, "error", err)
		return nil, err
	}

	if err := s.blob.Upload(ctx, uniqueName, data, contentType); err != nil {
		logger.Log.Errorw("blob upload failed, compensating metadata insert", "imageID", image.ImageID, "error", err)
		if compErr := s.writeRepo.DeleteByID(ctx, image.ImageID); compErr != nil {
			logger.Log.Errorw("storage inconsistency: compensating delete failed, orphan metadata row remains",
				"imageID", image.ImageID, "key", uniqueName, "error", compErr)
		}
		return nil, ErrStorage
	}

	s.publishEvent(ctx, models.ImageEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().Unix(),
		ImageID:   image.ImageID.String(),
		AuthorID:  authorID.String(),
		Operation: models.ImageEventUploaded,
	})

	url, err := s.getURL(ctx, uniqueName)
	if err != nil {
		logger.Log.Errorw("failed to presign image url after upload", "imageID", image.ImageID, "error", err)
		return nil, err
	}

	return &models.ImageWithURL{ImageDB: *image, URL: url}, nil
}

// Update patches image metadata. Binary content is immutable once
// uploaded, so the blob store is untouched; replacing an image is modeled
// as delete plus upload. The mutation is conditional on ownership; when it
// matches no row, one follow-up author read tells ErrImageNotFound apart
// from ErrForbidden.
func (s *ImageService) Update(ctx context.Context, imageID, authorID uuid.UUID, title, description *string, tags []string, isPublic *bool) (*models.ImageWithURL, error) {
	image, err := s.writeRepo.Update(ctx, imageID, authorID, title, description, tags, isPublic)
	if err != nil {
		logger.Log.Errorw("failed to update image", "imageID", imageID, "error", err)
		return nil, err
	}
	if image == nil {
		return nil, s.resolveMissFailure(ctx, imageID)
	}

	url, err := s.getURL(ctx, image.UniqueName)
	if err != nil {
		logger.Log.Errorw("failed to presign image url", "imageID", imageID, "error", err)
		return nil, err
	}

	return &models.ImageWithURL{ImageDB: *image, URL: url}, nil
}

// Remove deletes an image: the metadata row goes first and its deletion
// decides the outcome; the subsequent blob delete and cache invalidation
// are best-effort, logged on failure but never surfaced, since the
// user-visible resource is already gone. Intentional asymmetry with
// Upload's compensation.
func (s *ImageService) Remove(ctx context.Context, imageID, authorID uuid.UUID) error {
	image, err := s.writeRepo.Delete(ctx, imageID, authorID)
	if err != nil {
		logger.Log.Errorw("failed to delete image", "imageID", imageID, "error", err)
		return err
	}
	if image == nil {
		return s.resolveMissFailure(ctx, imageID)
	}

	if err := s.blob.Delete(ctx, image.UniqueName); err != nil {
		logger.Log.Errorw("best-effort blob delete failed, orphan blob remains", "key", image.UniqueName, "error", err)
	}
	if s.urlCache != nil {
		if err := s.urlCache.DeleteURL(ctx, image.UniqueName); err != nil {
			logger.Log.Errorw("failed to invalidate cached image url", "key", image.UniqueName, "error", err)
		}
	}

	s.publishEvent(ctx, models.ImageEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().Unix(),
		ImageID:   image.ImageID.String(),
		AuthorID:  authorID.String(),
		Operation: models.ImageEventDeleted,
	})

	return nil
}

// resolveMissFailure maps a conditional mutation that matched no row onto
// ErrImageNotFound or ErrForbidden.
func (s *ImageService) resolveMissFailure(ctx context.Context, imageID uuid.UUID) error {
	ownerID, err := s.readRepo.GetAuthorID(ctx, imageID)
	if err != nil {
		logger.Log.Errorw("failed to resolve image author", "imageID", imageID, "error", err)
		return err
	}
	if ownerID == uuid.Nil {
		return ErrImageNotFound
	}
	return ErrForbidden
}

// Get returns a single image enriched with a presigned read URL.
func (s *ImageService) Get(ctx context.Context, imageID uuid.UUID) (*models.ImageWithURL, error) {
	image, err := s.readRepo.GetByID(ctx, imageID)
	if err != nil {
		logger.Log.Errorw("failed to get image", "imageID", imageID, "error", err)
		return nil, err
	}
	if image == nil {
		return nil, ErrImageNotFound
	}

	url, err := s.getURL(ctx, image.UniqueName)
	if err != nil {
		logger.Log.Errorw("failed to presign image url", "imageID", imageID, "error", err)
		return nil, err
	}

	return &models.ImageWithURL{ImageDB: *image, URL: url}, nil
}

// Search runs the filtered, sorted, paginated listing and enriches every
// hit with a presigned read URL. A non-nil authorID scopes the search to
// that author's images.
func (s *ImageService) Search(ctx context.Context, opts models.ImageSearchOptions, authorID *uuid.UUID) ([]models.ImageWithURL, error) {
	images, err := s.readRepo.Find(ctx, opts, authorID)
	if err != nil {
		logger.Log.Errorw("failed to search images", "error", err)
		return nil, err
	}

	result := make([]models.ImageWithURL, 0, len(images))
	for _, image := range images {
		url, err := s.getURL(ctx, image.UniqueName)
		if err != nil {
			logger.Log.Errorw("failed to presign image url", "imageID", image.ImageID, "error", err)
			return nil, err
		}
		result = append(result, models.ImageWithURL{ImageDB: image, URL: url})
	}

	return result, nil
}
