package estimate

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressureflow/backend/internal/domain/shared"
)

// PhotoType tells before-pictures from after-pictures
type PhotoType string

const (
	PhotoBefore PhotoType = "voor"
	PhotoAfter  PhotoType = "na"
)

// Photo is metadata for a project picture kept in object storage
type Photo struct {
	ID          uuid.UUID
	EstimateID  uuid.UUID
	CustomerID  *uuid.UUID
	PhotoType   PhotoType
	StorageKey  string
	ContentType string
	SizeBytes   int64
	Caption     string
	CreatedAt   time.Time
}

// NewPhoto creates photo metadata; the storage key is derived from the ids
func NewPhoto(estimateID uuid.UUID, customerID *uuid.UUID, photoType PhotoType, contentType, extension string, size int64, caption string) (*Photo, error) {
	if estimateID == uuid.Nil {
		return nil, shared.NewValidationError("estimate_id is required")
	}
	if photoType == "" {
		photoType = PhotoBefore
	}
	if photoType != PhotoBefore && photoType != PhotoAfter {
		return nil, shared.NewValidationError(fmt.Sprintf("unknown photo type %q", photoType))
	}
	if size <= 0 {
		return nil, shared.NewValidationError("photo_data is empty")
	}

	id := uuid.New()
	return &Photo{
		ID:          id,
		EstimateID:  estimateID,
		CustomerID:  customerID,
		PhotoType:   photoType,
		StorageKey:  fmt.Sprintf("estimates/%s/photos/%s.%s", estimateID, id, strings.TrimPrefix(extension, ".")),
		ContentType: contentType,
		SizeBytes:   size,
		Caption:     caption,
		CreatedAt:   time.Now(),
	}, nil
}
