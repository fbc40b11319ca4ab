package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrValidation is the base kind for creation-input failures. The concrete
// sentinels below wrap it so callers can match either the kind or the field.
var (
	ErrValidation         = errors.New("validation failed")
	ErrMissingImage       = fmt.Errorf("image is required: %w", ErrValidation)
	ErrMissingDescription = fmt.Errorf("description is required: %w", ErrValidation)
	ErrMissingURL         = fmt.Errorf("url is required: %w", ErrValidation)
)

// Advertisement is one tracked job posting. Records are immutable after
// creation; there is no edit operation, only add and delete.
type Advertisement struct {
	ID          string `json:"id"`
	ImageURI    string `json:"imageUri"`
	Description string `json:"description"`
	URL         string `json:"url"`
	CreatedAt   int64  `json:"createdAt"` // epoch milliseconds
}

// New validates the inputs, trims description and url, and stamps a fresh id
// and creation time. It is the only way a record comes into existence.
func New(imageURI, description, url string) (*Advertisement, error) {
	description = strings.TrimSpace(description)
	url = strings.TrimSpace(url)

	if imageURI == "" {
		return nil, ErrMissingImage
	}
	if description == "" {
		return nil, ErrMissingDescription
	}
	if url == "" {
		return nil, ErrMissingURL
	}

	return &Advertisement{
		ID:          uuid.NewString(),
		ImageURI:    imageURI,
		Description: description,
		URL:         url,
		CreatedAt:   time.Now().UnixMilli(),
	}, nil
}

// CreatedTime returns the creation timestamp as a time.Time.
func (a *Advertisement) CreatedTime() time.Time {
	return time.UnixMilli(a.CreatedAt)
}
