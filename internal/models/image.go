// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Image is an uploaded file stored in object storage with its metadata row.
type Image struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	SizeBytes    int64     `json:"sizeBytes"`
	S3Key        string    `json:"s3Key"`
	ThumbS3Key   *string   `json:"thumbS3Key,omitempty"`
	UploaderID   uuid.UUID `json:"uploaderId"`
	CreatedAt    time.Time `json:"createdAt"`
}
