package domain

import "time"

// StoredFile definition one upload metadata document
type StoredFile struct {
	ID           string `bson:"_id" json:"id"`
	OriginalName string `bson:"original_name" json:"original_name"`
	StoredName   string `bson:"stored_name" json:"stored_name"`

	// sha256 of the content, duplicate uploads reuse the earlier object
	ContentHash string `bson:"content_hash" json:"content_hash"`

	Size        int64  `bson:"size" json:"size"`
	ContentType string `bson:"content_type" json:"content_type"`
	UploadedBy  string `bson:"uploaded_by" json:"uploaded_by"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Ref make the attachment reference stored on messages
func (f *StoredFile) Ref() AttachmentRef {
	return AttachmentRef{
		FileID:       f.ID,
		OriginalName: f.OriginalName,
		StoredName:   f.StoredName,
		Size:         f.Size,
		ContentType:  f.ContentType,
	}
}
