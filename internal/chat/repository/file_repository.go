package repository

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"chat_backend_service/internal/chat/domain"
	"chat_backend_service/pkg"
	"chat_backend_service/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// FileRepository definition blob store with upload metadata
type FileRepository interface {
	// Save store the bytes, identical content reuses the earlier object
	Save(ctx context.Context, originalName, contentType string, data []byte, uploadedBy string) (*domain.StoredFile, error)
	Get(ctx context.Context, storedName string) (io.ReadCloser, *domain.StoredFile, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.StoredFile, error)
	Delete(ctx context.Context, fileID string) error
}

type fileRepository struct {
	minio *database.MinIOClient
	coll  *mongo.Collection
}

// NewFileRepository create a FileRepository on minio and the uploads collection
func NewFileRepository(minio *database.MinIOClient, db *mongo.Database) FileRepository {
	return &fileRepository{
		minio: minio,
		coll:  db.Collection("uploads.files"),
	}
}

// Save store the bytes, identical content reuses the earlier object
func (r *fileRepository) Save(ctx context.Context, originalName, contentType string, data []byte, uploadedBy string) (*domain.StoredFile, error) {
	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	// same content already uploaded, keep the earlier copy
	var existing domain.StoredFile
	err := r.coll.FindOne(ctx, bson.M{"content_hash": hash}).Decode(&existing)
	if err == nil {
		return &existing, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	storedName, err := randomStoredName(originalName)
	if err != nil {
		return nil, err
	}

	if err := r.minio.UploadObject(ctx, storedName, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return nil, fmt.Errorf("upload object fail: %w", err)
	}

	file := &domain.StoredFile{
		ID:           pkg.NewID(),
		OriginalName: originalName,
		StoredName:   storedName,
		ContentHash:  hash,
		Size:         int64(len(data)),
		ContentType:  contentType,
		UploadedBy:   uploadedBy,
		CreatedAt:    time.Now(),
	}
	if _, err := r.coll.InsertOne(ctx, file); err != nil {
		return nil, err
	}
	return file, nil
}

// Get open the object stream, caller must close
func (r *fileRepository) Get(ctx context.Context, storedName string) (io.ReadCloser, *domain.StoredFile, error) {
	var file domain.StoredFile
	err := r.coll.FindOne(ctx, bson.M{"stored_name": storedName}).Decode(&file)
	if err != nil {
		return nil, nil, err
	}

	obj, err := r.minio.GetObject(ctx, storedName)
	if err != nil {
		return nil, nil, err
	}
	return obj, &file, nil
}

// FindByIDs find upload metadata by id
func (r *fileRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.StoredFile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var files []domain.StoredFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// Delete remove the object and its metadata
func (r *fileRepository) Delete(ctx context.Context, fileID string) error {
	var file domain.StoredFile
	err := r.coll.FindOne(ctx, bson.M{"_id": fileID}).Decode(&file)
	if err == mongo.ErrNoDocuments {
		return nil
	}
	if err != nil {
		return err
	}

	if err := r.minio.RemoveObject(ctx, file.StoredName); err != nil {
		return err
	}

	_, err = r.coll.DeleteOne(ctx, bson.M{"_id": fileID})
	return err
}

// randomStoredName 16 random hex chars keeping the original extension
func randomStoredName(originalName string) (string, error) {
	buf := make([]byte, 8)
	if _, err := crand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf) + filepath.Ext(originalName), nil
}
