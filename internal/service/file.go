package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/SNU-Hackathon/Doany-sub000/internal/apperr"
	"github.com/SNU-Hackathon/Doany-sub000/internal/model"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/storage"
)

var ErrUploadsDisabled = errors.New("photo upload is not configured")

// FileService stores photo evidence for verification records. The storage
// may be nil, in which case uploads are rejected with ErrUploadsDisabled.
type FileService struct {
	fileRepo repository.FileRepository
	storage  storage.Storage
}

func NewFileService(fileRepo repository.FileRepository, storage storage.Storage) *FileService {
	return &FileService{
		fileRepo: fileRepo,
		storage:  storage,
	}
}

func (s *FileService) Enabled() bool {
	return s.storage != nil
}

// UploadPhoto stores a photo and attaches it to a verification record.
// The caller validates the upload and the record's ownership.
func (s *FileService) UploadPhoto(ctx context.Context, userID, verificationID string, file multipart.File, header *multipart.FileHeader) (*model.File, error) {
	if s.storage == nil {
		return nil, ErrUploadsDisabled
	}

	// Generate unique filename
	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := uuid.New().String() + ext
	// Generate storage path scoped to the owner and the record
	storagePath := path.Join("evidence", userID, verificationID, filename)

	// Save file to storage
	mimeType := header.Header.Get("Content-Type")
	err := s.storage.Save(ctx, storagePath, file, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	// Create database record
	fileModel := &model.File{
		ID:           uuid.New().String(),
		UserID:       userID,
		OwnerType:    model.FileOwnerVerification,
		OwnerID:      verificationID,
		Type:         model.FileTypePhoto,
		Filename:     filename,
		OriginalName: header.Filename,
		MimeType:     mimeType,
		Size:         header.Size,
		StoragePath:  storagePath,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.fileRepo.Create(ctx, fileModel)
	if err != nil {
		// If DB insert fails, try to cleanup the uploaded file
		delErr := s.storage.Delete(ctx, storagePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", storagePath)
		}
		return nil, apperr.StoreUnavailable("files.create", err)
	}

	slog.Info("photo evidence stored", "file_id", fileModel.ID, "verification_id", verificationID, "size", header.Size)
	return fileModel, nil
}

// Photos lists the photos attached to a verification record.
func (s *FileService) Photos(ctx context.Context, verificationID string) ([]*model.File, error) {
	files, err := s.fileRepo.Files(ctx, model.FileOwnerVerification, verificationID)
	if err != nil {
		return nil, apperr.StoreUnavailable("files.list", err)
	}
	return files, nil
}

// URL returns a short-lived download URL for file.
func (s *FileService) URL(ctx context.Context, file *model.File) (string, error) {
	if file == nil {
		return "", nil
	}
	if s.storage == nil {
		return "", ErrUploadsDisabled
	}
	return s.storage.URL(ctx, file.StoragePath)
}

// Delete removes a file from storage and database.
func (s *FileService) Delete(ctx context.Context, userID, fileID string) error {
	// Get file record
	file, err := s.fileRepo.ByID(ctx, fileID)
	if errors.Is(err, repository.ErrFileNotFound) {
		return err
	}
	if err != nil {
		return apperr.StoreUnavailable("files.by_id", err)
	}
	if file.UserID != userID {
		return repository.ErrFileNotFound
	}

	// Delete from storage (best effort)
	if s.storage != nil {
		delErr := s.storage.Delete(ctx, file.StoragePath)
		if delErr != nil {
			slog.Error("failed to delete file from storage", "error", delErr, "path", file.StoragePath)
		}
	}

	// Delete from database
	err = s.fileRepo.Delete(ctx, fileID)
	if err != nil {
		return apperr.StoreUnavailable("files.delete", err)
	}

	return nil
}
