package documents

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"

	"cvstudio-backend/internal/extract"
	"cvstudio-backend/internal/shared/storage/object"
	"cvstudio-backend/internal/shared/telemetry"
)

// Service contains business logic for documents.
type Service struct {
	Store object.ObjectStore
	Repo  DocumentsRepo
}

// Upload saves the file to object storage and records the document.
func (s *Service) Upload(ctx context.Context, userId, fileName string, r io.Reader) (Document, error) {
	if fileName == "" {
		return Document{}, ErrInvalidInput
	}

	storageKey, size, mimeType, err := s.Store.Save(ctx, userId, fileName, r)
	if err != nil {
		return Document{}, err
	}

	doc := Document{
		ID:         uuid.NewString(),
		UserID:     userId,
		FileName:   fileName,
		MimeType:   mimeType,
		SizeBytes:  size,
		StorageKey: storageKey,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, err
	}

	return doc, nil
}

// Current returns the most recently uploaded document for a user.
func (s *Service) Current(ctx context.Context, userId string) (Document, error) {
	if userId == "" {
		return Document{}, errors.New("user id required")
	}
	return s.Repo.GetCurrentByUser(ctx, userId)
}

// List returns the user's documents, newest first.
func (s *Service) List(ctx context.Context, userId string, limit, offset int) ([]Document, error) {
	if userId == "" {
		return nil, errors.New("user id required")
	}
	return s.Repo.ListByUser(ctx, userId, limit, offset)
}

// GetText returns the extracted plain text of a document. The first call runs
// extraction and persists a derived text object; later calls read that copy.
func (s *Service) GetText(ctx context.Context, userId, documentID string) (string, error) {
	doc, err := s.Repo.GetByID(ctx, userId, documentID)
	if err != nil {
		return "", err
	}

	if doc.ExtractedTextKey != "" {
		if text, err := s.readExtracted(ctx, doc.ExtractedTextKey); err == nil {
			return text, nil
		}
		telemetry.Warn("documents.extracted_copy_unreadable", map[string]any{
			"documentId": doc.ID,
			"key":        doc.ExtractedTextKey,
		})
	}

	text, err := extract.ExtractText(ctx, s.Store, doc.StorageKey, doc.MimeType, doc.FileName)
	if err != nil {
		return "", err
	}

	extractedKey := doc.StorageKey + ".extracted.txt"
	if err := s.Repo.UpdateExtraction(ctx, userId, doc.ID, extractedKey, time.Now().UTC()); err != nil {
		telemetry.Warn("documents.extraction_record_failed", map[string]any{
			"documentId": doc.ID,
			"error":      err.Error(),
		})
	}

	return text, nil
}

func (s *Service) readExtracted(ctx context.Context, key string) (string, error) {
	body, err := s.Store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
