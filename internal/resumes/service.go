package resumes

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"cvstudio-backend/internal/cv"
)

// Service contains business logic for saved resumes.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create saves a new resume for the user.
func (s *Service) Create(ctx context.Context, userID, title string, data cv.Document) (Resume, error) {
	if userID == "" {
		return Resume{}, errors.New("userID is required")
	}
	now := time.Now().UTC()
	resume := Resume{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     normalizeTitle(title, data),
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, err
	}
	return resume, nil
}

// Get returns a resume owned by the user.
func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if resumeID == "" {
		return Resume{}, errors.New("resumeID is required")
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// List returns all resumes for a user, most recently updated first.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	return s.Repo.ListByUser(ctx, userID)
}

// Update replaces a resume's title and document.
func (s *Service) Update(ctx context.Context, userID, resumeID, title string, data cv.Document) (Resume, error) {
	if resumeID == "" {
		return Resume{}, errors.New("resumeID is required")
	}
	resume := Resume{
		ID:        resumeID,
		UserID:    userID,
		Title:     normalizeTitle(title, data),
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.Repo.Update(ctx, resume); err != nil {
		return Resume{}, err
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// Delete removes a resume owned by the user.
func (s *Service) Delete(ctx context.Context, userID, resumeID string) error {
	if resumeID == "" {
		return errors.New("resumeID is required")
	}
	return s.Repo.Delete(ctx, userID, resumeID)
}

func normalizeTitle(title string, data cv.Document) string {
	title = strings.TrimSpace(title)
	if title != "" {
		return title
	}
	if name := strings.TrimSpace(data.PersonalInfo.Name); name != "" {
		return name + " CV"
	}
	return "Untitled CV"
}
