package users

import (
	"context"
	"errors"
	"testing"
)

func TestUpsertRefreshesProfileKeepsCreatedAt(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if err := svc.UpsertFromAuth(ctx, User{
		ID:       "google:123",
		Email:    "ada@example.com",
		FullName: "Ada Lovelace",
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	first, err := svc.GetByID(ctx, "google:123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if err := svc.UpsertFromAuth(ctx, User{
		ID:         "google:123",
		Email:      "ada@example.com",
		FullName:   "Ada King",
		PictureURL: "https://example.com/ada.png",
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	second, err := svc.GetByID(ctx, "google:123")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if second.FullName != "Ada King" || second.PictureURL == "" {
		t.Fatalf("profile not refreshed: %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("CreatedAt changed across upserts: %v != %v", second.CreatedAt, first.CreatedAt)
	}
}

func TestUpsertRequiresIDAndEmail(t *testing.T) {
	svc := NewService(NewMemoryRepo())
	ctx := context.Background()

	if err := svc.UpsertFromAuth(ctx, User{Email: "ada@example.com"}); err == nil {
		t.Fatal("expected error for missing id")
	}
	if err := svc.UpsertFromAuth(ctx, User{ID: "google:123"}); err == nil {
		t.Fatal("expected error for missing email")
	}
}

func TestGetByIDUnknownUser(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if _, err := svc.GetByID(context.Background(), "google:missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
