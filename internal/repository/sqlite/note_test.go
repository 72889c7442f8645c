package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/model"
)

func TestNoteGetByUserID_NotFound(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db.Users(), "n", "n@example.com")

	_, err := db.Notes().GetByUserID(context.Background(), user.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByUserID() error = %v, want ErrNotFound", err)
	}
}

func TestNoteUpsert_CreateThenReplace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db.Users(), "n", "n@example.com")

	first := &model.Note{UserID: user.ID, Content: "hi"}
	if err := db.Notes().Upsert(ctx, first); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("Upsert() did not set note.ID")
	}

	second := &model.Note{UserID: user.ID, Content: "updated"}
	if err := db.Notes().Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replacing a note changed its ID: %q -> %q", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("CreatedAt changed on replace: %v -> %v", first.CreatedAt, second.CreatedAt)
	}

	got, err := db.Notes().GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID() error = %v", err)
	}
	if got.Content != "updated" {
		t.Errorf("Content = %q, want %q", got.Content, "updated")
	}
}

func TestNoteUpsert_IsolatedPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := createTestUser(t, db.Users(), "alice", "alice@example.com")
	bob := createTestUser(t, db.Users(), "bob", "bob@example.com")

	if err := db.Notes().Upsert(ctx, &model.Note{UserID: alice.ID, Content: "alice's"}); err != nil {
		t.Fatal(err)
	}

	if _, err := db.Notes().GetByUserID(ctx, bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("bob sees a note: err = %v", err)
	}
}

func TestNoteUpsert_UnknownUserViolatesForeignKey(t *testing.T) {
	db := newTestDB(t)

	err := db.Notes().Upsert(context.Background(), &model.Note{UserID: "ghost", Content: "x"})
	if err == nil {
		t.Fatal("Upsert() for a nonexistent user should fail with foreign keys on")
	}
}
