package sqldb

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/second-brain/internal/apperror"
	"github.com/sakif/second-brain/internal/model"
)

func TestCreateShareLink(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "share@example.com", "Johnny")

	link := &model.ShareLink{Hash: "abcDEF1234", UserID: user.ID}
	if err := db.CreateShareLink(context.Background(), link); err != nil {
		t.Fatalf("CreateShareLink() error = %v", err)
	}
	if link.ID == "" {
		t.Error("CreateShareLink() did not set ID")
	}

	byUser, err := db.GetShareLinkByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetShareLinkByUser() error = %v", err)
	}
	if byUser.Hash != "abcDEF1234" {
		t.Errorf("Hash = %q, want %q", byUser.Hash, "abcDEF1234")
	}

	byHash, err := db.GetShareLinkByHash(context.Background(), "abcDEF1234")
	if err != nil {
		t.Fatalf("GetShareLinkByHash() error = %v", err)
	}
	if byHash.UserID != user.ID {
		t.Errorf("UserID = %q, want %q", byHash.UserID, user.ID)
	}
}

func TestCreateShareLink_OnePerUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "once@example.com", "Johnny")

	if err := db.CreateShareLink(context.Background(), &model.ShareLink{Hash: "first00000", UserID: user.ID}); err != nil {
		t.Fatalf("first CreateShareLink() error = %v", err)
	}

	err := db.CreateShareLink(context.Background(), &model.ShareLink{Hash: "second0000", UserID: user.ID})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second CreateShareLink() error = %v, want ErrConflict", err)
	}

	link, err := db.GetShareLinkByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetShareLinkByUser() error = %v", err)
	}
	if link.Hash != "first00000" {
		t.Errorf("Hash = %q, want the first link to win", link.Hash)
	}
}

func TestCreateShareLink_HashCollision(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com", "Alice")
	bob := createTestUser(t, db, "bob@example.com", "Bobby")

	if err := db.CreateShareLink(context.Background(), &model.ShareLink{Hash: "samehash00", UserID: alice.ID}); err != nil {
		t.Fatalf("CreateShareLink(alice) error = %v", err)
	}

	err := db.CreateShareLink(context.Background(), &model.ShareLink{Hash: "samehash00", UserID: bob.ID})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateShareLink(bob) error = %v, want ErrConflict", err)
	}

	// The collision leaves bob without a link, which is how callers tell it
	// apart from bob already having one.
	if _, err := db.GetShareLinkByUser(context.Background(), bob.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetShareLinkByUser(bob) error = %v, want ErrNotFound", err)
	}
}

func TestGetShareLinkByHash_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetShareLinkByHash(context.Background(), "nothing123")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetShareLinkByHash() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteShareLinkByUser(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "revoke@example.com", "Johnny")

	if err := db.CreateShareLink(context.Background(), &model.ShareLink{Hash: "revokeme00", UserID: user.ID}); err != nil {
		t.Fatalf("CreateShareLink() error = %v", err)
	}

	if err := db.DeleteShareLinkByUser(context.Background(), user.ID); err != nil {
		t.Fatalf("DeleteShareLinkByUser() error = %v", err)
	}

	if _, err := db.GetShareLinkByHash(context.Background(), "revokeme00"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("revoked hash still resolves: err = %v", err)
	}

	// Deleting again is a no-op.
	if err := db.DeleteShareLinkByUser(context.Background(), user.ID); err != nil {
		t.Errorf("second DeleteShareLinkByUser() error = %v", err)
	}

	// A fresh link can be issued after revocation.
	if err := db.CreateShareLink(context.Background(), &model.ShareLink{Hash: "fresh00000", UserID: user.ID}); err != nil {
		t.Errorf("CreateShareLink() after revoke error = %v", err)
	}
}
