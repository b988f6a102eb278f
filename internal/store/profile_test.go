// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"testing"

	"github.com/google/uuid"

	"propage/internal/models"
)

func TestProfileStoreCreate(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-create@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email) })

	p, err := s.Create(email, "testpass123", "create-user", "Test User", models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if p.Email != email {
		t.Errorf("email: got %q, want %q", p.Email, email)
	}
	if p.Username != "create-user" {
		t.Errorf("username: got %q, want %q", p.Username, "create-user")
	}
	if p.Bio != "" {
		t.Errorf("bio: got %q, want empty default", p.Bio)
	}
	if p.Image != models.DefaultProfileImage {
		t.Errorf("image: got %q, want placeholder default", p.Image)
	}
	if p.Role != models.RoleUser {
		t.Errorf("role: got %q, want %q", p.Role, models.RoleUser)
	}
	if p.PasswordHash == "" || p.PasswordHash == "testpass123" {
		t.Error("password hash must be set and not plaintext")
	}
}

func TestProfileStoreDuplicateUsername(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email1 := "test-dupe-a@store-test.local"
	email2 := "test-dupe-b@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email1, email2) })

	_, err := s.Create(email1, "pass", "dupe-name", "First", models.RoleUser)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	_, err = s.Create(email2, "pass", "dupe-name", "Second", models.RoleUser)
	if err == nil {
		t.Fatal("expected error for duplicate username, got nil")
	}
	if !IsConflict(err) {
		t.Errorf("IsConflict(%v) = false, want true", err)
	}
}

func TestProfileStoreFindByUsername(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-findbyusername@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email) })

	// Not found case.
	p, err := s.FindByUsername("no-such-username")
	if err != nil {
		t.Fatalf("FindByUsername (not found): %v", err)
	}
	if p != nil {
		t.Error("expected nil for non-existent username")
	}

	created, err := s.Create(email, "pass", "find-me", "Find Me", models.RoleUser)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	p, err = s.FindByUsername("find-me")
	if err != nil {
		t.Fatalf("FindByUsername: %v", err)
	}
	if p == nil {
		t.Fatal("expected profile, got nil")
	}
	if p.ID != created.ID {
		t.Errorf("ID mismatch: got %s, want %s", p.ID, created.ID)
	}
}

func TestProfileStoreSparseUpdate(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-sparse@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email) })

	created, _ := s.Create(email, "pass", "sparse-user", "Original", models.RoleUser)

	bio := "a short bio"
	updated, err := s.Update(created.ID, ProfilePatch{Bio: &bio})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Bio != bio {
		t.Errorf("bio: got %q, want %q", updated.Bio, bio)
	}
	// Fields absent from the patch stay untouched.
	if updated.Name != "Original" {
		t.Errorf("name changed by bio-only patch: got %q", updated.Name)
	}
	if updated.Image != models.DefaultProfileImage {
		t.Errorf("image changed by bio-only patch: got %q", updated.Image)
	}

	name := "Renamed"
	updated, err = s.Update(created.ID, ProfilePatch{Name: &name})
	if err != nil {
		t.Fatalf("Update (name): %v", err)
	}
	if updated.Name != name {
		t.Errorf("name: got %q, want %q", updated.Name, name)
	}
	if updated.Bio != bio {
		t.Errorf("bio changed by name-only patch: got %q", updated.Bio)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Error("expected updated_at to advance")
	}
}

func TestProfileStoreUpdateByUsername(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-update-username@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email) })

	s.Create(email, "pass", "addr-by-name", "Addr", models.RoleUser)

	bio := "updated via username"
	updated, err := s.UpdateByUsername("addr-by-name", ProfilePatch{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateByUsername: %v", err)
	}
	if updated == nil {
		t.Fatal("expected profile, got nil")
	}
	if updated.Bio != bio {
		t.Errorf("bio: got %q, want %q", updated.Bio, bio)
	}

	// Unknown username reports not-found, not an error.
	updated, err = s.UpdateByUsername("no-such-user", ProfilePatch{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateByUsername (missing): %v", err)
	}
	if updated != nil {
		t.Error("expected nil for unknown username")
	}
}

func TestProfileStoreSetRole(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-setrole@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email) })

	p, _ := s.Create(email, "pass", "role-user", "Role", models.RoleUser)

	if err := s.SetRole(p.ID, models.RoleAdmin); err != nil {
		t.Fatalf("SetRole: %v", err)
	}

	p, _ = s.FindByID(p.ID)
	if !p.IsAdmin() {
		t.Error("expected admin role after SetRole")
	}
}

func TestProfileStoreCheckPassword(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-checkpass@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email) })

	p, _ := s.Create(email, "correct-password", "pw-check", "PW Check", models.RoleUser)

	if !s.CheckPassword(p, "correct-password") {
		t.Error("expected CheckPassword to return true for correct password")
	}
	if s.CheckPassword(p, "wrong-password") {
		t.Error("expected CheckPassword to return false for wrong password")
	}
	if s.CheckPassword(p, "") {
		t.Error("expected CheckPassword to return false for empty password")
	}
}

func TestProfileStoreTOTPLifecycle(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-totp@store-test.local"
	t.Cleanup(func() { cleanProfiles(t, db, email) })

	p, _ := s.Create(email, "pass", "totp-user", "TOTP User", models.RoleAdmin)

	if p.TOTPSecret != nil {
		t.Error("expected nil TOTP secret initially")
	}
	if !p.Needs2FASetup() {
		t.Error("expected new admin to need 2FA setup")
	}

	if err := s.SetTOTPSecret(p.ID, "JBSWY3DPEHPK3PXP"); err != nil {
		t.Fatalf("SetTOTPSecret: %v", err)
	}

	p, _ = s.FindByID(p.ID)
	if p.TOTPSecret == nil || *p.TOTPSecret != "JBSWY3DPEHPK3PXP" {
		t.Errorf("expected TOTP secret set, got %v", p.TOTPSecret)
	}
	if p.TOTPEnabled {
		t.Error("TOTP should not be enabled yet (just set secret)")
	}

	if err := s.EnableTOTP(p.ID); err != nil {
		t.Fatalf("EnableTOTP: %v", err)
	}

	p, _ = s.FindByID(p.ID)
	if !p.TOTPEnabled {
		t.Error("expected TOTP enabled after EnableTOTP")
	}
	if p.Needs2FASetup() {
		t.Error("expected no setup needed once enabled")
	}
}

func TestProfileStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewProfileStore(db)

	email := "test-delete@store-test.local"
	// No cleanup needed since we're deleting.

	p, _ := s.Create(email, "pass", "delete-me", "Delete Me", models.RoleUser)

	deleted, err := s.Delete(p.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !deleted {
		t.Error("expected Delete to report a removed row")
	}

	found, _ := s.FindByID(p.ID)
	if found != nil {
		t.Error("expected nil after delete")
	}

	// Deleting again reports false without error.
	deleted, err = s.Delete(p.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if deleted {
		t.Error("expected false for already-deleted profile")
	}
}
