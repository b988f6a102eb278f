// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"propage/internal/models"
)

const profileColumns = `id, email, password_hash, username, name, bio, image, role,
       totp_secret, totp_enabled, created_at, updated_at`

// ProfileStore handles all profile-related database operations.
type ProfileStore struct {
	db *sql.DB
}

// NewProfileStore creates a new ProfileStore with the given database connection.
func NewProfileStore(db *sql.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	p := &models.Profile{}
	err := row.Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.Username, &p.Name, &p.Bio,
		&p.Image, &p.Role, &p.TOTPSecret, &p.TOTPEnabled, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByEmail retrieves a profile by email address. Returns nil if not found.
func (s *ProfileStore) FindByEmail(email string) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email,
	))
	if err != nil {
		return nil, fmt.Errorf("find profile by email: %w", err)
	}
	return p, nil
}

// FindByID retrieves a profile by its UUID. Returns nil if not found.
func (s *ProfileStore) FindByID(id uuid.UUID) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id,
	))
	if err != nil {
		return nil, fmt.Errorf("find profile by id: %w", err)
	}
	return p, nil
}

// FindByUsername retrieves a profile by its public username. Returns nil if
// not found.
func (s *ProfileStore) FindByUsername(username string) (*models.Profile, error) {
	p, err := scanProfile(s.db.QueryRow(
		`SELECT `+profileColumns+` FROM profiles WHERE username = $1`, username,
	))
	if err != nil {
		return nil, fmt.Errorf("find profile by username: %w", err)
	}
	return p, nil
}

// List returns all profiles, newest first.
func (s *ProfileStore) List() ([]models.Profile, error) {
	rows, err := s.db.Query(
		`SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(
			&p.ID, &p.Email, &p.PasswordHash, &p.Username, &p.Name, &p.Bio,
			&p.Image, &p.Role, &p.TOTPSecret, &p.TOTPEnabled, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Create inserts a new profile with a bcrypt-hashed password. Bio defaults to
// empty and image to the placeholder when not supplied. The username is
// pre-checked for uniqueness as a fast-path user-facing validation; the
// database constraint remains the authoritative guard.
func (s *ProfileStore) Create(email, password, username, name string, role models.Role) (*models.Profile, error) {
	existing, err := s.FindByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("username %q: %w", username, ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	p := &models.Profile{}
	err = s.db.QueryRow(`
		INSERT INTO profiles (email, password_hash, username, name, bio, image, role)
		VALUES ($1, $2, $3, $4, '', $5, $6)
		RETURNING `+profileColumns+`
	`, email, string(hash), username, name, models.DefaultProfileImage, role).Scan(
		&p.ID, &p.Email, &p.PasswordHash, &p.Username, &p.Name, &p.Bio,
		&p.Image, &p.Role, &p.TOTPSecret, &p.TOTPEnabled, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return p, nil
}

// ProfilePatch is a sparse profile update. Nil fields are left untouched.
type ProfilePatch struct {
	Name  *string
	Bio   *string
	Image *string
}

// Update applies a sparse patch to the profile with the given ID and stamps
// updated_at. Returns the updated row, or nil if the profile does not exist.
func (s *ProfileStore) Update(id uuid.UUID, patch ProfilePatch) (*models.Profile, error) {
	return s.update("id", id, patch)
}

// UpdateByUsername applies a sparse patch addressed by username.
func (s *ProfileStore) UpdateByUsername(username string, patch ProfilePatch) (*models.Profile, error) {
	return s.update("username", username, patch)
}

func (s *ProfileStore) update(keyColumn string, key any, patch ProfilePatch) (*models.Profile, error) {
	b := &patchBuilder{}
	if patch.Name != nil {
		b.add("name", *patch.Name)
	}
	if patch.Bio != nil {
		b.add("bio", *patch.Bio)
	}
	if patch.Image != nil {
		b.add("image", *patch.Image)
	}
	b.sets = append(b.sets, "updated_at = NOW()")

	query := fmt.Sprintf(
		`UPDATE profiles SET %s WHERE %s = $%d RETURNING %s`,
		strings.Join(b.sets, ", "), keyColumn, b.arg(key), profileColumns,
	)

	p, err := scanProfile(s.db.QueryRow(query, b.args...))
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// SetRole changes a profile's role.
func (s *ProfileStore) SetRole(id uuid.UUID, role models.Role) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2
	`, role, id)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	return nil
}

// SetTOTPSecret saves the TOTP secret for a profile (during 2FA setup).
func (s *ProfileStore) SetTOTPSecret(id uuid.UUID, secret string) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET totp_secret = $1, updated_at = NOW() WHERE id = $2
	`, secret, id)
	if err != nil {
		return fmt.Errorf("set totp secret: %w", err)
	}
	return nil
}

// EnableTOTP marks 2FA as active for a profile (after successful code verification).
func (s *ProfileStore) EnableTOTP(id uuid.UUID) error {
	_, err := s.db.Exec(`
		UPDATE profiles SET totp_enabled = TRUE, updated_at = NOW() WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("enable totp: %w", err)
	}
	return nil
}

// Delete removes a profile by ID. Returns true if a row was deleted.
func (s *ProfileStore) Delete(id uuid.UUID) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// CheckPassword verifies a plaintext password against the profile's stored hash.
func (s *ProfileStore) CheckPassword(p *models.Profile, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}
