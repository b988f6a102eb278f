package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

const (
	seedAdminEmail    = "admin@propage.local"
	seedAdminPassword = "admin"
)

// Seed creates the bootstrap admin account on an empty database. With any
// existing profile it does nothing, so it is safe to call on every dev
// start. The admin has totp_enabled false and is walked through TOTP setup
// on first login.
func Seed(db *sql.DB) error {
	var populated bool
	if err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM profiles)").Scan(&populated); err != nil {
		return fmt.Errorf("seed check profiles: %w", err)
	}
	if populated {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO profiles (email, password_hash, username, name, role, totp_enabled)
		VALUES ($1, $2, 'admin', 'Admin', 'admin', false)
	`, seedAdminEmail, string(hash))
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("seeded bootstrap admin account",
		"email", seedAdminEmail,
		"password", seedAdminPassword,
	)
	return nil
}
