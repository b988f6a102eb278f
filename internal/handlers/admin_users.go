// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"propage/internal/cache"
	"propage/internal/csvimport"
	"propage/internal/middleware"
	"propage/internal/models"
	"propage/internal/store"
)

// maxImportSize caps the bulk import upload (1 MB of CSV is thousands of rows).
const maxImportSize = 1 << 20

// ListUsers returns all accounts, newest first.
func (a *Admin) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.profiles.List()
	if err != nil {
		slog.Error("list users failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// CreateUser creates a single account with the user role.
func (a *Admin) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if msg := validateNewUser(req.Email, req.Username, req.Name); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if req.Password == "" {
		writeError(w, http.StatusBadRequest, "Password is required.")
		return
	}

	user, err := a.profiles.Create(req.Email, req.Password, req.Username, req.Name, models.RoleUser)
	if err != nil {
		slog.Error("create user failed", "error", err, "email", req.Email)
		if store.IsConflict(err) {
			writeError(w, http.StatusConflict, "email or username already in use")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	slog.Info("user created", "email", user.Email, "username", user.Username)
	writeJSON(w, http.StatusCreated, user)
}

// SetUserRole promotes or demotes an account.
func (a *Admin) SetUserRole(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	role := models.Role(req.Role)
	if role != models.RoleUser && role != models.RoleAdmin {
		writeError(w, http.StatusBadRequest, `role must be "user" or "admin"`)
		return
	}

	// Demoting yourself would lock the last admin out mid-session.
	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id && role != models.RoleAdmin {
		writeError(w, http.StatusBadRequest, "cannot change your own role")
		return
	}

	if err := a.profiles.SetRole(id, role); err != nil {
		slog.Error("set role failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// DeleteUser removes an account. Self-deletion is refused. The response
// reports whether a row was actually removed, so a repeated delete of the
// same account is visible to the caller rather than a silent success.
func (a *Admin) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := urlUUID(w, r, "id")
	if !ok {
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	if sess != nil && sess.UserID == id {
		writeError(w, http.StatusBadRequest, "cannot delete your own account")
		return
	}

	// Resolve the username first so the public page cache can be dropped.
	user, err := a.profiles.FindByID(id)
	if err != nil {
		slog.Error("user lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	deleted, err := a.profiles.Delete(id)
	if err != nil {
		slog.Error("delete user failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if user != nil {
		a.pageCache.Invalidate(r.Context(), cache.ProfileKey(user.Username))
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

// importResult is the outcome of one bulk-import row.
type importResult struct {
	Success  bool   `json:"success"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Error    string `json:"error,omitempty"`
}

// BulkImportUsers creates accounts from an uploaded CSV file. Each row is
// processed independently; one bad row never aborts the batch, and the
// response carries a per-row outcome.
func (a *Admin) BulkImportUsers(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportSize)
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "import file too large")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	entries, err := csvimport.ParseUsers(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not parse import file")
		return
	}
	if len(entries) == 0 {
		writeError(w, http.StatusBadRequest, "import file contains no users")
		return
	}

	results := make([]importResult, 0, len(entries))
	created := 0
	for _, e := range entries {
		res := importResult{Email: e.Email, Username: e.Username}

		if msg := validateNewUser(e.Email, e.Username, e.Name); msg != "" {
			res.Error = msg
			results = append(results, res)
			continue
		}

		if _, err := a.profiles.Create(e.Email, e.Password, e.Username, e.Name, models.RoleUser); err != nil {
			slog.Warn("bulk import row failed", "email", e.Email, "error", err)
			if store.IsConflict(err) {
				res.Error = "email or username already in use"
			} else {
				res.Error = "could not create account"
			}
			results = append(results, res)
			continue
		}

		res.Success = true
		created++
		results = append(results, res)
	}

	slog.Info("bulk user import finished", "total", len(entries), "created", created)
	writeJSON(w, http.StatusOK, map[string]any{
		"created": created,
		"total":   len(entries),
		"results": results,
	})
}
