// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Shared fixtures for the handler integration tests. Tests skip when
// PostgreSQL or Valkey are unreachable.
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"propage/internal/auth"
	"propage/internal/cache"
	"propage/internal/database"
	"propage/internal/middleware"
	"propage/internal/session"
	"propage/internal/store"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens the test PostgreSQL and brings the schema current.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("POSTGRES_USER", "propage"),
		envOr("POSTGRES_PASSWORD", "changeme"),
		envOr("POSTGRES_HOST", "localhost"),
		envOr("POSTGRES_PORT", "5432"),
		envOr("POSTGRES_DB", "propage"),
	)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient connects to Valkey DB 15 and wipes the session and page
// keys the test leaves behind.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(envOr("VALKEY_HOST", "localhost"), envOr("VALKEY_PORT", "6379")),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "page:*"} {
			if keys, _ := client.Keys(ctx, pattern).Result(); len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv bundles the stores and handler groups a handler test needs.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	Sessions      *session.Store
	ProfileStore  *store.ProfileStore
	TemplateStore *store.TemplateStore
	SectionStore  *store.SectionStore
	FooterStore   *store.FooterItemStore
	ImageStore    *store.ImageStore
	PageCache     *cache.PageCache
	Auth          *Auth
	Admin         *Admin
	Profile       *Profile
	Public        *Public
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		DB:     testDB(t),
		Valkey: testValkeyClient(t),
	}
	env.Sessions = session.NewStore(env.Valkey)
	env.ProfileStore = store.NewProfileStore(env.DB)
	env.TemplateStore = store.NewTemplateStore(env.DB)
	env.SectionStore = store.NewSectionStore(env.DB)
	env.FooterStore = store.NewFooterItemStore(env.DB)
	env.ImageStore = store.NewImageStore(env.DB)
	env.PageCache = cache.NewPageCache(env.Valkey, 1*time.Minute)

	authService := auth.NewService(env.ProfileStore)
	env.Auth = NewAuth(env.Sessions, env.ProfileStore)
	env.Admin = NewAdmin(env.TemplateStore, env.SectionStore, env.FooterStore, env.ProfileStore, env.PageCache)
	env.Profile = NewProfile(authService, env.ProfileStore, env.PageCache)
	env.Public = NewPublic(env.TemplateStore, env.ProfileStore, env.PageCache)
	return env
}

// ctxWithSession plants session data under the middleware's context key,
// standing in for LoadSession.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

func testSession(userID uuid.UUID, username, role string, twoFADone bool) *session.Data {
	return &session.Data{
		UserID:    userID,
		Email:     username + "@handler-test.local",
		Username:  username,
		Role:      role,
		TwoFADone: twoFADone,
	}
}

// withChiURLParam injects a chi route parameter the way the router would.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndSession combines withChiURLParam and ctxWithSession.
func withChiURLParamAndSession(r *http.Request, key, value string, sess *session.Data) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(context.WithValue(ctx, middleware.SessionKey, sess))
}

// cleanProfiles removes test profiles by email.
func cleanProfiles(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, email := range emails {
		db.Exec("DELETE FROM profiles WHERE email = $1", email)
	}
}

// cleanTemplates removes test templates by slug.
func cleanTemplates(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM profile_templates WHERE slug = $1", s)
	}
}
