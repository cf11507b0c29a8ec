// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"telemart/internal/auth"
	"telemart/internal/cache"
	"telemart/internal/catalog"
	"telemart/internal/database"
	"telemart/internal/middleware"
	"telemart/internal/models"
	"telemart/internal/orders"
	"telemart/internal/reviews"
	"telemart/internal/store"
)

const testBotToken = "7000000001:AAtest-bot-token-for-handler-tests"

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "telemart")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "telemart")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

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

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "catalog:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB            *sql.DB
	Valkey        *redis.Client
	UserStore     *store.UserStore
	CategoryStore *store.CategoryStore
	ProductStore  *store.ProductStore
	OrderStore    *store.OrderStore
	ReviewStore   *store.ReviewStore
	Tokens        *auth.TokenManager
	AuthService   *auth.Service
	Manager       *catalog.Manager
	OrderService  *orders.Service
	ReviewService *reviews.Service
	Cache         *cache.CatalogCache
	Auth          *Auth
	Categories    *Categories
	Products      *Products
	Orders        *Orders
	Reviews       *Reviews
	Media         *Media
}

// newTestEnv creates a complete test environment with all handler
// dependencies. Object storage stays nil; uploads answer 503.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db)
	orderStore := store.NewOrderStore(db)
	reviewStore := store.NewReviewStore(db)

	tokens := auth.NewTokenManager("handler-test-secret")
	authService := auth.NewService(userStore, tokens, testBotToken, 0)
	manager := catalog.NewManager(categoryStore, productStore)
	orderService := orders.NewService(orderStore, userStore)
	reviewService := reviews.NewService(reviewStore, orderStore)
	catalogCache := cache.NewCatalogCache(vk, 1*time.Minute)

	return &testEnv{
		DB:            db,
		Valkey:        vk,
		UserStore:     userStore,
		CategoryStore: categoryStore,
		ProductStore:  productStore,
		OrderStore:    orderStore,
		ReviewStore:   reviewStore,
		Tokens:        tokens,
		AuthService:   authService,
		Manager:       manager,
		OrderService:  orderService,
		ReviewService: reviewService,
		Cache:         catalogCache,
		Auth:          NewAuth(authService),
		Categories:    NewCategories(manager, categoryStore, catalogCache, nil),
		Products:      NewProducts(manager, productStore, reviewStore, catalogCache, nil),
		Orders:        NewOrders(orderService),
		Reviews:       NewReviews(reviewService, reviewStore, catalogCache),
		Media:         NewMedia(nil),
	}
}

// signInitData builds an initData query string carrying a valid hash
// for the given fields, the same way Telegram's client does.
func signInitData(t *testing.T, botToken string, fields map[string]string) string {
	t.Helper()

	pairs := make([]string, 0, len(fields))
	for k, v := range fields {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))
	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hex.EncodeToString(mac.Sum(nil)))
	return values.Encode()
}

// testUser upserts a user by telegram id and registers its cleanup.
func testUser(t *testing.T, env *testEnv, telegramID int64, name string, isAdmin bool) *models.User {
	t.Helper()

	user, _, err := env.UserStore.Upsert(telegramID, name, "", strings.ToLower(name), "", isAdmin)
	if err != nil {
		t.Fatalf("upsert user %d: %v", telegramID, err)
	}
	t.Cleanup(func() { cleanUsers(t, env.DB, telegramID) })
	return user
}

// ctxWithUser adds an authenticated user to a context using the
// middleware key.
func ctxWithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, middleware.UserKey, user)
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withChiURLParamAndUser adds both a chi URL param and a user to a request.
func withChiURLParamAndUser(r *http.Request, key, value string, user *models.User) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.UserKey, user)
	return r.WithContext(ctx)
}

// seedCategory creates a category directly through the store.
func seedCategory(t *testing.T, env *testEnv, name string, parentID *uuid.UUID) *models.Category {
	t.Helper()

	c, err := env.CategoryStore.Create(&models.Category{Name: name, ParentID: parentID})
	if err != nil {
		t.Fatalf("seed category %q: %v", name, err)
	}
	return c
}

// seedProduct creates a product with the given stock under a category.
func seedProduct(t *testing.T, env *testEnv, categoryID uuid.UUID, name string, price string, stock int) *models.Product {
	t.Helper()

	p, err := env.ProductStore.Create(&models.Product{
		CategoryID: categoryID,
		Name:       name,
		Price:      mustDecimal(t, price),
		Stock:      stock,
	})
	if err != nil {
		t.Fatalf("seed product %q: %v", name, err)
	}
	return p
}

// cleanCatalog removes test products and categories by name prefix.
// Reviews hanging off the products go away through the cascade.
func cleanCatalog(t *testing.T, db *sql.DB, prefix string) {
	t.Helper()
	db.Exec("DELETE FROM products WHERE name LIKE $1", prefix+"%")
	db.Exec("DELETE FROM categories WHERE name LIKE $1", prefix+"%")
}

// cleanUsers removes test users together with their reviews and orders.
func cleanUsers(t *testing.T, db *sql.DB, telegramIDs ...int64) {
	t.Helper()
	for _, id := range telegramIDs {
		db.Exec("DELETE FROM reviews WHERE user_id IN (SELECT id FROM users WHERE telegram_id = $1)", id)
		db.Exec("DELETE FROM orders WHERE user_id IN (SELECT id FROM users WHERE telegram_id = $1)", id)
		db.Exec("DELETE FROM users WHERE telegram_id = $1", id)
	}
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}
