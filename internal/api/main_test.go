package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/stay-booking-backend/internal/app"
	"github.com/nekogravitycat/stay-booking-backend/internal/auth"
	"github.com/nekogravitycat/stay-booking-backend/internal/user"
)

var (
	testRouter *gin.Engine
	testPool   *pgxpool.Pool
	jwtManager *auth.JWTManager
)

func TestMain(m *testing.M) {
	// Attempt to load .env from the repository root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Printf("No .env file found or failed to load: %v", err)
	}

	gin.SetMode(gin.TestMode)

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		// Integration tests skip themselves via requireDB.
		os.Exit(m.Run())
	}

	ctx := context.Background()
	var err error
	testPool, err = pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	schema, err := os.ReadFile("../../migrations/0001_init.sql")
	if err != nil {
		log.Fatalf("Unable to read schema: %v", err)
	}
	if _, err := testPool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("Unable to apply schema: %v", err)
	}

	testSecret := os.Getenv("TEST_JWT_SECRET")
	if testSecret == "" {
		testSecret = "integration-test-secret"
	}

	// Initialize App Container using shared logic
	appContainer := app.NewContainer(app.Config{
		DBPool:              testPool,
		JWTSecret:           testSecret,
		JWTTTL:              30 * time.Minute,
		BcryptCost:          4, // Lower cost for testing purposes
		ApprovalMaxAttempts: 3,
	})

	testRouter = appContainer.Router
	jwtManager = appContainer.JWTManager

	exitCode := m.Run()

	testPool.Close()
	os.Exit(exitCode)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testPool == nil {
		t.Skip("TEST_DB_DSN not set")
	}
}

func clearTables() {
	ctx := context.Background()
	queries := []string{
		"TRUNCATE TABLE public.bookings CASCADE",
		"TRUNCATE TABLE public.property_blocked_intervals CASCADE",
		"TRUNCATE TABLE public.properties CASCADE",
		"TRUNCATE TABLE public.event_rsvps CASCADE",
		"TRUNCATE TABLE public.friendships CASCADE",
		"TRUNCATE TABLE public.users CASCADE",
	}
	for _, q := range queries {
		if _, err := testPool.Exec(ctx, q); err != nil {
			log.Printf("Failed to clean table: %v", err)
		}
	}
}

func executeRequest(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testRouter.ServeHTTP(w, req)
	return w
}

func createTestUser(t *testing.T, email string) *user.User {
	t.Helper()
	hasher := auth.NewBcryptPasswordHasherWithCost(4)
	hash, err := hasher.Hash("password123")
	require.NoError(t, err, "Failed to hash password")

	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  &email,
		IsActive:     true,
	}

	repo := user.NewPgxRepository(testPool)
	require.NoError(t, repo.Create(context.Background(), u), "Failed to create test user in DB")

	saved, err := repo.GetByEmail(context.Background(), email)
	require.NoError(t, err, "Failed to fetch created user")
	return saved
}

// befriend inserts an accepted friendship edge; edges are managed outside this service.
func befriend(t *testing.T, a, b string) {
	t.Helper()
	_, err := testPool.Exec(context.Background(),
		"INSERT INTO public.friendships (user_id, friend_id, status) VALUES ($1, $2, 'accepted')", a, b)
	require.NoError(t, err)
}

func generateToken(u *user.User) string {
	token, _ := jwtManager.GenerateAccessToken(u.ID, u.Email)
	return token
}
