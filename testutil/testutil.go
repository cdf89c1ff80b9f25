// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/db"
	"github.com/danielhkuo/campus-vote/models"
)

// TestDBEnv names the variable holding a postgres DSN. When unset, tests run
// against a private in-memory sqlite database.
const TestDBEnv = "TEST_DATABASE_URL"

const TestPassword = "password123"

var dbSeq atomic.Int64

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbType, dsn := db.TypeSQLite, fmt.Sprintf("file:campusvote_%d_%d?mode=memory&cache=shared", os.Getpid(), dbSeq.Add(1))
	if url := os.Getenv(TestDBEnv); url != "" {
		dbType, dsn = db.TypePostgres, url
	}

	gdb, err := db.Open(context.Background(), dbType, dsn, true)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close(gdb) })

	if dbType == db.TypePostgres {
		if err := db.DropSchema(gdb); err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}
	if err := db.CreateSchema(gdb); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return gdb
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3318,
		DatabaseType: db.TypeSQLite,
		DatabaseURL:  "file::memory:",
		JWTSecret:    "test-jwt-secret",
		TokenTTL:     time.Hour,
		IPHashSalt:   "test-ip-salt",
		CacheTTL:     time.Minute,
		LogMode:      "test",
	}
}

// CreateTestUser inserts a verified student unless mutators say otherwise.
func CreateTestUser(t *testing.T, gdb *gorm.DB, mutators ...func(*models.User)) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	n := dbSeq.Add(1)
	studentID := fmt.Sprintf("S%06d", n)
	user := &models.User{
		Name:       fmt.Sprintf("Student %d", n),
		Email:      fmt.Sprintf("student%d@campus.test", n),
		Password:   hash,
		StudentID:  &studentID,
		University: "Test University",
		Department: "CS",
		Year:       2,
		Role:       models.RoleStudent,
		IsVerified: true,
	}
	for _, m := range mutators {
		m(user)
	}

	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// CreateTestAdmin inserts a verified admin without a student ID.
func CreateTestAdmin(t *testing.T, gdb *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUser(t, gdb, func(u *models.User) {
		u.Role = models.RoleAdmin
		u.StudentID = nil
		u.Name = "Admin " + u.Name
	})
}

// CreateTestElection inserts an active election whose window is open now.
func CreateTestElection(t *testing.T, gdb *gorm.DB, mutators ...func(*models.Election)) *models.Election {
	t.Helper()

	now := time.Now().UTC()
	election := &models.Election{
		Title:       "Student Council",
		Description: "Annual student council election",
		StartDate:   now.Add(-time.Hour),
		EndDate:     now.Add(time.Hour),
		IsActive:    true,
		CreatedBy:   uuid.New(),
	}
	for _, m := range mutators {
		m(election)
	}

	if err := gdb.Create(election).Error; err != nil {
		t.Fatalf("Failed to create test election: %v", err)
	}
	return election
}

// CreateTestCandidate inserts an approved candidate under electionID.
func CreateTestCandidate(t *testing.T, gdb *gorm.DB, electionID uuid.UUID, name string, mutators ...func(*models.Candidate)) *models.Candidate {
	t.Helper()

	n := dbSeq.Add(1)
	candidate := &models.Candidate{
		ElectionID: electionID,
		StudentID:  fmt.Sprintf("C%06d", n),
		Name:       name,
		Email:      fmt.Sprintf("candidate%d@campus.test", n),
		Department: "CS",
		Year:       3,
		Position:   "President",
		Manifesto:  "More study rooms",
		IsApproved: true,
	}
	for _, m := range mutators {
		m(candidate)
	}

	if err := gdb.Create(candidate).Error; err != nil {
		t.Fatalf("Failed to create test candidate: %v", err)
	}
	return candidate
}

// CreateTestBallot writes a ballot straight into the ledger without touching
// counters.
func CreateTestBallot(t *testing.T, gdb *gorm.DB, voterID uuid.UUID, candidate *models.Candidate) *models.Ballot {
	t.Helper()

	ballot := &models.Ballot{
		VoterID:     voterID,
		ElectionID:  candidate.ElectionID,
		CandidateID: candidate.ID,
		Position:    candidate.Position,
		VotedAt:     time.Now().UTC(),
	}
	if err := gdb.Create(ballot).Error; err != nil {
		t.Fatalf("Failed to create test ballot: %v", err)
	}
	return ballot
}

// Principal returns the principal a token for user would carry.
func Principal(user *models.User) auth.Principal {
	return auth.Principal{UserID: user.ID, Role: user.Role}
}

// Token issues a bearer token for user under cfg.
func Token(t *testing.T, cfg cliparse.Config, user *models.User) string {
	t.Helper()

	token, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL).Issue(user.ID, user.Role)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// BearerHeader builds the Authorization header map for MakeRequest.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
