// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/danielhkuo/campus-vote/auth"
	"github.com/danielhkuo/campus-vote/cache"
	"github.com/danielhkuo/campus-vote/cliparse"
	"github.com/danielhkuo/campus-vote/logger"
	"github.com/danielhkuo/campus-vote/models"
	"github.com/danielhkuo/campus-vote/router"
	"github.com/danielhkuo/campus-vote/testutil"
)

type server struct {
	t   *testing.T
	db  *gorm.DB
	cfg cliparse.Config
	r   *gin.Engine
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	return &server{t: t, db: db, cfg: cfg, r: router.NewRouter(db, cfg, logger.Nop(), cache.NopTallyCache{})}
}

func (s *server) do(method, path string, body interface{}, token string, extra ...string) *httptest.ResponseRecorder {
	var headers map[string]string
	if token != "" {
		headers = testutil.BearerHeader(token)
	} else {
		headers = map[string]string{}
	}
	for i := 0; i+1 < len(extra); i += 2 {
		headers[extra[i]] = extra[i+1]
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
	return w
}

func (s *server) token(user *models.User) string {
	return testutil.Token(s.t, s.cfg, user)
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newServer(t)
	studentID := "S-100"

	w := s.do("POST", "/api/auth/register", models.RegisterRequest{
		Name:       "Grace Hopper",
		Email:      "grace@campus.test",
		Password:   "secret1",
		StudentID:  &studentID,
		Department: "CS",
		Year:       3,
	}, "")
	testutil.AssertStatus(t, w, http.StatusCreated)
	assert.NotContains(t, w.Body.String(), "password")
	var registered models.AuthResponse
	testutil.AssertJSON(t, w, &registered)
	assert.NotEmpty(t, registered.Token)

	w = s.do("POST", "/api/auth/register", models.RegisterRequest{Name: "Dup", Email: "grace@campus.test", Password: "secret1"}, "")
	testutil.AssertStatus(t, w, http.StatusConflict)

	w = s.do("POST", "/api/auth/register", models.RegisterRequest{Name: "Boss", Email: "boss@campus.test", Password: "secret1", Role: models.RoleAdmin}, "")
	testutil.AssertStatus(t, w, http.StatusForbidden)

	w = s.do("POST", "/api/auth/login", models.LoginRequest{Email: "grace@campus.test", Password: "nope"}, "")
	testutil.AssertStatus(t, w, http.StatusUnauthorized)

	w = s.do("POST", "/api/auth/login", models.LoginRequest{Email: "grace@campus.test", Password: "secret1"}, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	var login models.AuthResponse
	testutil.AssertJSON(t, w, &login)

	w = s.do("GET", "/api/auth/profile", nil, login.Token)
	testutil.AssertStatus(t, w, http.StatusOK)
	var profile models.User
	testutil.AssertJSON(t, w, &profile)
	assert.Equal(t, registered.User.ID, profile.ID)
	assert.False(t, profile.IsVerified)

	newName := "Rear Admiral Hopper"
	w = s.do("PUT", "/api/auth/profile", models.UpdateProfileRequest{Name: &newName}, login.Token)
	testutil.AssertStatus(t, w, http.StatusOK)

	admin := s.token(testutil.CreateTestAdmin(t, s.db))
	w = s.do("PUT", "/api/auth/verify/"+profile.ID.String(), nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	var verified models.User
	testutil.AssertJSON(t, w, &verified)
	assert.True(t, verified.IsVerified)
	assert.Equal(t, newName, verified.Name)
}

func TestElectionFlow(t *testing.T) {
	s := newServer(t)
	adminUser := testutil.CreateTestAdmin(t, s.db)
	admin := s.token(adminUser)
	voter := testutil.CreateTestUser(t, s.db)
	student := s.token(voter)
	standing := testutil.CreateTestUser(t, s.db)
	now := time.Now().UTC()

	// Admin sets up an election.
	w := s.do("POST", "/api/elections", models.CreateElectionRequest{
		Title:              "Student Council",
		StartDate:          now.Add(-time.Hour),
		EndDate:            now.Add(time.Hour),
		AllowedDepartments: []string{"CS"},
	}, admin)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var election models.Election
	testutil.AssertJSON(t, w, &election)
	base := "/api/elections/" + election.ID.String()

	w = s.do("POST", "/api/elections", models.CreateElectionRequest{Title: "Backwards", StartDate: now, EndDate: now.Add(-time.Hour)}, admin)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	// Inactive elections are not listed to students.
	w = s.do("GET", "/api/elections/active", nil, student)
	testutil.AssertStatus(t, w, http.StatusOK)
	var active []models.Election
	testutil.AssertJSON(t, w, &active)
	assert.Empty(t, active)

	testutil.AssertStatus(t, s.do("PUT", base+"/toggle", nil, admin), http.StatusOK)

	w = s.do("POST", "/api/candidates", models.CreateCandidateRequest{
		ElectionID: election.ID,
		StudentID:  *standing.StudentID,
		Position:   "President",
	}, admin)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var candidate models.Candidate
	testutil.AssertJSON(t, w, &candidate)
	assert.False(t, candidate.IsApproved)

	vote := models.CastVoteRequest{ElectionID: election.ID, CandidateID: candidate.ID}
	w = s.do("POST", "/api/votes/cast", vote, student)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "candidate_not_approved")

	testutil.AssertStatus(t, s.do("PUT", "/api/candidates/"+candidate.ID.String()+"/approve", nil, admin), http.StatusOK)

	w = s.do("GET", "/api/elections/active", nil, student)
	testutil.AssertJSON(t, w, &active)
	require.Len(t, active, 1)
	assert.Equal(t, election.ID, active[0].ID)

	w = s.do("GET", "/api/candidates/election/"+election.ID.String(), nil, student)
	var listed []models.Candidate
	testutil.AssertJSON(t, w, &listed)
	require.Len(t, listed, 1)

	// Vote, then try again.
	w = s.do("POST", "/api/votes/cast", vote, student, "User-Agent", "campus-test/1.0")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var cast models.CastVoteResponse
	testutil.AssertJSON(t, w, &cast)
	assert.NotEqual(t, uuid.Nil, cast.BallotID)

	w = s.do("POST", "/api/votes/cast", vote, student)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "already_voted")

	var ballot models.Ballot
	require.NoError(t, s.db.First(&ballot, "id = ?", cast.BallotID).Error)
	require.NotNil(t, ballot.IPHash)
	assert.Equal(t, auth.HashIP("192.0.2.1", s.cfg.IPHashSalt), *ballot.IPHash)
	require.NotNil(t, ballot.UserAgent)
	assert.Equal(t, "campus-test/1.0", *ballot.UserAgent)

	// Results stay sealed for students until completion.
	results := "/api/votes/results/" + election.ID.String()
	w = s.do("GET", results, nil, student)
	testutil.AssertStatus(t, w, http.StatusForbidden)
	assert.Contains(t, w.Body.String(), "results_not_ready")

	w = s.do("GET", results, nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	var live models.TallyResult
	testutil.AssertJSON(t, w, &live)
	require.Len(t, live.Results, 1)
	assert.Equal(t, 100.0, live.Results[0].Percentage)

	w = s.do("PUT", base+"/complete", nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	var completed models.CompleteElectionResponse
	testutil.AssertJSON(t, w, &completed)
	assert.True(t, completed.Election.IsCompleted)
	assert.NotEmpty(t, completed.Snapshot.InputsHash)

	testutil.AssertStatus(t, s.do("PUT", base+"/toggle", nil, admin), http.StatusBadRequest)
	testutil.AssertStatus(t, s.do("GET", base+"/snapshot", nil, admin), http.StatusOK)

	w = s.do("GET", results, nil, student)
	testutil.AssertStatus(t, w, http.StatusOK)
	var final models.TallyResult
	testutil.AssertJSON(t, w, &final)
	assert.Equal(t, int64(1), final.Election.TotalVotes)
	assert.Equal(t, int64(1), final.CountedVotes)

	// Reports
	w = s.do("GET", "/api/votes/history", nil, student)
	testutil.AssertStatus(t, w, http.StatusOK)
	var history []models.HistoryEntry
	testutil.AssertJSON(t, w, &history)
	require.Len(t, history, 1)
	assert.Equal(t, "Student Council", history[0].ElectionTitle)

	w = s.do("GET", "/api/votes/statistics/"+election.ID.String(), nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	var stats models.ElectionStatistics
	testutil.AssertJSON(t, w, &stats)
	assert.Equal(t, int64(1), stats.TotalVotes)
	assert.Equal(t, int64(1), stats.TotalCandidates)

	w = s.do("POST", base+"/reconcile", nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	var report models.ReconcileReport
	testutil.AssertJSON(t, w, &report)
	assert.False(t, report.Drifted())

	// Candidates with votes stay; the whole election can go.
	testutil.AssertStatus(t, s.do("DELETE", "/api/candidates/"+candidate.ID.String(), nil, admin), http.StatusBadRequest)
	testutil.AssertStatus(t, s.do("DELETE", base, nil, admin), http.StatusOK)
	testutil.AssertStatus(t, s.do("GET", base, nil, student), http.StatusNotFound)
}

func TestNominateOverHTTP(t *testing.T) {
	s := newServer(t)
	election := testutil.CreateTestElection(t, s.db)
	student := s.token(testutil.CreateTestUser(t, s.db))

	body := models.NominateRequest{ElectionID: election.ID, Position: "Treasurer"}
	w := s.do("POST", "/api/candidates/nominate", body, student)
	testutil.AssertStatus(t, w, http.StatusCreated)

	w = s.do("POST", "/api/candidates/nominate", body, student)
	testutil.AssertStatus(t, w, http.StatusConflict)
	assert.Contains(t, w.Body.String(), "candidate_exists")
}

func TestCastVoteRejectsMissingIDs(t *testing.T) {
	s := newServer(t)
	student := s.token(testutil.CreateTestUser(t, s.db))

	w := s.do("POST", "/api/votes/cast", map[string]string{"election_id": uuid.NewString()}, student)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	assert.Contains(t, w.Body.String(), "invalid_argument")

	w = s.do("POST", "/api/votes/cast", models.CastVoteRequest{ElectionID: uuid.New(), CandidateID: uuid.New()}, student)
	testutil.AssertStatus(t, w, http.StatusNotFound)
	assert.Contains(t, w.Body.String(), "election_not_found")
}

func TestConcurrentCastOverHTTP(t *testing.T) {
	s := newServer(t)
	election := testutil.CreateTestElection(t, s.db)
	candidate := testutil.CreateTestCandidate(t, s.db, election.ID, "Alice")
	voter := testutil.CreateTestUser(t, s.db)
	token := s.token(voter)
	vote := models.CastVoteRequest{ElectionID: election.ID, CandidateID: candidate.ID}

	const attempts = 10
	codes := make([]int, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = s.do("POST", "/api/votes/cast", vote, token).Code
		}()
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusBadRequest:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 1, created)

	var stored models.Candidate
	require.NoError(t, s.db.First(&stored, "id = ?", candidate.ID).Error)
	assert.Equal(t, int64(1), stored.VoteCount)
}
