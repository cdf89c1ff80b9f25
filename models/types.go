// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Role constants
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Domain types

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"not null;uniqueIndex" json:"email"`
	Password   string    `gorm:"not null" json:"-"` // bcrypt hash, never exposed
	StudentID  *string   `gorm:"uniqueIndex" json:"student_id,omitempty"`
	University string    `json:"university"`
	Department string    `gorm:"index" json:"department"`
	Year       int       `json:"year"`
	Role       string    `gorm:"not null;index" json:"role"`
	IsVerified bool      `gorm:"not null" json:"is_verified"`
	// HasVoted means "has voted in at least one election". Per-election
	// state lives in the ballot ledger.
	HasVoted  bool      `gorm:"not null" json:"has_voted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

type Election struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	Title              string                      `gorm:"not null" json:"title"`
	Description        string                      `json:"description"`
	StartDate          time.Time                   `gorm:"not null;index" json:"start_date"`
	EndDate            time.Time                   `gorm:"not null;index" json:"end_date"`
	IsActive           bool                        `gorm:"not null;index" json:"is_active"`
	IsCompleted        bool                        `gorm:"not null" json:"is_completed"`
	TotalVotes         int64                       `gorm:"not null" json:"total_votes"`
	AllowedDepartments datatypes.JSONSlice[string] `json:"allowed_departments"`
	AllowedYears       datatypes.JSONSlice[int]    `json:"allowed_years"`
	CreatedBy          uuid.UUID                   `gorm:"type:uuid;index" json:"created_by"`
	CreatedAt          time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
}

func (e *Election) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.AllowedDepartments == nil {
		e.AllowedDepartments = datatypes.JSONSlice[string]{}
	}
	if e.AllowedYears == nil {
		e.AllowedYears = datatypes.JSONSlice[int]{}
	}
	return nil
}

// InWindow reports whether t lies in [StartDate, EndDate], both ends inclusive.
func (e *Election) InWindow(t time.Time) bool {
	return !t.Before(e.StartDate) && !t.After(e.EndDate)
}

type Candidate struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ElectionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_candidate_election_student,priority:1" json:"election_id"`
	StudentID   string    `gorm:"not null;uniqueIndex:idx_candidate_election_student,priority:2" json:"student_id"`
	Name        string    `gorm:"not null" json:"name"`
	Email       string    `json:"email"`
	Department  string    `json:"department"`
	Year        int       `json:"year"`
	Position    string    `gorm:"not null" json:"position"`
	Manifesto   string    `json:"manifesto"`
	Image       string    `json:"image,omitempty"`
	IsApproved  bool      `gorm:"not null;index" json:"is_approved"`
	VoteCount   int64     `gorm:"not null" json:"vote_count"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Candidate) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Ballot is one immutable vote. (voter_id, election_id) is unique at the
// storage level.
type Ballot struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	VoterID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ballot_voter_election,priority:1" json:"voter_id"`
	ElectionID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ballot_voter_election,priority:2;index" json:"election_id"`
	CandidateID uuid.UUID `gorm:"type:uuid;not null;index" json:"candidate_id"`
	Position    string    `gorm:"not null" json:"position"`
	VotedAt     time.Time `gorm:"not null;index" json:"voted_at"`
	IPHash      *string   `json:"-"` // Never expose in JSON
	UserAgent   *string   `json:"-"` // Never expose in JSON
}

func (b *Ballot) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// ResultSnapshot is the frozen tally written when an election completes.
type ResultSnapshot struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ElectionID uuid.UUID      `gorm:"type:uuid;not null;index" json:"election_id"`
	ComputedAt time.Time      `gorm:"not null" json:"computed_at"`
	Payload    datatypes.JSON `gorm:"not null" json:"payload"`
	InputsHash string         `gorm:"not null" json:"inputs_hash"` // Hash of all ballot IDs for verification
}

func (s *ResultSnapshot) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AllModels lists every persisted type in migration order.
func AllModels() []any {
	return []any{&User{}, &Election{}, &Candidate{}, &Ballot{}, &ResultSnapshot{}}
}

// Tally types

type CandidateResult struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Name        string    `json:"name"`
	StudentID   string    `json:"student_id"`
	Department  string    `json:"department"`
	Position    string    `json:"position"`
	VoteCount   int64     `json:"vote_count"`
	Percentage  float64   `json:"percentage"`
	Rank        int       `json:"rank"` // 1-indexed ranking
}

type ElectionSummary struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	IsCompleted bool      `json:"is_completed"`
	TotalVotes  int64     `json:"total_votes"`
}

// TallyResult carries both the election's stored counter and the sum
// recomputed from candidate counters so callers can cross-check them.
type TallyResult struct {
	Election     ElectionSummary   `json:"election"`
	CountedVotes int64             `json:"counted_votes"`
	Results      []CandidateResult `json:"results"`
}

// Ledger report types

type HistoryEntry struct {
	BallotID      uuid.UUID `json:"ballot_id"`
	ElectionID    uuid.UUID `json:"election_id"`
	ElectionTitle string    `json:"election_title"`
	CandidateID   uuid.UUID `json:"candidate_id"`
	CandidateName string    `json:"candidate_name"`
	Position      string    `json:"position"`
	VotedAt       time.Time `json:"voted_at"`
}

type LedgerEntry struct {
	HistoryEntry
	VoterID        uuid.UUID `json:"voter_id"`
	VoterName      string    `json:"voter_name"`
	VoterEmail     string    `json:"voter_email"`
	VoterStudentID *string   `json:"voter_student_id,omitempty"`
}

type PositionCount struct {
	Position string `json:"position"`
	Votes    int64  `json:"votes"`
}

type ElectionStatistics struct {
	ElectionID      uuid.UUID       `json:"election_id"`
	TotalVotes      int64           `json:"total_votes"`
	TotalCandidates int64           `json:"total_candidates"`
	VotesByPosition []PositionCount `json:"votes_by_position"`
}

type CandidateDrift struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	Stored      int64     `json:"stored"`
	Counted     int64     `json:"counted"`
}

type ReconcileReport struct {
	ElectionID        uuid.UUID        `json:"election_id"`
	StoredTotalVotes  int64            `json:"stored_total_votes"`
	CountedTotalVotes int64            `json:"counted_total_votes"`
	Candidates        []CandidateDrift `json:"candidates"`
}

// Drifted reports whether any stored counter disagreed with the ledger.
func (r ReconcileReport) Drifted() bool {
	return r.StoredTotalVotes != r.CountedTotalVotes || len(r.Candidates) > 0
}

// Request types

type RegisterRequest struct {
	Name       string  `json:"name" validate:"required,max=100"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=6"`
	StudentID  *string `json:"student_id" validate:"omitempty,min=1,max=32"`
	University string  `json:"university" validate:"max=100"`
	Department string  `json:"department" validate:"max=100"`
	Year       int     `json:"year" validate:"min=0,max=10"`
	Role       string  `json:"role" validate:"omitempty,oneof=student admin"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateProfileRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	University *string `json:"university" validate:"omitempty,max=100"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Year       *int    `json:"year" validate:"omitempty,min=0,max=10"`
}

type CreateElectionRequest struct {
	Title              string    `json:"title" validate:"required,max=200"`
	Description        string    `json:"description"`
	StartDate          time.Time `json:"start_date" validate:"required"`
	EndDate            time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	AllowedDepartments []string  `json:"allowed_departments" validate:"dive,required"`
	AllowedYears       []int     `json:"allowed_years" validate:"dive,min=1,max=10"`
}

type UpdateElectionRequest struct {
	Title              *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Description        *string    `json:"description"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	AllowedDepartments *[]string  `json:"allowed_departments"`
	AllowedYears       *[]int     `json:"allowed_years"`
}

type CreateCandidateRequest struct {
	ElectionID uuid.UUID `json:"election_id"`
	StudentID  string    `json:"student_id" validate:"required"`
	Name       string    `json:"name" validate:"max=100"`
	Email      string    `json:"email" validate:"omitempty,email"`
	Department string    `json:"department" validate:"max=100"`
	Year       int       `json:"year" validate:"min=0,max=10"`
	Position   string    `json:"position" validate:"required,max=100"`
	Manifesto  string    `json:"manifesto"`
	Image      string    `json:"image" validate:"omitempty,url"`
}

type NominateRequest struct {
	ElectionID uuid.UUID `json:"election_id"`
	Position   string    `json:"position" validate:"required,max=100"`
	Manifesto  string    `json:"manifesto"`
	Image      string    `json:"image" validate:"omitempty,url"`
}

type UpdateCandidateRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Department *string `json:"department" validate:"omitempty,max=100"`
	Year       *int    `json:"year" validate:"omitempty,min=0,max=10"`
	Position   *string `json:"position" validate:"omitempty,min=1,max=100"`
	Manifesto  *string `json:"manifesto"`
	Image      *string `json:"image" validate:"omitempty,url"`
}

type CastVoteRequest struct {
	CandidateID uuid.UUID `json:"candidate_id"`
	ElectionID  uuid.UUID `json:"election_id"`
}

// Response types

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type CastVoteResponse struct {
	BallotID uuid.UUID `json:"ballot_id"`
	Message  string    `json:"message"`
}

type CompleteElectionResponse struct {
	Election Election       `json:"election"`
	Snapshot ResultSnapshot `json:"snapshot"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}
