// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import "errors"

// Kind classifies a domain error independently of transport.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalid
	KindNotFound
	KindPrecondition
	KindUnauthorized
	KindForbidden
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is an expected, caller-facing failure with a stable code and message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Is matches on Code so wrapped copies and sentinels compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// Invalid reports a malformed request with a request-specific message.
func Invalid(message string) *Error {
	return &Error{Kind: KindInvalid, Code: "invalid_argument", Message: message}
}

// As extracts the domain error from err, if any.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// Voting protocol
var (
	ErrElectionNotFound          = New(KindNotFound, "election_not_found", "Election not found")
	ErrElectionNotActive         = New(KindPrecondition, "election_not_active", "Election is not active")
	ErrVotingClosed              = New(KindPrecondition, "voting_closed", "Voting period is not open")
	ErrCandidateNotFound         = New(KindNotFound, "candidate_not_found", "Candidate not found")
	ErrCandidateNotApproved      = New(KindPrecondition, "candidate_not_approved", "Candidate is not approved")
	ErrCandidateElectionMismatch = New(KindPrecondition, "candidate_election_mismatch", "Candidate does not belong to this election")
	ErrAlreadyVoted              = New(KindPrecondition, "already_voted", "You have already voted in this election")
	ErrVoterNotVerified          = New(KindPrecondition, "voter_not_verified", "Your account is not verified")
	ErrVoterNotFound             = New(KindNotFound, "voter_not_found", "Voter not found")
)

// Tally and reports
var (
	ErrResultsNotReady = New(KindPrecondition, "results_not_ready", "Results are not available yet")
)

// Accounts and access
var (
	ErrUnauthenticated     = New(KindUnauthorized, "unauthenticated", "Authentication required")
	ErrInvalidToken        = New(KindUnauthorized, "invalid_token", "Invalid or expired token")
	ErrInvalidCredentials  = New(KindUnauthorized, "invalid_credentials", "Invalid email or password")
	ErrForbidden           = New(KindForbidden, "forbidden", "Not authorized")
	ErrUserExists          = New(KindConflict, "user_exists", "User already exists")
	ErrStudentIDExists     = New(KindConflict, "student_id_exists", "Student ID already exists")
	ErrUserNotFound        = New(KindNotFound, "user_not_found", "User not found")
	ErrStudentNotFound     = New(KindNotFound, "student_not_found", "Student not found")
	ErrAdminSignupDisabled = New(KindForbidden, "admin_signup_disabled", "Admin registration is disabled")
)

// Elections and candidates
var (
	ErrElectionCompleted = New(KindPrecondition, "election_completed", "Election is already completed")
	ErrSnapshotNotFound  = New(KindNotFound, "snapshot_not_found", "Result snapshot not found")
	ErrCandidateExists   = New(KindConflict, "candidate_exists", "Candidate already exists for this election")
	ErrCandidateHasVotes = New(KindPrecondition, "candidate_has_votes", "Candidate has recorded votes")
	ErrNotNominatable    = New(KindPrecondition, "not_nominatable", "A verified student account with a student ID is required to stand")
)
