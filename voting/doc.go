// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements vote casting, tallying, eligibility and the
ballot ledger reports.

# Casting

CastVote checks eight preconditions in order and stops at the first failure:

	election exists          apperr.ErrElectionNotFound
	election active          apperr.ErrElectionNotActive
	now in [start, end]      apperr.ErrVotingClosed
	candidate exists         apperr.ErrCandidateNotFound
	candidate approved       apperr.ErrCandidateNotApproved
	candidate in election    apperr.ErrCandidateElectionMismatch
	no earlier ballot        apperr.ErrAlreadyVoted
	voter verified           apperr.ErrVoterNotVerified

On success one transaction inserts the ballot, increments the candidate's
vote_count and the election's total_votes, and sets the voter's has_voted
flag. The ballot insert comes first. If a concurrent request won the race,
the (voter_id, election_id) unique index rejects the insert and the caller
gets apperr.ErrAlreadyVoted, exactly as if the pre-check had caught it.

# Tally

Tally reads approved candidates in insertion order and stable-sorts them by
vote_count, so ties keep insertion order. Each percentage is
round(vote_count / sum * 100, 2), and 0 for everyone when the sum is 0.
The result carries both the election's total_votes counter and the freshly
summed counted_votes.

A non-admin sees results only once the election is completed; otherwise
the call fails with apperr.ErrResultsNotReady. Completed tallies are cached.

# Eligibility

Eligible requires active, not completed, inside the window, and membership
in the department and year allow-lists when those lists are non-empty.

# Counters

vote_count and total_votes are caches of the ballot ledger. Reconcile
recomputes both from ballots and reports any drift.
*/
package voting
