// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesWrappedSentinels(t *testing.T) {
	wrapped := fmt.Errorf("cast vote: %w", ErrAlreadyVoted)

	assert.True(t, errors.Is(wrapped, ErrAlreadyVoted))
	assert.False(t, errors.Is(wrapped, ErrVoterNotVerified))
	assert.Equal(t, KindPrecondition, KindOf(wrapped))
}

func TestKindOfInfrastructureError(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("connection reset")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestInvalid(t *testing.T) {
	err := Invalid("title is required")

	e, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, KindInvalid, e.Kind)
	assert.Equal(t, "title is required", e.Error())
}

func TestVotingErrorsAreDistinct(t *testing.T) {
	all := []*Error{
		ErrElectionNotFound, ErrElectionNotActive, ErrVotingClosed,
		ErrCandidateNotFound, ErrCandidateNotApproved, ErrCandidateElectionMismatch,
		ErrAlreadyVoted, ErrVoterNotVerified, ErrResultsNotReady,
	}
	codes := map[string]bool{}
	messages := map[string]bool{}
	for _, e := range all {
		assert.False(t, codes[e.Code], "duplicate code %s", e.Code)
		assert.False(t, messages[e.Message], "duplicate message %s", e.Message)
		codes[e.Code] = true
		messages[e.Message] = true
	}
}
