package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := Errorf(KindInsufficientStake, "staked %d", 20)
	wrapped := fmt.Errorf("stake check: %w", err)

	assert.True(t, errors.Is(wrapped, ErrInsufficientStake))
	assert.False(t, errors.Is(wrapped, ErrInsufficientStakeDuration))

	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindInsufficientStake, kind)
}

func TestError_UnwrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindOracleUnavailable, cause, "get account")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "OracleUnavailable: get account: connection refused", err.Error())
}

func TestKindOf_Unclassified(t *testing.T) {
	_, ok := KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestKind_PublicReasonNeverEmpty(t *testing.T) {
	for kind := range publicReasons {
		assert.NotEmpty(t, kind.PublicReason())
	}
	assert.Equal(t, "There was a problem.", Kind("Unknown").PublicReason())
}
