package errx

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := map[Code]int{
		CodeInputInvalid:          http.StatusBadRequest,
		CodeContentBlocked:        http.StatusBadRequest,
		CodeRateLimited:           http.StatusTooManyRequests,
		CodeCircuitOpen:           http.StatusTooManyRequests,
		CodeProviderFailure:       http.StatusInternalServerError,
		CodeInternal:              http.StatusInternalServerError,
		CodeOutputPolicyViolation: http.StatusOK,
	}
	for code, want := range cases {
		assert.Equal(t, want, StatusOf(code), string(code))
	}
}

func TestFromWrapsPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	appErr := From(fmt.Errorf("outer: %w", plain))
	require.NotNil(t, appErr)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, plain)

	limited := RateLimited(plain)
	assert.Same(t, limited, From(fmt.Errorf("ctx: %w", limited)))
	assert.Nil(t, From(nil))
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ContentBlocked(nil))
	assert.True(t, errors.Is(err, &AppError{Code: CodeContentBlocked}))
	assert.False(t, errors.Is(err, &AppError{Code: CodeRateLimited}))
}

func TestWrapRedis(t *testing.T) {
	assert.NoError(t, WrapRedis(nil))

	var appErr *AppError
	require.ErrorAs(t, WrapRedis(redis.Nil), &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)

	require.ErrorAs(t, WrapRedis(errors.New("conn refused")), &appErr)
	assert.Equal(t, http.StatusBadGateway, appErr.Status)
	assert.Equal(t, RedisErrorMessage, appErr.Message)
}
