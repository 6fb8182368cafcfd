package errorbank

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
)

func TestStatusCodeByKind(t *testing.T) {
	cases := []struct {
		err  *AppError
		http int
		grpc codes.Code
	}{
		{BadRequest("bad"), http.StatusBadRequest, codes.InvalidArgument},
		{Unauthorized("who"), http.StatusUnauthorized, codes.Unauthenticated},
		{Conflict("dup"), http.StatusConflict, codes.AlreadyExists},
		{NotFound("gone"), http.StatusNotFound, codes.NotFound},
		{Unprocessable("nope"), http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{Internal("boom"), http.StatusInternalServerError, codes.Internal},
	}
	for _, tc := range cases {
		t.Run(string(tc.err.Kind()), func(t *testing.T) {
			assert.Equal(t, tc.http, tc.err.StatusCode())
			assert.Equal(t, tc.grpc, tc.err.GRPCCode())
		})
	}
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")

	appErr := From(cause)

	require.NotNil(t, appErr)
	assert.Equal(t, KindInternal, appErr.Kind())
	assert.Equal(t, "internal error", appErr.Message())
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, From(nil))
}

func TestFromKeepsWrappedAppError(t *testing.T) {
	original := NotFound("order not found")
	wrapped := fmt.Errorf("lookup: %w", original)

	assert.Same(t, original, From(wrapped))
	assert.True(t, IsKind(wrapped, KindNotFound))
	assert.False(t, IsKind(wrapped, KindInternal))
	assert.False(t, IsKind(errors.New("plain"), KindNotFound))
}

func TestErrorIncludesCause(t *testing.T) {
	cause := errors.New("relation \"order_items\" does not exist")
	err := Internal("failed to load order items", WithCause(cause), WithDetail("order_id", "abc"))

	assert.Equal(t, "failed to load order items: relation \"order_items\" does not exist", err.Error())
	assert.Equal(t, cause, err.Cause())
	assert.Equal(t, map[string]any{"order_id": "abc"}, err.Details())
}

func TestNewDefaultsMessageToKind(t *testing.T) {
	assert.Equal(t, "bad_request", New(KindBadRequest, "").Message())
}
