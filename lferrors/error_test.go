package lferrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultsMessage(t *testing.T) {
	e := New(KindDecode, "")
	assert.Equal(t, "decode error", e.Message)
}

func TestErrorChainUnwrap(t *testing.T) {
	inner := New(KindRPC, "connection refused")
	outer := &Error{Kind: KindRPC, Message: "exercise failed", Cause: inner}

	assert.True(t, errors.Is(outer, inner))
	var target *Error
	require.True(t, errors.As(outer, &target))
	assert.Equal(t, "exercise failed", target.Message)
}

func TestFromErrorPreservesExistingKind(t *testing.T) {
	original := New(KindCodec, "bad numeric")
	wrapped := FromError(KindRPC, original)
	assert.Equal(t, KindCodec, wrapped.Kind)
	assert.Same(t, original, wrapped)
}

func TestFromErrorWrapsPlainError(t *testing.T) {
	plain := fmt.Errorf("boom")
	wrapped := FromError(KindDecode, plain)
	require.NotNil(t, wrapped)
	assert.Equal(t, KindDecode, wrapped.Kind)
	assert.Equal(t, "boom", wrapped.Message)
	assert.Nil(t, wrapped.Cause)
}

func TestHTTPStatusPerKind(t *testing.T) {
	cases := map[Kind]int{
		KindDecode:      http.StatusUnprocessableEntity,
		KindCodec:       http.StatusBadRequest,
		KindTranslation: http.StatusBadRequest,
		KindRPC:         http.StatusBadGateway,
		KindConcurrency: http.StatusInternalServerError,
	}
	for kind, status := range cases {
		e := New(kind, "x")
		assert.Equal(t, status, e.HTTPStatus())
	}
}

func TestToEnvelopeFlattensChain(t *testing.T) {
	cause := New(KindRPC, "deadline exceeded")
	err := NewWithCause(KindTranslation, "exercise choice failed", cause)

	env := ToEnvelope(err)
	assert.Equal(t, http.StatusBadRequest, env.Status)
	assert.Equal(t, []string{"exercise choice failed", "deadline exceeded"}, env.Errors)
}

func TestToEnvelopeFallsBackForUnknownErrors(t *testing.T) {
	env := ToEnvelope(errors.New("panic recovered: nil pointer"))
	assert.Equal(t, http.StatusInternalServerError, env.Status)
	assert.Contains(t, env.Errors[0], "panic recovered")
}
