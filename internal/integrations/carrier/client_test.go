package carrier

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNewAPIError(t *testing.T) {
	e := NewAPIError(http.StatusUnprocessableEntity, []byte(`{"message":"bad","errors":{"a":["x","y"]}}`))
	require.Equal(t, "bad", e.Message)
	require.Equal(t, []string{"x", "y"}, e.Errors["a"])
	require.Equal(t, KindValidation, e.Kind)

	e = NewAPIError(http.StatusBadRequest, []byte(`{"errors":{"a":"single"}}`))
	require.Equal(t, "HTTP 400", e.Message)
	require.Equal(t, []string{"single"}, e.Errors["a"])

	e = NewAPIError(http.StatusBadGateway, []byte("<html>"))
	require.Equal(t, "HTTP 502", e.Message)
	require.Equal(t, KindUnavailable, e.Kind)
	require.Nil(t, e.Errors)
}

func TestKindFromStatus(t *testing.T) {
	require.Equal(t, KindAuthInvalid, KindFromStatus(401))
	require.Equal(t, KindAuthInvalid, KindFromStatus(403))
	require.Equal(t, KindRateLimited, KindFromStatus(429))
	require.Equal(t, KindUnavailable, KindFromStatus(503))
	require.Equal(t, KindUpstream, KindFromStatus(404))
}

func TestDecodeJSON(t *testing.T) {
	type item struct {
		ID string `json:"id"`
	}

	out, err := DecodeJSON[item](&Response{Status: 200, Body: []byte(`{"id":"7"}`)})
	require.NoError(t, err)
	require.Equal(t, "7", out.ID)

	_, err = DecodeJSON[item](&Response{Status: 200, Body: []byte(`{"id":7}`)})
	var ae *APIError
	require.True(t, errors.As(err, &ae))
	require.Equal(t, KindDecode, ae.Kind)
	var de *DecodeError
	require.True(t, errors.As(err, &de))

	_, err = DecodeJSON[item](&Response{Status: 204, Empty: true})
	require.Error(t, err)
}
