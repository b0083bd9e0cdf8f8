package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nohumanman/descenders-modding/internal/model"
)

func TestWriteErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: timeout", model.ErrIdentityLookupFailed), http.StatusBadGateway, CodeIdentityLookupFailed},
		{fmt.Errorf("%w: redis down", model.ErrAllowListUnavailable), http.StatusServiceUnavailable, CodeAllowListUnavailable},
		{model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{model.ErrPlayerDisconnected, http.StatusConflict, CodePlayerDisconnected},
		{model.ErrInvalidCommand, http.StatusBadRequest, CodeInvalidCommand},
		{fmt.Errorf("%w: eof", model.ErrCommandDeliveryFailed), http.StatusBadGateway, CodeCommandDeliveryFailed},
		{model.ErrTimeNotFound, http.StatusNotFound, CodeTimeNotFound},
		{model.ErrTrailRequired, http.StatusBadRequest, CodeInvalidRequest},
		{model.ErrOperatorNotFound, http.StatusNotFound, CodeOperatorNotFound},
		{NewUnauthenticatedError(), http.StatusUnauthorized, CodeUnauthenticated},
		{NewForbiddenError(), http.StatusForbidden, CodeForbidden},
		{NewInvalidRequestError("bad"), http.StatusBadRequest, CodeInvalidRequest},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tc := range cases {
		rr := httptest.NewRecorder()
		WriteError(rr, tc.err)

		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		var body ErrorResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, tc.code, body.Error.Code, tc.err.Error())
		assert.Equal(t, tc.status, Status(tc.err))
	}
}
