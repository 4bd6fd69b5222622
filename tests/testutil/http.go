package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/obra/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase is one request served through a router and the envelope it must produce.
type HTTPTestCase struct {
	Name   string
	Method string
	Path   string
	// Body is sent as application/json; strings are sent verbatim, anything else is marshalled
	Body    any
	Headers map[string]string

	WantStatus int
	// WantCode is the expected error code; empty expects a success envelope
	WantCode string
	Check    func(t *testing.T, w *httptest.ResponseRecorder)
}

// RunHTTPTestCases serves each case through handler in its own subtest
func RunHTTPTestCases(t *testing.T, handler http.Handler, cases []HTTPTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			w := serve(t, handler, tc.Method, tc.Path, tc.Body, tc.Headers)

			if tc.WantStatus != 0 {
				assert.Equal(t, tc.WantStatus, w.Code, "status for %s %s", tc.Method, tc.Path)
			}
			if tc.WantCode != "" {
				AssertErrorCode(t, w, tc.WantCode)
			} else if tc.WantStatus != 0 && tc.WantStatus < http.StatusBadRequest {
				assert.True(t, DecodeEnvelope(t, w).Success, "expected success envelope")
			}
			if tc.Check != nil {
				tc.Check(t, w)
			}
		})
	}
}

// serve sends one request through handler and returns the recorded response
func serve(t *testing.T, handler http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		reader = jsonReader(t, b)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// DecodeEnvelope parses the standard API envelope from w
func DecodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "response is not an API envelope: %s", w.Body.String())
	return resp
}

// AssertErrorCode asserts w carries an error envelope with code
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	resp := DecodeEnvelope(t, w)
	assert.False(t, resp.Success)
	if assert.NotNil(t, resp.Error, "expected error object") {
		assert.Equal(t, code, resp.Error.Code)
	}
}

func jsonReader(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}
