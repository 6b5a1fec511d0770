package security_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-orcamento/internal/common"
	"github.com/noah-isme/backend-orcamento/internal/security"
)

func decodeHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := common.DecodeJSON(r, &body); err != nil {
			common.WriteAppError(w, err)
			return
		}
		common.JSON(w, http.StatusOK, body)
	})
}

func TestBodyLimit(t *testing.T) {
	h := security.BodyLimit{Max: 16, MultipartMax: 64}.Middleware(decodeHandler(t))

	cases := []struct {
		name   string
		body   string
		ctype  string
		length int64
		want   int
	}{
		{name: "within limit", body: `{"a":1}`, want: http.StatusOK},
		{name: "declared oversize", body: `{"a":"0123456789abcdef"}`, want: http.StatusRequestEntityTooLarge},
		{name: "undeclared oversize", body: `{"a":"0123456789abcdef"}`, length: -1, want: http.StatusRequestEntityTooLarge},
		{name: "multipart has its own ceiling", body: strings.Repeat("x", 40), ctype: "multipart/form-data; boundary=x", want: http.StatusBadRequest},
		{name: "multipart over its ceiling", body: strings.Repeat("x", 100), ctype: "multipart/form-data; boundary=x", want: http.StatusRequestEntityTooLarge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(tc.body))
			if tc.ctype != "" {
				req.Header.Set("Content-Type", tc.ctype)
			}
			if tc.length != 0 {
				req.ContentLength = tc.length
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}
