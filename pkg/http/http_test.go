package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Mode  string `json:"mode" default:"SHADOW" validate:"oneof=SHADOW PAPER"`
	Limit int    `json:"limit" default:"50" validate:"gte=1,lte=500"`
}

func TestValidateStruct(t *testing.T) {
	req := &sampleRequest{}
	assert.Nil(t, ValidateStruct(context.Background(), req))
	assert.Equal(t, "SHADOW", req.Mode)
	assert.Equal(t, 50, req.Limit)

	bad := &sampleRequest{Mode: "LIVE", Limit: 900}
	errs := ValidateStruct(context.Background(), bad)
	require.Len(t, errs, 2)
	assert.Equal(t, "ERR_ONEOF", errs[0].Code)
	assert.Equal(t, "mode", errs[0].Field)
	assert.Equal(t, "mode must be one of: SHADOW, PAPER", errs[0].Message)
	assert.Equal(t, "ERR_LTE", errs[1].Code)
	assert.Equal(t, "500", errs[1].Params["max"])
}

type lengthRequest struct {
	Name string   `json:"name" validate:"min=3"`
	Tags []string `json:"tags" validate:"max=2"`
	Size int      `json:"size" validate:"min=1"`
}

func TestValidateLengthMessages(t *testing.T) {
	errs := ValidateStruct(context.Background(), &lengthRequest{Name: "ab", Tags: []string{"a", "b", "c"}})
	require.Len(t, errs, 3)
	assert.Equal(t, "name must contain at least 3 characters", errs[0].Message)
	assert.Equal(t, "tags must contain at most 2 items", errs[1].Message)
	assert.Equal(t, "size must be at least 1", errs[2].Message)
}

func TestAppErrorResponse(t *testing.T) {
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	cause := errors.New("disk full")
	appErr := NewAppError("REPORT_NOT_FOUND", "fingerprint", "no such run", http.StatusNotFound).WithError(cause)
	require.NoError(t, AppErrorResponse(c, appErr))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.ErrorIs(t, appErr, cause)

	var body struct {
		Status int        `json:"status"`
		Data   []AppError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, body.Status)
	require.Len(t, body.Data, 1)
	assert.Equal(t, "REPORT_NOT_FOUND", body.Data[0].Code)
	assert.Equal(t, "fingerprint", body.Data[0].Field)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, AppErrorResponse(c, errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestClientGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/reports/momentum":
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "7", r.URL.Query().Get("seed"))
			_, _ = w.Write([]byte(`{"status":"PASS"}`))
		default:
			http.Error(w, "missing", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL+"/"))

	var out struct {
		Status string `json:"status"`
	}
	require.NoError(t, c.GetJSON(context.Background(), "/reports/momentum", map[string][]string{"seed": {"7"}}, &out))
	assert.Equal(t, "PASS", out.Status)

	err := c.GetJSON(context.Background(), "/reports/other", nil, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusNotFound, se.Status)
	assert.Equal(t, "missing", se.Body)
}
