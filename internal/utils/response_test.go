package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, "done", gin.H{"id": "abc"})

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ResponseData
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response JSON: %v", err)
	}
	if resp.Status != http.StatusOK || resp.Message != "done" || resp.Data == nil || resp.Error != "" {
		t.Fatalf("unexpected envelope: %#v", resp)
	}
}

func TestErrorEnvelopes(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		send func(c *gin.Context)
		code int
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "bad input") }, http.StatusBadRequest},
		{"unauthorized", func(c *gin.Context) { Unauthorized(c, "no token") }, http.StatusUnauthorized},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "denied") }, http.StatusForbidden},
		{"not found", func(c *gin.Context) { NotFound(c, "missing") }, http.StatusNotFound},
		{"conflict", func(c *gin.Context) { Conflict(c, "duplicate") }, http.StatusConflict},
		{"internal", func(c *gin.Context) { InternalServerError(c, "boom") }, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		tc.send(c)

		if w.Code != tc.code {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.code, w.Code)
			continue
		}
		var resp ResponseData
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Errorf("%s: invalid response JSON: %v", tc.name, err)
			continue
		}
		if resp.Status != tc.code || resp.Error == "" {
			t.Errorf("%s: unexpected envelope: %#v", tc.name, resp)
		}
	}
}
