package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/absensi-rfid-api/internal/dto"
	appErrors "github.com/noah-isme/absensi-rfid-api/pkg/errors"
)

type fakeDeviceAuthSrv struct {
	resp *dto.DeviceTokenResponse
	err  error
}

func (f *fakeDeviceAuthSrv) IssueToken(context.Context, dto.DeviceTokenRequest) (*dto.DeviceTokenResponse, error) {
	return f.resp, f.err
}

func postToken(t *testing.T, h *DeviceHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/devices/token", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.Token(c)
	return rec
}

func TestDeviceHandlerTokenIssued(t *testing.T) {
	h := NewDeviceHandler(&fakeDeviceAuthSrv{resp: &dto.DeviceTokenResponse{
		Token:     "signed-token",
		ExpiresAt: time.Now().Add(time.Hour),
	}})

	rec := postToken(t, h, `{"device_id":"gate-1","secret":"gate-secret"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "signed-token", envelope.Data["token"])
}

func TestDeviceHandlerTokenRejected(t *testing.T) {
	h := NewDeviceHandler(&fakeDeviceAuthSrv{err: appErrors.ErrUnauthorized})

	rec := postToken(t, h, `{"device_id":"gate-1","secret":"wrong"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeviceHandlerTokenInvalidBody(t *testing.T) {
	h := NewDeviceHandler(&fakeDeviceAuthSrv{})

	rec := postToken(t, h, `{`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
