package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"licgate/internal/handlers"
	"licgate/internal/models"
	"licgate/internal/services"
)

type stubCodeStore struct {
	rec   *models.LicenseCode
	calls int
}

func (s *stubCodeStore) GetByCode(code string) (*models.LicenseCode, error) {
	s.calls++
	if s.rec == nil || s.rec.Code != code {
		return nil, nil
	}
	cp := *s.rec
	return &cp, nil
}

func (s *stubCodeStore) GetByID(id int64) (*models.LicenseCode, error) {
	s.calls++
	if s.rec == nil || s.rec.ID != id {
		return nil, nil
	}
	cp := *s.rec
	return &cp, nil
}

func (s *stubCodeStore) Activate(id int64, machineID string, usedAt time.Time) (bool, error) {
	s.calls++
	if s.rec == nil || s.rec.ID != id || s.rec.IsUsed {
		return false, nil
	}
	s.rec.IsUsed = true
	m := machineID
	s.rec.MachineID = &m
	t := usedAt
	s.rec.UsedAt = &t
	return true, nil
}

type stubEventStore struct{}

func (stubEventStore) Create(codeID *int64, machineID, outcome string) (int64, error) { return 1, nil }

// newTestRouter — тот же каркас, что собирает app.Run: CORS, 405 на
// чужой метод, POST /verify.
func newTestRouter(store *stubCodeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.VerifyResponse{Success: false, Message: "Method not allowed"})
	})

	svc := services.NewActivationService(store, stubEventStore{}, nil)
	r.POST("/verify", handlers.NewVerifyHandler(svc).Verify)
	return r
}

func doVerify(t *testing.T, r *gin.Engine, body string) (*httptest.ResponseRecorder, handlers.VerifyResponse) {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	var resp handlers.VerifyResponse
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestVerifyEndpointActivates(t *testing.T) {
	store := &stubCodeStore{rec: &models.LicenseCode{ID: 1, Code: "AAAA-BBBB-CCCC-DDDD"}}
	r := newTestRouter(store)

	w, resp := doVerify(t, r, `{"code":"AAAA-BBBB-CCCC-DDDD","machineId":"machine-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.True(t, store.rec.IsUsed)
}

func TestVerifyEndpointTrimsCode(t *testing.T) {
	store := &stubCodeStore{rec: &models.LicenseCode{ID: 1, Code: "AAAA-BBBB-CCCC-DDDD"}}
	r := newTestRouter(store)

	w, resp := doVerify(t, r, `{"code":"  AAAA-BBBB-CCCC-DDDD  ","machineId":"machine-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestVerifyEndpointRepeatSameMachine(t *testing.T) {
	m := "machine-1"
	now := time.Now()
	store := &stubCodeStore{rec: &models.LicenseCode{
		ID: 1, Code: "AAAA-BBBB-CCCC-DDDD", IsUsed: true, MachineID: &m, UsedAt: &now,
	}}
	r := newTestRouter(store)

	w, resp := doVerify(t, r, `{"code":"AAAA-BBBB-CCCC-DDDD","machineId":"machine-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestVerifyEndpointConflict(t *testing.T) {
	m := "machine-1"
	now := time.Now()
	store := &stubCodeStore{rec: &models.LicenseCode{
		ID: 1, Code: "AAAA-BBBB-CCCC-DDDD", IsUsed: true, MachineID: &m, UsedAt: &now,
	}}
	r := newTestRouter(store)

	w, resp := doVerify(t, r, `{"code":"AAAA-BBBB-CCCC-DDDD","machineId":"machine-2"}`)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.False(t, resp.Success)
}

func TestVerifyEndpointUnknownCode(t *testing.T) {
	r := newTestRouter(&stubCodeStore{})

	w, resp := doVerify(t, r, `{"code":"NOPE-NOPE-NOPE-NOPE","machineId":"machine-1"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestVerifyEndpointMissingFields(t *testing.T) {
	cases := []string{
		`{}`,
		`{"code":"AAAA-BBBB-CCCC-DDDD"}`,
		`{"machineId":"machine-1"}`,
		`{"code":"   ","machineId":"machine-1"}`,
		`{"code":"AAAA-BBBB-CCCC-DDDD","machineId":"  "}`,
		`not json`,
	}
	for _, body := range cases {
		store := &stubCodeStore{rec: &models.LicenseCode{ID: 1, Code: "AAAA-BBBB-CCCC-DDDD"}}
		r := newTestRouter(store)

		w, resp := doVerify(t, r, body)

		assert.Equal(t, http.StatusBadRequest, w.Code, "body=%s", body)
		assert.False(t, resp.Success)
		assert.Zero(t, store.calls, "на 400 до хранилища доходить нельзя: body=%s", body)
	}
}

func TestVerifyEndpointMethodNotAllowed(t *testing.T) {
	r := newTestRouter(&stubCodeStore{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(method, "/verify", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, "method=%s", method)
	}
}

func TestVerifyEndpointPreflight(t *testing.T) {
	r := newTestRouter(&stubCodeStore{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/verify", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
