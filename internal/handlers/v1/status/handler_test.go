package status

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/carson-networks/bank-server/internal/logging"
	"github.com/carson-networks/bank-server/internal/storage/memstore"
)

func createTestLogData() *logging.LogData {
	logger := logging.SetupLogging("info")
	return logging.NewLogData(logger)
}

func TestHandler_GoodMethod(t *testing.T) {
	statusHandler := NewHandler(memstore.New())
	req := httptest.NewRequest(http.MethodGet, "/status", nil)

	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.NoError(t, err)

	res := w.Result()
	assert.Equal(t, 200, res.StatusCode)
}

func TestHandler_BadMethod(t *testing.T) {
	statusHandler := NewHandler(memstore.New())
	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.Error(t, err)

	res := w.Result()
	assert.Equal(t, 400, res.StatusCode)
}

func TestHandler_StorageDown(t *testing.T) {
	store := memstore.New()
	_ = store.Close()
	statusHandler := NewHandler(store)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()

	err := statusHandler.Handler(w, req, createTestLogData())
	assert.ErrorIs(t, err, memstore.ErrClosed)
	assert.Equal(t, http.StatusServiceUnavailable, w.Result().StatusCode)
}
