package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/carson-networks/bank-server/internal/logging"
)

const pingTimeout = 2 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	Storage pinger
}

func NewHandler(storage pinger) Handler {
	return Handler{Storage: storage}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	ctx, cancel := context.WithTimeout(req.Context(), pingTimeout)
	defer cancel()

	stopTimer := logData.AddTiming("storagePingMs")
	err := h.Storage.Ping(ctx)
	stopTimer()
	if err != nil {
		logData.AddData("storage", "down")
		w.WriteHeader(http.StatusServiceUnavailable)
		return err
	}

	logData.AddData("storage", "up")
	w.WriteHeader(http.StatusOK)
	return nil
}
