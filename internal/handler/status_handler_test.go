package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"pos-terminal/internal/model"
	"pos-terminal/internal/syncqueue"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stubSyncController returns a fixed status and counts retry triggers.
type stubSyncController struct {
	status   syncqueue.Status
	triggers atomic.Int32
}

func (s *stubSyncController) Status() syncqueue.Status {
	return s.status
}

func (s *stubSyncController) TriggerRetry(ctx context.Context) {
	s.triggers.Add(1)
}

// MockRejectedLister is a mock implementation of RejectedLister.
type MockRejectedLister struct {
	mock.Mock
}

func (m *MockRejectedLister) Rejected(ctx context.Context) ([]model.RejectedOrder, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.RejectedOrder), args.Error(1)
}

func TestStatusHandler_Status(t *testing.T) {
	ctrl := &stubSyncController{status: syncqueue.Status{Online: false, PendingCount: 3, Syncing: true}}
	h := NewStatusHandler(ctrl, new(MockRejectedLister), zerolog.Nop())

	w := httptest.NewRecorder()
	h.Status(w, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var status syncqueue.Status
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.False(t, status.Online)
	assert.Equal(t, 3, status.PendingCount)
	assert.True(t, status.Syncing)
}

func TestStatusHandler_Retry(t *testing.T) {
	ctrl := &stubSyncController{status: syncqueue.Status{Online: true, PendingCount: 2}}
	h := NewStatusHandler(ctrl, new(MockRejectedLister), zerolog.Nop())

	w := httptest.NewRecorder()
	h.Retry(w, httptest.NewRequest(http.MethodPost, "/api/sync/retry", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, int32(1), ctrl.triggers.Load())
}

func TestStatusHandler_Rejected(t *testing.T) {
	rejected := []model.RejectedOrder{
		{
			OfflineUUID: "u-1",
			Reason:      "unknown item",
			RejectedAt:  time.Now().UTC(),
		},
	}

	tests := []struct {
		name           string
		mockReturn     []model.RejectedOrder
		mockError      error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Success",
			mockReturn:     rejected,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Empty log serves an empty array",
			mockReturn:     nil,
			expectedStatus: http.StatusOK,
			expectedBody:   "[]",
		},
		{
			name:           "Storage error",
			mockError:      errors.New("database is locked"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := new(MockRejectedLister)
			lister.On("Rejected", mock.Anything).Return(tt.mockReturn, tt.mockError)
			h := NewStatusHandler(&stubSyncController{}, lister, zerolog.Nop())

			w := httptest.NewRecorder()
			h.Rejected(w, httptest.NewRequest(http.MethodGet, "/api/sync/rejected", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedBody != "" {
				assert.JSONEq(t, tt.expectedBody, w.Body.String())
			}
			lister.AssertExpectations(t)
		})
	}
}
