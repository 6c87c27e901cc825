package http

import (
	"context"
	"net/http"

	"github.com/stockwatch-tech/go-backend/internal/usecase"
	"github.com/stockwatch-tech/go-backend/pkg/e"
	"github.com/stockwatch-tech/go-backend/pkg/logger"
)

type SyncHandler struct {
	sync   usecase.SyncUC
	logger logger.Logger
}

func NewSyncHandler(sync usecase.SyncUC, logger logger.Logger) *SyncHandler {
	return &SyncHandler{sync: sync, logger: logger}
}

// triggerSync запускает полную сверку в фоне и сразу отвечает 202.
// Если проход уже идёт, возвращает 409.
func (s *SyncHandler) triggerSync(w http.ResponseWriter, r *http.Request) {
	if s.sync.Running() {
		WriteError(w, e.ErrSyncAlreadyRunning)
		return
	}

	go func() {
		// Жизнь сверки не привязана к жизни HTTP-запроса.
		s.sync.RunWithRetry(context.WithoutCancel(r.Context()))
	}()

	WriteSuccess(w, http.StatusAccepted, map[string]interface{}{
		"message": "sync started",
	})
}
