package httpapi

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

const (
	idempotencyKeyHeader = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour
)

// responseRecorder буферизует ответ handler-а, чтобы его можно было
// закэшировать по idempotency-key.
type responseRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newResponseRecorder() *responseRecorder {
	return &responseRecorder{header: make(http.Header), status: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header {
	return r.header
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	return r.body.Write(p)
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
}

// withIdempotency добавляет обработку заголовка Idempotency-Key: повтор
// запроса с тем же ключом и телом возвращает закэшированный ответ вместо
// повторного исполнения. Без заголовка (или без репозитория) handler
// выполняется как есть.
func (s *Service) withIdempotency(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.idemRepo == nil {
			next(w, r)
			return
		}

		key := strings.TrimSpace(r.Header.Get(idempotencyKeyHeader))
		if key == "" {
			next(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		state := identityStateFrom(r.Context())
		reqHash := buildIdempotencyRequestHash(r.Method, r.URL.Path, state, body)

		record, err := s.idemRepo.CreateProcessing(key, reqHash, time.Now().UTC().Add(idempotencyTTL))
		if err != nil {
			s.replayIdempotency(w, err, record)
			return
		}

		recorder := newResponseRecorder()
		next(recorder, r)

		for name, values := range recorder.header {
			for _, value := range values {
				w.Header().Add(name, value)
			}
		}
		w.WriteHeader(recorder.status)
		_, _ = w.Write(recorder.body.Bytes())

		var markErr error
		if recorder.status < http.StatusBadRequest {
			markErr = s.idemRepo.MarkDone(key, recorder.body.Bytes(), recorder.status)
		} else {
			markErr = s.idemRepo.MarkFailed(key, recorder.body.Bytes(), recorder.status)
		}
		if markErr != nil {
			s.logger.WithError(markErr).WithField("idempotency_key", key).Warn("failed to store idempotency response")
		}
	}
}

func (s *Service) replayIdempotency(w http.ResponseWriter, createErr error, record domain.IdempotencyRecord) {
	switch {
	case errors.Is(createErr, domain.ErrIdempotencyHashMismatch):
		s.writeError(w, http.StatusUnprocessableEntity, "idempotency key is already used with different request payload")
	case errors.Is(createErr, domain.ErrIdempotencyKeyAlreadyExists):
		switch record.Status {
		case domain.IdempotencyStatusDone, domain.IdempotencyStatusFailed:
			if record.HTTPStatus <= 0 || len(record.ResponseBody) == 0 {
				s.writeError(w, http.StatusInternalServerError, "idempotency cache is empty")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(record.HTTPStatus)
			_, _ = w.Write(record.ResponseBody)
		case domain.IdempotencyStatusProcessing:
			s.writeError(w, http.StatusConflict, "request with the same idempotency key is already processing")
		default:
			s.writeError(w, http.StatusInternalServerError, "unknown idempotency record status")
		}
	case errors.Is(createErr, domain.ErrIdempotencyKeyRequired),
		errors.Is(createErr, domain.ErrIdempotencyRequestHashRequired):
		s.writeError(w, http.StatusBadRequest, createErr.Error())
	default:
		s.logger.WithError(createErr).Warn("failed to create idempotency record")
		s.writeError(w, http.StatusInternalServerError, "failed to initialize idempotency request")
	}
}

func buildIdempotencyRequestHash(method, path string, state domain.IdentityState, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{0})
	h.Write([]byte(path))
	h.Write([]byte{0})
	if state.User != nil {
		h.Write([]byte(state.User.UserID))
	}
	h.Write([]byte{0})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}
