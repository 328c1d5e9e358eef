package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/4everinbeta/ragchat/internal/knowledge"
	"github.com/4everinbeta/ragchat/internal/models"
)

const (
	maxBodyBytes      = 1 << 20
	missingMessageErr = "Missing message"
	rootHint          = "Send a POST with {message}"
)

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(rootHint))
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Debug("chat request rejected", zap.Error(err))
		s.respondError(w, http.StatusBadRequest, missingMessageErr)
		return
	}
	req.Normalize()
	if err := s.validate.Struct(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, missingMessageErr)
		return
	}
	s.logger.Debug("chat request", zap.Int("message_len", len(req.Message)))
	s.respondJSON(w, http.StatusOK, s.svc.Answer(r.Context(), req.Message))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.svc.Status(r.Context())
	if err != nil {
		s.logger.Error("status: load knowledge failed", zap.Error(err))
		status := http.StatusServiceUnavailable
		if !errors.Is(err, knowledge.ErrNotFound) {
			status = http.StatusBadGateway
		}
		s.respondError(w, status, err.Error())
		return
	}
	resp := map[string]interface{}{
		"documents":  st.Documents,
		"embeddings": st.Embeddings,
		"model":      st.Model,
		"dimension":  st.Dimension,
		"aligned":    st.Aligned,
		"embedder":   st.Embedder,
		"completion": st.Completion,
		"source":     s.config.Knowledge.Source,
	}
	if s.config.Knowledge.Source != knowledge.SourceHTTP {
		diskBytes, err := knowledge.DiskUsageBytes(
			s.config.Knowledge.DocumentPath,
			s.config.Knowledge.VectorPath,
			s.config.Storage.DatabasePath,
		)
		if err == nil {
			resp["disk_usage_bytes"] = diskBytes
		}
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
