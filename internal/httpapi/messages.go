package httpapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sells-group/supplier-cli/internal/model"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisId")

	if _, err := s.store.GetAnalysis(r.Context(), ownerID(r), analysisID); err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}

	messages, err := s.store.ListMessages(r.Context(), analysisID)
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	respondData(w, http.StatusOK, messages)
}

func (s *Server) handleListMessagesByType(w http.ResponseWriter, r *http.Request) {
	analysisID := chi.URLParam(r, "analysisId")
	typ := model.MessageType(strings.ToUpper(chi.URLParam(r, "type")))
	if !typ.Valid() {
		respondError(w, http.StatusBadRequest, "invalid message type (use SUPPLIER, BUYER or MANAGEMENT)")
		return
	}

	if _, err := s.store.GetAnalysis(r.Context(), ownerID(r), analysisID); err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}

	messages, err := s.store.ListMessagesByType(r.Context(), analysisID, typ)
	if err != nil {
		respondStoreError(w, err, "analysis not found")
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	respondData(w, http.StatusOK, messages)
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := s.store.GetMessage(r.Context(), ownerID(r), chi.URLParam(r, "id"))
	if err != nil {
		respondStoreError(w, err, "message not found")
		return
	}
	respondData(w, http.StatusOK, msg)
}
