package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fontsound-core/internal/bank"
)

// bankContentType is the media type of exported bank files.
const bankContentType = "application/cbor"

// CaptureRequest is the body of POST /banks.
type CaptureRequest struct {
	Name string `json:"name"`
}

// RestoreResponse maps the bank's handles to the restored ones.
type RestoreResponse struct {
	BankID  string            `json:"bank_id"`
	Mapping map[string]uint32 `json:"mapping"`
	Count   int               `json:"count"`
}

// handleListBanks lists stored banks.
func (s *Server) handleListBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.banks.List(r.Context())
	if err != nil {
		s.logger.Error("listing banks failed", "error", err)
		writeInternalError(w, "failed to list banks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"banks": banks, "count": len(banks)})
}

// handleCaptureBank snapshots the device and stores the bank.
func (s *Server) handleCaptureBank(w http.ResponseWriter, r *http.Request) {
	var req CaptureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, err)
		return
	}

	b, err := bank.Capture(s.device, req.Name)
	if err == nil {
		err = s.banks.Create(r.Context(), b)
	}
	s.record("bank_capture", err)
	if err != nil {
		writeBankError(w, err)
		return
	}

	s.logger.Info("bank captured", "bank_id", b.ID, "name", b.Name, "sounds", len(b.Sounds))
	writeJSON(w, http.StatusCreated, b.Summary())
}

// handleImportBank stores a bank file posted as CBOR.
func (s *Server) handleImportBank(w http.ResponseWriter, r *http.Request) {
	b, err := bank.Decode(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeBodyError(w, err)
			return
		}
		writeBankError(w, err)
		return
	}

	err = s.banks.Create(r.Context(), b)
	s.record("bank_import", err)
	if err != nil {
		writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, b.Summary())
}

// handleGetBank returns a bank with its sounds.
func (s *Server) handleGetBank(w http.ResponseWriter, r *http.Request) {
	b, err := s.banks.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// handleDeleteBank removes a stored bank.
func (s *Server) handleDeleteBank(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.banks.Delete(r.Context(), id); err != nil {
		writeBankError(w, err)
		return
	}
	s.logger.Info("bank deleted", "bank_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleExportBank streams the bank file.
func (s *Server) handleExportBank(w http.ResponseWriter, r *http.Request) {
	b, err := s.banks.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeBankError(w, err)
		return
	}
	data, err := bank.Marshal(b)
	if err != nil {
		s.logger.Error("encoding bank failed", "bank_id", b.ID, "error", err)
		writeInternalError(w, "failed to encode bank")
		return
	}

	w.Header().Set("Content-Type", bankContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.ID+".fsbank"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck,gosec // Best-effort write to response
}

// handleRestoreBank recreates a stored bank on the device.
func (s *Server) handleRestoreBank(w http.ResponseWriter, r *http.Request) {
	b, err := s.banks.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeBankError(w, err)
		return
	}

	mapping, err := bank.Restore(s.device, b)
	s.record("bank_restore", err)
	if err != nil {
		writeBankError(w, err)
		return
	}

	out := make(map[string]uint32, len(mapping))
	for from, to := range mapping {
		out[strconv.FormatUint(uint64(from), 10)] = to
	}
	s.logger.Info("bank restored", "bank_id", b.ID, "sounds", len(mapping))
	writeJSON(w, http.StatusOK, RestoreResponse{BankID: b.ID, Mapping: out, Count: len(out)})
}
