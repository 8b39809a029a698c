package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/fontsound-core/internal/fontsound"
)

// GenRequest is the body of POST /fontsounds.
type GenRequest struct {
	Count int `json:"count"`
}

// DeleteRequest is the body of DELETE /fontsounds.
type DeleteRequest struct {
	IDs []uint32 `json:"ids"`
}

// ParamValues is the body of PUT and the response of GET on a parameter.
type ParamValues struct {
	Param  string  `json:"param,omitempty"`
	Values []int32 `json:"values"`
}

// ParamInfo describes one recognised parameter.
type ParamInfo struct {
	Name  string `json:"name"`
	Tag   int32  `json:"tag"`
	Arity int    `json:"arity"`
}

// parseID reads the {id} URL parameter as a fontsound handle.
func parseID(r *http.Request) (uint32, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid fontsound id %q", raw)
	}
	return uint32(id), nil
}

// handleListParams lists the parameter catalogue.
func (s *Server) handleListParams(w http.ResponseWriter, _ *http.Request) {
	params := fontsound.AllParams()
	out := make([]ParamInfo, 0, len(params))
	for _, p := range params {
		out = append(out, ParamInfo{Name: p.String(), Tag: int32(p), Arity: p.Arity()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"params": out, "count": len(out)})
}

// handleListFontsounds returns a snapshot of every live fontsound.
func (s *Server) handleListFontsounds(w http.ResponseWriter, _ *http.Request) {
	snaps := s.device.Snapshots()
	writeJSON(w, http.StatusOK, map[string]any{"fontsounds": snaps, "count": len(snaps)})
}

// handleGenFontsounds creates count fontsounds.
func (s *Server) handleGenFontsounds(w http.ResponseWriter, r *http.Request) {
	var req GenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, err)
		return
	}

	ids, err := s.device.Gen(req.Count)
	s.record("gen", err)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ids": ids, "count": len(ids)})
}

// handleDeleteFontsounds deletes every listed fontsound or none.
func (s *Server) handleDeleteFontsounds(w http.ResponseWriter, r *http.Request) {
	var req DeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, err)
		return
	}

	err := s.device.Delete(req.IDs)
	s.record("delete", err)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleFontsoundStats returns population statistics.
func (s *Server) handleFontsoundStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.device.Stats())
}

// handleGetError reads and clears the device error latch.
func (s *Server) handleGetError(w http.ResponseWriter, _ *http.Request) {
	code := s.device.GetError()
	writeJSON(w, http.StatusOK, map[string]any{
		"al_code":  int32(code),
		"al_error": code.String(),
	})
}

// handleGetFontsound returns one fontsound.
func (s *Server) handleGetFontsound(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if !s.device.Exists(id) {
		writeNotFound(w, "fontsound not found")
		return
	}

	snap, err := s.device.Snapshot(id)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleGetParam reads one attribute.
func (s *Server) handleGetParam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	p, err := fontsound.ParseParam(chi.URLParam(r, "param"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	values, err := s.device.Get(id, p)
	s.record("get_param", err)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ParamValues{Param: p.String(), Values: values})
}

// handleSetParam writes one attribute through the validating setters.
func (s *Server) handleSetParam(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	p, err := fontsound.ParseParam(chi.URLParam(r, "param"))
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	var req ParamValues
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, err)
		return
	}

	err = s.device.SetIntv(id, p, req.Values)
	s.record("set_param", err)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
