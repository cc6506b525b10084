package http

import (
	"fmt"
	"net/http"

	"kakeibo/internal/log"
	"kakeibo/internal/storage"
)

// ErrPresetsDisabled is returned when no preset store is configured.
var ErrPresetsDisabled = fmt.Errorf("%w: csv presets are disabled", storage.ErrPresetNotFound)

func (s *Server) preset(r *http.Request, name string) (storage.Preset, error) {
	if s.presets == nil {
		return storage.Preset{}, ErrPresetsDisabled
	}
	return s.presets.GetPreset(r.Context(), name)
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		writeJSON(w, http.StatusOK, map[string]any{"presets": []storage.Preset{}})
		return
	}
	presets, err := s.presets.ListPresets(r.Context())
	if err != nil {
		writeError(w, r, log.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": presets})
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.preset(r, r.PathValue("name"))
	if err != nil {
		writeError(w, r, log.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleCreatePreset saves a preset, replacing one with the same name.
func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		writeError(w, r, log.OpCreate, ErrPresetsDisabled)
		return
	}
	var req presetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	if req.Mapping == nil {
		writeError(w, r, log.OpCreate, fmt.Errorf("%w: mapping is required", ErrBadRequest))
		return
	}
	p, err := s.presets.SavePreset(r.Context(), req.Name, *req.Mapping)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleUpdatePreset renames the preset when the body names a different
// one, then replaces its mapping when the body carries one.
func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		writeError(w, r, log.OpUpdate, ErrPresetsDisabled)
		return
	}
	var req presetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	name := r.PathValue("name")
	if req.Name == "" && req.Mapping == nil {
		writeError(w, r, log.OpUpdate, fmt.Errorf("%w: nothing to update", ErrBadRequest))
		return
	}

	if req.Name != "" && req.Name != name {
		if err := s.presets.RenamePreset(r.Context(), name, req.Name); err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
		name = req.Name
	}
	if req.Mapping != nil {
		if _, err := s.presets.GetPreset(r.Context(), name); err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
		if _, err := s.presets.SavePreset(r.Context(), name, *req.Mapping); err != nil {
			writeError(w, r, log.OpUpdate, err)
			return
		}
	}

	p, err := s.presets.GetPreset(r.Context(), name)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if s.presets == nil {
		writeError(w, r, log.OpDelete, ErrPresetsDisabled)
		return
	}
	if err := s.presets.DeletePreset(r.Context(), r.PathValue("name")); err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
