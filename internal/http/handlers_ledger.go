package http

import (
	"net/http"

	"kakeibo/internal/core"
	"kakeibo/internal/log"
)

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	images, err := parseImages(w, r)
	if err != nil {
		writeError(w, r, log.OpExtract, err)
		return
	}
	receipts, err := s.ledger.AnalyzeReceipts(r.Context(), images)
	if err != nil {
		writeError(w, r, log.OpExtract, err)
		return
	}
	if receipts == nil {
		receipts = []core.Receipt{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"receipts": receipts})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var rc core.Receipt
	if err := decodeJSON(w, r, &rc); err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	wb, err := s.workbooks.Open(r.Context(), credentialsFromRequest(r))
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	res, err := s.ledger.SaveReceipt(r.Context(), wb, rc)
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Receipt data saved successfully.", Details: res})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	wb, err := s.workbooks.Open(r.Context(), credentialsFromRequest(r))
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	answer, err := s.ledger.Search(r.Context(), wb, req.Query)
	if err != nil {
		writeError(w, r, log.OpAggregate, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) handleAnalyzeCSV(w http.ResponseWriter, r *http.Request) {
	var req analyzeCSVRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpNormalize, err)
		return
	}

	mapping := req.Mapping
	if mapping == nil && req.Preset != "" {
		p, err := s.preset(r, req.Preset)
		if err != nil {
			writeError(w, r, log.OpNormalize, err)
			return
		}
		mapping = &p.Mapping
	}

	analysis, err := s.ledger.AnalyzeCSV(r.Context(), req.CSVText, mapping)
	if err != nil {
		writeError(w, r, log.OpNormalize, err)
		return
	}
	if analysis.Transactions == nil {
		analysis.Transactions = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleSaveCSV(w http.ResponseWriter, r *http.Request) {
	var req saveCSVRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	wb, err := s.workbooks.Open(r.Context(), credentialsFromRequest(r))
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	res, err := s.ledger.SaveCSV(r.Context(), wb, req.Transactions)
	if err != nil {
		writeError(w, r, log.OpAppend, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "CSV data saved successfully.", Details: res})
}
