package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/raaihank/wordguard/internal/filter"
	"github.com/raaihank/wordguard/internal/websocket"
	"go.uber.org/zap"
)

type textRequest struct {
	Text string `json:"text"`
}

type cleanResponse struct {
	Result string `json:"result"`
}

type wordRequest struct {
	Replacement string `json:"replacement"`
}

type methodRequest struct {
	Method string `json:"method"`
}

type grawlixRequest struct {
	Chars []string `json:"chars"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	info := s.filter.Debug()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	result := s.filter.Clean(req.Text)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, cleanResponse{Result: result})
}

func (s *Server) handleSanitize(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	result := s.filter.Sanitize(req.Text)
	method := s.filter.Method()
	s.mu.Unlock()

	if result.Found > 0 {
		requestID := getRequestID(r.Context())
		s.logger.WithRequestID(requestID).Info("Bad words detected",
			zap.Strings("bad_words", result.BadWords),
			zap.Int("found", result.Found),
		)

		if s.wsHub != nil {
			s.wsHub.BroadcastEvent(websocket.Event{
				Type:      websocket.EventTypeDetection,
				Timestamp: time.Now(),
				RequestID: requestID,
				Data: websocket.DetectionEvent{
					RequestID: requestID,
					ClientIP:  getClientIP(r),
					BadWords:  result.BadWords,
					Found:     result.Found,
					Method:    method.String(),
				},
			})
		}
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAddWord(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]

	var req wordRequest
	if r.ContentLength != 0 && !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	s.filter.AddWord(word, req.Replacement)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveWord(w http.ResponseWriter, r *http.Request) {
	word := mux.Vars(r)["word"]

	s.mu.Lock()
	s.filter.RemoveWord(word)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetMethod(w http.ResponseWriter, r *http.Request) {
	var req methodRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	_, err := s.filter.SetReplacementMethod(req.Method)
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, filter.ErrInvalidMethod) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetGrawlix(w http.ResponseWriter, r *http.Request) {
	var req grawlixRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	s.filter.SetGrawlixChars(req.Chars)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	s.mu.Lock()
	s.filter.SeedNamed(r.Context(), name)
	words := s.filter.Len()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]int{"words": words})
}

// decode reads a JSON body, writing a 400 response on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, s.config.Server.MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		s.logger.WithRequestID(getRequestID(r.Context())).Debug("Invalid request body", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
