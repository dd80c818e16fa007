// HTTP handlers for the agent server.

package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Colombia-Blockchain/erc8004-builder-kit/pkg/httputil"
)

// defaultRecentWindow is how many interactions /api/interactions returns
// when no limit is given.
const defaultRecentWindow = 20

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.cfg.DashboardPath != "" {
		if data, err := os.ReadFile(s.cfg.DashboardPath); err == nil {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write(data)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(fallbackDashboard)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]any{
		"status":    "ok",
		"agent":     s.reg.Name,
		"version":   s.version,
		"uptime":    time.Since(s.startTime).Round(time.Second).String(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRegistration(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, s.reg)
}

// handleAgentCard serves the A2A agent card. A dedicated card file wins;
// otherwise the registration document doubles as the card.
func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	if s.cfg.AgentCardPath != "" {
		if data, err := os.ReadFile(s.cfg.AgentCardPath); err == nil {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(data)
			return
		}
	}
	httputil.WriteOK(w, s.reg)
}

// handleDomainVerification serves the scanner verification file, which
// lives next to the registration document.
func (s *Server) handleDomainVerification(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(filepath.Dir(s.cfg.RegistrationPath), ".well-known", "agent-registration.json")
	data, err := os.ReadFile(path)
	if err != nil {
		httputil.WriteNotFound(w, "not_found", "Verification file not found")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleOASF(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, s.reg.OASF(s.version))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("filename")
	// PathValue never contains a slash for a single segment, but keep
	// the base to be safe against future route changes.
	path := filepath.Join(s.cfg.PublicDir, filepath.Base(name))
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		httputil.WriteNotFound(w, "not_found", "File not found")
		return
	}
	http.ServeFile(w, r, path)
}

// a2aRequest accepts the question under any of the common field names.
type a2aRequest struct {
	Question string `json:"question"`
	Message  string `json:"message"`
	Input    string `json:"input"`
}

func (r *a2aRequest) text() string {
	switch {
	case r.Question != "":
		return r.Question
	case r.Message != "":
		return r.Message
	default:
		return r.Input
	}
}

func (s *Server) handleA2AAsk(w http.ResponseWriter, r *http.Request) {
	var req a2aRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "invalid_json", "Request body must be JSON")
		return
	}

	question := req.text()
	if question == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, map[string]any{
			"error": "Missing 'question' field",
			"usage": map[string]any{
				"method": "POST",
				"body":   map[string]string{"question": "Your question here"},
			},
		})
		return
	}

	Annotate(r.Context(), "question", question)

	// Starter answer; swap in real logic (LLM call, knowledge base).
	httputil.WriteOK(w, map[string]any{
		"agent":     s.reg.Name,
		"question":  question,
		"answer":    "This is a starter template. Implement your answer logic for: " + question,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListInteractions(w http.ResponseWriter, r *http.Request) {
	n := defaultRecentWindow
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			httputil.WriteBadRequest(w, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		n = parsed
	}
	entries := s.interactions.Recent(n)
	httputil.WriteOK(w, map[string]any{
		"interactions": entries,
		"count":        len(entries),
	})
}

func (s *Server) handleInteractionStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, s.interactions.Stats())
}

func (s *Server) handleClearInteractions(w http.ResponseWriter, r *http.Request) {
	s.interactions.Clear()
	httputil.WriteOK(w, map[string]string{"status": "cleared"})
}

func (s *Server) handlePremium(w http.ResponseWriter, r *http.Request) {
	httputil.WriteOK(w, map[string]any{
		"data":      "premium content",
		"agent":     s.reg.Name,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
