package handler

import (
	"net/http"
)

// StatusHandler describes the running server: its identity, the MCP
// endpoint, the tools it exposes, and the upstream sources it aggregates.
type StatusHandler struct {
	Name     string
	Version  string
	Endpoint string
	Tools    []string
	Sources  []string
}

// NewStatusHandler creates a StatusHandler.
func NewStatusHandler(name, version, endpoint string, tools, sources []string) *StatusHandler {
	return &StatusHandler{
		Name:     name,
		Version:  version,
		Endpoint: endpoint,
		Tools:    tools,
		Sources:  sources,
	}
}

// GetStatus responds with the server description.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":     h.Name,
		"version":  h.Version,
		"endpoint": h.Endpoint,
		"tools":    h.Tools,
		"sources":  h.Sources,
	})
}
