// Package registration loads and serves the agent's ERC-8004 registration
// metadata. The same document backs /registration.json, the A2A agent
// card, and the OASF discovery payload.
package registration

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Service describes one service advertised by the agent.
type Service struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint,omitempty"`
	Version  string `json:"version,omitempty"`
}

// Document is the parsed registration.json. Unknown fields are preserved
// verbatim so the served document round-trips exactly what was deployed.
type Document struct {
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Image        string    `json:"image,omitempty"`
	URL          string    `json:"url,omitempty"`
	Capabilities []string  `json:"capabilities,omitempty"`
	Services     []Service `json:"services,omitempty"`
	Skills       []string  `json:"skills,omitempty"`
	Domains      []string  `json:"domains,omitempty"`

	raw map[string]json.RawMessage
}

// Default OASF discovery values used when the document does not declare
// its own skills or domains. They mirror the starter template defaults.
var (
	DefaultSkills = []string{
		"natural_language_processing/information_retrieval_synthesis/search",
		"tool_interaction/api_schema_understanding",
	}
	DefaultDomains = []string{
		"technology/blockchain",
	}
)

// Load reads and parses a registration document. A missing or malformed
// file is a startup error: the agent cannot serve discovery endpoints
// without its metadata.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registration: %w", err)
	}
	return Parse(data)
}

// Parse parses a registration document from raw JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registration: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("parse registration: missing required field %q", "name")
	}
	if err := json.Unmarshal(data, &doc.raw); err != nil {
		return nil, fmt.Errorf("parse registration: %w", err)
	}
	return &doc, nil
}

// MarshalJSON serializes the original document, including fields this
// package does not model.
func (d *Document) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.raw)
}

// ServiceNames returns the names of all advertised services.
func (d *Document) ServiceNames() []string {
	names := make([]string, 0, len(d.Services))
	for _, s := range d.Services {
		names = append(names, s.Name)
	}
	return names
}

// OASF builds the Open Agent Service Framework discovery payload.
func (d *Document) OASF(version string) map[string]any {
	skills := d.Skills
	if len(skills) == 0 {
		skills = DefaultSkills
	}
	domains := d.Domains
	if len(domains) == 0 {
		domains = DefaultDomains
	}
	return map[string]any{
		"name":        d.Name,
		"description": d.Description,
		"version":     version,
		"skills":      skills,
		"domains":     domains,
		"updatedAt":   time.Now().UTC().Format(time.RFC3339),
	}
}
