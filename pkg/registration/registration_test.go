package registration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
	"name": "Test Agent",
	"description": "An agent under test",
	"url": "https://agent.example.com",
	"capabilities": ["mcp", "a2a"],
	"services": [
		{"name": "MCP", "endpoint": "/mcp"},
		{"name": "A2A", "endpoint": "/a2a/ask", "version": "0.3.0"}
	],
	"trustModels": ["feedback"],
	"registrations": [{"agentId": 42, "agentAddress": "eip155:8453:0xabc"}]
}`

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	assert.Equal(t, "Test Agent", doc.Name)
	assert.Equal(t, "An agent under test", doc.Description)
	assert.Equal(t, []string{"mcp", "a2a"}, doc.Capabilities)
	assert.Equal(t, []string{"MCP", "A2A"}, doc.ServiceNames())
}

func TestParseMissingName(t *testing.T) {
	_, err := Parse([]byte(`{"description": "no name"}`))
	assert.ErrorContains(t, err, "name")
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestMarshalPreservesUnknownFields(t *testing.T) {
	doc, err := Parse([]byte(sampleDoc))
	require.NoError(t, err)

	out, err := json.Marshal(doc)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(out, &m))
	assert.Contains(t, m, "trustModels")
	assert.Contains(t, m, "registrations")
	regs, ok := m["registrations"].([]any)
	require.True(t, ok)
	require.Len(t, regs, 1)
	reg := regs[0].(map[string]any)
	assert.Equal(t, float64(42), reg["agentId"])
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registration.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDoc), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Test Agent", doc.Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestOASFDefaults(t *testing.T) {
	doc, err := Parse([]byte(`{"name": "Agent"}`))
	require.NoError(t, err)

	payload := doc.OASF("1.2.3")
	assert.Equal(t, "Agent", payload["name"])
	assert.Equal(t, "1.2.3", payload["version"])
	assert.Equal(t, DefaultSkills, payload["skills"])
	assert.Equal(t, DefaultDomains, payload["domains"])

	updated, ok := payload["updatedAt"].(string)
	require.True(t, ok)
	_, err = time.Parse(time.RFC3339, updated)
	assert.NoError(t, err)
}

func TestOASFExplicitSkills(t *testing.T) {
	doc, err := Parse([]byte(`{"name": "Agent", "skills": ["s1"], "domains": ["d1"]}`))
	require.NoError(t, err)

	payload := doc.OASF("dev")
	assert.Equal(t, []string{"s1"}, payload["skills"])
	assert.Equal(t, []string{"d1"}, payload["domains"])
}
