package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIcon(t *testing.T) {
	icon, err := ParseIcon("Zap")
	require.NoError(t, err)
	require.Equal(t, IconZap, icon)

	icon, err = ParseIcon(" security ")
	require.NoError(t, err)
	require.Equal(t, IconSecurity, icon)

	_, err = ParseIcon("Rocket")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown icon")
}

func TestEnums_MarshalJSON(t *testing.T) {
	raw, err := json.Marshal(Project{
		ID:       "p1",
		Name:     "Nexus Mobile v3",
		Progress: 75,
		Status:   ProjectInProgress,
		Priority: PriorityHigh,
	})
	require.NoError(t, err)
	require.Contains(t, string(raw), `"status":"In Progress"`)
	require.Contains(t, string(raw), `"priority":"High"`)
}

func TestEnums_ZeroValueDoesNotMarshal(t *testing.T) {
	_, err := json.Marshal(StatCard{Label: "x"})
	require.Error(t, err)
}

func TestFixturesClone_DoesNotAlias(t *testing.T) {
	f := Fixtures{
		Projects: []Project{{ID: "p1", Team: []string{"a"}}},
		Nodes:    []CloudNode{{Region: "US-East"}},
	}
	c := f.Clone()
	c.Projects[0].Team[0] = "changed"
	c.Nodes[0].Region = "changed"

	require.Equal(t, "a", f.Projects[0].Team[0])
	require.Equal(t, "US-East", f.Nodes[0].Region)
}

func TestRole_UnmarshalText(t *testing.T) {
	var m Message
	require.NoError(t, json.Unmarshal([]byte(`{"role":"assistant"}`), &m))
	require.Equal(t, RoleAssistant, m.Role)

	require.Error(t, json.Unmarshal([]byte(`{"role":"system"}`), &m))
}

func TestParsePresence(t *testing.T) {
	p, err := ParsePresence("Busy")
	require.NoError(t, err)
	require.Equal(t, PresenceBusy, p)
	require.Equal(t, "busy", p.String())

	_, err = ParsePresence("offline")
	require.Error(t, err)
}
