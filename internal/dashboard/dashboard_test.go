package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"nexus/internal/domain"
)

func TestDefault_MatchesEmbeddedDocument(t *testing.T) {
	f := Default()

	require.Len(t, f.Stats, 4)
	require.Equal(t, "Network Throughput", f.Stats[0].Label)
	require.Equal(t, domain.IconZap, f.Stats[0].Icon)
	require.Equal(t, domain.IconSecurity, f.Stats[3].Icon)

	require.Len(t, f.Throughput, 7)
	require.Equal(t, "00:00", f.Throughput[0].Name)
	require.Equal(t, "23:59", f.Throughput[6].Name)
	require.Equal(t, 8900, f.Throughput[5].Revenue)

	require.Len(t, f.Nodes, 3)
	require.Equal(t, domain.NodeMaintenance, f.Nodes[2].Status)

	require.Len(t, f.Projects, 3)
	require.Equal(t, domain.ProjectInProgress, f.Projects[0].Status)
	require.Equal(t, domain.PriorityMedium, f.Projects[1].Priority)
	require.Len(t, f.Projects[2].Team, 2)

	require.Len(t, f.Team, 3)
	require.Len(t, f.Logs, 4)
	require.Equal(t, domain.LogSuccess, f.Logs[1].Level)
}

func TestLoad_RejectsInvalidDocuments(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{name: "unknown icon", doc: "stats:\n  - {label: x, icon: rocket}\n", want: "stats[0]"},
		{name: "unknown node status", doc: "nodes:\n  - {region: x, load: 1, status: busy}\n", want: "nodes[0]"},
		{name: "load out of range", doc: "nodes:\n  - {region: x, load: 101, status: active}\n", want: "load 101"},
		{name: "negative progress", doc: "projects:\n  - {id: p, progress: -1, status: Review, priority: Low}\n", want: "progress -1"},
		{name: "unknown priority", doc: "projects:\n  - {id: p, progress: 1, status: Review, priority: Urgent}\n", want: "unknown priority"},
		{name: "unknown presence", doc: "team:\n  - {id: t, status: invisible}\n", want: "team[0]"},
		{name: "unknown log level", doc: "logs:\n  - {id: l, type: debug}\n", want: "logs[0]"},
		{name: "unknown key", doc: "widgets: []\n", want: "decode fixtures"},
		{name: "not yaml", doc: "stats: [", want: "decode fixtures"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load([]byte(tc.doc))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	doc := "stats:\n  - {label: a, icon: rocket}\nlogs:\n  - {id: l, type: debug}\n"
	_, err := Load([]byte(doc))
	require.Error(t, err)
	require.Contains(t, err.Error(), "stats[0]")
	require.Contains(t, err.Error(), "logs[0]")
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := NewCatalog(Default())

	f := c.Fixtures()
	f.Projects[0].Team[0] = "changed"
	f.Stats[0].Label = "changed"

	again := c.Fixtures()
	require.Equal(t, "https://i.pravatar.cc/150?u=1", again.Projects[0].Team[0])
	require.Equal(t, "Network Throughput", again.Stats[0].Label)

	v := c.View()
	v.Projects[0].Team[0] = "changed"
	require.Equal(t, "https://i.pravatar.cc/150?u=1", c.View().Projects[0].Team[0])
}

func TestCatalog_ViewCarriesAccents(t *testing.T) {
	v := NewCatalog(Default()).View()
	got := make([]string, 0, len(v.Stats))
	for _, s := range v.Stats {
		got = append(got, s.Accent)
	}
	require.Equal(t, []string{"indigo", "emerald", "amber", "rose"}, got)

	raw, err := json.Marshal(v.Stats[0])
	require.NoError(t, err)
	require.JSONEq(t, `{"label":"Network Throughput","value":"4.2 GB/s","change":"+12%","isPositive":true,"icon":"zap","accent":"indigo"}`, string(raw))
}

func TestAccent_UnknownIcon(t *testing.T) {
	require.Equal(t, "slate", Accent(domain.Icon(0)))
}

type fakeLookuper struct {
	value string
	ok    bool
	err   error
	name  string
}

func (f *fakeLookuper) Lookup(_ context.Context, name string) (string, bool, error) {
	f.name = name
	return f.value, f.ok, f.err
}

func TestLoadFromParamStore(t *testing.T) {
	t.Run("override", func(t *testing.T) {
		l := &fakeLookuper{ok: true, value: "logs:\n  - {id: x1, type: error, message: disk full, timestamp: \"01:00:00\"}\n"}
		f, err := LoadFromParamStore(context.Background(), l, " /nexus/dashboard-fixtures ")
		require.NoError(t, err)
		require.Equal(t, "/nexus/dashboard-fixtures", l.name)
		require.Len(t, f.Logs, 1)
		require.Equal(t, domain.LogError, f.Logs[0].Level)
		require.Empty(t, f.Stats)
	})

	t.Run("missing parameter falls back to default", func(t *testing.T) {
		f, err := LoadFromParamStore(context.Background(), &fakeLookuper{}, "/nexus/dashboard-fixtures")
		require.NoError(t, err)
		require.Equal(t, Default(), f)
	})

	t.Run("lookup error", func(t *testing.T) {
		_, err := LoadFromParamStore(context.Background(), &fakeLookuper{err: errors.New("throttled")}, "/x")
		require.ErrorContains(t, err, "throttled")
	})

	t.Run("invalid override", func(t *testing.T) {
		_, err := LoadFromParamStore(context.Background(), &fakeLookuper{ok: true, value: "nodes:\n  - {status: gone}\n"}, "/x")
		require.Error(t, err)
	})

	t.Run("nil lookuper", func(t *testing.T) {
		_, err := LoadFromParamStore(context.Background(), nil, "/x")
		require.Error(t, err)
	})
}
