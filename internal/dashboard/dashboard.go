// Package dashboard loads the read-only fixture data behind the dashboard
// widgets.
package dashboard

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"nexus/internal/domain"
)

//go:embed fixtures.yaml
var defaultDocument []byte

// document mirrors fixtures.yaml with enums still in their text form.
type document struct {
	Stats []struct {
		Label    string `yaml:"label"`
		Value    string `yaml:"value"`
		Change   string `yaml:"change"`
		Positive bool   `yaml:"isPositive"`
		Icon     string `yaml:"icon"`
	} `yaml:"stats"`
	Throughput []domain.ChartPoint `yaml:"throughput"`
	Nodes      []struct {
		Region  string `yaml:"region"`
		Load    int    `yaml:"load"`
		Latency int    `yaml:"latency"`
		Status  string `yaml:"status"`
	} `yaml:"nodes"`
	Projects []struct {
		ID       string   `yaml:"id"`
		Name     string   `yaml:"name"`
		Progress int      `yaml:"progress"`
		Status   string   `yaml:"status"`
		Priority string   `yaml:"priority"`
		Team     []string `yaml:"team"`
	} `yaml:"projects"`
	Team []struct {
		ID     string `yaml:"id"`
		Name   string `yaml:"name"`
		Role   string `yaml:"role"`
		Status string `yaml:"status"`
		Avatar string `yaml:"avatar"`
	} `yaml:"team"`
	Logs []struct {
		ID        string `yaml:"id"`
		Type      string `yaml:"type"`
		Message   string `yaml:"message"`
		Timestamp string `yaml:"timestamp"`
	} `yaml:"logs"`
}

// Load parses and validates a fixtures YAML document. Unknown keys, unknown
// enum names and out-of-range percentages are errors.
func Load(data []byte) (domain.Fixtures, error) {
	var doc document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return domain.Fixtures{}, fmt.Errorf("dashboard: decode fixtures: %w", err)
	}

	var (
		f    domain.Fixtures
		errs []error
	)
	check := func(where string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", where, err))
		}
	}

	for i, s := range doc.Stats {
		icon, err := domain.ParseIcon(s.Icon)
		check(fmt.Sprintf("stats[%d]", i), err)
		f.Stats = append(f.Stats, domain.StatCard{
			Label: s.Label, Value: s.Value, Change: s.Change, Positive: s.Positive, Icon: icon,
		})
	}

	f.Throughput = append(f.Throughput, doc.Throughput...)

	for i, n := range doc.Nodes {
		where := fmt.Sprintf("nodes[%d]", i)
		status, err := domain.ParseNodeStatus(n.Status)
		check(where, err)
		check(where, percent("load", n.Load))
		f.Nodes = append(f.Nodes, domain.CloudNode{
			Region: n.Region, Load: n.Load, Latency: n.Latency, Status: status,
		})
	}

	for i, p := range doc.Projects {
		where := fmt.Sprintf("projects[%d]", i)
		status, err := domain.ParseProjectStatus(p.Status)
		check(where, err)
		priority, err := domain.ParsePriority(p.Priority)
		check(where, err)
		check(where, percent("progress", p.Progress))
		f.Projects = append(f.Projects, domain.Project{
			ID: p.ID, Name: p.Name, Progress: p.Progress, Status: status, Priority: priority,
			Team: append([]string{}, p.Team...),
		})
	}

	for i, m := range doc.Team {
		status, err := domain.ParsePresence(m.Status)
		check(fmt.Sprintf("team[%d]", i), err)
		f.Team = append(f.Team, domain.TeamMember{
			ID: m.ID, Name: m.Name, Role: m.Role, Status: status, Avatar: m.Avatar,
		})
	}

	for i, l := range doc.Logs {
		level, err := domain.ParseLogLevel(l.Type)
		check(fmt.Sprintf("logs[%d]", i), err)
		f.Logs = append(f.Logs, domain.SystemLog{
			ID: l.ID, Level: level, Message: l.Message, Timestamp: l.Timestamp,
		})
	}

	if err := errors.Join(errs...); err != nil {
		return domain.Fixtures{}, fmt.Errorf("dashboard: invalid fixtures: %w", err)
	}
	return f, nil
}

func percent(field string, v int) error {
	if v < 0 || v > 100 {
		return fmt.Errorf("%s %d out of range 0..100", field, v)
	}
	return nil
}

// Default returns the embedded fixtures. The embedded document is validated
// by tests, so a failure here is a build defect.
func Default() domain.Fixtures {
	f, err := Load(defaultDocument)
	if err != nil {
		panic(err)
	}
	return f
}

// Lookuper is satisfied by *paramstore.Client.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

// LoadFromParamStore reads a fixtures document from the named parameter and
// falls back to Default when the parameter does not exist.
func LoadFromParamStore(ctx context.Context, params Lookuper, name string) (domain.Fixtures, error) {
	if params == nil {
		return domain.Fixtures{}, errors.New("dashboard: paramstore lookuper must not be nil")
	}
	raw, ok, err := params.Lookup(ctx, strings.TrimSpace(name))
	if err != nil {
		return domain.Fixtures{}, fmt.Errorf("dashboard: fetch fixtures: %w", err)
	}
	if !ok {
		return Default(), nil
	}
	return Load([]byte(raw))
}
