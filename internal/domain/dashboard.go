package domain

import (
	"fmt"
	"strings"
)

// Fixtures is the display-only data behind the dashboard widgets.
type Fixtures struct {
	Stats      []StatCard   `json:"stats"`
	Throughput []ChartPoint `json:"throughput"`
	Nodes      []CloudNode  `json:"nodes"`
	Projects   []Project    `json:"projects"`
	Team       []TeamMember `json:"team"`
	Logs       []SystemLog  `json:"logs"`
}

type StatCard struct {
	Label    string `json:"label"`
	Value    string `json:"value"`
	Change   string `json:"change"`
	Positive bool   `json:"isPositive"`
	Icon     Icon   `json:"icon"`
}

type ChartPoint struct {
	Name    string `json:"name"`
	Revenue int    `json:"revenue"`
	Compute int    `json:"compute"`
}

type CloudNode struct {
	Region  string     `json:"region"`
	Load    int        `json:"load"`
	Latency int        `json:"latency"`
	Status  NodeStatus `json:"status"`
}

type Project struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Progress int           `json:"progress"`
	Status   ProjectStatus `json:"status"`
	Priority Priority      `json:"priority"`
	Team     []string      `json:"team"`
}

type TeamMember struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Status Presence `json:"status"`
	Avatar string   `json:"avatar"`
}

type SystemLog struct {
	ID        string   `json:"id"`
	Level     LogLevel `json:"type"`
	Message   string   `json:"message"`
	Timestamp string   `json:"timestamp"`
}

// Clone returns a deep copy so callers can never alias the original slices.
func (f Fixtures) Clone() Fixtures {
	out := Fixtures{
		Stats:      append([]StatCard(nil), f.Stats...),
		Throughput: append([]ChartPoint(nil), f.Throughput...),
		Nodes:      append([]CloudNode(nil), f.Nodes...),
		Team:       append([]TeamMember(nil), f.Team...),
		Logs:       append([]SystemLog(nil), f.Logs...),
		Projects:   make([]Project, len(f.Projects)),
	}
	for i, p := range f.Projects {
		p.Team = append([]string(nil), p.Team...)
		out.Projects[i] = p
	}
	return out
}

// The enums below are closed: the zero value is invalid and only the names in
// each table parse.

type Icon uint8

const (
	IconZap Icon = iota + 1
	IconUsers
	IconSystem
	IconSecurity
)

var iconNames = map[Icon]string{
	IconZap:      "zap",
	IconUsers:    "users",
	IconSystem:   "system",
	IconSecurity: "security",
}

func ParseIcon(s string) (Icon, error) { return parseEnum(iconNames, "icon", s) }
func (i Icon) String() string         { return iconNames[i] }
func (i Icon) MarshalText() ([]byte, error) {
	return marshalEnum(iconNames, "icon", i)
}

type NodeStatus uint8

const (
	NodeActive NodeStatus = iota + 1
	NodeMaintenance
	NodeOffline
)

var nodeStatusNames = map[NodeStatus]string{
	NodeActive:      "active",
	NodeMaintenance: "maintenance",
	NodeOffline:     "offline",
}

func ParseNodeStatus(s string) (NodeStatus, error) {
	return parseEnum(nodeStatusNames, "node status", s)
}
func (s NodeStatus) String() string { return nodeStatusNames[s] }
func (s NodeStatus) MarshalText() ([]byte, error) {
	return marshalEnum(nodeStatusNames, "node status", s)
}

type ProjectStatus uint8

const (
	ProjectInProgress ProjectStatus = iota + 1
	ProjectReview
	ProjectCompleted
	ProjectOnHold
)

var projectStatusNames = map[ProjectStatus]string{
	ProjectInProgress: "In Progress",
	ProjectReview:     "Review",
	ProjectCompleted:  "Completed",
	ProjectOnHold:     "On Hold",
}

func ParseProjectStatus(s string) (ProjectStatus, error) {
	return parseEnum(projectStatusNames, "project status", s)
}
func (s ProjectStatus) String() string { return projectStatusNames[s] }
func (s ProjectStatus) MarshalText() ([]byte, error) {
	return marshalEnum(projectStatusNames, "project status", s)
}

type Priority uint8

const (
	PriorityHigh Priority = iota + 1
	PriorityMedium
	PriorityLow
)

var priorityNames = map[Priority]string{
	PriorityHigh:   "High",
	PriorityMedium: "Medium",
	PriorityLow:    "Low",
}

func ParsePriority(s string) (Priority, error) { return parseEnum(priorityNames, "priority", s) }
func (p Priority) String() string             { return priorityNames[p] }
func (p Priority) MarshalText() ([]byte, error) {
	return marshalEnum(priorityNames, "priority", p)
}

type Presence uint8

const (
	PresenceOnline Presence = iota + 1
	PresenceAway
	PresenceBusy
)

var presenceNames = map[Presence]string{
	PresenceOnline: "online",
	PresenceAway:   "away",
	PresenceBusy:   "busy",
}

func ParsePresence(s string) (Presence, error) { return parseEnum(presenceNames, "presence", s) }
func (p Presence) String() string             { return presenceNames[p] }
func (p Presence) MarshalText() ([]byte, error) {
	return marshalEnum(presenceNames, "presence", p)
}

type LogLevel uint8

const (
	LogInfo LogLevel = iota + 1
	LogWarning
	LogError
	LogSuccess
)

var logLevelNames = map[LogLevel]string{
	LogInfo:    "info",
	LogWarning: "warning",
	LogError:   "error",
	LogSuccess: "success",
}

func ParseLogLevel(s string) (LogLevel, error) { return parseEnum(logLevelNames, "log level", s) }
func (l LogLevel) String() string             { return logLevelNames[l] }
func (l LogLevel) MarshalText() ([]byte, error) {
	return marshalEnum(logLevelNames, "log level", l)
}

func parseEnum[E comparable](names map[E]string, kind, s string) (E, error) {
	s = strings.TrimSpace(s)
	for v, name := range names {
		if strings.EqualFold(name, s) {
			return v, nil
		}
	}
	var zero E
	return zero, fmt.Errorf("domain: unknown %s %q", kind, s)
}

func marshalEnum[E comparable](names map[E]string, kind string, v E) ([]byte, error) {
	name, ok := names[v]
	if !ok {
		return nil, fmt.Errorf("domain: invalid %s %v", kind, v)
	}
	return []byte(name), nil
}
