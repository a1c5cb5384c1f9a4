package dashboard

import "nexus/internal/domain"

var accents = map[domain.Icon]string{
	domain.IconZap:      "indigo",
	domain.IconUsers:    "emerald",
	domain.IconSystem:   "amber",
	domain.IconSecurity: "rose",
}

// Accent returns the colour family the front end uses for a stat icon.
func Accent(icon domain.Icon) string {
	if a, ok := accents[icon]; ok {
		return a
	}
	return "slate"
}

type StatView struct {
	domain.StatCard
	Accent string `json:"accent"`
}

// View is the JSON shape served to the dashboard.
type View struct {
	Stats      []StatView          `json:"stats"`
	Throughput []domain.ChartPoint `json:"throughput"`
	Nodes      []domain.CloudNode  `json:"nodes"`
	Projects   []domain.Project    `json:"projects"`
	Team       []domain.TeamMember `json:"team"`
	Logs       []domain.SystemLog  `json:"logs"`
}

// Catalog holds fixtures fixed at startup. Every accessor hands out a copy.
type Catalog struct {
	fixtures domain.Fixtures
}

func NewCatalog(f domain.Fixtures) *Catalog {
	return &Catalog{fixtures: f.Clone()}
}

func (c *Catalog) Fixtures() domain.Fixtures {
	return c.fixtures.Clone()
}

func (c *Catalog) View() View {
	f := c.fixtures.Clone()
	stats := make([]StatView, 0, len(f.Stats))
	for _, s := range f.Stats {
		stats = append(stats, StatView{StatCard: s, Accent: Accent(s.Icon)})
	}
	return View{
		Stats:      stats,
		Throughput: f.Throughput,
		Nodes:      f.Nodes,
		Projects:   f.Projects,
		Team:       f.Team,
		Logs:       f.Logs,
	}
}
