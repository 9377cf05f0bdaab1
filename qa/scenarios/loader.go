package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/powermanager/core/model"
)

type BoundsDef struct {
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

func (b BoundsDef) ToModel() model.Bounds {
	return model.Bounds{Lower: b.Lower, Upper: b.Upper}
}

type MetricsDef struct {
	Inclusion BoundsDef `yaml:"inclusion"`
	Exclusion BoundsDef `yaml:"exclusion"`
}

func (m MetricsDef) ToModel() model.PowerMetrics {
	return model.PowerMetrics{Inclusion: m.Inclusion.ToModel(), Exclusion: m.Exclusion.ToModel()}
}

type ProposalDef struct {
	Source   string     `yaml:"source"`
	Priority int        `yaml:"priority"`
	Power    float64    `yaml:"power"`
	Bounds   *BoundsDef `yaml:"bounds,omitempty"`
}

func (p ProposalDef) ToModel(g model.BatteryGroup) model.Proposal {
	prop := model.Proposal{SourceID: p.Source, Group: g, Priority: p.Priority, Power: p.Power}
	if p.Bounds != nil {
		b := p.Bounds.ToModel()
		prop.Bounds = &b
	}
	return prop
}

// ReportDef is the inclusion interval expected for a priority.
type ReportDef struct {
	Priority int     `yaml:"priority"`
	Lower    float64 `yaml:"lower"`
	Upper    float64 `yaml:"upper"`
}

// Step optionally updates the bounds, then optionally submits a proposal and
// checks the outcome.
type Step struct {
	Bounds  *MetricsDef  `yaml:"bounds,omitempty"`
	Propose *ProposalDef `yaml:"propose,omitempty"`
	Target  *float64     `yaml:"target,omitempty"`
	Reports []ReportDef  `yaml:"reports,omitempty"`
}

type Scenario struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Algorithm   string     `yaml:"algorithm,omitempty"`
	Group       []uint64   `yaml:"group"`
	Bounds      MetricsDef `yaml:"bounds"`
	Steps       []Step     `yaml:"steps"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if len(sc.Group) == 0 {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, model.ErrEmptyGroup)
	}
	return &sc, nil
}
