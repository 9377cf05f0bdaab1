package scenarios

import (
	"fmt"

	"github.com/kilianp07/powermanager/core/model"
	"github.com/kilianp07/powermanager/core/powermanager"
)

// Failure describes one expectation of a scenario that did not hold.
type Failure struct {
	Step int
	Msg  string
}

func (f Failure) String() string { return fmt.Sprintf("step %d: %s", f.Step, f.Msg) }

// Run plays sc against a fresh instance of its algorithm and returns the
// expectations that failed.
func Run(sc *Scenario) ([]Failure, error) {
	alg, err := powermanager.NewAlgorithm(sc.Algorithm, nil)
	if err != nil {
		return nil, err
	}
	g, err := model.NewBatteryGroup(sc.Group...)
	if err != nil {
		return nil, err
	}

	bounds := sc.Bounds.ToModel()
	var failures []Failure
	for i, st := range sc.Steps {
		if st.Bounds != nil {
			bounds = st.Bounds.ToModel()
		}
		if st.Propose != nil {
			p := st.Propose.ToModel(g)
			if err := p.Validate(); err != nil {
				return nil, fmt.Errorf("step %d: %w", i, err)
			}
			target := alg.HandleProposal(p, bounds)
			if st.Target != nil && target != *st.Target {
				failures = append(failures, Failure{i, fmt.Sprintf("target %.1f, want %.1f", target, *st.Target)})
			}
		}
		for _, want := range st.Reports {
			r := alg.GetStatus(g, want.Priority, bounds)
			if r.Inclusion.Lower != want.Lower || r.Inclusion.Upper != want.Upper {
				failures = append(failures, Failure{i, fmt.Sprintf("priority %d bounds [%.1f, %.1f], want [%.1f, %.1f]",
					want.Priority, r.Inclusion.Lower, r.Inclusion.Upper, want.Lower, want.Upper)})
			}
		}
	}
	return failures, nil
}
