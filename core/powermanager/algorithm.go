package powermanager

import (
	"errors"
	"fmt"

	"github.com/kilianp07/powermanager/core/factory"
	"github.com/kilianp07/powermanager/core/model"
)

// AlgorithmMatryoshka is the name of the default algorithm.
const AlgorithmMatryoshka = "matryoshka"

// Algorithm resolves the proposals of a battery group into one target power.
// Both methods are called synchronously and may be called from different
// goroutines, so implementations must be safe for concurrent use.
type Algorithm interface {
	// HandleProposal records the proposal and returns the power to command
	// for its group given the group's current bounds.
	HandleProposal(p model.Proposal, bounds model.PowerMetrics) float64
	// GetStatus returns the report for subscribers of the group at priority.
	GetStatus(group model.BatteryGroup, priority int, bounds model.PowerMetrics) model.Report
}

var algorithms = factory.NewRegistry[Algorithm]()

func init() {
	algorithms.MustRegister(AlgorithmMatryoshka, func(map[string]any) (Algorithm, error) {
		return NewMatryoshka(), nil
	})
}

// RegisterAlgorithm makes an algorithm selectable by name.
func RegisterAlgorithm(name string, f factory.Factory[Algorithm]) error {
	return algorithms.Register(name, f)
}

// Algorithms returns the selectable algorithm names.
func Algorithms() []string { return algorithms.Names() }

// NewAlgorithm builds the algorithm registered under name. An empty name
// selects matryoshka.
func NewAlgorithm(name string, conf map[string]any) (Algorithm, error) {
	if name == "" {
		name = AlgorithmMatryoshka
	}
	a, err := algorithms.Create(factory.ModuleConfig{Type: name, Conf: conf})
	if errors.Is(err, factory.ErrUnknownType) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	if err != nil {
		return nil, fmt.Errorf("algorithm %s: %w", name, err)
	}
	return a, nil
}
