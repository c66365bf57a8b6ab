package modelbased

import (
	"github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/utils/floatutils"
)

// actionValues returns, for each action a in alphabet order, the
// expected next state value Σ_s' P(s' | s, a) values(s') from state s
func (m *ModelBased) actionValues(s int) []float64 {
	values := m.values.RawVector().Data
	q := make([]float64, len(m.actions))
	for a := range m.actions {
		q[a] = floatutils.WeightedSum(m.model.probabilities[a].RawRowView(s),
			values)
	}
	return q
}

// greedy returns the action maximizing the expected next state value
// from state s. Ties go to the action earliest in the alphabet.
func (m *ModelBased) greedy(s int) environment.Action {
	_, a := floatutils.Argmax(m.actionValues(s))
	return m.actions[a]
}

// ActionValues returns the expected next state value of each action in
// state s, in the order of Actions()
func (m *ModelBased) ActionValues(s environment.State) ([]float64, error) {
	i, err := m.stateIndex("actionValues", s)
	if err != nil {
		return nil, err
	}
	return m.actionValues(i), nil
}

// GreedyActions returns every action which is greedy in state s, in the
// order of Actions(). SelectAction returns the first of them.
func (m *ModelBased) GreedyActions(s environment.State) ([]environment.Action,
	error) {
	i, err := m.stateIndex("greedyActions", s)
	if err != nil {
		return nil, err
	}

	_, indices := floatutils.MaxSlice(m.actionValues(i))
	actions := make([]environment.Action, len(indices))
	for j, a := range indices {
		actions[j] = m.actions[a]
	}
	return actions, nil
}
