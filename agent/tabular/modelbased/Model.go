package modelbased

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TransitionStat is the learned statistic of a single (state, action,
// next state) transition
type TransitionStat struct {
	Probability float64
	Count       int
}

// RewardStat is the learned statistic of rewards received on entering
// a state
type RewardStat struct {
	Value float64
	Count int
}

// model is a tabular, maximum likelihood model of an environment over
// fixed state and action alphabets. States and actions are referred to
// by their index in their alphabet.
//
// For action a, counts[a] and probabilities[a] are |S| x |S| matrices
// whose row s holds the statistics of transitions from s under a. Each
// row of probabilities[a] sums to 1.
type model struct {
	counts        []*mat.Dense
	probabilities []*mat.Dense

	rewards      *mat.VecDense
	rewardCounts []int
}

// newModel returns a model with uniform transition probabilities and
// zero rewards
func newModel(numActions, numStates int) *model {
	counts := make([]*mat.Dense, numActions)
	probabilities := make([]*mat.Dense, numActions)

	uniform := make([]float64, numStates*numStates)
	for i := range uniform {
		uniform[i] = 1.0 / float64(numStates)
	}

	for a := 0; a < numActions; a++ {
		counts[a] = mat.NewDense(numStates, numStates, nil)
		probabilities[a] = mat.NewDense(numStates, numStates,
			append([]float64(nil), uniform...))
	}

	return &model{
		counts:        counts,
		probabilities: probabilities,
		rewards:       mat.NewVecDense(numStates, nil),
		rewardCounts:  make([]int, numStates),
	}
}

// observeTransition records a transition from state s to next under
// action a and re-estimates the transition probabilities of row (s, a).
// No other row changes.
func (m *model) observeTransition(s, a, next int) {
	counts := m.counts[a]
	counts.Set(s, next, counts.At(s, next)+1)

	row := counts.RawRowView(s)
	total := floats.Sum(row)

	probs := m.probabilities[a].RawRowView(s)
	for i, c := range row {
		probs[i] = c / total
	}
}

// observeReward folds reward r into the running mean reward of entering
// state s
func (m *model) observeReward(s int, r float64) {
	m.rewardCounts[s]++
	n := float64(m.rewardCounts[s])
	m.rewards.SetVec(s, (m.rewards.AtVec(s)*(n-1)+r)/n)
}

func (m *model) transition(s, a, next int) TransitionStat {
	return TransitionStat{
		Probability: m.probabilities[a].At(s, next),
		Count:       int(m.counts[a].At(s, next)),
	}
}

func (m *model) reward(s int) RewardStat {
	return RewardStat{Value: m.rewards.AtVec(s), Count: m.rewardCounts[s]}
}
