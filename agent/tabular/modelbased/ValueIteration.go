package modelbased

import (
	"fmt"
	"math"

	"github.com/samuelfneumann/modelrl/rlerr"
	"github.com/samuelfneumann/modelrl/utils/floatutils"
	"gonum.org/v1/gonum/mat"
)

// backup performs one synchronous Bellman optimality backup of values
// under the learned model, storing the result in dst:
//
//	dst(s) = reward(s) + γ max_a Σ_s' P(s' | s, a) values(s')
//
// dst and values must not be the same vector.
func (m *ModelBased) backup(dst, values *mat.VecDense) {
	best := m.bestBuffer
	for i := range best {
		best[i] = math.Inf(-1)
	}

	expected := m.expectedBuffer
	for a := range m.actions {
		expected.MulVec(m.model.probabilities[a], values)
		for i := range best {
			if v := expected.AtVec(i); v > best[i] {
				best[i] = v
			}
		}
	}

	for i := range best {
		dst.SetVec(i, m.model.rewards.AtVec(i)+m.discountRate*best[i])
	}
}

// solve runs value iteration from the current values until a sweep
// changes no value by more than the acceptable error. Every sweep reads
// only the values of the previous sweep.
//
// If the sweep cap is reached first, the values of the last sweep are
// kept and an rlerr.ErrConvergenceFailure is returned.
func (m *ModelBased) solve() error {
	next := m.nextBuffer
	var maxError float64

	for sweep := 1; sweep <= m.maxSweeps; sweep++ {
		m.backup(next, m.values)
		maxError = floatutils.MaxAbsDiff(next.RawVector().Data,
			m.values.RawVector().Data)
		m.values.CopyVec(next)
		m.sweeps = sweep

		if maxError <= m.acceptableError {
			return nil
		}
	}

	return rlerr.ConvergenceFailure("solve",
		fmt.Errorf("max error %v after %d sweeps", maxError, m.maxSweeps),
		map[string]interface{}{
			"acceptableError": m.acceptableError,
			"discountRate":    m.discountRate,
			"maxSweeps":       m.maxSweeps,
		})
}

// Residual returns the largest change that one more sweep of value
// iteration would make to the current values
func (m *ModelBased) Residual() float64 {
	next := mat.NewVecDense(len(m.states), nil)
	m.backup(next, m.values)
	return floatutils.MaxAbsDiff(next.RawVector().Data,
		m.values.RawVector().Data)
}
