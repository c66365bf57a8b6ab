package modelbased

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/samuelfneumann/modelrl/environment"
	"gonum.org/v1/gonum/mat"
)

// GobEncode implements the gob.GobEncoder interface. Every learned
// table is stored bit for bit, so a decoded agent continues value
// iteration from exactly the same warm start.
func (m *ModelBased) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)

	err := enc.Encode(m.actions)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode actions: %v", err)
	}

	err = enc.Encode(m.states)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode states: %v", err)
	}

	config := Config{
		DiscountRate:    m.discountRate,
		AcceptableError: m.acceptableError,
		MaxSweeps:       m.maxSweeps,
	}
	err = enc.Encode(config)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode config: %v", err)
	}

	err = enc.Encode(m.sweeps)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode sweeps: %v", err)
	}

	// Matrices are stored through their encoding.BinaryMarshaler
	for a := range m.actions {
		err = enc.Encode(m.model.counts[a])
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode counts of "+
				"action %v: %v", m.actions[a], err)
		}

		err = enc.Encode(m.model.probabilities[a])
		if err != nil {
			return nil, fmt.Errorf("gobencode: could not encode "+
				"probabilities of action %v: %v", m.actions[a], err)
		}
	}

	err = enc.Encode(m.model.rewards)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode rewards: %v", err)
	}

	err = enc.Encode(m.model.rewardCounts)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode reward "+
			"counts: %v", err)
	}

	err = enc.Encode(m.values)
	if err != nil {
		return nil, fmt.Errorf("gobencode: could not encode values: %v", err)
	}

	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface
func (m *ModelBased) GobDecode(in []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(in))

	var actions []environment.Action
	err := dec.Decode(&actions)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode actions: %v", err)
	}

	var states []environment.State
	err = dec.Decode(&states)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode states: %v", err)
	}

	var config Config
	err = dec.Decode(&config)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode config: %v", err)
	}

	var sweeps int
	err = dec.Decode(&sweeps)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode sweeps: %v", err)
	}

	// Construct a fresh agent to validate the stored settings and
	// allocate scratch space, then overwrite its tables
	newAgent, err := New(actions, states, config)
	if err != nil {
		return fmt.Errorf("gobdecode: could not construct agent: %w", err)
	}
	if len(newAgent.actions) != len(actions) ||
		len(newAgent.states) != len(states) {
		return fmt.Errorf("gobdecode: stored alphabets contain repeats")
	}
	newAgent.sweeps = sweeps
	n := len(states)

	for a := range actions {
		counts := &mat.Dense{}
		err = dec.Decode(counts)
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode counts of "+
				"action %v: %v", actions[a], err)
		}
		if err := checkDims(counts, n, n); err != nil {
			return err
		}
		newAgent.model.counts[a] = counts

		probabilities := &mat.Dense{}
		err = dec.Decode(probabilities)
		if err != nil {
			return fmt.Errorf("gobdecode: could not decode probabilities "+
				"of action %v: %v", actions[a], err)
		}
		if err := checkDims(probabilities, n, n); err != nil {
			return err
		}
		newAgent.model.probabilities[a] = probabilities
	}

	rewards := &mat.VecDense{}
	err = dec.Decode(rewards)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode rewards: %v", err)
	}
	if err := checkDims(rewards, n, 1); err != nil {
		return err
	}
	newAgent.model.rewards = rewards

	var rewardCounts []int
	err = dec.Decode(&rewardCounts)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode reward counts: %v",
			err)
	}
	if len(rewardCounts) != n {
		return fmt.Errorf("gobdecode: got %d reward counts, want %d",
			len(rewardCounts), n)
	}
	newAgent.model.rewardCounts = rewardCounts

	values := &mat.VecDense{}
	err = dec.Decode(values)
	if err != nil {
		return fmt.Errorf("gobdecode: could not decode values: %v", err)
	}
	if err := checkDims(values, n, 1); err != nil {
		return err
	}
	newAgent.values = values

	*m = *newAgent
	return nil
}

func checkDims(m mat.Matrix, r, c int) error {
	if rows, cols := m.Dims(); rows != r || cols != c {
		return fmt.Errorf("gobdecode: got %dx%d table, want %dx%d", rows,
			cols, r, c)
	}
	return nil
}
