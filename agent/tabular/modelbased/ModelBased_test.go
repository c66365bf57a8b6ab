package modelbased

import (
	"bytes"
	"encoding/gob"
	"math"
	"reflect"
	"testing"

	"github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/environment/gridworld"
	"github.com/samuelfneumann/modelrl/rlerr"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/stat"
)

const tolerance = 1e-12

func newAgent(t *testing.T, actions []environment.Action,
	states []environment.State, c Config) *ModelBased {
	t.Helper()
	m, err := New(actions, states, c)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return m
}

// checkNormalized ensures that every (state, action) row of transition
// probabilities sums to 1
func checkNormalized(t *testing.T, m *ModelBased) {
	t.Helper()
	for a := range m.actions {
		for s := range m.states {
			row := m.model.probabilities[a].RawRowView(s)
			if sum := floats.Sum(row); !scalar.EqualWithinAbs(sum, 1,
				tolerance) {
				t.Fatalf("row (%v, %v) sums to %v", m.states[s], m.actions[a],
					sum)
			}
		}
	}
}

func TestNewValidation(t *testing.T) {
	valid := Config{DiscountRate: 0.5, AcceptableError: 0.05}
	actions := []environment.Action{"a"}
	states := []environment.State{"x"}

	tests := []struct {
		name    string
		actions []environment.Action
		states  []environment.State
		config  Config
	}{
		{"NoStates", actions, nil, valid},
		{"EmptyStates", actions, []environment.State{}, valid},
		{"NoActions", nil, states, valid},
		{"DiscountAboveOne", actions, states,
			Config{DiscountRate: 1.5, AcceptableError: 0.05}},
		{"NegativeDiscount", actions, states,
			Config{DiscountRate: -0.1, AcceptableError: 0.05}},
		{"NaNDiscount", actions, states,
			Config{DiscountRate: math.NaN(), AcceptableError: 0.05}},
		{"ZeroAcceptableError", actions, states,
			Config{DiscountRate: 0.5}},
		{"NegativeAcceptableError", actions, states,
			Config{DiscountRate: 0.5, AcceptableError: -1}},
		{"NegativeMaxSweeps", actions, states,
			Config{DiscountRate: 0.5, AcceptableError: 0.05, MaxSweeps: -1}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(test.actions, test.states, test.config)
			if !rlerr.IsInvalidArgument(err) {
				t.Errorf("new: got %v, want invalid argument", err)
			}
		})
	}

	for _, discount := range []float64{0, 1} {
		c := Config{DiscountRate: discount, AcceptableError: 0.05}
		if _, err := New(actions, states, c); err != nil {
			t.Errorf("new: discount %v should be valid: %v", discount, err)
		}
		if err := c.Validate(); err != nil {
			t.Errorf("validate: discount %v should be valid: %v", discount,
				err)
		}
	}
}

func TestNewRemovesRepeats(t *testing.T) {
	m := newAgent(t,
		[]environment.Action{"E", "W", "E", "S", "W"},
		[]environment.State{"b", "a", "b", "c"},
		Config{DiscountRate: 0.5, AcceptableError: 0.05},
	)

	if got, want := m.Actions(), []environment.Action{"E", "W", "S"}; !reflect.DeepEqual(got, want) {
		t.Errorf("actions: got %v, want %v", got, want)
	}
	if got, want := m.States(), []environment.State{"b", "a", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("states: got %v, want %v", got, want)
	}
	if m.MaxSweeps() != DefaultMaxSweeps {
		t.Errorf("maxSweeps: got %d, want %d", m.MaxSweeps(),
			DefaultMaxSweeps)
	}
}

func TestInitialTables(t *testing.T) {
	states := []environment.State{"x", "y", "z", "w"}
	m := newAgent(t, []environment.Action{"a", "b"}, states,
		Config{DiscountRate: 0.9, AcceptableError: 0.01})

	for _, s := range states {
		for _, a := range m.Actions() {
			for _, next := range states {
				stat, err := m.Transition(s, a, next)
				if err != nil {
					t.Fatal(err)
				}
				if stat.Probability != 0.25 || stat.Count != 0 {
					t.Errorf("transition(%v, %v, %v): got %+v", s, a, next,
						stat)
				}
			}
		}

		r, err := m.Reward(s)
		if err != nil {
			t.Fatal(err)
		}
		if r != (RewardStat{}) {
			t.Errorf("reward(%v): got %+v, want zero", s, r)
		}

		v, err := m.Value(s)
		if err != nil {
			t.Fatal(err)
		}
		if v != 0 {
			t.Errorf("value(%v): got %v, want 0", s, v)
		}
	}
	checkNormalized(t, m)
}

func TestProbabilityNormalization(t *testing.T) {
	states := gridworld.States(2)
	actions := []environment.Action{"E", "W", "S", "N"}
	m := newAgent(t, actions, states,
		Config{DiscountRate: 0.5, AcceptableError: 0.05})

	rng := rand.New(rand.NewSource(1))
	prev := states[0]
	for i := 0; i < 300; i++ {
		a := actions[rng.Intn(len(actions))]
		next := states[rng.Intn(len(states))]

		if _, err := m.SelectNextAction(prev, a, next,
			float64(rng.Intn(3))); err != nil {
			t.Fatal(err)
		}
		checkNormalized(t, m)
		prev = next
	}
}

func TestTransitionEstimate(t *testing.T) {
	states := []environment.State{"x", "y", "z"}
	m := newAgent(t, []environment.Action{"a", "b"}, states,
		Config{DiscountRate: 0.5, AcceptableError: 0.05})

	for _, next := range []environment.State{"y", "y", "z", "y"} {
		if err := m.Observe("x", "a", next, 0); err != nil {
			t.Fatal(err)
		}
	}

	want := map[environment.State]TransitionStat{
		"x": {0, 0},
		"y": {0.75, 3},
		"z": {0.25, 1},
	}
	for next, w := range want {
		got, err := m.Transition("x", "a", next)
		if err != nil {
			t.Fatal(err)
		}
		if got != w {
			t.Errorf("transition(x, a, %v): got %+v, want %+v", next, got, w)
		}
	}

	// Rows not touched by an observation keep their uniform prior
	for _, row := range []struct {
		s environment.State
		a environment.Action
	}{{"x", "b"}, {"y", "a"}, {"z", "b"}} {
		for _, next := range states {
			got, _ := m.Transition(row.s, row.a, next)
			if !scalar.EqualWithinAbs(got.Probability, 1.0/3, tolerance) ||
				got.Count != 0 {
				t.Errorf("transition(%v, %v, %v): got %+v, want uniform",
					row.s, row.a, next, got)
			}
		}
	}
}

func TestRewardRunningMean(t *testing.T) {
	m := newAgent(t, []environment.Action{"a"},
		[]environment.State{"x", "y"},
		Config{DiscountRate: 0.5, AcceptableError: 0.05})

	rewards := []float64{1, 2, 3, 6, 0.5, 3}
	for i, r := range rewards {
		prev := environment.State("x")
		if i%2 == 0 {
			prev = "y"
		}
		if err := m.Observe(prev, "a", "y", r); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Reward("y")
	if err != nil {
		t.Fatal(err)
	}
	if got.Count != len(rewards) {
		t.Errorf("reward count: got %d, want %d", got.Count, len(rewards))
	}
	if want := stat.Mean(rewards, nil); !scalar.EqualWithinAbs(got.Value,
		want, tolerance) {
		t.Errorf("reward value: got %v, want %v", got.Value, want)
	}

	// Rewards are attributed to the entered state only
	if x, _ := m.Reward("x"); x != (RewardStat{}) {
		t.Errorf("reward(x): got %+v, want zero", x)
	}
}

func TestValueIterationConverges(t *testing.T) {
	states := gridworld.States(2)
	actions := []environment.Action{"E", "W", "S", "N"}
	c := Config{DiscountRate: 0.9, AcceptableError: 0.01}
	m := newAgent(t, actions, states, c)

	rng := rand.New(rand.NewSource(7))
	prev := states[0]
	for i := 0; i < 100; i++ {
		next := states[rng.Intn(4)]
		if _, err := m.SelectNextAction(prev, actions[rng.Intn(4)], next,
			float64(1+rng.Intn(2))); err != nil {
			t.Fatal(err)
		}

		if r := m.Residual(); r > c.AcceptableError {
			t.Fatalf("tick %d: residual %v exceeds %v", i, r,
				c.AcceptableError)
		}
		if m.Sweeps() < 1 {
			t.Fatalf("tick %d: no sweeps recorded", i)
		}
		prev = next
	}
}

func TestValueIterationFixedPoint(t *testing.T) {
	m := newAgent(t, []environment.Action{"a1", "a2"},
		[]environment.State{"x", "y"},
		Config{DiscountRate: 0.5, AcceptableError: 1e-9})

	action, err := m.SelectNextAction("x", "a2", "y", 1)
	if err != nil {
		t.Fatal(err)
	}

	// V(y) = 1 + 0.5 (0.5 V(x) + 0.5 V(y)) and V(x) = 0.5 V(y)
	vx, _ := m.Value("x")
	vy, _ := m.Value("y")
	if !scalar.EqualWithinAbs(vx, 0.8, 1e-6) ||
		!scalar.EqualWithinAbs(vy, 1.6, 1e-6) {
		t.Errorf("values: got (%v, %v), want (0.8, 1.6)", vx, vy)
	}

	// Both actions are uniform from y, so they tie
	if action != "a1" {
		t.Errorf("selectNextAction: got %v, want a1", action)
	}

	// From x, a2 leads to y with certainty
	if a, _ := m.SelectAction("x"); a != "a2" {
		t.Errorf("selectAction(x): got %v, want a2", a)
	}
}

func TestWarmStart(t *testing.T) {
	m := newAgent(t, []environment.Action{"a"}, []environment.State{"x"},
		Config{DiscountRate: 0.5, AcceptableError: 1e-6})

	if err := m.Observe("x", "a", "x", 1); err != nil {
		t.Fatal(err)
	}
	cold := m.Sweeps()

	// The same reward again leaves the fixed point at 2, so a warm
	// started solve needs a single sweep
	if err := m.Observe("x", "a", "x", 1); err != nil {
		t.Fatal(err)
	}
	if m.Sweeps() != 1 {
		t.Errorf("sweeps: got %d after warm start, want 1 (cold start took "+
			"%d)", m.Sweeps(), cold)
	}
	if v, _ := m.Value("x"); !scalar.EqualWithinAbs(v, 2, 1e-5) {
		t.Errorf("value: got %v, want 2", v)
	}
}

func TestTieBreak(t *testing.T) {
	actions := []environment.Action{"a1", "a2", "a3"}
	states := []environment.State{"x", "y"}
	m := newAgent(t, actions, states,
		Config{DiscountRate: 0.5, AcceptableError: 0.05})

	// A fresh agent ties every action
	if a, err := m.SelectAction("x"); err != nil || a != "a1" {
		t.Errorf("selectAction: got (%v, %v), want a1", a, err)
	}

	m.values.SetVec(0, 1)
	m.values.SetVec(1, 0)

	// a1 and a2 keep the uniform prior from x, a3 always leads to y
	p := m.model.probabilities[2].RawRowView(0)
	p[0], p[1] = 0, 1
	if a, _ := m.SelectAction("x"); a != "a1" {
		t.Errorf("selectAction: got %v, want a1", a)
	}

	// a2 and a3 tie above a1
	for _, i := range []int{1, 2} {
		p := m.model.probabilities[i].RawRowView(0)
		p[0], p[1] = 1, 0
	}
	if a, _ := m.SelectAction("x"); a != "a2" {
		t.Errorf("selectAction: got %v, want a2", a)
	}

	q, err := m.ActionValues("x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{0.5, 1, 1}; !floats.Equal(q, want) {
		t.Errorf("actionValues: got %v, want %v", q, want)
	}

	greedy, err := m.GreedyActions("x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []environment.Action{"a2", "a3"}; !reflect.DeepEqual(greedy,
		want) {
		t.Errorf("greedyActions: got %v, want %v", greedy, want)
	}
	if _, err := m.GreedyActions("z"); !rlerr.IsKeyNotFound(err) {
		t.Errorf("greedyActions: got %v, want key not found", err)
	}
}

func TestTieBreakSelectNextAction(t *testing.T) {
	actions := []environment.Action{"a1", "a2", "a3"}
	states := []environment.State{"x", "y"}
	m := newAgent(t, actions, states,
		Config{DiscountRate: 0.5, AcceptableError: 0.05})

	// a1 keeps x in x while a2 and a3 both lead to the rewarding y
	transitions := []struct {
		prevState environment.State
		action    environment.Action
		curState  environment.State
		reward    float64
		want      environment.Action
	}{
		{"x", "a1", "x", 0, "a1"},
		{"x", "a2", "y", 1, "a1"},
		{"x", "a3", "y", 1, "a1"}, // every action from y is still uniform
		{"y", "a1", "x", 0, "a2"}, // a2 and a3 tie from x
	}

	for i, tr := range transitions {
		got, err := m.SelectNextAction(tr.prevState, tr.action, tr.curState,
			tr.reward)
		if err != nil {
			t.Fatalf("selectNextAction %d: %v", i, err)
		}
		if got != tr.want {
			t.Errorf("selectNextAction %d: got %v, want %v", i, got, tr.want)
		}
	}

	q, err := m.ActionValues("x")
	if err != nil {
		t.Fatal(err)
	}
	if q[1] != q[2] || q[0] >= q[1] {
		t.Errorf("actionValues: got %v, want a2 = a3 > a1", q)
	}
}

func TestUnknownKeys(t *testing.T) {
	m := newAgent(t, []environment.Action{"a"},
		[]environment.State{"x", "y"},
		Config{DiscountRate: 0.5, AcceptableError: 0.05})

	tests := []struct {
		name       string
		prev       environment.State
		action     environment.Action
		cur        environment.State
		wantKeyErr bool
	}{
		{"PrevState", "q", "a", "x", true},
		{"Action", "x", "b", "x", true},
		{"CurState", "x", "a", "q", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := m.SelectNextAction(test.prev, test.action, test.cur, 1)
			if !rlerr.IsKeyNotFound(err) {
				t.Errorf("selectNextAction: got %v, want key not found", err)
			}
		})
	}

	// Nothing is committed by failed ticks
	for _, s := range m.States() {
		for _, next := range m.States() {
			if stat, _ := m.Transition(s, "a", next); stat.Count != 0 {
				t.Errorf("transition(%v, a, %v) was updated", s, next)
			}
		}
		if r, _ := m.Reward(s); r.Count != 0 {
			t.Errorf("reward(%v) was updated", s)
		}
	}
	if m.Sweeps() != 0 {
		t.Errorf("sweeps: got %d, want 0", m.Sweeps())
	}

	if _, err := m.Value("q"); !rlerr.IsKeyNotFound(err) {
		t.Errorf("value: got %v, want key not found", err)
	}
	if _, err := m.Reward("q"); !rlerr.IsKeyNotFound(err) {
		t.Errorf("reward: got %v, want key not found", err)
	}
	if _, err := m.Transition("x", "q", "x"); !rlerr.IsKeyNotFound(err) {
		t.Errorf("transition: got %v, want key not found", err)
	}
	if _, err := m.SelectAction("q"); !rlerr.IsKeyNotFound(err) {
		t.Errorf("selectAction: got %v, want key not found", err)
	}
	if err := m.Observe("x", "a", "x", math.NaN()); !rlerr.IsInvalidArgument(err) {
		t.Errorf("observe: got %v, want invalid argument", err)
	}
}

func TestConvergenceFailure(t *testing.T) {
	m := newAgent(t, []environment.Action{"a"}, []environment.State{"x"},
		Config{DiscountRate: 1, AcceptableError: 1e-9, MaxSweeps: 5})

	// With no discount the value of x grows by the reward every sweep
	_, err := m.SelectNextAction("x", "a", "x", 1)
	if !rlerr.IsConvergenceFailure(err) {
		t.Fatalf("selectNextAction: got %v, want convergence failure", err)
	}

	if m.Sweeps() != 5 {
		t.Errorf("sweeps: got %d, want 5", m.Sweeps())
	}
	if v, _ := m.Value("x"); v != 5 {
		t.Errorf("value: got %v, want the partial value 5", v)
	}
	if stat, _ := m.Transition("x", "a", "x"); stat.Count != 1 {
		t.Errorf("transition count: got %d, want 1", stat.Count)
	}

	// The next solve continues from the partial values
	err = m.Observe("x", "a", "x", 1)
	if !rlerr.IsConvergenceFailure(err) {
		t.Fatalf("observe: got %v, want convergence failure", err)
	}
	if v, _ := m.Value("x"); v != 10 {
		t.Errorf("value: got %v, want 10", v)
	}
}

func TestGob(t *testing.T) {
	states := gridworld.States(2)
	actions := []environment.Action{"E", "W", "S", "N"}
	m := newAgent(t, actions, states,
		Config{DiscountRate: 0.5, AcceptableError: 0.05, MaxSweeps: 500})

	rng := rand.New(rand.NewSource(3))
	tick := func(agents ...*ModelBased) []environment.Action {
		prev, next := states[rng.Intn(16)], states[rng.Intn(16)]
		a, r := actions[rng.Intn(4)], float64(1+rng.Intn(2))

		chosen := make([]environment.Action, len(agents))
		for i, agent := range agents {
			var err error
			chosen[i], err = agent.SelectNextAction(prev, a, next, r)
			if err != nil {
				t.Fatal(err)
			}
		}
		return chosen
	}

	for i := 0; i < 50; i++ {
		tick(m)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		t.Fatal(err)
	}
	var loaded ModelBased
	if err := gob.NewDecoder(&buf).Decode(&loaded); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(loaded.Actions(), m.Actions()) ||
		!reflect.DeepEqual(loaded.States(), m.States()) {
		t.Fatal("alphabets differ after decoding")
	}
	if loaded.DiscountRate() != m.DiscountRate() ||
		loaded.AcceptableError() != m.AcceptableError() ||
		loaded.MaxSweeps() != m.MaxSweeps() ||
		loaded.Sweeps() != m.Sweeps() {
		t.Errorf("settings differ after decoding: got %v, want %v", &loaded,
			m)
	}
	if !reflect.DeepEqual(loaded.Values(), m.Values()) {
		t.Error("values differ after decoding")
	}
	for _, s := range states {
		r1, _ := m.Reward(s)
		r2, _ := loaded.Reward(s)
		if r1 != r2 {
			t.Errorf("reward(%v): got %+v, want %+v", s, r2, r1)
		}
		for _, a := range actions {
			for _, next := range states {
				t1, _ := m.Transition(s, a, next)
				t2, _ := loaded.Transition(s, a, next)
				if t1 != t2 {
					t.Errorf("transition(%v, %v, %v): got %+v, want %+v", s,
						a, next, t2, t1)
				}
			}
		}
	}

	// Both agents continue identically
	for i := 0; i < 20; i++ {
		chosen := tick(m, &loaded)
		if chosen[0] != chosen[1] {
			t.Fatalf("tick %d: actions differ, %v != %v", i, chosen[0],
				chosen[1])
		}
	}
	if !reflect.DeepEqual(loaded.Values(), m.Values()) {
		t.Error("values differ after continuing")
	}
}

func TestCreateAgent(t *testing.T) {
	env, _, err := gridworld.New(gridworld.ParseGrid([]string{"OO", "OX"}),
		2, 0, 0, gridworld.Constant(0.5))
	if err != nil {
		t.Fatal(err)
	}

	c := Config{DiscountRate: 0.5, AcceptableError: 0.05}
	a, err := c.CreateAgent(env)
	if err != nil {
		t.Fatal(err)
	}
	if !c.ValidAgent(a) {
		t.Fatal("validAgent: created agent is not valid")
	}

	m := a.(*ModelBased)
	if len(m.States()) != 16 || len(m.Actions()) != 4 {
		t.Errorf("createAgent: got %d states and %d actions",
			len(m.States()), len(m.Actions()))
	}

	if _, err := (Config{DiscountRate: 2}).CreateAgent(env); !rlerr.IsInvalidArgument(err) {
		t.Errorf("createAgent: got %v, want invalid argument", err)
	}
}
