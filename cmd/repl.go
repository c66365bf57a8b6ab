package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/samuelfneumann/modelrl/agent/tabular/modelbased"
	"github.com/samuelfneumann/modelrl/config"
	"github.com/samuelfneumann/modelrl/environment"
	"github.com/samuelfneumann/modelrl/environment/gridworld"
	"github.com/samuelfneumann/modelrl/experiment"
)

const bannerWidth = 36

var (
	errInvalidCommand   = errors.New("invalid command")
	errInvalidArguments = errors.New("invalid arguments")
)

// agentSummary is what `show agent` prints of a ModelBased agent
type agentSummary struct {
	Actions         []environment.Action
	States          int
	DiscountRate    float64
	AcceptableError float64
	MaxSweeps       int
	Sweeps          int
	Values          map[environment.State]float64
}

// repl reads commands line by line and runs them against a session
type repl struct {
	session *experiment.Online
	cfg     config.Config
	colours bool
	out     io.Writer
	logger  logrus.FieldLogger
}

// Run prints the command summary and the starting tuple, then runs
// commands from in until exit or the end of in
func (r *repl) Run(in io.Reader) error {
	fmt.Fprintln(r.out, "Commands:")
	fmt.Fprintln(r.out, "  - next [-m|--map]")
	fmt.Fprintln(r.out, "  - show agent|map|pos|position|values")
	fmt.Fprintln(r.out, "  - save <filepath>")
	fmt.Fprintln(r.out, "  - load <filepath>")
	fmt.Fprintln(r.out, "  - exit")
	fmt.Fprintln(r.out)
	r.printTuple(r.session.PrevAction(), r.session.CurState(),
		r.session.CurReward())

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, ">> ")
		if !scanner.Scan() {
			fmt.Fprintln(r.out)
			return scanner.Err()
		}

		exit, err := r.Execute(scanner.Text())
		if err != nil {
			fmt.Fprintf(r.out, "ERROR: %v\n", err)
		}
		if exit {
			return nil
		}
	}
}

// Execute runs a single command line, returning whether the REPL should
// exit. Errors are reported to the user and do not end the REPL.
func (r *repl) Execute(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	command, args := fields[0], fields[1:]
	switch command {
	case "next":
		return false, r.next(args)
	case "show":
		return false, r.show(args)
	case "save":
		return false, r.save(args)
	case "load":
		return false, r.load(args)
	case "exit":
		return true, nil
	default:
		return false, errInvalidCommand
	}
}

func (r *repl) next(args []string) error {
	flags := pflag.NewFlagSet("next", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	showMap := flags.BoolP("map", "m", false, "show the map after the tick")
	if err := flags.Parse(args); err != nil || flags.NArg() > 0 {
		return errInvalidArguments
	}

	tick, err := r.session.Tick()
	if err != nil {
		return err
	}
	r.printTuple(tick.Action, tick.State, tick.Reward)

	if *showMap {
		r.showMap()
	}
	return nil
}

func (r *repl) show(args []string) error {
	if len(args) != 1 {
		return errInvalidArguments
	}

	switch args[0] {
	case "agent":
		return r.showAgent()
	case "map":
		r.showMap()
	case "pos", "position":
		x, y := r.grid().Position()
		r.banner("Position")
		fmt.Fprintln(r.out, "pos_x:", x)
		fmt.Fprintln(r.out, "pos_y:", y)
		r.banner("")
	case "values":
		return r.showValues()
	default:
		return errInvalidArguments
	}
	return nil
}

func (r *repl) showAgent() error {
	m, ok := r.session.Agent().(*modelbased.ModelBased)
	if !ok {
		return fmt.Errorf("cannot show agent %T", r.session.Agent())
	}

	values := make(map[environment.State]float64, len(m.States()))
	for i, v := range m.Values() {
		values[m.States()[i]] = v
	}

	r.banner("Agent")
	fmt.Fprintln(r.out, litter.Sdump(agentSummary{
		Actions:         m.Actions(),
		States:          len(m.States()),
		DiscountRate:    m.DiscountRate(),
		AcceptableError: m.AcceptableError(),
		MaxSweeps:       m.MaxSweeps(),
		Sweeps:          m.Sweeps(),
		Values:          values,
	}))
	r.banner("")
	return nil
}

func (r *repl) showValues() error {
	m, ok := r.session.Agent().(*modelbased.ModelBased)
	if !ok {
		return fmt.Errorf("cannot show values of agent %T", r.session.Agent())
	}

	r.banner("Values")
	values := m.Values()
	for i, s := range m.States() {
		actions, err := m.GreedyActions(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "%-12v %10.4f  %v\n", s, values[i], actions)
	}
	r.banner("")
	return nil
}

func (r *repl) showMap() {
	r.banner("Map")
	fmt.Fprint(r.out, r.grid().Sprint(r.colours))
	r.banner("")
}

func (r *repl) save(args []string) error {
	if len(args) != 1 {
		return errInvalidArguments
	}

	fmt.Fprintln(r.out, "file path:", args[0])
	if err := saveSession(args[0], r.session, r.logger); err != nil {
		fmt.Fprintln(r.out, "file saved: error")
		return err
	}
	fmt.Fprintln(r.out, "file saved: success")
	return nil
}

func (r *repl) load(args []string) error {
	if len(args) != 1 {
		return errInvalidArguments
	}

	fmt.Fprintln(r.out, "file path:", args[0])
	session, err := loadSession(args[0], r.cfg, r.logger)
	if err != nil {
		fmt.Fprintln(r.out, "file loaded: error")
		return err
	}
	r.session = session
	fmt.Fprintln(r.out, "file loaded: success")
	return nil
}

func (r *repl) printTuple(action environment.Action, state environment.State,
	reward float64) {
	fmt.Fprintf(r.out, "ACTION %v\n", action)
	fmt.Fprintf(r.out, "STATE  %v\n", state)
	fmt.Fprintf(r.out, "REWARD %v\n", reward)
}

// banner prints a line of '=' with an optional title centred in it
func (r *repl) banner(title string) {
	if title == "" {
		fmt.Fprintln(r.out, strings.Repeat("=", bannerWidth))
		return
	}

	title = " [ " + title + " ] "
	left := (bannerWidth - len(title)) / 2
	right := bannerWidth - len(title) - left
	fmt.Fprintln(r.out, strings.Repeat("=", left)+title+
		strings.Repeat("=", right))
}

func (r *repl) grid() *gridworld.GridWorld {
	// Sessions are only ever created on grid worlds
	return r.session.Environment().(*gridworld.GridWorld)
}
