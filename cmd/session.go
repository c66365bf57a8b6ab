package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/samuelfneumann/modelrl/config"
	"github.com/samuelfneumann/modelrl/environment/gridworld"
	"github.com/samuelfneumann/modelrl/experiment"
)

// newSession creates a fresh session from cfg, including the trackers
// and checkpointers cfg configures
func newSession(cfg config.Config, logger logrus.FieldLogger) (
	*experiment.Online, error) {
	env, _, err := cfg.Environment.Create()
	if err != nil {
		return nil, err
	}
	return cfg.Experiment.CreateExp(env, cfg.Agent, appFS, logger)
}

// loadSession restores the session saved in filename. Drift is not
// saved with a session, so the restored grid world draws drift from a
// source seeded with cfg.Environment.Seed.
func loadSession(filename string, cfg config.Config,
	logger logrus.FieldLogger) (*experiment.Online, error) {
	session, err := experiment.Load(appFS, filename, logger)
	if err != nil {
		return nil, err
	}

	g, ok := session.Environment().(*gridworld.GridWorld)
	if !ok {
		return nil, fmt.Errorf("loadSession: unexpected environment %T",
			session.Environment())
	}
	g.SetSampler(gridworld.NewSampler(cfg.Environment.Seed))

	if err := cfg.Experiment.Attach(session, appFS); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"file": filename,
		"tick": session.Ticks(),
	}).Info("session loaded")
	return session, nil
}

// saveSession saves session to filename, which must not exist
func saveSession(filename string, session *experiment.Online,
	logger logrus.FieldLogger) error {
	if err := experiment.Save(appFS, filename, session); err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"file": filename,
		"tick": session.Ticks(),
	}).Info("session saved")
	return nil
}
