// Package config loads the configuration of agents, environments,
// experiments, and the HTTP server from defaults, YAML files, MODELRL_*
// environment variables, and command line flags.
package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/mitchellh/mapstructure"
	"github.com/samuelfneumann/modelrl/agent/tabular/modelbased"
	"github.com/samuelfneumann/modelrl/environment/envconfig"
	"github.com/samuelfneumann/modelrl/experiment"
	"github.com/spf13/viper"
	"github.com/twpayne/go-vfs"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of environment variables that override
// configuration keys, e.g. MODELRL_AGENT_DISCOUNT_RATE
const EnvPrefix = "MODELRL"

// Default settings which the original command line program hard coded
const (
	DefaultDiscountRate    = 0.5
	DefaultAcceptableError = 0.05
	DefaultAddress         = ":8080"
	DefaultReadTimeout     = 10 * time.Second
)

// Server configures the HTTP front end
type Server struct {
	Address     string        `mapstructure:"address" yaml:"address"`
	ReadTimeout time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
}

// Config is the full configuration of a session
type Config struct {
	Agent       modelbased.Config `mapstructure:"agent" yaml:"agent"`
	Environment envconfig.Config  `mapstructure:"environment" yaml:"environment"`
	Experiment  experiment.Config `mapstructure:"experiment" yaml:"experiment"`
	Server      Server            `mapstructure:"server" yaml:"server"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Agent: modelbased.Config{
			DiscountRate:    DefaultDiscountRate,
			AcceptableError: DefaultAcceptableError,
			MaxSweeps:       modelbased.DefaultMaxSweeps,
		},
		Environment: envconfig.Default(),
		Experiment: experiment.Config{
			InitialAction:    experiment.DefaultInitialAction,
			CheckpointPrefix: "checkpoint",
		},
		Server: Server{
			Address:     DefaultAddress,
			ReadTimeout: DefaultReadTimeout,
		},
	}
}

// SetDefaults registers every key of Default() with v, which also makes
// each key overridable through the environment
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("agent.discount_rate", d.Agent.DiscountRate)
	v.SetDefault("agent.acceptable_error", d.Agent.AcceptableError)
	v.SetDefault("agent.max_sweeps", d.Agent.MaxSweeps)

	v.SetDefault("environment.map", d.Environment.Map)
	v.SetDefault("environment.sensor_capability",
		d.Environment.SensorCapability)
	v.SetDefault("environment.start.x", d.Environment.Start.X)
	v.SetDefault("environment.start.y", d.Environment.Start.Y)
	v.SetDefault("environment.seed", d.Environment.Seed)

	v.SetDefault("experiment.initial_action", string(d.Experiment.InitialAction))
	v.SetDefault("experiment.steps", d.Experiment.Steps)
	v.SetDefault("experiment.checkpoint_every", d.Experiment.CheckpointEvery)
	v.SetDefault("experiment.checkpoint_prefix", d.Experiment.CheckpointPrefix)
	v.SetDefault("experiment.rewards_file", d.Experiment.RewardsFile)

	v.SetDefault("server.address", d.Server.Address)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
}

// Load reads the configuration held by v. Defaults are registered first,
// then filename (if not empty) is read from fs and merged, and finally
// MODELRL_* environment variables and any flags already bound to v take
// precedence. The format of filename is taken from its extension and
// defaults to YAML.
func Load(v *viper.Viper, fs vfs.FS, filename string) (Config, error) {
	SetDefaults(v)

	if filename != "" {
		data, err := fs.ReadFile(filename)
		if err != nil {
			return Config{}, fmt.Errorf("load: could not read config: %v", err)
		}

		configType := strings.TrimPrefix(filepath.Ext(filename), ".")
		if configType == "" || configType == "yml" {
			configType = "yaml"
		}
		v.SetConfigType(configType)
		if err := v.MergeConfig(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("load: could not parse %v: %v",
				filename, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		ColumnsHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("load: could not decode config: %v", err)
	}
	return c, nil
}

// Validate returns every reason for which the configuration cannot
// create a session
func (c Config) Validate() error {
	var errs error
	if err := c.Agent.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := c.Environment.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := c.Experiment.Validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if c.Server.ReadTimeout < 0 {
		errs = multierror.Append(errs, fmt.Errorf("negative read timeout %v",
			c.Server.ReadTimeout))
	}
	return errs
}

// YAML returns the configuration as a YAML document
func (c Config) YAML() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("yaml: %v", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("yaml: %v", err)
	}
	return buf.Bytes(), nil
}

// ColumnsHookFunc returns a mapstructure.DecodeHookFunc which decodes a
// grid map into its columns. Besides a list of column strings, a map may
// be given as a single block with one column per line (or separated by
// commas or spaces), or as a list of columns each of which is a list of
// single cell strings.
func ColumnsHookFunc() mapstructure.DecodeHookFuncType {
	target := reflect.TypeOf([]string{})

	return func(f reflect.Type, t reflect.Type, data interface{}) (
		interface{}, error) {
		if t != target {
			return data, nil
		}

		switch d := data.(type) {
		case string:
			return strings.FieldsFunc(d, func(r rune) bool {
				return r == ',' || r == '\n' || r == '\r' || r == ' ' ||
					r == '\t'
			}), nil

		case []interface{}:
			columns := make([]string, 0, len(d))
			for i, column := range d {
				switch col := column.(type) {
				case string:
					columns = append(columns, col)
				case []interface{}:
					var b strings.Builder
					for _, cell := range col {
						s, ok := cell.(string)
						if !ok {
							return nil, fmt.Errorf("column %d: cell %v is "+
								"not a string", i, cell)
						}
						b.WriteString(s)
					}
					columns = append(columns, b.String())
				default:
					return nil, fmt.Errorf("column %d: %v is neither a "+
						"string nor a list of cells", i, column)
				}
			}
			return columns, nil
		}

		return data, nil
	}
}
