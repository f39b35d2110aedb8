package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"superbot/pkg/adapter"
	"superbot/pkg/repository"
)

// config holds configuration values
type config struct {
	// Transport
	token string

	// Storage
	dataDir       string
	remindersFile string
	filesFile     string

	// Runtime
	logLevel    string
	pollTimeout time.Duration
	opsAddr     string

	configFile string
}

// fileConfig mirrors config for the optional YAML config file
type fileConfig struct {
	Token         string        `yaml:"token"`
	DataDir       string        `yaml:"data_dir"`
	RemindersFile string        `yaml:"reminders_file"`
	FilesFile     string        `yaml:"files_file"`
	LogLevel      string        `yaml:"log_level"`
	PollTimeout   time.Duration `yaml:"poll_timeout"`
	OpsAddr       string        `yaml:"ops_addr"`
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "token",
			Aliases:     []string{"t"},
			Usage:       "Telegram bot API token",
			Sources:     cli.EnvVars("SUPERBOT_TOKEN", "BOT_TOKEN"),
			Destination: &cfg.token,
		},
		&cli.StringFlag{
			Name:        "data-dir",
			Usage:       "Directory for persistent store files",
			Value:       ".",
			Sources:     cli.EnvVars("SUPERBOT_DATA_DIR"),
			Destination: &cfg.dataDir,
		},
		&cli.StringFlag{
			Name:        "reminders-file",
			Usage:       "File name of the reminder store",
			Value:       "reminders.json",
			Sources:     cli.EnvVars("SUPERBOT_REMINDERS_FILE"),
			Destination: &cfg.remindersFile,
		},
		&cli.StringFlag{
			Name:        "files-file",
			Usage:       "File name of the uploaded-file store",
			Value:       "user_files.json",
			Sources:     cli.EnvVars("SUPERBOT_FILES_FILE"),
			Destination: &cfg.filesFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("SUPERBOT_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to YAML config file",
			Sources:     cli.EnvVars("SUPERBOT_CONFIG"),
			Destination: &cfg.configFile,
		},
	}
}

// serveFlags returns flags only the serve command needs
func serveFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.DurationFlag{
			Name:        "poll-timeout",
			Usage:       "Long-poll timeout for fetching updates",
			Value:       30 * time.Second,
			Sources:     cli.EnvVars("SUPERBOT_POLL_TIMEOUT"),
			Destination: &cfg.pollTimeout,
		},
		&cli.StringFlag{
			Name:        "ops-addr",
			Usage:       "Listen address for health and metrics endpoints (disabled when empty)",
			Sources:     cli.EnvVars("SUPERBOT_OPS_ADDR"),
			Destination: &cfg.opsAddr,
		},
	}
}

// applyConfigFile merges values from the YAML config file. Flags and
// environment variables win over file values, which win over defaults.
func (cfg *config) applyConfigFile(c *cli.Command) error {
	if cfg.configFile == "" {
		return nil
	}

	raw, err := os.ReadFile(cfg.configFile)
	if err != nil {
		return goerr.Wrap(err, "failed to read config file", goerr.V("path", cfg.configFile))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return goerr.Wrap(err, "failed to parse config file", goerr.V("path", cfg.configFile))
	}

	if fc.Token != "" && !c.IsSet("token") {
		cfg.token = fc.Token
	}
	if fc.DataDir != "" && !c.IsSet("data-dir") {
		cfg.dataDir = fc.DataDir
	}
	if fc.RemindersFile != "" && !c.IsSet("reminders-file") {
		cfg.remindersFile = fc.RemindersFile
	}
	if fc.FilesFile != "" && !c.IsSet("files-file") {
		cfg.filesFile = fc.FilesFile
	}
	if fc.LogLevel != "" && !c.IsSet("log-level") {
		cfg.logLevel = fc.LogLevel
	}
	if fc.PollTimeout != 0 && !c.IsSet("poll-timeout") {
		cfg.pollTimeout = fc.PollTimeout
	}
	if fc.OpsAddr != "" && !c.IsSet("ops-addr") {
		cfg.opsAddr = fc.OpsAddr
	}

	return nil
}

func (cfg *config) remindersPath() string {
	return filepath.Join(cfg.dataDir, cfg.remindersFile)
}

func (cfg *config) filesPath() string {
	return filepath.Join(cfg.dataDir, cfg.filesFile)
}

// newReminderRepo creates the reminder store
func (cfg *config) newReminderRepo() repository.Reminders {
	return repository.NewReminderFile(cfg.remindersPath())
}

// newFileRepo creates the uploaded-file store
func (cfg *config) newFileRepo() repository.Files {
	return repository.NewFileStore(cfg.filesPath())
}

// newTransport creates the Telegram transport
func (cfg *config) newTransport() (adapter.Transport, error) {
	if cfg.token == "" {
		return nil, goerr.New("token is required (set --token or SUPERBOT_TOKEN)")
	}
	return adapter.NewTelegram(cfg.token), nil
}
