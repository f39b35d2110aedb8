package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/urfave/cli/v3"
)

func runWithConfig(t *testing.T, args []string) *config {
	t.Helper()

	var cfg config
	flags := globalFlags(&cfg)
	flags = append(flags, serveFlags(&cfg)...)

	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return cfg.applyConfigFile(c)
		},
	}

	gt.NoError(t, cmd.Run(context.Background(), append([]string{"test"}, args...)))
	return &cfg
}

func TestConfigDefaults(t *testing.T) {
	cfg := runWithConfig(t, nil)

	gt.Equal(t, cfg.dataDir, ".")
	gt.Equal(t, cfg.remindersFile, "reminders.json")
	gt.Equal(t, cfg.filesFile, "user_files.json")
	gt.Equal(t, cfg.logLevel, "info")
	gt.Equal(t, cfg.pollTimeout, 30*time.Second)
	gt.Equal(t, cfg.remindersPath(), "reminders.json")
}

func TestConfigFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "superbot.yml")
	body := "token: yaml-token\nlog_level: debug\npoll_timeout: 5s\nops_addr: :9090\n"
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))

	cfg := runWithConfig(t, []string{"--config", path})

	gt.Equal(t, cfg.token, "yaml-token")
	gt.Equal(t, cfg.logLevel, "debug")
	gt.Equal(t, cfg.pollTimeout, 5*time.Second)
	gt.Equal(t, cfg.opsAddr, ":9090")
	// Untouched fields keep their flag defaults
	gt.Equal(t, cfg.remindersFile, "reminders.json")
}

func TestFlagsWinOverConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "superbot.yml")
	body := "token: yaml-token\ndata_dir: /from/yaml\n"
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))

	cfg := runWithConfig(t, []string{"--config", path, "--token", "flag-token"})

	gt.Equal(t, cfg.token, "flag-token")
	gt.Equal(t, cfg.dataDir, "/from/yaml")
	gt.Equal(t, cfg.remindersPath(), filepath.Join("/from/yaml", "reminders.json"))
}

func TestConfigFileMissing(t *testing.T) {
	var cfg config
	flags := globalFlags(&cfg)

	cmd := &cli.Command{
		Name:  "test",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			return cfg.applyConfigFile(c)
		},
	}

	err := cmd.Run(context.Background(), []string{"test", "--config", "/no/such/file.yml"})
	gt.Error(t, err)
}

func TestNewTransportRequiresToken(t *testing.T) {
	cfg := &config{}
	_, err := cfg.newTransport()
	gt.Error(t, err)

	cfg.token = "123:abc"
	tr, err := cfg.newTransport()
	gt.NoError(t, err)
	gt.NotNil(t, tr)
}
