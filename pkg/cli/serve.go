package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"superbot/pkg/service/ops"
	"superbot/pkg/usecase/bot"
	"superbot/pkg/usecase/files"
	"superbot/pkg/usecase/reminder"
	"superbot/pkg/utils/logging"
)

func serveCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, serveFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the bot: poll for updates and deliver reminders",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.applyConfigFile(c); err != nil {
				return err
			}

			logger := logging.New(cfg.logLevel, os.Stderr)
			logging.SetDefault(logger)
			ctx = logging.With(ctx, logger)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			transport, err := cfg.newTransport()
			if err != nil {
				return err
			}

			fileUC := files.New(cfg.newFileRepo())
			remUC := reminder.New(cfg.newReminderRepo(), transport, nil)
			defer remUC.Stop()

			// Re-arm persisted reminders before taking new updates
			restored, err := remUC.Restore(ctx)
			if err != nil {
				return err
			}
			logger.Info("restored reminders", "count", restored,
				"store", cfg.remindersPath())

			if cfg.opsAddr != "" {
				srv := ops.NewServer(cfg.opsAddr)
				srv.Start(ctx)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := srv.Shutdown(shutdownCtx); err != nil {
						logger.Warn("failed to shut down ops server", "error", err)
					}
				}()
			}

			b := bot.New(transport, remUC, fileUC, bot.WithPollTimeout(cfg.pollTimeout))
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			logger.Info("shutting down")
			return nil
		},
	}
}
