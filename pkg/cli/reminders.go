package cli

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/urfave/cli/v3"

	"superbot/pkg/model"
)

// remindersCommand inspects the persisted reminder store without talking
// to the chat API. Useful for checking what would be re-armed on restart.
func remindersCommand() *cli.Command {
	var (
		cfg    config
		userID string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "user",
			Aliases:     []string{"u"},
			Usage:       "Only show reminders for this user ID",
			Destination: &userID,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)

	return &cli.Command{
		Name:  "reminders",
		Usage: "List persisted reminders",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := cfg.applyConfigFile(c); err != nil {
				return err
			}

			records, err := cfg.newReminderRepo().Load(ctx)
			if err != nil {
				return err
			}

			var list []*model.Reminder
			for _, rec := range records {
				if userID != "" && rec.UserID != userID {
					continue
				}
				list = append(list, rec)
			}
			sort.Slice(list, func(i, j int) bool {
				if list[i].WhenTS != list[j].WhenTS {
					return list[i].WhenTS < list[j].WhenTS
				}
				return list[i].CreatedAt.Before(list[j].CreatedAt)
			})

			if len(list) == 0 {
				fmt.Fprintf(c.Root().Writer, "No pending reminders in %s\n", cfg.remindersPath())
				return nil
			}

			for _, rec := range list {
				fmt.Fprintf(c.Root().Writer, "%s  user=%s chat=%d at=%s  %s\n",
					rec.ID, rec.UserID, rec.ChatID,
					rec.FireAt().Format(time.RFC3339), rec.Task)
			}
			fmt.Fprintf(c.Root().Writer, "%d reminder(s)\n", len(list))
			return nil
		},
	}
}
