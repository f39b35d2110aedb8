package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"superbot/pkg/adapter"
	"superbot/pkg/model"
	"superbot/pkg/service/imgconv"
	"superbot/pkg/service/ops"
	"superbot/pkg/service/timeparse"
	"superbot/pkg/utils/logging"
)

const helpText = `👋 Welcome to SuperBot!

I can do:
• Send images to convert JPG ⇄ PNG and store them.
• Schedule reminders.

Usage examples:
• Remind me to drink water in 10 seconds (natural)
• /remind 10m drink water (command)

Commands:
• /remind <time> <task> — create reminder (e.g. /remind 5m call mom)
• /reminders — list your pending reminders
• /cancel <id> — cancel a reminder by id
• /myfiles — list your saved files`

const parseHint = "Couldn't parse time. Use formats like '10s', '5min', '2 hours', or 'in 10 seconds'."

const fallbackTask = "Reminder"

// HandleUpdate routes a single inbound update
func (b *Bot) HandleUpdate(ctx context.Context, u adapter.Update) {
	msg := u.Message
	if msg == nil || msg.From == nil {
		return
	}

	switch {
	case msg.Document != nil || len(msg.Photo) > 0:
		b.handleFile(ctx, msg)
	case strings.HasPrefix(msg.Text, "/"):
		b.handleCommand(ctx, msg)
	case msg.Text != "":
		b.handleText(ctx, msg)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *adapter.Message) {
	fields := strings.Fields(msg.Text)
	cmd := fields[0]
	// In group chats commands arrive as /cmd@botname
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		b.reply(ctx, msg.Chat.ID, helpText)
	case "/remind":
		b.handleRemind(ctx, msg)
	case "/reminders":
		b.handleListReminders(ctx, msg)
	case "/cancel":
		b.handleCancel(ctx, msg, fields[1:])
	case "/myfiles":
		b.handleListFiles(ctx, msg)
	default:
		b.reply(ctx, msg.Chat.ID, "Unknown command. Send /start to see what I can do.")
	}
}

func (b *Bot) handleRemind(ctx context.Context, msg *adapter.Message) {
	rest := strings.TrimSpace(strings.TrimPrefix(msg.Text, strings.Fields(msg.Text)[0]))
	if rest == "" {
		b.reply(ctx, msg.Chat.ID, "Usage: /remind <time> <task>  e.g. /remind 10s drink water")
		return
	}

	res, ok := timeparse.Parse(rest)
	if !ok {
		b.reply(ctx, msg.Chat.ID, parseHint)
		return
	}

	task := strings.TrimSpace(strings.Replace(rest, res.Matched, "", 1))
	if task == "" {
		task = fallbackTask
	}

	b.createReminder(ctx, msg, task, res.Seconds, func(rec *model.Reminder) string {
		return fmt.Sprintf("✅ Reminder set (ID: %s)\nTask: %s\nWhen (UTC): %s\nDelay: %d seconds",
			rec.ID, rec.Task, rec.FireAt().Format(time.RFC3339), res.Seconds)
	})
}

// handleText tries to read unstructured text as a natural-language
// reminder request.
func (b *Bot) handleText(ctx context.Context, msg *adapter.Message) {
	// "remind me to <task> in <time>" wins over a floating time expression
	if res, ok := timeparse.ParseTask(msg.Text); ok {
		b.createReminder(ctx, msg, res.Task, res.Seconds, func(rec *model.Reminder) string {
			return fmt.Sprintf("✅ I will remind you to '%s' in %d seconds. (ID: %s)",
				rec.Task, res.Seconds, rec.ID)
		})
		return
	}

	if res, ok := timeparse.Parse(msg.Text); ok {
		task := strings.TrimSpace(strings.Replace(msg.Text, res.Matched, "", 1))
		if task == "" {
			task = fallbackTask
		}
		b.createReminder(ctx, msg, task, res.Seconds, func(rec *model.Reminder) string {
			return fmt.Sprintf("✅ Reminder set: '%s' in %d seconds. (ID: %s)",
				rec.Task, res.Seconds, rec.ID)
		})
		return
	}

	b.reply(ctx, msg.Chat.ID, "I didn't understand that. Try:\n"+
		"• Send an image to convert.\n"+
		"• 'Remind me to drink water in 5 seconds'\n"+
		"• /myfiles to see stored files.")
}

func (b *Bot) createReminder(ctx context.Context, msg *adapter.Message, task string, seconds int64, confirm func(*model.Reminder) string) {
	fireAt := b.now().Add(time.Duration(seconds) * time.Second)
	userID := strconv.FormatInt(msg.From.ID, 10)

	rec, err := b.reminders.Create(ctx, msg.Chat.ID, userID, task, fireAt)
	if err != nil {
		logging.From(ctx).Error("failed to create reminder", "error", err)
		b.reply(ctx, msg.Chat.ID, "❌ Could not save your reminder, please try again.")
		return
	}

	b.reply(ctx, msg.Chat.ID, confirm(rec))
}

func (b *Bot) handleListReminders(ctx context.Context, msg *adapter.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)

	list, err := b.reminders.ListFor(ctx, userID)
	if err != nil {
		logging.From(ctx).Error("failed to list reminders", "error", err)
		b.reply(ctx, msg.Chat.ID, "❌ Could not read your reminders, please try again.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, msg.Chat.ID, "You have no pending reminders.")
		return
	}

	now := b.now().Unix()
	lines := []string{"⏳ Your Pending Reminders:"}
	for _, rec := range list {
		lines = append(lines, fmt.Sprintf("- ID: %s | in %ds | at %s | %s",
			rec.ID, rec.WhenTS-now, rec.FireAt().Format(time.RFC3339), rec.Task))
	}
	b.reply(ctx, msg.Chat.ID, strings.Join(lines, "\n"))
}

func (b *Bot) handleCancel(ctx context.Context, msg *adapter.Message, args []string) {
	if len(args) == 0 {
		b.reply(ctx, msg.Chat.ID, "Usage: /cancel <reminder_id>")
		return
	}

	id := model.ReminderID(args[0])
	if err := b.reminders.Cancel(ctx, id); err != nil {
		if errors.Is(err, model.ErrReminderNotFound) {
			b.reply(ctx, msg.Chat.ID, "No reminder found with that ID.")
			return
		}
		logging.From(ctx).Error("failed to cancel reminder", "id", id, "error", err)
		b.reply(ctx, msg.Chat.ID, "❌ Could not cancel that reminder, please try again.")
		return
	}

	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("✅ Cancelled reminder %s", id))
}

func (b *Bot) handleListFiles(ctx context.Context, msg *adapter.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)

	list, err := b.files.ListFor(ctx, userID)
	if err != nil {
		logging.From(ctx).Error("failed to list files", "error", err)
		b.reply(ctx, msg.Chat.ID, "❌ Could not read your files, please try again.")
		return
	}
	if len(list) == 0 {
		b.reply(ctx, msg.Chat.ID, "You have no files saved yet. Send me a file to start!")
		return
	}

	lines := []string{"📂 Your Saved Files:"}
	for i, rec := range list {
		lines = append(lines, fmt.Sprintf("%d. %s (Saved: %s)",
			i+1, rec.Name, rec.Date.Format(time.RFC3339)))
	}
	b.reply(ctx, msg.Chat.ID, strings.Join(lines, "\n"))
}

// handleFile saves a record for the upload and, for images, sends back the
// converted version.
func (b *Bot) handleFile(ctx context.Context, msg *adapter.Message) {
	logger := logging.From(ctx)
	userID := strconv.FormatInt(msg.From.ID, 10)

	var name, fileID string
	var isImage bool

	switch {
	case msg.Document != nil:
		name = msg.Document.FileName
		if name == "" {
			name = fmt.Sprintf("doc_%d", b.now().Unix())
		}
		fileID = msg.Document.FileID
		isImage = strings.HasPrefix(msg.Document.MimeType, "image")
	case len(msg.Photo) > 0:
		// Telegram orders photo sizes smallest first; take the best one
		name = fmt.Sprintf("photo_%d.jpg", b.now().Unix())
		fileID = msg.Photo[len(msg.Photo)-1].FileID
		isImage = true
	default:
		return
	}

	if _, err := b.files.Save(ctx, userID, name, fileID); err != nil {
		logger.Error("failed to save file record", "name", name, "error", err)
		b.reply(ctx, msg.Chat.ID, "❌ Could not save your file, please try again.")
		return
	}
	b.reply(ctx, msg.Chat.ID, fmt.Sprintf("💾 File '%s' saved to your cloud storage!", name))

	if !isImage {
		return
	}

	status, err := b.transport.SendMessage(ctx, msg.Chat.ID, "🔄 Detected image... Converting format...")
	if err != nil {
		logger.Warn("failed to send status message", "error", err)
	}

	converted, newName, convErr := b.convertImage(ctx, fileID, name)
	if convErr != nil {
		logger.Error("image conversion failed", "name", name, "error", convErr)
		b.reply(ctx, msg.Chat.ID, "❌ Could not convert that image.")
	} else {
		if _, err := b.transport.SendDocument(ctx, msg.Chat.ID, newName, converted, "Here is your converted file!"); err != nil {
			logger.Error("failed to send converted file", "name", newName, "error", err)
			b.reply(ctx, msg.Chat.ID, "❌ Could not send the converted file.")
		} else {
			ops.ImagesConverted.Inc()
		}
	}

	// Retract the transient status notice, best-effort
	if status != nil {
		if err := b.transport.DeleteMessage(ctx, msg.Chat.ID, status.MessageID); err != nil {
			logger.Warn("failed to delete status message", "error", err)
		}
	}
}

func (b *Bot) convertImage(ctx context.Context, fileID, name string) ([]byte, string, error) {
	data, err := b.transport.DownloadFile(ctx, fileID)
	if err != nil {
		return nil, "", err
	}

	converted, ext, err := imgconv.Convert(data)
	if err != nil {
		return nil, "", err
	}

	return converted, imgconv.ConvertedName(name, ext), nil
}

// reply sends a message and only logs failures; outbound chat sends are
// never fatal.
func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	if _, err := b.transport.SendMessage(ctx, chatID, text); err != nil {
		logging.From(ctx).Warn("failed to send reply", "chat_id", chatID, "error", err)
	}
}
