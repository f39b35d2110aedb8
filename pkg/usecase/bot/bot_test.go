package bot_test

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"superbot/pkg/adapter"
	"superbot/pkg/repository"
	"superbot/pkg/usecase/bot"
	"superbot/pkg/usecase/files"
	"superbot/pkg/usecase/reminder"
)

type sentDoc struct {
	chatID   int64
	filename string
	data     []byte
	caption  string
}

// fakeTransport records all outbound calls
type fakeTransport struct {
	mu        sync.Mutex
	messages  []string
	documents []sentDoc
	deleted   []int64
	fileData  []byte
	nextMsgID int64
}

func (f *fakeTransport) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]adapter.Update, error) {
	return nil, nil
}

func (f *fakeTransport) SendMessage(ctx context.Context, chatID int64, text string) (*adapter.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
	f.nextMsgID++
	return &adapter.Message{MessageID: f.nextMsgID, Chat: adapter.Chat{ID: chatID}}, nil
}

func (f *fakeTransport) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) (*adapter.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, sentDoc{chatID: chatID, filename: filename, data: data, caption: caption})
	return &adapter.Message{}, nil
}

func (f *fakeTransport) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, messageID)
	return nil
}

func (f *fakeTransport) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	if f.fileData == nil {
		return nil, goerr.New("no such file", goerr.V("file_id", fileID))
	}
	return f.fileData, nil
}

func (f *fakeTransport) lastMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return ""
	}
	return f.messages[len(f.messages)-1]
}

func (f *fakeTransport) allMessages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.messages...)
}

func newTestBot(t *testing.T) (*bot.Bot, *fakeTransport) {
	t.Helper()
	dir := t.TempDir()
	tr := &fakeTransport{}

	ruc := reminder.New(repository.NewReminderFile(filepath.Join(dir, "reminders.json")), tr, nil)
	t.Cleanup(ruc.Stop)
	fuc := files.New(repository.NewFileStore(filepath.Join(dir, "user_files.json")))

	return bot.New(tr, ruc, fuc), tr
}

func textUpdate(text string) adapter.Update {
	return adapter.Update{
		UpdateID: 1,
		Message: &adapter.Message{
			MessageID: 1,
			From:      &adapter.User{ID: 7, Username: "alice"},
			Chat:      adapter.Chat{ID: 99},
			Text:      text,
		},
	}
}

func TestHandleStart(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/start"))
	gt.S(t, tr.lastMessage()).Contains("Welcome to SuperBot")
}

func TestHandleRemindCommand(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/remind 10m drink water"))

	reply := tr.lastMessage()
	gt.S(t, reply).Contains("Reminder set")
	gt.S(t, reply).Contains("drink water")
	gt.S(t, reply).Contains("Delay: 600 seconds")
}

func TestHandleRemindUsage(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/remind"))
	gt.S(t, tr.lastMessage()).Contains("Usage: /remind")
}

func TestHandleRemindUnparsable(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/remind whenever you feel like it"))
	gt.S(t, tr.lastMessage()).Contains("Couldn't parse time")
}

func TestHandleRemindNoTask(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/remind 10m"))

	reply := tr.lastMessage()
	gt.S(t, reply).Contains("Reminder set")
	gt.S(t, reply).Contains("Task: Reminder")
}

func TestHandleNaturalLanguage(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("Remind me to call mom in 10 minutes"))

	reply := tr.lastMessage()
	gt.S(t, reply).Contains("I will remind you to 'call mom'")
	gt.S(t, reply).Contains("600 seconds")
}

func TestHandleFloatingExpression(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("walk the dog in 15 minutes"))

	reply := tr.lastMessage()
	gt.S(t, reply).Contains("Reminder set: 'walk the dog'")
}

func TestHandleUnrecognizedText(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("hello there"))
	gt.S(t, tr.lastMessage()).Contains("I didn't understand that")
}

func TestHandleUnknownCommand(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/frobnicate"))
	gt.S(t, tr.lastMessage()).Contains("Unknown command")
}

func TestHandleListRemindersEmpty(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/reminders"))
	gt.S(t, tr.lastMessage()).Contains("no pending reminders")
}

func TestHandleListRemindersOrdered(t *testing.T) {
	ctx := context.Background()
	b, tr := newTestBot(t)

	b.HandleUpdate(ctx, textUpdate("/remind 50m second task"))
	b.HandleUpdate(ctx, textUpdate("/remind 5m first task"))
	b.HandleUpdate(ctx, textUpdate("/reminders"))

	reply := tr.lastMessage()
	gt.S(t, reply).Contains("Your Pending Reminders")
	first := strings.Index(reply, "first task")
	second := strings.Index(reply, "second task")
	gt.True(t, first >= 0 && second >= 0)
	gt.True(t, first < second)
}

func TestHandleCancel(t *testing.T) {
	ctx := context.Background()
	b, tr := newTestBot(t)

	b.HandleUpdate(ctx, textUpdate("/remind 10m drop it"))

	// Fish the id out of the confirmation reply
	reply := tr.lastMessage()
	start := strings.Index(reply, "(ID: ")
	gt.True(t, start >= 0)
	id := reply[start+5 : strings.Index(reply, ")")]

	b.HandleUpdate(ctx, textUpdate("/cancel "+id))
	gt.S(t, tr.lastMessage()).Contains("Cancelled reminder")

	b.HandleUpdate(ctx, textUpdate("/reminders"))
	gt.S(t, tr.lastMessage()).Contains("no pending reminders")
}

func TestHandleCancelNotFound(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/cancel not-a-real-id"))
	gt.S(t, tr.lastMessage()).Contains("No reminder found")
}

func TestHandleCancelUsage(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/cancel"))
	gt.S(t, tr.lastMessage()).Contains("Usage: /cancel")
}

func TestHandleMyFilesEmpty(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), textUpdate("/myfiles"))
	gt.S(t, tr.lastMessage()).Contains("no files saved yet")
}

func TestHandlePhoto(t *testing.T) {
	ctx := context.Background()
	b, tr := newTestBot(t)

	// The transport serves a small PNG for any download
	var buf bytes.Buffer
	gt.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	tr.fileData = buf.Bytes()

	u := textUpdate("")
	u.Message.Photo = []adapter.PhotoSize{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "large", Width: 800, Height: 800},
	}
	b.HandleUpdate(ctx, u)

	// Record saved, converted document sent, status notice retracted
	found := false
	for _, m := range tr.allMessages() {
		if strings.Contains(m, "saved to your cloud storage") {
			found = true
		}
	}
	gt.True(t, found)

	gt.A(t, tr.documents).Length(1)
	gt.S(t, tr.documents[0].filename).Contains("_converted.jpg")
	gt.Equal(t, tr.documents[0].caption, "Here is your converted file!")
	gt.A(t, tr.deleted).Length(1)

	b.HandleUpdate(ctx, textUpdate("/myfiles"))
	gt.S(t, tr.lastMessage()).Contains("Your Saved Files")
}

func TestHandleNonImageDocument(t *testing.T) {
	ctx := context.Background()
	b, tr := newTestBot(t)

	u := textUpdate("")
	u.Message.Document = &adapter.Document{
		FileID: "f1", FileName: "notes.pdf", MimeType: "application/pdf",
	}
	b.HandleUpdate(ctx, u)

	gt.S(t, tr.lastMessage()).Contains("File 'notes.pdf' saved")
	gt.A(t, tr.documents).Length(0)
}

func TestHandleImageDocumentConversionFailure(t *testing.T) {
	ctx := context.Background()
	b, tr := newTestBot(t)
	tr.fileData = []byte("not an image at all")

	u := textUpdate("")
	u.Message.Document = &adapter.Document{
		FileID: "f1", FileName: "broken.png", MimeType: "image/png",
	}
	b.HandleUpdate(ctx, u)

	found := false
	for _, m := range tr.allMessages() {
		if strings.Contains(m, "Could not convert") {
			found = true
		}
	}
	gt.True(t, found)
	gt.A(t, tr.documents).Length(0)
}

func TestHandleUpdateIgnoresEmpty(t *testing.T) {
	b, tr := newTestBot(t)
	b.HandleUpdate(context.Background(), adapter.Update{UpdateID: 1})
	gt.A(t, tr.allMessages()).Length(0)
}

func TestHandlePhotoUsesLargestSize(t *testing.T) {
	ctx := context.Background()
	b, tr := newTestBot(t)

	tr.fileData = []byte("x") // conversion will fail, that's fine here

	u := textUpdate("")
	u.Message.Photo = []adapter.PhotoSize{
		{FileID: "size-90"},
		{FileID: "size-800"},
	}
	b.HandleUpdate(ctx, u)

	// Saved record names the photo; the largest size's file id is stored
	b.HandleUpdate(ctx, textUpdate("/myfiles"))
	gt.S(t, tr.lastMessage()).Contains("photo_")
}
