package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

const defaultAPIBase = "https://api.telegram.org"

// Update is one inbound event from the Bot API
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound or outbound chat message
type Message struct {
	MessageID int64       `json:"message_id"`
	From      *User       `json:"from"`
	Chat      Chat        `json:"chat"`
	Text      string      `json:"text"`
	Caption   string      `json:"caption"`
	Photo     []PhotoSize `json:"photo"`
	Document  *Document   `json:"document"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Chat struct {
	ID int64 `json:"id"`
}

// PhotoSize is one resolution of an inbound photo; Telegram sends them
// smallest first.
type PhotoSize struct {
	FileID   string `json:"file_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	FileSize int64  `json:"file_size"`
}

type Document struct {
	FileID   string `json:"file_id"`
	FileName string `json:"file_name"`
	MimeType string `json:"mime_type"`
}

// Transport is the chat platform boundary. All methods are safe to treat
// as fire-and-forget by callers; failures carry context via goerr.
type Transport interface {
	// GetUpdates long-polls for inbound updates starting at offset
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)

	// SendMessage delivers a plain text message to a chat
	SendMessage(ctx context.Context, chatID int64, text string) (*Message, error)

	// SendDocument uploads data as a named document with a caption
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) (*Message, error)

	// DeleteMessage retracts a previously sent message
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// DownloadFile fetches the content of an uploaded file by its file id
	DownloadFile(ctx context.Context, fileID string) ([]byte, error)
}

// telegramClient implements Transport against the Telegram Bot API
type telegramClient struct {
	token      string
	apiBase    string
	httpClient *http.Client
}

// TelegramOption configures the Telegram client
type TelegramOption func(*telegramClient)

// WithAPIBase overrides the Bot API base URL (used in tests)
func WithAPIBase(base string) TelegramOption {
	return func(c *telegramClient) {
		c.apiBase = base
	}
}

// WithHTTPClient overrides the HTTP client
func WithHTTPClient(client *http.Client) TelegramOption {
	return func(c *telegramClient) {
		c.httpClient = client
	}
}

// NewTelegram creates a Bot API client
func NewTelegram(token string, opts ...TelegramOption) Transport {
	c := &telegramClient{
		token:   token,
		apiBase: defaultAPIBase,
		httpClient: &http.Client{
			// Must stay above the long-poll timeout of GetUpdates
			Timeout: 90 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// apiResponse is the envelope every Bot API method returns
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

func (c *telegramClient) call(ctx context.Context, method string, params any, out any) error {
	body, err := json.Marshal(params)
	if err != nil {
		return goerr.Wrap(err, "failed to encode request", goerr.V("method", method))
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.apiBase, c.token, method)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to create request", goerr.V("method", method))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, method, out)
}

func (c *telegramClient) do(req *http.Request, method string, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to send request", goerr.V("method", method))
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return goerr.Wrap(err, "failed to decode response", goerr.V("method", method))
	}

	if !envelope.OK {
		return goerr.New("telegram API returned error",
			goerr.V("method", method),
			goerr.V("status", resp.StatusCode),
			goerr.V("description", envelope.Description))
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return goerr.Wrap(err, "failed to decode result", goerr.V("method", method))
		}
	}

	return nil
}

func (c *telegramClient) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	params := map[string]any{
		"offset":  offset,
		"timeout": int64(timeout.Seconds()),
	}

	var updates []Update
	if err := c.call(ctx, "getUpdates", params, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

func (c *telegramClient) SendMessage(ctx context.Context, chatID int64, text string) (*Message, error) {
	params := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}

	var msg Message
	if err := c.call(ctx, "sendMessage", params, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *telegramClient) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) (*Message, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("chat_id", fmt.Sprintf("%d", chatID)); err != nil {
		return nil, goerr.Wrap(err, "failed to write form field")
	}
	if caption != "" {
		if err := form.WriteField("caption", caption); err != nil {
			return nil, goerr.Wrap(err, "failed to write form field")
		}
	}

	part, err := form.CreateFormFile("document", filename)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create form file", goerr.V("filename", filename))
	}
	if _, err := part.Write(data); err != nil {
		return nil, goerr.Wrap(err, "failed to write document data")
	}
	if err := form.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize form")
	}

	url := fmt.Sprintf("%s/bot%s/sendDocument", c.apiBase, c.token)
	req, err := http.NewRequestWithContext(ctx, "POST", url, &body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var msg Message
	if err := c.do(req, "sendDocument", &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (c *telegramClient) DeleteMessage(ctx context.Context, chatID, messageID int64) error {
	params := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	return c.call(ctx, "deleteMessage", params, nil)
}

func (c *telegramClient) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	var file struct {
		FileID   string `json:"file_id"`
		FilePath string `json:"file_path"`
	}
	if err := c.call(ctx, "getFile", map[string]any{"file_id": fileID}, &file); err != nil {
		return nil, err
	}
	if file.FilePath == "" {
		return nil, goerr.New("file has no download path", goerr.V("file_id", fileID))
	}

	url := fmt.Sprintf("%s/file/bot%s/%s", c.apiBase, c.token, file.FilePath)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create download request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to download file", goerr.V("file_id", fileID))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, goerr.New("file download failed",
			goerr.V("file_id", fileID),
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read file content", goerr.V("file_id", fileID))
	}
	return data, nil
}
