package telegram

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/marketbrief/internal/common"
	"github.com/ternarybob/marketbrief/internal/interfaces"
	"github.com/ternarybob/marketbrief/internal/models"
)

const (
	// DefaultBaseURL is the Telegram Bot API host
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultTimeout covers document uploads
	DefaultTimeout = 60 * time.Second

	// captionLimit is the Bot API maximum caption length in characters
	captionLimit = 1024
)

// APIError is a Bot API response with ok=false or a non-2xx status
type APIError struct {
	StatusCode  int
	ErrorCode   int
	Description string
	Method      string
}

func (e *APIError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("telegram %s failed: %s (code: %d, status: %d)", e.Method, e.Description, e.ErrorCode, e.StatusCode)
	}
	return fmt.Sprintf("telegram %s failed (status: %d)", e.Method, e.StatusCode)
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

// Service posts status messages and documents to one chat
type Service struct {
	client *resty.Client
	config common.TelegramConfig
	logger arbor.ILogger
}

var (
	_ interfaces.StatusNotifier = (*Service)(nil)
	_ interfaces.DocumentSender = (*Service)(nil)
)

// NewService creates a Telegram service from config
func NewService(config common.TelegramConfig, logger arbor.ILogger) *Service {
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := config.Timeout.Std()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Service{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(timeout),
		config: config,
		logger: logger,
	}
}

// Name identifies the channel in logs and run records
func (s *Service) Name() string {
	return "telegram"
}

// IsConfigured reports whether a token and chat are set
func (s *Service) IsConfigured() bool {
	return s.config.BotToken != "" && s.config.ChatID != ""
}

// Notify sends a plain text message
func (s *Service) Notify(ctx context.Context, text string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("telegram bot token or chat id not configured")
	}

	req := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": s.config.ChatID,
			"text":    text,
		})

	if err := s.execute(req, "sendMessage"); err != nil {
		return err
	}

	s.logger.Debug().Str("text", text).Msg("Telegram message sent")
	return nil
}

// SendDocument uploads the rendered PDF with a caption
func (s *Service) SendDocument(ctx context.Context, doc *models.RenderedDocument, caption string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("telegram bot token or chat id not configured")
	}

	file, err := os.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	if r := []rune(caption); len(r) > captionLimit {
		caption = string(r[:captionLimit])
	}

	req := s.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id": s.config.ChatID,
			"caption": caption,
		}).
		SetFileReader("document", doc.Filename, file)

	if err := s.execute(req, "sendDocument"); err != nil {
		return err
	}

	s.logger.Info().
		Str("filename", doc.Filename).
		Int("pages", doc.Pages).
		Msg("Report sent to Telegram")
	return nil
}

func (s *Service) execute(req *resty.Request, method string) error {
	var result, failure apiResponse
	resp, err := req.
		SetResult(&result).
		SetError(&failure).
		Post(fmt.Sprintf("/bot%s/%s", s.config.BotToken, method))
	if err != nil {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}

	if resp.IsError() {
		return &APIError{
			StatusCode:  resp.StatusCode(),
			ErrorCode:   failure.ErrorCode,
			Description: failure.Description,
			Method:      method,
		}
	}
	if !result.OK {
		return &APIError{
			StatusCode:  resp.StatusCode(),
			ErrorCode:   result.ErrorCode,
			Description: result.Description,
			Method:      method,
		}
	}

	return nil
}
