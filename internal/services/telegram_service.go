package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/example/tintura/internal/platform/logger"
)

// TelegramService handles sending notifications to Telegram.
type TelegramService struct {
	botToken    string
	adminChatID string
	apiBase     string
	httpClient  *http.Client
	log         *logger.Logger
}

// NewTelegramService creates a new TelegramService.
func NewTelegramService(botToken, adminChatID string, log *logger.Logger) *TelegramService {
	if log == nil {
		log = logger.Nop()
	}
	return &TelegramService{
		botToken:    strings.TrimSpace(botToken),
		adminChatID: strings.TrimSpace(adminChatID),
		apiBase:     "https://api.telegram.org",
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		log:         log.With("service", "TelegramService"),
	}
}

// Configured reports whether both the bot token and admin chat are set.
func (s *TelegramService) Configured() bool {
	return s != nil && s.botToken != "" && s.adminChatID != ""
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage sends a message to specified chat.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		return fmt.Errorf("telegram bot token not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)
	body, err := json.Marshal(telegramMessage{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.log.Warn("telegram send failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warn("telegram unexpected status", "status", resp.StatusCode)
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

// SendToAdmin sends a message to the admin chat.
func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		return fmt.Errorf("telegram admin chat not configured")
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

func (s *TelegramService) Name() string { return "telegram" }

// Dispatch delivers an admin passcode to the admin chat.
func (s *TelegramService) Dispatch(ctx context.Context, address, code string) error {
	message := fmt.Sprintf(`<b>🔐 Tintura admin passcode</b>
<b>Account:</b> %s
<b>Code:</b> <code>%s</code>
<i>Valid for 10 minutes. Ignore this message if you did not request it.</i>`,
		html.EscapeString(address),
		code,
	)
	return s.SendToAdmin(ctx, message)
}

// StyleNotification describes a catalog change for the admin chat.
type StyleNotification struct {
	Action    string
	StyleCode string
	Name      string
	Category  string
	Images    int
}

// NotifyStyleChange posts a short summary of a saved or deleted style.
// It is a no-op when Telegram is not configured.
func (s *TelegramService) NotifyStyleChange(ctx context.Context, n StyleNotification) error {
	if !s.Configured() {
		return nil
	}
	message := fmt.Sprintf(`<b>👕 Style %s</b>
<b>Code:</b> %s
<b>Name:</b> %s
<b>Category:</b> %s
<b>Images:</b> %d
━━━━━━━━━━━━━━━━━━
<i>Tintura catalog</i>`,
		html.EscapeString(n.Action),
		html.EscapeString(n.StyleCode),
		html.EscapeString(n.Name),
		html.EscapeString(n.Category),
		n.Images,
	)
	return s.SendToAdmin(ctx, strings.TrimSpace(message))
}
