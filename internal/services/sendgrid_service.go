package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/example/tintura/internal/platform/logger"
)

// SendGridService sends transactional mail through the SendGrid v3 API.
type SendGridService struct {
	apiKey     string
	fromEmail  string
	fromName   string
	baseURL    string
	httpClient *http.Client
	log        *logger.Logger
}

func NewSendGridService(apiKey, fromEmail string, log *logger.Logger) (*SendGridService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("missing SENDGRID_API_KEY")
	}
	if strings.TrimSpace(fromEmail) == "" {
		return nil, fmt.Errorf("missing SENDGRID_FROM_EMAIL")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SendGridService{
		apiKey:     strings.TrimSpace(apiKey),
		fromEmail:  strings.TrimSpace(fromEmail),
		fromName:   "Tintura Admin",
		baseURL:    "https://api.sendgrid.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log.With("service", "SendGridService"),
	}, nil
}

type emailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type personalization struct {
	To []emailAddress `json:"to"`
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             emailAddress      `json:"from"`
	Subject          string            `json:"subject"`
	Content          []mailContent     `json:"content"`
}

type sendGridError struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// SendText sends a plain text message to a single recipient.
func (s *SendGridService) SendText(ctx context.Context, to, subject, text string) error {
	wire := mailSendRequest{
		Personalizations: []personalization{{To: []emailAddress{{Email: to}}}},
		From:             emailAddress{Email: s.fromEmail, Name: s.fromName},
		Subject:          subject,
		Content:          []mailContent{{Type: "text/plain", Value: text}},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(wire); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v3/mail/send", &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var er sendGridError
		if json.Unmarshal(raw, &er) == nil && len(er.Errors) > 0 && er.Errors[0].Message != "" {
			return fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, er.Errors[0].Message)
		}
		return fmt.Errorf("sendgrid http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	s.log.Debug("mail sent", "email", to, "message_id", resp.Header.Get("X-Message-Id"))
	return nil
}

func (s *SendGridService) Name() string { return "email" }

// Dispatch mails an admin passcode to address.
func (s *SendGridService) Dispatch(ctx context.Context, address, code string) error {
	text := fmt.Sprintf("Your Tintura admin passcode is %s.\n\nIt expires in 10 minutes and can be used once.", code)
	return s.SendText(ctx, address, "Your Tintura admin passcode", text)
}
