package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dealradar/internal/domain/entity"
	"dealradar/pkg/httpx"
	"dealradar/pkg/logx"
)

const (
	mailjetSendURL = "https://api.mailjet.com/v3.1/send"

	emailSubject     = "Deal Alert!"
	emailSendTimeout = 15 * time.Second
)

type EmailSender struct {
	apiKey    string
	apiSecret string
	from      string
	to        string

	httpClient *http.Client
}

func NewEmailSender(apiKey, apiSecret, from, to string) *EmailSender {
	return &EmailSender{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		from:      from,
		to:        to,
		httpClient: &http.Client{
			Timeout: emailSendTimeout,
			Transport: httpx.NewLoggingRoundTripper(
				http.DefaultTransport,
				httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
				httpx.WithLogFieldMaxLen(2048),
			),
		},
	}
}

type mailjetMessage struct {
	From     mailjetAddress   `json:"From"`
	To       []mailjetAddress `json:"To"`
	Subject  string           `json:"Subject"`
	TextPart string           `json:"TextPart"`
}

type mailjetAddress struct {
	Email string `json:"Email"`
}

type mailjetPayload struct {
	Messages []mailjetMessage `json:"Messages"`
}

// Send отправляет одно письмо со сводкой по всем сделкам.
func (s *EmailSender) Send(ctx context.Context, opportunities []entity.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	payload := mailjetPayload{
		Messages: []mailjetMessage{{
			From:     mailjetAddress{Email: s.from},
			To:       []mailjetAddress{{Email: s.to}},
			Subject:  emailSubject,
			TextPart: formatDigest(opportunities),
		}},
	}

	body, err := jsoniter.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mailjetSendURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(s.apiKey, s.apiSecret)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mailjet responded with status %d", resp.StatusCode)
	}

	return nil
}

func formatDigest(opportunities []entity.Opportunity) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Found %d deal(s) worth a look:\n\n", len(opportunities))
	for _, opportunity := range opportunities {
		fmt.Fprintf(&sb,
			"- %s\n  price $%.2f, estimated $%.2f, discount $%.2f\n  %s\n\n",
			opportunity.Deal.Title,
			opportunity.Deal.Price,
			opportunity.Estimate.Value,
			opportunity.Discount,
			opportunity.Deal.URL,
		)
	}

	return sb.String()
}
