package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoToken       = errors.New("recipient has no push token")
	ErrGatewayStatus = errors.New("push gateway returned error status")
)

// Message is a single Expo push message
type Message struct {
	To    string            `json:"to"`
	Title string            `json:"title,omitempty"`
	Body  string            `json:"body,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
	Sound string            `json:"sound,omitempty"`
}

// Ticket is the gateway's per-message answer
type Ticket struct {
	Status  string `json:"status"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
	Details struct {
		Error string `json:"error,omitempty"`
	} `json:"details,omitempty"`
}

// TicketError reports a message the gateway accepted over HTTP but refused
type TicketError struct {
	Ticket Ticket
}

func (e *TicketError) Error() string {
	if e.Ticket.Details.Error != "" {
		return fmt.Sprintf("push rejected: %s (%s)", e.Ticket.Message, e.Ticket.Details.Error)
	}
	return "push rejected: " + e.Ticket.Message
}

type Sender interface {
	Send(ctx context.Context, msg Message) (*Ticket, error)
}

// ExpoClient posts to the Expo push API
type ExpoClient struct {
	url         string
	accessToken string
	httpClient  *http.Client
	logger      *logrus.Logger
}

func NewExpoClient(url, accessToken string, timeout time.Duration, logger *logrus.Logger) *ExpoClient {
	return &ExpoClient{
		url:         url,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// IsExpoToken reports whether token looks like an Expo push token
func IsExpoToken(token string) bool {
	return (strings.HasPrefix(token, "ExponentPushToken[") || strings.HasPrefix(token, "ExpoPushToken[")) &&
		strings.HasSuffix(token, "]")
}

func (c *ExpoClient) Send(ctx context.Context, msg Message) (*Ticket, error) {
	if msg.To == "" {
		return nil, ErrNoToken
	}
	if msg.Sound == "" {
		msg.Sound = "default"
	}

	jsonData, err := json.Marshal([]Message{msg})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send push: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read push response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d %s", ErrGatewayStatus, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Data []Ticket `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}
	if len(parsed.Data) == 0 {
		return nil, errors.New("push response carried no ticket")
	}

	ticket := parsed.Data[0]
	if ticket.Status == "error" {
		return &ticket, &TicketError{Ticket: ticket}
	}

	c.logger.WithFields(logrus.Fields{
		"ticket_id": ticket.ID,
		"status":    ticket.Status,
	}).Debug("Push accepted by gateway")
	return &ticket, nil
}
