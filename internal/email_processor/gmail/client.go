// Package gmail polls a mailbox for financial emails and turns them into
// ingestion jobs. Raw attachment bytes go to the object store; Kafka carries
// references only.
package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/finvault-backend/internal/config"
)

// Attachment is one downloadable file on a message.
type Attachment struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// Message is the decoded form of one Gmail message.
type Message struct {
	ID          string
	Subject     string
	Sender      string
	Recipient   string
	Body        string
	Date        time.Time
	Attachments []Attachment
}

// Client is the slice of the Gmail API the poller needs.
type Client interface {
	ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error)
	FetchMessage(ctx context.Context, id string) (*Message, error)
}

// APIClient implements Client on the Gmail v1 API.
type APIClient struct {
	service *gmailapi.Service
	user    string
}

var _ Client = (*APIClient)(nil)

// NewAPIClient builds a Gmail client from the configured credentials file.
func NewAPIClient(ctx context.Context, cfg *config.GmailConfig) (*APIClient, error) {
	service, err := gmailapi.NewService(ctx,
		option.WithCredentialsFile(cfg.CredentialsFile),
		option.WithScopes(gmailapi.GmailReadonlyScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	user := cfg.UserID
	if user == "" {
		user = "me"
	}

	return &APIClient{service: service, user: user}, nil
}

// ListMessageIDs returns the ids of messages matching the query, newest first.
func (c *APIClient) ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error) {
	call := c.service.Users.Messages.List(c.user).Context(ctx).Q(query)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// FetchMessage downloads one message in full, including attachment bytes.
func (c *APIClient) FetchMessage(ctx context.Context, id string) (*Message, error) {
	msg, err := c.service.Users.Messages.Get(c.user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}

	out := &Message{ID: msg.Id}
	if msg.Payload == nil {
		return out, nil
	}

	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			out.Subject = h.Value
		case "from":
			out.Sender = addressOf(h.Value)
		case "to", "delivered-to":
			if out.Recipient == "" {
				out.Recipient = addressOf(h.Value)
			}
		case "date":
			if t, err := mail.ParseDate(h.Value); err == nil {
				out.Date = t
			}
		}
	}
	if out.Date.IsZero() && msg.InternalDate > 0 {
		out.Date = time.UnixMilli(msg.InternalDate)
	}

	out.Body = bodyText(msg.Payload)

	if err := c.collectAttachments(ctx, msg.Id, msg.Payload, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *APIClient) collectAttachments(ctx context.Context, msgID string, part *gmailapi.MessagePart, out *Message) error {
	if part == nil {
		return nil
	}

	if part.Filename != "" && part.Body != nil {
		data, err := c.partData(ctx, msgID, part)
		if err != nil {
			return err
		}
		out.Attachments = append(out.Attachments, Attachment{
			Filename: part.Filename,
			MimeType: part.MimeType,
			Size:     int64(len(data)),
			Data:     data,
		})
	}

	for _, child := range part.Parts {
		if err := c.collectAttachments(ctx, msgID, child, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *APIClient) partData(ctx context.Context, msgID string, part *gmailapi.MessagePart) ([]byte, error) {
	if part.Body.Data != "" {
		data, err := base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode attachment %s: %w", part.Filename, err)
		}
		return data, nil
	}

	if part.Body.AttachmentId == "" {
		return nil, nil
	}

	body, err := c.service.Users.Messages.Attachments.
		Get(c.user, msgID, part.Body.AttachmentId).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to download attachment %s: %w", part.Filename, err)
	}

	data, err := base64.RawURLEncoding.DecodeString(body.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode attachment %s: %w", part.Filename, err)
	}
	return data, nil
}

// bodyText finds the first text/plain part, falling back to text/html.
func bodyText(payload *gmailapi.MessagePart) string {
	if text := findPart(payload, "text/plain"); text != "" {
		return text
	}
	return findPart(payload, "text/html")
}

func findPart(part *gmailapi.MessagePart, mimeType string) string {
	if part == nil {
		return ""
	}
	if part.MimeType == mimeType && part.Filename == "" && part.Body != nil && part.Body.Data != "" {
		data, err := base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err == nil {
			return string(data)
		}
	}
	for _, child := range part.Parts {
		if text := findPart(child, mimeType); text != "" {
			return text
		}
	}
	return ""
}

// addressOf extracts the bare address from a header like `Name <a@b.c>`.
func addressOf(header string) string {
	if addr, err := mail.ParseAddress(header); err == nil {
		return addr.Address
	}
	return strings.TrimSpace(header)
}
