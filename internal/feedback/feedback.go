// Package feedback stores user feedback locally and forwards it to a collection endpoint.
package feedback

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/typeflow/internal/model"
)

const sendTimeout = 15 * time.Second

// ErrEmpty is returned when every free-text field is blank.
var ErrEmpty = errors.New("feedback is empty")

// Store keeps the durable local copy.
type Store interface {
	SaveFeedback(ctx context.Context, entry model.FeedbackEntry) error
	MarkFeedbackSent(ctx context.Context, id string) error
}

// Form is what the user filled in.
type Form struct {
	Liked   string
	Improve string
	Bugs    string
	Email   string
}

// Sender saves and delivers feedback.
type Sender struct {
	store   Store
	url     string
	version string
	client  *http.Client
	now     func() time.Time
}

// Option configures a Sender.
type Option func(*Sender)

// WithHTTPClient overrides the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Sender) { s.client = c }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Sender) { s.now = now }
}

// New returns a Sender. An empty url keeps feedback local only.
func New(store Store, url, version string, opts ...Option) *Sender {
	s := &Sender{
		store:   store,
		url:     strings.TrimSpace(url),
		version: version,
		client:  &http.Client{Timeout: sendTimeout},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserAgent identifies the client in submitted entries.
func (s *Sender) UserAgent() string {
	return fmt.Sprintf("typeflow/%s (%s/%s)", s.version, runtime.GOOS, runtime.GOARCH)
}

// Submit saves the entry locally and starts delivery in the background.
// The returned channel is closed once delivery has finished or been skipped.
// Delivery failures are logged and never reported to the caller.
func (s *Sender) Submit(ctx context.Context, form Form) (model.FeedbackEntry, <-chan struct{}, error) {
	entry, err := s.newEntry(form)
	if err != nil {
		return model.FeedbackEntry{}, nil, err
	}
	if err := s.store.SaveFeedback(ctx, entry); err != nil {
		return model.FeedbackEntry{}, nil, err
	}
	done := make(chan struct{})
	if s.url == "" {
		close(done)
		return entry, done, nil
	}
	go func() {
		defer close(done)
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
		defer cancel()
		if err := s.Send(sendCtx, entry); err != nil {
			log.Printf("feedback %s not delivered: %v", entry.ID, err)
			return
		}
		if err := s.store.MarkFeedbackSent(sendCtx, entry.ID); err != nil {
			log.Printf("feedback %s delivered but not marked: %v", entry.ID, err)
		}
	}()
	return entry, done, nil
}

func (s *Sender) newEntry(form Form) (model.FeedbackEntry, error) {
	entry := model.FeedbackEntry{
		Liked:   strings.TrimSpace(form.Liked),
		Improve: strings.TrimSpace(form.Improve),
		Bugs:    strings.TrimSpace(form.Bugs),
		Email:   strings.TrimSpace(form.Email),
	}
	if entry.Liked == "" && entry.Improve == "" && entry.Bugs == "" {
		return model.FeedbackEntry{}, ErrEmpty
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = s.now().UTC()
	entry.UserAgent = s.UserAgent()
	return entry, nil
}

// Send posts one entry as JSON.
func (s *Sender) Send(ctx context.Context, entry model.FeedbackEntry) error {
	if s.url == "" {
		return errors.New("feedback url is not configured")
	}
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build feedback request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", entry.UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post feedback: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort close; response already handled.
			_ = cerr
		}
	}()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("feedback endpoint returned %s", resp.Status)
	}
	return nil
}
