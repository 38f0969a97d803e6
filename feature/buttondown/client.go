package buttondown

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"roster-sync/core/reconcile"
	"roster-sync/core/rest"
	"roster-sync/core/utils"

	"go.uber.org/zap"
)

const subscribersPath = "/v1/subscribers"

// DefaultSkipCodes are the rejections caused by the address itself.
var DefaultSkipCodes = []string{"email_blocked", "email_invalid"}

// Client lists and mutates Buttondown subscribers. It implements reconcile.Mutator.
type Client struct {
	rest   *rest.Client
	logger *zap.Logger
}

var _ reconcile.Mutator = (*Client)(nil)

type subscriber struct {
	EmailAddress string         `json:"email_address"`
	Tags         []string       `json:"tags"`
	Metadata     map[string]any `json:"metadata"`
}

type subscribersPage struct {
	Count   int          `json:"count"`
	Next    *string      `json:"next"`
	Results []subscriber `json:"results"`
}

// NewClient creates a Buttondown client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	return &Client{
		rest:   rest.New(cfg.URL, cfg.APIKey, time.Duration(cfg.TimeoutSeconds)*time.Second, logger),
		logger: logger,
	}
}

// Skippable returns the predicate marking API errors with one of codes as skippable.
// Without codes, DefaultSkipCodes are used.
func Skippable(codes ...string) func(error) bool {
	if len(codes) == 0 {
		codes = DefaultSkipCodes
	}
	return rest.HasCode(codes...)
}

// ListSubscribers reads every subscriber, following pagination.
func (c *Client) ListSubscribers(ctx context.Context) ([]reconcile.MirrorRecord, error) {
	next := subscribersPath

	var records []reconcile.MirrorRecord
	for next != "" {
		var page subscribersPage
		if err := c.rest.Get(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("failed to list subscribers: %w", err)
		}

		for _, s := range page.Results {
			md := make(reconcile.Metadata, len(s.Metadata))
			for k, v := range s.Metadata {
				md[k] = utils.ToString(v)
			}
			records = append(records, reconcile.NewMirrorRecord(s.EmailAddress, reconcile.NewTags(s.Tags...), md))
		}

		next = ""
		if page.Next != nil {
			next = *page.Next
		}
	}

	c.logger.Info("Loaded subscribers", zap.Int("count", len(records)))
	return records, nil
}

// CreateSubscriber creates a subscriber.
func (c *Client) CreateSubscriber(ctx context.Context, op reconcile.AddSubscriber) error {
	body := subscriber{
		EmailAddress: op.Email,
		Tags:         tagList(op.Tags),
		Metadata:     metadataMap(op.Metadata),
	}
	return c.rest.Do(ctx, http.MethodPost, subscribersPath, body, nil)
}

// UpdateSubscriber patches the subscriber at op.OldEmail with the specified fields only.
func (c *Client) UpdateSubscriber(ctx context.Context, op reconcile.EditSubscriber) error {
	body := map[string]any{}
	if op.NewEmail != nil {
		body["email_address"] = *op.NewEmail
	}
	if op.Tags != nil {
		body["tags"] = tagList(*op.Tags)
	}
	if op.Metadata != nil {
		body["metadata"] = metadataMap(*op.Metadata)
	}
	return c.rest.Do(ctx, http.MethodPatch, subscriberPath(op.OldEmail), body, nil)
}

// DeleteSubscriber deletes the subscriber at op.Email.
func (c *Client) DeleteSubscriber(ctx context.Context, op reconcile.DeleteSubscriber) error {
	return c.rest.Do(ctx, http.MethodDelete, subscriberPath(op.Email), nil, nil)
}

func subscriberPath(email string) string {
	return subscribersPath + "/" + url.PathEscape(email)
}

func tagList(tags reconcile.Tags) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func metadataMap(md reconcile.Metadata) map[string]any {
	out := make(map[string]any, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}
