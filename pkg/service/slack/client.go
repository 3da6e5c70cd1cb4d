package slack

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/slack-go/slack"
)

const (
	// DefaultCacheTTL is the default TTL for the channel name cache
	DefaultCacheTTL = 10 * time.Minute
)

// cacheEntry holds a cached channel name with expiration
type cacheEntry struct {
	name      string
	expiresAt time.Time
}

// client implements Service interface
type client struct {
	api          *slack.Client
	channelID    string
	dashboardURL string
	cacheTTL     time.Duration

	mu    sync.Mutex
	cache *cacheEntry
}

// Option is a functional option for client configuration
type Option func(*client, *[]slack.Option)

// WithCacheTTL sets the TTL for the channel name cache
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *client, _ *[]slack.Option) {
		c.cacheTTL = ttl
	}
}

// WithDashboardURL links alerts back to the patient detail view
func WithDashboardURL(url string) Option {
	return func(c *client, _ *[]slack.Option) {
		c.dashboardURL = strings.TrimSuffix(url, "/")
	}
}

// WithAPIURL points the client at another Slack API endpoint
func WithAPIURL(url string) Option {
	return func(_ *client, opts *[]slack.Option) {
		*opts = append(*opts, slack.OptionAPIURL(url))
	}
}

// New creates a new Slack service posting to channelID with the provided bot token
func New(token, channelID string, opts ...Option) (Service, error) {
	if token == "" {
		return nil, goerr.New("Slack bot token is required")
	}
	if channelID == "" {
		return nil, goerr.New("Slack alert channel is required")
	}

	c := &client{
		channelID: channelID,
		cacheTTL:  DefaultCacheTTL,
	}

	var apiOpts []slack.Option
	for _, opt := range opts {
		opt(c, &apiOpts)
	}
	c.api = slack.New(token, apiOpts...)

	return c, nil
}

// NotifyEscalation posts one escalation as a Block Kit message
func (c *client) NotifyEscalation(ctx context.Context, n *model.Notification) error {
	blocks := buildEscalationBlocks(n, c.dashboardURL)
	text := escalationText(n)

	_, _, err := c.api.PostMessageContext(ctx, c.channelID,
		slack.MsgOptionBlocks(blocks...),
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to post escalation",
			goerr.V("channel_id", c.channelID),
			goerr.V("submission_id", n.SubmissionID))
	}
	return nil
}

// ChannelName retrieves the alert channel name with caching
func (c *client) ChannelName(ctx context.Context) (string, error) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cache != nil && c.cache.expiresAt.After(now) {
		return c.cache.name, nil
	}

	info, err := c.api.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: c.channelID,
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to get channel info", goerr.V("channel_id", c.channelID))
	}

	c.cache = &cacheEntry{
		name:      info.Name,
		expiresAt: now.Add(c.cacheTTL),
	}
	return info.Name, nil
}

func escalationText(n *model.Notification) string {
	return fmt.Sprintf("%s escalation for patient %s", n.TriageLevel.Label(), n.StudyID)
}

func buildEscalationBlocks(n *model.Notification, dashboardURL string) []slack.Block {
	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, escalationText(n), false, false),
	)

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Study ID*\n"+n.StudyID, false, false),
		slack.NewTextBlockObject(slack.MarkdownType, "*Triage level*\n"+n.TriageLevel.Label(), false, false),
		slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Submitted*\n<!date^%d^{date_short_pretty} {time}|%s>",
				n.Timestamp.Unix(), n.Timestamp.UTC().Format(time.RFC3339)), false, false),
	}
	blocks := []slack.Block{
		header,
		slack.NewSectionBlock(nil, fields, nil),
	}

	if dashboardURL != "" {
		link := fmt.Sprintf("<%s/patients/%s|Open patient in dashboard>", dashboardURL, n.PatientID)
		blocks = append(blocks, slack.NewContextBlock("",
			slack.NewTextBlockObject(slack.MarkdownType, link, false, false),
		))
	}

	return blocks
}
