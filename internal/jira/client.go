// Package jira wraps the Jira REST API behind the small surface the exporter
// needs: a retrying paged search, per-issue comment listing, and user lookup.
package jira

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"log/slog"

	jira "github.com/andygrunwald/go-jira"
	"golang.org/x/oauth2"

	"github.com/mfeher/jiraexport/internal/config"
	"github.com/mfeher/jiraexport/internal/logging"
	"github.com/mfeher/jiraexport/pkg/models"
)

// Client handles interactions with the Jira API.
type Client struct {
	client *jira.Client
	log    *slog.Logger

	// retry policy for transient search failures
	maxAttempts int
	retryDelay  time.Duration

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// NewClient connects to the configured Jira instance using bearer-token
// authentication and, when client_crt/client_key are set, mutual TLS.
// The connection is verified immediately so credential problems fail fast.
func NewClient(cfg *config.Config, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	ctx := context.Background()
	if cfg.ClientCert != "" {
		base, err := clientCertTransport(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, err
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Transport: base})
	}

	// The personal access token rides as a bearer credential.
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: cfg.Token},
	)
	tc := oauth2.NewClient(ctx, ts)

	jiraClient, err := jira.NewClient(tc, cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client for '%s': %w", cfg.Server, err)
	}

	log.Info("connecting to jira",
		"server", cfg.Server,
		"token", logging.MaskSensitive(cfg.Token))

	self, _, err := jiraClient.User.GetSelf()
	if err != nil {
		return nil, fmt.Errorf("connection to jira server '%s' failed: %w", cfg.Server, err)
	}

	log.Info("jira connected",
		"server", cfg.Server,
		"user", self.Name)

	return &Client{
		client:      jiraClient,
		log:         log,
		maxAttempts: cfg.Retries,
		retryDelay:  time.Duration(cfg.RetryDelaySeconds) * time.Second,
		sleep:       time.Sleep,
	}, nil
}

// clientCertTransport builds an HTTP transport carrying the configured
// client certificate pair.
func clientCertTransport(certFile, keyFile string) (*http.Transport, error) {
	for _, f := range []string{certFile, keyFile} {
		if _, err := os.Stat(f); err != nil {
			return nil, fmt.Errorf("client certificate file '%s' not found: %w", f, err)
		}
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate pair: %w", err)
	}

	return &http.Transport{
		TLSClientConfig: &tls.Config{
			Certificates: []tls.Certificate{cert},
		},
	}, nil
}

// SearchPage executes one bounded page of a JQL search and returns the
// issues of that page together with the server-reported total result count.
//
// HTTP 500 and 503 responses are retried with a linear backoff: before the
// n-th retry the fetcher waits n times the configured base delay. Any other
// failure, and the last failure once the attempt budget is spent, propagates
// unmodified. No state is kept between calls.
func (c *Client) SearchPage(jql string, fields []string, expand string, maxResults, startAt int) ([]models.Issue, int, error) {
	if c == nil || c.client == nil {
		return nil, 0, ErrNoClient
	}
	if maxResults <= 0 {
		return nil, 0, fmt.Errorf("maxResults must be positive, got %d", maxResults)
	}
	if startAt < 0 {
		return nil, 0, fmt.Errorf("startAt must not be negative, got %d", startAt)
	}

	opts := &jira.SearchOptions{
		StartAt:    startAt,
		MaxResults: maxResults,
		Expand:     expand,
		Fields:     fields,
	}

	sleep := c.sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	for attempt := 1; ; attempt++ {
		issues, resp, err := c.client.Issue.Search(jql, opts)
		if err == nil {
			page := make([]models.Issue, 0, len(issues))
			for i := range issues {
				page = append(page, fromJiraIssue(&issues[i]))
			}
			return page, resp.Total, nil
		}

		if !retryable(resp) || attempt >= c.maxAttempts {
			return nil, 0, err
		}

		wait := time.Duration(attempt) * c.retryDelay
		c.log.Warn("transient jira search failure, retrying",
			"attempt", attempt,
			"max_attempts", c.maxAttempts,
			"status", resp.StatusCode,
			"wait", wait,
			"start_at", startAt)
		sleep(wait)
	}
}

// Comments fetches all comments of an issue in the order Jira stores them.
// This is a single blocking call per issue, no pagination.
func (c *Client) Comments(issueKey string) ([]models.Comment, error) {
	if c == nil || c.client == nil {
		return nil, ErrNoClient
	}

	issue, _, err := c.client.Issue.Get(issueKey, &jira.GetQueryOptions{Fields: "comment"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments of '%s': %w", issueKey, err)
	}

	if issue.Fields == nil || issue.Fields.Comments == nil {
		return nil, nil
	}

	comments := make([]models.Comment, 0, len(issue.Fields.Comments.Comments))
	for _, cm := range issue.Fields.Comments.Comments {
		comments = append(comments, models.Comment{
			IssueKey:    issueKey,
			Body:        cm.Body,
			Author:      cm.Author.DisplayName,
			AuthorEmail: cm.Author.EmailAddress,
			Created:     cm.Created,
			Updated:     cm.Updated,
		})
	}
	return comments, nil
}

// LookupUser resolves a username (the token inside a [~mention]) to a user.
// Server-style instances key users by username, which go-jira's account-id
// based helpers do not cover, so this goes through the raw request API.
func (c *Client) LookupUser(username string) (models.User, error) {
	if c == nil || c.client == nil {
		return models.User{}, ErrNoClient
	}

	endpoint := fmt.Sprintf("rest/api/2/user?username=%s", url.QueryEscape(username))
	req, err := c.client.NewRequest("GET", endpoint, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to build user lookup request for '%s': %w", username, err)
	}

	user := new(jira.User)
	if _, err := c.client.Do(req, user); err != nil {
		return models.User{}, fmt.Errorf("user lookup failed for '%s': %w", username, err)
	}

	name := user.Name
	if name == "" {
		name = username
	}
	return models.User{
		Name:         name,
		DisplayName:  user.DisplayName,
		EmailAddress: user.EmailAddress,
	}, nil
}

// fromJiraIssue flattens a go-jira issue into the exporter's snapshot model.
func fromJiraIssue(ji *jira.Issue) models.Issue {
	issue := models.Issue{Key: ji.Key}

	f := ji.Fields
	if f == nil {
		return issue
	}

	issue.Summary = f.Summary
	issue.Type = f.Type.Name
	if f.Priority != nil {
		issue.Priority = f.Priority.Name
	}
	if f.Reporter != nil {
		issue.Reporter = f.Reporter.Name
	}
	if f.Assignee != nil {
		issue.Assignee = f.Assignee.Name
	}
	if created := time.Time(f.Created); !created.IsZero() {
		issue.Created = created.Format(TimeFormat)
	}
	return issue
}
