package main

import (
	"context"
	"time"

	"github.com/agenthands/cobalt/internal/core"
	"github.com/agenthands/cobalt/internal/crm"
	"github.com/agenthands/cobalt/internal/places"
	"github.com/agenthands/cobalt/internal/retry"
)

// newStore authenticates against the record store. Failure here aborts the
// run; nothing downstream can work without the store.
func newStore(ctx context.Context) (crm.Store, error) {
	creds := crm.CredentialsFromEnv()
	// File config fills whatever the environment left empty.
	if creds.Username == "" {
		creds.Username = cfg.Salesforce.Username
	}
	if creds.Password == "" {
		creds.Password = cfg.Salesforce.Password
	}
	if creds.SecurityToken == "" {
		creds.SecurityToken = cfg.Salesforce.SecurityToken
	}
	if creds.ClientID == "" {
		creds.ClientID = cfg.Salesforce.ClientID
	}
	if creds.ClientSecret == "" {
		creds.ClientSecret = cfg.Salesforce.ClientSecret
	}
	if creds.LoginURL == "" {
		creds.LoginURL = cfg.Salesforce.LoginURL
	}
	return crm.NewSalesforceStore(ctx, creds, logger.Named("crm"))
}

func newSearcher() *places.Client {
	c := places.NewClient(cfg.Serp.APIKey)
	if cfg.Serp.Engine != "" {
		c.Engine = cfg.Serp.Engine
	}
	c.HL = cfg.Serp.HL
	c.GL = cfg.Serp.GL
	c.GoogleDomain = cfg.Serp.GoogleDomain
	return c
}

func newCleaner(ctx context.Context) (*core.Cleaner, error) {
	store, err := newStore(ctx)
	if err != nil {
		return nil, err
	}
	return core.NewCleaner(store, newSearcher(), logger), nil
}

// enrichPolicy maps the config knobs onto the shared retry policy.
func enrichPolicy(maxRetries int, backoffFactor, pauseSeconds float64) retry.Policy {
	p := retry.Default()
	if maxRetries > 0 {
		p.MaxAttempts = maxRetries
	}
	if backoffFactor > 0 {
		p.BaseDelay = time.Duration(backoffFactor * float64(time.Second))
	}
	p.Pause = time.Duration(pauseSeconds * float64(time.Second))
	return p
}
