package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/importer"
	"github.com/sells-group/prospector/internal/notify"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/crm"
)

// env bundles the wired pipeline components shared by the commands.
type env struct {
	Store    store.Store
	Session  *crm.Session
	CRM      crm.Client
	Pipeline *importer.Pipeline
	Notifier notify.Multi
}

// Close releases resources in reverse wiring order.
func (e *env) Close() {
	if e.Store != nil {
		if err := e.Store.Close(); err != nil {
			zap.L().Warn("close store", zap.Error(err))
		}
	}
}

// initEnv wires the store, CRM client, and import pipeline. Extra
// notifiers (the panel hub, when serving) are fanned out alongside the
// log notifier.
func initEnv(ctx context.Context, extra ...notify.Notifier) (*env, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open store")
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	session := crm.NewSession(jwtAuthenticator())
	if token, expiry, err := st.AuthSession(ctx); err == nil && token != "" {
		session.Restore(token, expiry)
	}

	sf, err := initSalesforce()
	if err != nil {
		st.Close()
		return nil, err
	}

	client := crm.NewClient(sf,
		crm.WithRateLimit(cfg.CRM.RateLimitRPS),
		crm.WithSession(session),
	)

	notifier := append(notify.Multi{notify.LogNotifier{}}, extra...)
	pipeline := importer.New(importer.NewGateway(client), st, notifier, cfg.Import)

	return &env{
		Store:    st,
		Session:  session,
		CRM:      client,
		Pipeline: pipeline,
		Notifier: notifier,
	}, nil
}

// initSalesforce authenticates against the org with the configured JWT
// credentials.
func initSalesforce() (*salesforce.Salesforce, error) {
	if cfg.CRM.ClientID == "" {
		return nil, eris.New("salesforce client ID is required (PROSPECTOR_CRM_CLIENT_ID)")
	}

	pemData, err := os.ReadFile(cfg.CRM.KeyPath)
	if err != nil {
		return nil, eris.Wrap(err, "read salesforce JWT private key")
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.CRM.LoginURL,
		Username:       cfg.CRM.Username,
		ConsumerKey:    cfg.CRM.ClientID,
		ConsumerRSAPem: string(pemData),
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sf, nil
}

// jwtAuthenticator re-runs the JWT flow to mint a fresh bearer token.
// The JWT grant carries no refresh token, so expiry is bounded by the
// configured TTL rather than reported by the org.
func jwtAuthenticator() crm.Authenticator {
	return crm.AuthenticatorFunc(func(ctx context.Context) (string, time.Time, error) {
		sf, err := initSalesforce()
		if err != nil {
			return "", time.Time{}, err
		}
		token := sf.GetAccessToken()
		if token == "" {
			return "", time.Time{}, eris.New("salesforce returned empty access token")
		}
		return token, time.Now().Add(time.Duration(cfg.CRM.TokenTTLMins) * time.Minute), nil
	})
}

// supportedURL reports whether a page URL matches the configured
// profile pattern.
func supportedURL(url string) bool {
	return strings.Contains(url, cfg.Panel.SupportedPattern)
}
