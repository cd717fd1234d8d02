// Package importer runs the deduplicating CRM import pipeline for
// extracted profiles, singly and in partial-failure-tolerant batches.
package importer

import (
	"context"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/pkg/crm"
)

// CRM is the remote surface the pipeline needs. It exists so the
// pipeline is testable without an org.
type CRM interface {
	FindContactByProfileURL(ctx context.Context, profileURL string) (*crm.ContactRecord, error)
	FindContactByEmail(ctx context.Context, email string) (*crm.ContactRecord, error)
	FindCompanyBySourceURL(ctx context.Context, sourceURL string) (*crm.AccountRecord, error)
	CreateLeadCompany(ctx context.Context, company model.LeadCompany) (string, error)
	CreateContact(ctx context.Context, contact model.Contact) (string, error)
}

// gateway adapts the crm package to the CRM interface.
type gateway struct {
	client crm.Client
}

// NewGateway wraps a CRM client for the pipeline.
func NewGateway(client crm.Client) CRM {
	return &gateway{client: client}
}

func (g *gateway) FindContactByProfileURL(ctx context.Context, profileURL string) (*crm.ContactRecord, error) {
	return crm.FindContactByProfileURL(ctx, g.client, profileURL)
}

func (g *gateway) FindContactByEmail(ctx context.Context, email string) (*crm.ContactRecord, error) {
	return crm.FindContactByEmail(ctx, g.client, email)
}

func (g *gateway) FindCompanyBySourceURL(ctx context.Context, sourceURL string) (*crm.AccountRecord, error) {
	return crm.FindAccountBySourceURL(ctx, g.client, sourceURL)
}

func (g *gateway) CreateLeadCompany(ctx context.Context, company model.LeadCompany) (string, error) {
	return crm.CreateLeadCompany(ctx, g.client, company)
}

func (g *gateway) CreateContact(ctx context.Context, contact model.Contact) (string, error) {
	return crm.CreateContact(ctx, g.client, contact)
}
