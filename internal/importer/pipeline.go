package importer

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/config"
	"github.com/sells-group/prospector/internal/mapper"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/notify"
	"github.com/sells-group/prospector/internal/resilience"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/crm"
)

// Pipeline imports extracted profiles into the CRM. Deduplication is
// authoritative at call time only: two near-simultaneous imports of the
// same profile can race past the check, a narrow window that is
// accepted rather than locked away.
type Pipeline struct {
	crm      CRM
	store    store.Store
	notifier notify.Notifier
	cfg      config.ImportConfig
	retry    resilience.RetryConfig
}

// New builds a Pipeline.
func New(remote CRM, st store.Store, notifier notify.Notifier, cfg config.ImportConfig) *Pipeline {
	retry := resilience.DefaultRetryConfig()
	if cfg.RetryMax > 0 {
		retry.MaxAttempts = cfg.RetryMax
	}
	return &Pipeline{
		crm:      remote,
		store:    st,
		notifier: notifier,
		cfg:      cfg,
		retry:    retry,
	}
}

// FindExisting reports whether a contact with the profile's URL (or,
// when present, email) already exists in the CRM.
func (p *Pipeline) FindExisting(ctx context.Context, profileURL, email string) (*model.Contact, error) {
	if profileURL != "" {
		rec, err := p.crm.FindContactByProfileURL(ctx, profileURL)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return recordToContact(rec), nil
		}
	}
	if email != "" {
		rec, err := p.crm.FindContactByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			return recordToContact(rec), nil
		}
	}
	return nil, nil
}

// ImportProfile runs the single-profile import sequence: duplicate
// check, optional company creation (non-fatal), contact validation and
// creation, history append, notification. It returns the contact's
// history record on success.
func (p *Pipeline) ImportProfile(ctx context.Context, profile *model.ExtractedProfile, ownerID string) (*model.ImportRecord, error) {
	prefs := p.preferences(ctx)
	if ownerID == "" && prefs.AutoAssignOwner {
		ownerID = prefs.DefaultOwnerID
	}

	log := zap.L().With(zap.String("profile", profile.ProfileURL))

	// (a) Duplicate check, keyed on profile URL and email. Fail fast.
	if prefs.DuplicateChecking {
		existing, err := p.FindExisting(ctx, profile.ProfileURL, profile.Email)
		if err != nil {
			return nil, eris.Wrap(err, "import: duplicate check")
		}
		if existing != nil {
			p.appendRecord(ctx, model.ImportRecord{
				Type:   model.RecordContact,
				Name:   existing.Name,
				Status: model.ImportDuplicate,
				CRMID:  existing.CRMID,
			})
			p.notifyFailure(ctx, prefs, "Already in CRM: "+existing.Name)
			return nil, eris.Wrapf(resilience.ErrAlreadyExists, "import: contact %s", profile.ProfileURL)
		}
	}

	// (b) Company creation. Attempted at most once per extraction and
	// non-fatal: the contact proceeds without linkage on failure.
	companyID := p.ensureCompany(ctx, profile, ownerID, prefs)

	// (c) Map and validate the contact.
	contact := mapper.ProfileToContact(profile, ownerID)
	contact.CompanyID = companyID
	if p.cfg.LeadSource != "" {
		contact.LeadSource = p.cfg.LeadSource
	}
	if fieldErrs := mapper.ValidateContact(contact); len(fieldErrs) > 0 {
		msgs := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			msgs[i] = fe.Error()
		}
		p.notifyFailure(ctx, prefs, "Import blocked: invalid contact")
		return nil, resilience.NewValidationError(msgs...)
	}

	// (d) Create the contact.
	crmID, err := resilience.DoVal(ctx, p.retryFor("create contact"), func(ctx context.Context) (string, error) {
		return p.crm.CreateContact(ctx, contact)
	})
	if err != nil {
		log.Warn("import: contact creation failed", zap.String("cause", resilience.Describe(err)))
		p.appendRecord(ctx, model.ImportRecord{
			Type:   model.RecordContact,
			Name:   contact.Name,
			Status: model.ImportFailed,
			Error:  resilience.UserMessage(resilience.ClassifyError(err)),
		})
		p.notifyFailure(ctx, prefs, resilience.UserMessage(resilience.ClassifyError(err)))
		return nil, eris.Wrap(err, "import: create contact")
	}

	// (e) Append history.
	rec := model.ImportRecord{
		Type:      model.RecordContact,
		Name:      contact.Name,
		Status:    model.ImportSucceeded,
		CRMID:     crmID,
		Timestamp: time.Now().UTC(),
	}
	p.appendRecord(ctx, rec)

	// (f) Notify.
	p.notifySuccess(ctx, prefs, "Imported "+contact.Name)
	log.Info("import: contact created",
		zap.String("crm_id", crmID),
		zap.Bool("linked_company", companyID != ""),
	)
	return &rec, nil
}

// ensureCompany maps, dedupes, and creates the profile's lead company,
// returning the CRM id to link or "" when there is nothing to link.
func (p *Pipeline) ensureCompany(ctx context.Context, profile *model.ExtractedProfile, ownerID string, prefs model.Preferences) string {
	company := mapper.ProfileToLeadCompany(profile, ownerID)
	if company == nil {
		return ""
	}
	if p.cfg.LeadSource != "" {
		company.LeadSource = p.cfg.LeadSource
	}

	log := zap.L().With(zap.String("company", company.Name))

	if prefs.DuplicateChecking && company.SourceURL != "" {
		existing, err := p.crm.FindCompanyBySourceURL(ctx, company.SourceURL)
		if err != nil {
			log.Warn("import: company duplicate check failed, skipping company", zap.Error(err))
			return ""
		}
		if existing != nil {
			log.Debug("import: linking existing company", zap.String("crm_id", existing.ID))
			return existing.ID
		}
	}

	crmID, err := resilience.DoVal(ctx, p.retryFor("create company"), func(ctx context.Context) (string, error) {
		return p.crm.CreateLeadCompany(ctx, *company)
	})
	if err != nil {
		log.Warn("import: company creation failed, continuing without linkage",
			zap.String("cause", resilience.Describe(err)))
		return ""
	}

	p.appendRecord(ctx, model.ImportRecord{
		Type:      model.RecordCompany,
		Name:      company.Name,
		Status:    model.ImportSucceeded,
		CRMID:     crmID,
		Timestamp: time.Now().UTC(),
	})
	return crmID
}

// retryFor returns the pipeline's retry config with retries logged
// under the given operation name.
func (p *Pipeline) retryFor(op string) resilience.RetryConfig {
	cfg := p.retry
	cfg.OnRetry = resilience.RetryLogger("crm", op)
	return cfg
}

func (p *Pipeline) preferences(ctx context.Context) model.Preferences {
	if p.store == nil {
		return model.DefaultPreferences()
	}
	prefs, err := p.store.Preferences(ctx)
	if err != nil {
		zap.L().Warn("import: read preferences failed, using defaults", zap.Error(err))
		return model.DefaultPreferences()
	}
	return prefs
}

func (p *Pipeline) appendRecord(ctx context.Context, rec model.ImportRecord) {
	if p.store == nil {
		return
	}
	if err := p.store.AppendImportRecord(ctx, rec); err != nil {
		zap.L().Warn("import: append history failed", zap.Error(err))
	}
}

func (p *Pipeline) notifySuccess(ctx context.Context, prefs model.Preferences, msg string) {
	if p.notifier != nil && prefs.Notifications {
		p.notifier.Success(ctx, msg)
	}
}

func (p *Pipeline) notifyFailure(ctx context.Context, prefs model.Preferences, msg string) {
	if p.notifier != nil && prefs.Notifications {
		p.notifier.Failure(ctx, msg)
	}
}

func recordToContact(rec *crm.ContactRecord) *model.Contact {
	return &model.Contact{
		CRMID:      rec.ID,
		Name:       rec.Name,
		Email:      rec.Email,
		JobTitle:   rec.Title,
		ProfileURL: rec.ProfileURL,
		CompanyID:  rec.AccountID,
		OwnerID:    rec.OwnerID,
		LeadSource: rec.LeadSource,
	}
}
