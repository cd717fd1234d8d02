package router

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/extract"
	"github.com/sells-group/prospector/internal/importer"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/panel"
	"github.com/sells-group/prospector/internal/store"
	"github.com/sells-group/prospector/pkg/crm"
)

// Deps are the pipeline components the standard handlers dispatch to.
type Deps struct {
	Extractor *extract.Extractor
	Panel     *panel.Controller
	Pipeline  *importer.Pipeline
	Store     store.Store
	Session   *crm.Session
	Username  string
}

// New builds a Router with the full standard handler table installed.
func New(d Deps) *Router {
	r := NewRouter()
	r.Register(model.MsgExtractData, d.handleExtract)
	r.Register(model.MsgOpenPanelGesture, d.handleOpenPanel)
	r.Register(model.MsgFindExistingContact, d.handleFindExisting)
	r.Register(model.MsgImportCurrentPage, d.handleImportPage)
	r.Register(model.MsgImportBulk, d.handleImportBulk)
	r.Register(model.MsgCheckAuth, d.handleCheckAuth)
	r.Register(model.MsgGetHistory, d.handleGetHistory)
	r.Register(model.MsgGetPreferences, d.handleGetPreferences)
	r.Register(model.MsgSetPreferences, d.handleSetPreferences)
	return r
}

func (d Deps) handleExtract(ctx context.Context, _ model.Message) (any, error) {
	return d.Extractor.Extract(ctx)
}

type openPanelPayload struct {
	GestureAtMillis int64 `json:"gesture_at_ms"`
}

func (d Deps) handleOpenPanel(ctx context.Context, msg model.Message) (any, error) {
	var payload openPanelPayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}

	var gestureAt time.Time
	if payload.GestureAtMillis > 0 {
		gestureAt = time.UnixMilli(payload.GestureAtMillis)
	}
	token := d.Panel.TokenFromGesture(msg.TabID, gestureAt)
	if err := d.Panel.RequestOpen(ctx, token); err != nil {
		return nil, err
	}
	return model.OKMessage("panel opened", nil), nil
}

type findExistingPayload struct {
	ProfileURL string `json:"profile_url"`
	Email      string `json:"email,omitempty"`
}

func (d Deps) handleFindExisting(ctx context.Context, msg model.Message) (any, error) {
	var payload findExistingPayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}

	contact, err := d.Pipeline.FindExisting(ctx, payload.ProfileURL, payload.Email)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"exists":  contact != nil,
		"contact": contact,
	}, nil
}

type importPagePayload struct {
	PageData *model.ExtractedProfile `json:"page_data"`
	OwnerID  string                  `json:"owner_id,omitempty"`
}

func (d Deps) handleImportPage(ctx context.Context, msg model.Message) (any, error) {
	var payload importPagePayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}
	if payload.PageData == nil {
		return nil, eris.New("router: page_data is required")
	}

	rec, err := d.Pipeline.ImportProfile(ctx, payload.PageData, payload.OwnerID)
	if err != nil {
		return nil, err
	}
	return model.OKMessage("Imported "+rec.Name, rec), nil
}

type importBulkPayload struct {
	Items   []*model.ExtractedProfile `json:"items"`
	OwnerID string                    `json:"owner_id,omitempty"`
}

func (d Deps) handleImportBulk(ctx context.Context, msg model.Message) (any, error) {
	var payload importBulkPayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}

	result, err := d.Pipeline.ImportBulk(ctx, payload.Items, payload.OwnerID)
	if err != nil {
		// Total failure still carries the per-item breakdown.
		return model.Envelope{
			Success: false,
			Code:    "bulk_failed",
			Error:   err.Error(),
			Data:    result,
		}, nil
	}
	msgText := "bulk import complete"
	if result.ErrorCount > 0 {
		msgText = "bulk import completed with errors"
	}
	return model.OKMessage(msgText, result), nil
}

func (d Deps) handleCheckAuth(ctx context.Context, _ model.Message) (any, error) {
	if d.Session == nil {
		return map[string]any{"authenticated": false}, nil
	}

	_, err := d.Session.Token(ctx)
	if err != nil {
		return map[string]any{"authenticated": false}, nil
	}

	// Persist the refreshed snapshot so the session survives restarts.
	if d.Store != nil {
		token, expiry := d.Session.Snapshot()
		if err := d.Store.SaveAuthSession(ctx, token, expiry); err != nil {
			zap.L().Warn("router: persist auth session failed", zap.Error(err))
		}
	}
	return map[string]any{
		"authenticated": true,
		"user":          d.Username,
	}, nil
}

type historyPayload struct {
	Limit int `json:"limit,omitempty"`
}

func (d Deps) handleGetHistory(ctx context.Context, msg model.Message) (any, error) {
	var payload historyPayload
	if err := decodePayload(msg, &payload); err != nil {
		return nil, err
	}
	records, err := d.Store.ListImportRecords(ctx, payload.Limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (d Deps) handleGetPreferences(ctx context.Context, _ model.Message) (any, error) {
	return d.Store.Preferences(ctx)
}

func (d Deps) handleSetPreferences(ctx context.Context, msg model.Message) (any, error) {
	var prefs model.Preferences
	if err := decodePayload(msg, &prefs); err != nil {
		return nil, err
	}
	if err := d.Store.SavePreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// decodePayload unmarshals the message payload, tolerating an absent
// payload for handlers whose fields are all optional.
func decodePayload(msg model.Message, out any) error {
	if len(msg.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(msg.Payload, out); err != nil {
		return eris.Wrapf(err, "router: decode %s payload", msg.Type)
	}
	return nil
}
