package importer

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospector/internal/model"
)

// ImportBulk imports items independently: one item's failure is
// collected, keyed by its display name, and never aborts the rest.
// Partial success is a first-class outcome; the returned error is
// non-nil only when every item failed.
func (p *Pipeline) ImportBulk(ctx context.Context, items []*model.ExtractedProfile, ownerID string) (*model.BulkResult, error) {
	result := &model.BulkResult{}
	if len(items) == 0 {
		return result, nil
	}

	concurrency := p.cfg.MaxConcurrent
	if concurrency <= 0 {
		concurrency = 1
	}

	zap.L().Info("import: bulk starting",
		zap.Int("items", len(items)),
		zap.Int("concurrency", concurrency),
	)

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, item := range items {
		g.Go(func() error {
			rec, err := p.ImportProfile(gctx, item, ownerID)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.ErrorCount++
				result.Errors = append(result.Errors, model.BulkItemError{
					Item:  item.DisplayName(),
					Error: err.Error(),
				})
				return nil
			}
			result.SuccessCount++
			result.Results = append(result.Results, *rec)
			return nil
		})
	}
	_ = g.Wait()

	zap.L().Info("import: bulk finished",
		zap.Int("succeeded", result.SuccessCount),
		zap.Int("failed", result.ErrorCount),
	)

	if result.TotalFailure() {
		return result, eris.Errorf("import: all %d items failed", result.ErrorCount)
	}
	return result, nil
}
