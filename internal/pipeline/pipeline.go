package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/internal/config"
	"github.com/aiboostly/leadpilot/internal/deploy"
	"github.com/aiboostly/leadpilot/internal/model"
	"github.com/aiboostly/leadpilot/internal/outreach"
	"github.com/aiboostly/leadpilot/pkg/places"
)

// maxNoteLen caps the error text written to the Notes column so a deep
// wrapped error cannot blow up the cell.
const maxNoteLen = 500

const sentDateLayout = "2006-01-02 15:04"

// RowStore selects trigger rows and writes columns back.
type RowStore interface {
	Select(ctx context.Context, sheetName, trigger string, limit int) ([]model.Row, error)
	Update(ctx context.Context, sheetName string, rowNum int, updates map[string]string) error
}

// ContentFetcher returns scraped site text, "" when nothing usable exists.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string, maxChars int) string
}

// ReviewFetcher returns Google reviews and photos, empty when unavailable.
type ReviewFetcher interface {
	Fetch(ctx context.Context, placeID string, maxReviews, maxPhotos int) places.Media
}

// SiteGenerator produces a complete HTML document for the business.
type SiteGenerator interface {
	Generate(ctx context.Context, record model.BusinessRecord, scrapedText, reviewsText string) (string, error)
}

// SiteDeployer publishes the document and returns its public URL.
type SiteDeployer interface {
	Deploy(ctx context.Context, html, displayName string) (string, error)
}

// EmailComposer drafts the outreach email body.
type EmailComposer interface {
	Compose(ctx context.Context, record model.BusinessRecord, liveURL, scrapedText, reviewsText string) (string, error)
}

// EmailDispatcher delivers the drafted email.
type EmailDispatcher interface {
	Send(ctx context.Context, toAddress, body, businessName string, testMode bool) (*outreach.Receipt, error)
}

// RowResult summarizes one processed row.
type RowResult struct {
	RowNum     int    `json:"row"`
	Business   string `json:"business"`
	Status     string `json:"status"`
	PreviewURL string `json:"preview_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult summarizes a pipeline run.
type BatchResult struct {
	Selected int         `json:"selected"`
	Failed   int         `json:"failed"`
	Rows     []RowResult `json:"rows"`
}

// Pipeline drives each GO row through scrape, build, deploy, draft and send.
// A row failure marks that row ERROR and never stops the batch.
type Pipeline struct {
	store      RowStore
	content    ContentFetcher
	reviews    ReviewFetcher
	generator  SiteGenerator
	deployer   SiteDeployer
	composer   EmailComposer
	dispatcher EmailDispatcher
	cfg        config.PipelineConfig
	now        func() time.Time
}

// Option customizes the pipeline.
type Option func(*Pipeline)

// WithClock overrides the Sent Date clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New wires the pipeline from its collaborators.
func New(store RowStore, content ContentFetcher, reviews ReviewFetcher,
	generator SiteGenerator, deployer SiteDeployer, composer EmailComposer,
	dispatcher EmailDispatcher, cfg config.PipelineConfig, opts ...Option) *Pipeline {

	p := &Pipeline{
		store:      store,
		content:    content,
		reviews:    reviews,
		generator:  generator,
		deployer:   deployer,
		composer:   composer,
		dispatcher: dispatcher,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run selects up to limit GO rows from sheetName and processes them in row
// order. Selection errors fail the run; row errors are contained per row.
func (p *Pipeline) Run(ctx context.Context, sheetName string, limit int, testMode bool) (*BatchResult, error) {
	rows, err := p.store.Select(ctx, sheetName, model.StatusGo.String(), limit)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: select rows")
	}

	result := &BatchResult{Selected: len(rows)}
	if len(rows) == 0 {
		zap.L().Info("pipeline: no rows to process", zap.String("sheet", sheetName))
		return result, nil
	}

	for _, row := range rows {
		res := p.processRow(ctx, sheetName, row, testMode)
		if res.Error != "" {
			result.Failed++
		}
		result.Rows = append(result.Rows, res)
	}

	zap.L().Info("pipeline: batch finished",
		zap.String("sheet", sheetName),
		zap.Int("selected", result.Selected),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (p *Pipeline) processRow(ctx context.Context, sheetName string, row model.Row, testMode bool) RowResult {
	record := row.Record
	log := zap.L().With(
		zap.Int("row", row.Num),
		zap.String("business", record.Name()),
	)
	log.Info("pipeline: processing row")

	res := RowResult{RowNum: row.Num, Business: record.Name()}

	fail := func(err error) RowResult {
		log.Error("pipeline: row failed", zap.Error(err))
		p.update(ctx, sheetName, row.Num, map[string]string{
			model.ColStatus: model.StatusError.String(),
			model.ColNotes:  truncateNote(eris.ToString(err, false)),
		})
		res.Status = model.StatusError.String()
		res.Error = err.Error()
		return res
	}

	// Scrape. Both fetchers degrade to empty output rather than erroring, so
	// a business without a website or reviews still gets a site built.
	p.update(ctx, sheetName, row.Num, statusOnly(model.StatusScraping))
	scraped := p.content.Fetch(ctx, record.Website(), p.maxScrapeChars())
	media := p.reviews.Fetch(ctx, record.PlaceID(), places.DefaultMaxReviews, places.DefaultMaxPhotos)
	reviewsText := media.FormatPrompt()

	// Build.
	p.update(ctx, sheetName, row.Num, statusOnly(model.StatusBuilding))
	html, err := p.generator.Generate(ctx, record, scraped, reviewsText)
	if err != nil {
		return fail(err)
	}
	p.saveWorkingCopy(row, html)

	// Deploy.
	p.update(ctx, sheetName, row.Num, statusOnly(model.StatusDeploying))
	liveURL, err := p.deployer.Deploy(ctx, html, record.Name())
	if err != nil {
		return fail(err)
	}
	p.update(ctx, sheetName, row.Num, map[string]string{
		model.ColStatus:     model.StatusDeployed.String(),
		model.ColPreviewURL: liveURL,
	})
	res.PreviewURL = liveURL
	res.Status = model.StatusDeployed.String()

	if record.EmailExcluded() {
		log.Info("pipeline: email excluded, stopping at deployed",
			zap.String("email_status", record.EmailStatus()),
		)
		return res
	}

	// Draft.
	p.update(ctx, sheetName, row.Num, statusOnly(model.StatusEmailing))
	draft, err := p.composer.Compose(ctx, record, liveURL, scraped, reviewsText)
	if err != nil {
		return fail(err)
	}
	p.update(ctx, sheetName, row.Num, map[string]string{
		model.ColStatus:     model.StatusDraftWritten.String(),
		model.ColEmailDraft: draft,
	})
	res.Status = model.StatusDraftWritten.String()

	recipient := record.Email()
	if recipient == "" && !testMode {
		log.Warn("pipeline: no email address, stopping at draft")
		return res
	}

	// Send.
	p.update(ctx, sheetName, row.Num, statusOnly(model.StatusSending))
	receipt, err := p.dispatcher.Send(ctx, recipient, draft, record.Name(), testMode)
	if err != nil {
		return fail(err)
	}
	p.update(ctx, sheetName, row.Num, map[string]string{
		model.ColStatus:   model.StatusSent.String(),
		model.ColSentDate: p.now().Format(sentDateLayout),
	})
	res.Status = model.StatusSent.String()

	log.Info("pipeline: row complete",
		zap.String("preview_url", liveURL),
		zap.String("sent_to", receipt.Recipient),
	)
	return res
}

// update writes columns back and only logs on failure. Status writes are
// optimistic progress markers; losing one must not kill the row.
func (p *Pipeline) update(ctx context.Context, sheetName string, rowNum int, updates map[string]string) {
	if err := p.store.Update(ctx, sheetName, rowNum, updates); err != nil {
		zap.L().Warn("pipeline: row update failed",
			zap.Int("row", rowNum),
			zap.Error(err),
		)
	}
}

// saveWorkingCopy drops the generated HTML into the work dir for inspection.
// Best effort.
func (p *Pipeline) saveWorkingCopy(row model.Row, html string) {
	if p.cfg.WorkDir == "" {
		return
	}
	if err := os.MkdirAll(p.cfg.WorkDir, 0o755); err != nil {
		zap.L().Warn("pipeline: create work dir failed", zap.Error(err))
		return
	}

	name := deploy.Slugify(row.Record.Name())
	if name == "" {
		name = "site"
	}
	path := filepath.Join(p.cfg.WorkDir, fmt.Sprintf("%s-row%d.html", name, row.Num))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		zap.L().Warn("pipeline: save working copy failed",
			zap.String("path", path),
			zap.Error(err),
		)
		return
	}
	zap.L().Debug("pipeline: working copy saved", zap.String("path", path))
}

func (p *Pipeline) maxScrapeChars() int {
	if p.cfg.MaxScrapeChars > 0 {
		return p.cfg.MaxScrapeChars
	}
	return 8000
}

func statusOnly(s model.Status) map[string]string {
	return map[string]string{model.ColStatus: s.String()}
}

func truncateNote(msg string) string {
	if len(msg) > maxNoteLen {
		return msg[:maxNoteLen]
	}
	return msg
}
