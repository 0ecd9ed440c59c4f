package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiboostly/leadpilot/internal/config"
	"github.com/aiboostly/leadpilot/internal/model"
	"github.com/aiboostly/leadpilot/internal/outreach"
	"github.com/aiboostly/leadpilot/pkg/places"
)

// memStore serves scripted rows and records every write-back.
type memStore struct {
	rows      []model.Row
	selectErr error
	updateErr error
	updates   map[int][]map[string]string
}

func newMemStore(rows ...model.Row) *memStore {
	return &memStore{rows: rows, updates: make(map[int][]map[string]string)}
}

func (m *memStore) Select(ctx context.Context, sheetName, trigger string, limit int) ([]model.Row, error) {
	if m.selectErr != nil {
		return nil, m.selectErr
	}
	if limit > 0 && limit < len(m.rows) {
		return m.rows[:limit], nil
	}
	return m.rows, nil
}

func (m *memStore) Update(ctx context.Context, sheetName string, rowNum int, updates map[string]string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	copied := make(map[string]string, len(updates))
	for k, v := range updates {
		copied[k] = v
	}
	m.updates[rowNum] = append(m.updates[rowNum], copied)
	return nil
}

// statuses returns the sequence of Status values written for a row.
func (m *memStore) statuses(rowNum int) []string {
	var out []string
	for _, u := range m.updates[rowNum] {
		if s, ok := u[model.ColStatus]; ok {
			out = append(out, s)
		}
	}
	return out
}

// last returns the most recent value written for a column on a row.
func (m *memStore) last(rowNum int, col string) string {
	for i := len(m.updates[rowNum]) - 1; i >= 0; i-- {
		if v, ok := m.updates[rowNum][i][col]; ok {
			return v
		}
	}
	return ""
}

type stubContent struct{ text string }

func (s *stubContent) Fetch(ctx context.Context, url string, maxChars int) string { return s.text }

type stubReviews struct{ media places.Media }

func (s *stubReviews) Fetch(ctx context.Context, placeID string, maxReviews, maxPhotos int) places.Media {
	return s.media
}

type stubGenerator struct {
	html  string
	err   error
	calls int
}

func (s *stubGenerator) Generate(ctx context.Context, record model.BusinessRecord, scrapedText, reviewsText string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

type stubDeployer struct {
	url   string
	err   error
	calls int
}

func (s *stubDeployer) Deploy(ctx context.Context, html, displayName string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.url, nil
}

type stubComposer struct {
	body  string
	err   error
	calls int
}

func (s *stubComposer) Compose(ctx context.Context, record model.BusinessRecord, liveURL, scrapedText, reviewsText string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.body, nil
}

type stubDispatcher struct {
	err      error
	calls    int
	lastTo   string
	testMode bool
}

func (s *stubDispatcher) Send(ctx context.Context, toAddress, body, businessName string, testMode bool) (*outreach.Receipt, error) {
	s.calls++
	s.lastTo = toAddress
	s.testMode = testMode
	if s.err != nil {
		return nil, s.err
	}
	return &outreach.Receipt{Status: "sent", Recipient: toAddress}, nil
}

type fixture struct {
	store      *memStore
	generator  *stubGenerator
	deployer   *stubDeployer
	composer   *stubComposer
	dispatcher *stubDispatcher
	pipeline   *Pipeline
}

func newFixture(t *testing.T, rows ...model.Row) *fixture {
	t.Helper()
	f := &fixture{
		store:      newMemStore(rows...),
		generator:  &stubGenerator{html: "<!DOCTYPE html><html></html>"},
		deployer:   &stubDeployer{url: "https://kapsalon-anne-1700000000.netlify.app"},
		composer:   &stubComposer{body: "Hoi Anne,\n\nGroet, Dan"},
		dispatcher: &stubDispatcher{},
	}
	f.pipeline = New(
		f.store,
		&stubContent{text: "scraped"},
		&stubReviews{},
		f.generator,
		f.deployer,
		f.composer,
		f.dispatcher,
		config.PipelineConfig{WorkDir: t.TempDir(), MaxScrapeChars: 8000},
		WithClock(func() time.Time { return time.Date(2026, 8, 27, 14, 30, 0, 0, time.UTC) }),
	)
	return f
}

func goRow(num int, overrides map[string]string) model.Row {
	record := model.BusinessRecord{
		model.ColStatus:   "GO",
		model.ColBusiness: "Kapsalon Anne",
		model.ColCity:     "Utrecht",
		model.ColWebsite:  "https://kapsalon-anne.nl",
		model.ColEmail:    "info@kapsalon-anne.nl",
		model.ColPlaceID:  "place-1",
	}
	for k, v := range overrides {
		record[k] = v
	}
	return model.Row{Num: num, Record: record}
}

func TestRunHappyPath(t *testing.T) {
	f := newFixture(t, goRow(2, nil))

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Selected)
	assert.Equal(t, 0, result.Failed)

	assert.Equal(t, []string{
		"SCRAPING", "BUILDING", "DEPLOYING", "Deployed",
		"EMAILING", "Email Draft Written", "SENDING", "Email sent succesfully",
	}, f.store.statuses(2))

	url := f.store.last(2, model.ColPreviewURL)
	assert.True(t, strings.HasPrefix(url, "https://"))
	assert.Equal(t, "Hoi Anne,\n\nGroet, Dan", f.store.last(2, model.ColEmailDraft))
	assert.Equal(t, "2026-08-27 14:30", f.store.last(2, model.ColSentDate))
	assert.Equal(t, "info@kapsalon-anne.nl", f.dispatcher.lastTo)
}

func TestRunExcludedEmailStopsAtDeployed(t *testing.T) {
	f := newFixture(t, goRow(2, map[string]string{model.ColEmailStatus: "INVALID"}))

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "Deployed", result.Rows[0].Status)

	assert.Equal(t, []string{"SCRAPING", "BUILDING", "DEPLOYING", "Deployed"}, f.store.statuses(2))
	assert.Equal(t, 0, f.composer.calls)
	assert.Equal(t, 0, f.dispatcher.calls)
}

func TestRunMissingEmailStopsAtDraft(t *testing.T) {
	f := newFixture(t, goRow(2, map[string]string{model.ColEmail: ""}))

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)
	assert.Equal(t, "Email Draft Written", result.Rows[0].Status)
	assert.Equal(t, 1, f.composer.calls)
	assert.Equal(t, 0, f.dispatcher.calls)
}

func TestRunMissingEmailStillSendsInTestMode(t *testing.T) {
	f := newFixture(t, goRow(2, map[string]string{model.ColEmail: ""}))

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, true)
	require.NoError(t, err)
	assert.Equal(t, "Email sent succesfully", result.Rows[0].Status)
	assert.Equal(t, 1, f.dispatcher.calls)
	assert.True(t, f.dispatcher.testMode)
}

func TestRunGeneratorFailureMarksErrorAndContinues(t *testing.T) {
	f := newFixture(t, goRow(2, nil), goRow(3, nil))
	f.generator.err = eris.New("site: output doesn't look like HTML")

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 0, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Selected)
	assert.Equal(t, 2, result.Failed)

	// Both rows reached the generator despite the first one failing.
	assert.Equal(t, 2, f.generator.calls)
	assert.Equal(t, "ERROR", f.store.last(2, model.ColStatus))
	assert.Contains(t, f.store.last(2, model.ColNotes), "doesn't look like HTML")
	assert.Equal(t, "ERROR", f.store.last(3, model.ColStatus))
}

func TestRunNotesAreCapped(t *testing.T) {
	f := newFixture(t, goRow(2, nil))
	f.deployer.err = eris.New(strings.Repeat("x", 2000))

	_, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(f.store.last(2, model.ColNotes)), maxNoteLen)
}

func TestRunDispatcherFailureMarksError(t *testing.T) {
	f := newFixture(t, goRow(2, nil))
	f.dispatcher.err = eris.New("outreach: smtp authentication failed")

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, "ERROR", f.store.last(2, model.ColStatus))
	// The draft survived even though sending failed.
	assert.NotEmpty(t, f.store.last(2, model.ColEmailDraft))
}

func TestRunSelectErrorFailsRun(t *testing.T) {
	f := newFixture(t)
	f.store.selectErr = eris.New("sheet: read")

	_, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.Error(t, err)
}

func TestRunNoRows(t *testing.T) {
	f := newFixture(t)

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Selected)
	assert.Empty(t, result.Rows)
}

func TestRunUpdateFailureDoesNotKillRow(t *testing.T) {
	f := newFixture(t, goRow(2, nil))
	f.store.updateErr = eris.New("sheet: update row")

	result, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "Email sent succesfully", result.Rows[0].Status)
}

func TestRunSavesWorkingCopy(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, goRow(2, nil))
	f.pipeline.cfg.WorkDir = dir

	_, err := f.pipeline.Run(context.Background(), "Pipeline test", 1, false)
	require.NoError(t, err)

	path := filepath.Join(dir, "kapsalon-anne-row2.html")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<!DOCTYPE html><html></html>", string(data))
}
