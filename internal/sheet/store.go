package sheet

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/aiboostly/leadpilot/internal/config"
	"github.com/aiboostly/leadpilot/internal/model"
)

// Store reads and writes pipeline rows. Select never mutates; Update applies
// only the named columns and leaves everything else untouched.
type Store interface {
	Select(ctx context.Context, sheetName, trigger string, limit int) ([]model.Row, error)
	Update(ctx context.Context, sheetName string, rowNum int, updates map[string]string) error
}

// sheetsStore implements Store against the Google Sheets v4 API.
type sheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu       sync.Mutex
	sheetIDs map[string]int64
}

// NewStore creates a Store for the configured spreadsheet.
func NewStore(ctx context.Context, cfg config.SheetsConfig, opts ...option.ClientOption) (Store, error) {
	if cfg.SpreadsheetID == "" {
		return nil, eris.New("sheet: spreadsheet_id must be configured")
	}

	if len(opts) == 0 {
		opts = []option.ClientOption{
			option.WithCredentialsFile(cfg.CredentialsFile),
			option.WithScopes(sheets.SpreadsheetsScope),
		}
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "sheet: create sheets service")
	}

	return &sheetsStore{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// Select returns rows whose Status equals trigger (case-insensitive), in row
// order, stopping once limit matches are found. limit <= 0 means no limit.
func (s *sheetsStore) Select(ctx context.Context, sheetName, trigger string, limit int) ([]model.Row, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheetName).Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sheet: read %q", sheetName))
	}
	if len(resp.Values) == 0 {
		return nil, nil
	}

	headers := toStrings(resp.Values[0])
	zap.L().Info("sheet: scanning rows",
		zap.String("sheet", sheetName),
		zap.Int("rows", len(resp.Values)-1),
	)

	var rows []model.Row
	for i, raw := range resp.Values[1:] {
		values := toStrings(raw)
		record := make(model.BusinessRecord, len(headers))
		for col, header := range headers {
			if col < len(values) {
				record[header] = values[col]
			} else {
				record[header] = ""
			}
		}

		if !strings.EqualFold(strings.TrimSpace(record[model.ColStatus]), trigger) {
			continue
		}

		// Header occupies row 1, so data row i sits at sheet row i+2.
		rows = append(rows, model.Row{Num: i + 2, Record: record})
		if limit > 0 && len(rows) >= limit {
			break
		}
	}

	zap.L().Info("sheet: selected rows",
		zap.String("sheet", sheetName),
		zap.String("trigger", trigger),
		zap.Int("matches", len(rows)),
	)
	return rows, nil
}

// Update writes the named column values into rowNum. Column names missing
// from the header row are skipped with a warning; the store never creates
// columns. When the Status column is among the updates, the status cell also
// gets its color annotation; annotation failures only log.
func (s *sheetsStore) Update(ctx context.Context, sheetName string, rowNum int, updates map[string]string) error {
	headerResp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, fmt.Sprintf("%s!1:1", sheetName)).Context(ctx).Do()
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sheet: read headers of %q", sheetName))
	}
	var headers []string
	if len(headerResp.Values) > 0 {
		headers = toStrings(headerResp.Values[0])
	}

	var data []*sheets.ValueRange
	statusCol := -1
	for col, value := range updates {
		idx := indexOf(headers, col)
		if idx < 0 {
			zap.L().Warn("sheet: column not found in headers, skipping",
				zap.String("sheet", sheetName),
				zap.String("column", col),
			)
			continue
		}
		if col == model.ColStatus {
			statusCol = idx
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s%d", sheetName, colLetter(idx+1), rowNum),
			Values: [][]interface{}{{value}},
		})
	}

	if len(data) == 0 {
		return nil
	}

	_, err = s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}).Context(ctx).Do()
	if err != nil {
		return eris.Wrap(err, fmt.Sprintf("sheet: update row %d of %q", rowNum, sheetName))
	}

	zap.L().Info("sheet: row updated",
		zap.String("sheet", sheetName),
		zap.Int("row", rowNum),
		zap.Strings("columns", keys(updates)),
	)

	if statusCol >= 0 {
		s.annotateStatus(ctx, sheetName, rowNum, statusCol, updates[model.ColStatus])
	}
	return nil
}

// annotateStatus colors the status cell for operators scanning the sheet.
// Best effort only.
func (s *sheetsStore) annotateStatus(ctx context.Context, sheetName string, rowNum, colIdx int, statusValue string) {
	color, ok := model.ParseStatus(statusValue).Color()
	if !ok {
		return
	}

	sheetID, err := s.sheetID(ctx, sheetName)
	if err != nil {
		zap.L().Warn("sheet: status color skipped", zap.Error(err))
		return
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(rowNum - 1),
					EndRowIndex:      int64(rowNum),
					StartColumnIndex: int64(colIdx),
					EndColumnIndex:   int64(colIdx + 1),
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						BackgroundColor: &sheets.Color{
							Red:   color.Red,
							Green: color.Green,
							Blue:  color.Blue,
						},
					},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		zap.L().Warn("sheet: status color write failed",
			zap.String("sheet", sheetName),
			zap.Int("row", rowNum),
			zap.Error(err),
		)
	}
}

func (s *sheetsStore) sheetID(ctx context.Context, sheetName string) (int64, error) {
	s.mu.Lock()
	if id, ok := s.sheetIDs[sheetName]; ok {
		s.mu.Unlock()
		return id, nil
	}
	s.mu.Unlock()

	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return 0, eris.Wrap(err, "sheet: get spreadsheet metadata")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range meta.Sheets {
		if sh.Properties != nil {
			s.sheetIDs[sh.Properties.Title] = sh.Properties.SheetId
		}
	}
	if id, ok := s.sheetIDs[sheetName]; ok {
		return id, nil
	}
	return 0, eris.Errorf("sheet: no sheet named %q", sheetName)
}

func toStrings(raw []interface{}) []string {
	out := make([]string, len(raw))
	for i, v := range raw {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}

func indexOf(headers []string, col string) int {
	for i, h := range headers {
		if h == col {
			return i
		}
	}
	return -1
}

func keys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// colLetter converts a 1-based column number to A1 letter notation,
// supporting AA/AB and beyond.
func colLetter(idx int) string {
	var result string
	for idx > 0 {
		idx--
		result = string(rune('A'+idx%26)) + result
		idx /= 26
	}
	return result
}
