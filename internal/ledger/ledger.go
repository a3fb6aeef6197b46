// Package ledger is the Google Sheets client behind the order ledger:
// a single spreadsheet tab, one row per order, columns A through Q.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/Rajbabu19/rajorpayshowplaza/internal/config"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/models"
	"github.com/Rajbabu19/rajorpayshowplaza/internal/retry"
)

// ErrNotFound reports a tracking id with no ledger row.
var ErrNotFound = errors.New("tracking id not found in ledger")

// Columns addressed individually. The full row layout lives in
// recordToRow; row 1 is the header, data starts at row 2.
const (
	colPaymentID = "C"
	colStatus    = "Q"
)

// Retry policy for the idempotent remote calls (reads and in-place
// updates). Appends are deliberately left out of it.
const (
	retryAttempts    = 3
	defaultRetryWait = 500 * time.Millisecond
)

// ValuesService is the narrow slice of the Sheets API the client uses.
// The real implementation wraps *sheets.Service; tests substitute an
// in-memory fake.
type ValuesService interface {
	Get(ctx context.Context, spreadsheetID, readRange string) (*sheets.ValueRange, error)
	Append(ctx context.Context, spreadsheetID, writeRange string, vr *sheets.ValueRange) error
	Update(ctx context.Context, spreadsheetID, writeRange string, vr *sheets.ValueRange) error
	BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateValuesRequest) error
}

// sheetsValues adapts the Sheets SDK's fluent call builders to ValuesService.
type sheetsValues struct {
	svc *sheets.Service
}

func (s *sheetsValues) Get(ctx context.Context, spreadsheetID, readRange string) (*sheets.ValueRange, error) {
	return s.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
}

func (s *sheetsValues) Append(ctx context.Context, spreadsheetID, writeRange string, vr *sheets.ValueRange) error {
	_, err := s.svc.Spreadsheets.Values.Append(spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (s *sheetsValues) Update(ctx context.Context, spreadsheetID, writeRange string, vr *sheets.ValueRange) error {
	_, err := s.svc.Spreadsheets.Values.Update(spreadsheetID, writeRange, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return err
}

func (s *sheetsValues) BatchUpdate(ctx context.Context, spreadsheetID string, req *sheets.BatchUpdateValuesRequest) error {
	_, err := s.svc.Spreadsheets.Values.BatchUpdate(spreadsheetID, req).Context(ctx).Do()
	return err
}

// NewValuesService builds the real Sheets-backed ValuesService from
// service-account credentials.
func NewValuesService(ctx context.Context, credentialsJSON []byte) (ValuesService, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse ledger credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &sheetsValues{svc: svc}, nil
}

// Client is the order-ledger client.
type Client struct {
	values        ValuesService
	spreadsheetID string
	sheetName     string
	retryWait     time.Duration
}

// NewClient wires a Client over any ValuesService. Production code goes
// through New; tests hand in a fake.
func NewClient(values ValuesService, spreadsheetID, sheetName string) *Client {
	return &Client{
		values:        values,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		retryWait:     defaultRetryWait,
	}
}

// New builds the production client from the loaded configuration.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	values, err := NewValuesService(ctx, cfg.CredentialsJSON)
	if err != nil {
		return nil, err
	}
	return NewClient(values, cfg.SpreadsheetID, cfg.SheetName), nil
}

// rangeRef builds an A1 reference like "'Orders'!B2:B". Sheet names with
// spaces need the quoting, plain ones tolerate it; embedded quotes are
// doubled per A1 syntax.
func (c *Client) rangeRef(ref string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(c.sheetName, "'", "''"), ref)
}

// Ping reads a single cell to prove the spreadsheet is reachable with the
// configured credentials. main calls it once before serving traffic.
func (c *Client) Ping(ctx context.Context) error {
	err := retry.Do(retryAttempts, c.retryWait, func() error {
		_, err := c.values.Get(ctx, c.spreadsheetID, c.rangeRef("A1:A1"))
		return err
	})
	if err != nil {
		return fmt.Errorf("ping ledger: %w", err)
	}
	return nil
}

// AppendOrder writes rec as a new row at the bottom of the sheet. Appends
// are not retried: a retry after a lost response could land the row twice
// under the same tracking id.
func (c *Client) AppendOrder(ctx context.Context, rec models.OrderRecord) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{recordToRow(rec)}}
	if err := c.values.Append(ctx, c.spreadsheetID, c.rangeRef("A:Q"), vr); err != nil {
		return fmt.Errorf("append order row: %w", err)
	}
	return nil
}

// TrackingColumn returns every value of the tracking-id column, oldest
// first, header row excluded. Blank cells inside the range come back as
// empty strings so positions still line up with sheet rows.
func (c *Client) TrackingColumn(ctx context.Context) ([]string, error) {
	var resp *sheets.ValueRange
	err := retry.Do(retryAttempts, c.retryWait, func() error {
		var callErr error
		resp, callErr = c.values.Get(ctx, c.spreadsheetID, c.rangeRef("B2:B"))
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("read tracking column: %w", err)
	}

	ids := make([]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		if len(row) == 0 {
			ids = append(ids, "")
			continue
		}
		ids = append(ids, fmt.Sprint(row[0]))
	}
	return ids, nil
}

// FindRowByTrackingID scans the tracking column top to bottom and returns
// the 1-based sheet row of the first match. Linear, which is fine at the
// ledger sizes a single storefront produces.
func (c *Client) FindRowByTrackingID(ctx context.Context, trackingID string) (int, error) {
	ids, err := c.TrackingColumn(ctx)
	if err != nil {
		return 0, err
	}
	for i, id := range ids {
		if id == trackingID {
			// +1 for the header row, +1 to go 1-based.
			return i + 2, nil
		}
	}
	return 0, ErrNotFound
}

// Order reads one sheet row back into an OrderRecord.
func (c *Client) Order(ctx context.Context, row int) (*models.OrderRecord, error) {
	ref := fmt.Sprintf("A%d:Q%d", row, row)
	var resp *sheets.ValueRange
	err := retry.Do(retryAttempts, c.retryWait, func() error {
		var callErr error
		resp, callErr = c.values.Get(ctx, c.spreadsheetID, c.rangeRef(ref))
		return callErr
	})
	if err != nil {
		return nil, fmt.Errorf("read order row %d: %w", row, err)
	}
	if len(resp.Values) == 0 {
		return nil, ErrNotFound
	}
	rec := recordFromRow(resp.Values[0])
	return &rec, nil
}

// UpdateCell overwrites a single cell, e.g. column "C" of row 7.
func (c *Client) UpdateCell(ctx context.Context, row int, column, value string) error {
	ref := fmt.Sprintf("%s%d", column, row)
	vr := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	err := retry.Do(retryAttempts, c.retryWait, func() error {
		return c.values.Update(ctx, c.spreadsheetID, c.rangeRef(ref), vr)
	})
	if err != nil {
		return fmt.Errorf("update cell %s: %w", ref, err)
	}
	return nil
}

// MarkPaid records a captured payment on an existing row: the gateway
// payment id and the terminal status land in one batched write, so a
// failure between the two cells cannot happen. Re-running it for the
// same payment overwrites the same values, which is what makes duplicate
// webhook deliveries safe.
func (c *Client) MarkPaid(ctx context.Context, row int, paymentID string) error {
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "USER_ENTERED",
		Data: []*sheets.ValueRange{
			{
				Range:  c.rangeRef(fmt.Sprintf("%s%d", colPaymentID, row)),
				Values: [][]interface{}{{paymentID}},
			},
			{
				Range:  c.rangeRef(fmt.Sprintf("%s%d", colStatus, row)),
				Values: [][]interface{}{{models.StatusPaymentReceived}},
			},
		},
	}
	err := retry.Do(retryAttempts, c.retryWait, func() error {
		return c.values.BatchUpdate(ctx, c.spreadsheetID, req)
	})
	if err != nil {
		return fmt.Errorf("mark row %d paid: %w", row, err)
	}
	return nil
}

// recordToRow lays an OrderRecord out in sheet column order A..Q.
func recordToRow(rec models.OrderRecord) []interface{} {
	return []interface{}{
		rec.CreatedAt.Format(time.RFC3339),
		rec.TrackingID,
		rec.PaymentID,
		rec.CustomerName,
		rec.Phone,
		rec.AddressLine1,
		rec.Landmark,
		rec.Pincode,
		rec.City,
		rec.State,
		rec.ProductName,
		rec.Size,
		rec.PaymentMethod,
		rec.AmountPaid,
		rec.AmountRemaining,
		rec.TotalAmount,
		rec.Status,
	}
}

// recordFromRow is the inverse. The API drops trailing empty cells, so
// short rows come back zero-padded rather than failing.
func recordFromRow(row []interface{}) models.OrderRecord {
	cell := func(i int) string {
		if i < len(row) {
			return fmt.Sprint(row[i])
		}
		return ""
	}
	rec := models.OrderRecord{
		TrackingID:    cell(1),
		PaymentID:     cell(2),
		CustomerName:  cell(3),
		Phone:         cell(4),
		AddressLine1:  cell(5),
		Landmark:      cell(6),
		Pincode:       cell(7),
		City:          cell(8),
		State:         cell(9),
		ProductName:   cell(10),
		Size:          cell(11),
		PaymentMethod: cell(12),
		Status:        cell(16),
	}
	if t, err := time.Parse(time.RFC3339, cell(0)); err == nil {
		rec.CreatedAt = t
	}
	rec.AmountPaid = parseAmount(cell(13))
	rec.AmountRemaining = parseAmount(cell(14))
	rec.TotalAmount = parseAmount(cell(15))
	return rec
}

// parseAmount tolerates both raw numbers and the formatted strings the
// API may render; anything unparseable reads as zero.
func parseAmount(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
