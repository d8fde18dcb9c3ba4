package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const sheetName = "Orders"

// Header is the fixed first row of the ledger
var Header = []string{"Order ID", "User ID", "Total", "Name", "Address", "Phone", "Status", "Items"}

// XLSXSink appends orders to a spreadsheet on disk
type XLSXSink struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewXLSXSink(path string, logger *zap.Logger) *XLSXSink {
	return &XLSXSink{path: path, logger: logger}
}

func (s *XLSXSink) Save(ctx context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return fmt.Errorf("failed to read ledger rows: %w", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("failed to address ledger row: %w", err)
	}

	row := Row(order)
	if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to write ledger row: %w", err)
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	s.logger.Info("Order recorded in ledger",
		zap.String("order_id", order.ID.String()),
		zap.String("path", s.path),
	)
	return nil
}

// open loads the workbook, or starts a fresh one with the header row when
// the file is missing or unreadable. Unreadable files are moved aside.
func (s *XLSXSink) open() (*excelize.File, error) {
	f, err := excelize.OpenFile(s.path)
	if err == nil {
		if idx, _ := f.GetSheetIndex(sheetName); idx >= 0 {
			return f, nil
		}
		f.Close()
		err = fmt.Errorf("sheet %q missing", sheetName)
	}

	if !errors.Is(err, fs.ErrNotExist) {
		aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().Unix())
		s.logger.Warn("Ledger unreadable, starting a new one",
			zap.String("path", s.path),
			zap.String("moved_to", aside),
			zap.Error(err),
		)
		if renameErr := os.Rename(s.path, aside); renameErr != nil && !errors.Is(renameErr, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to move unreadable ledger: %w", renameErr)
		}
	}

	f = excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name ledger sheet: %w", err)
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write ledger header: %w", err)
	}

	return f, nil
}

// Row renders the ledger columns for an order
func Row(order *domain.Order) []interface{} {
	items := make([]string, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, fmt.Sprintf("%s x%d", item.Name, item.Quantity))
	}

	return []interface{}{
		order.ID.String(),
		order.UserID,
		order.Total.StringFixed(2),
		order.Name,
		order.Address,
		order.Phone,
		string(order.Status),
		strings.Join(items, "; "),
	}
}
