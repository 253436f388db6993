package catalogloader

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/giygas/pharmacy-inventory-api/entities"
	"github.com/giygas/pharmacy-inventory-api/interfaces"
	"github.com/giygas/pharmacy-inventory-api/logging"
	"github.com/saintfish/chardet"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	downloadTimeout = 5 * time.Minute
	maxFileSize     = 256 * 1024 * 1024
	maxXLSColumns   = 128
)

var _ interfaces.CatalogLoader = (*FileLoader)(nil)

// FileLoader reads a spreadsheet export of the medicine table. The source is
// a local path or an http(s) URL; the extension picks the format.
type FileLoader struct {
	source string
	client *http.Client
}

// NewFileLoader checks the extension of source. Nothing is read until
// LoadRecords.
func NewFileLoader(source string) (*FileLoader, error) {
	if _, err := formatOf(source); err != nil {
		return nil, err
	}
	return &FileLoader{
		source: source,
		client: &http.Client{Timeout: downloadTimeout},
	}, nil
}

// Close is a no-op; the file is opened and closed on every load.
func (l *FileLoader) Close() error { return nil }

// LoadRecords reads the whole file and builds the records.
func (l *FileLoader) LoadRecords(ctx context.Context) ([]entities.MedicineRecord, interfaces.LoadReport, error) {
	format, err := formatOf(l.source)
	if err != nil {
		return nil, interfaces.LoadReport{}, err
	}

	body, err := l.fetch(ctx)
	if err != nil {
		return nil, interfaces.LoadReport{}, err
	}

	var table [][]string
	switch format {
	case ".csv":
		table, err = readCSV(body)
	case ".xlsx":
		table, err = readXLSX(body)
	case ".xls":
		table, err = readXLS(body)
	}
	if err != nil {
		return nil, interfaces.LoadReport{}, fmt.Errorf("failed to parse %s: %w", l.source, err)
	}

	rows, err := rowsToMaps(table)
	if err != nil {
		return nil, interfaces.LoadReport{}, fmt.Errorf("failed to parse %s: %w", l.source, err)
	}

	c := newCollector(l.source)
	for _, row := range rows {
		c.add(row)
	}

	records, report := c.result()
	logging.Debug("Catalog rows read", "source", report.Source, "rows", report.Rows, "loaded", report.Loaded)
	return records, report, nil
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func formatOf(source string) (string, error) {
	path := source
	if isRemote(source) {
		u, err := url.Parse(source)
		if err != nil {
			return "", fmt.Errorf("invalid catalog URL %s: %w", source, err)
		}
		path = u.Path
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv", ".xlsx", ".xls":
		return ext, nil
	default:
		return "", fmt.Errorf("unsupported catalog file %s: expected .csv, .xlsx or .xls", source)
	}
}

func (l *FileLoader) fetch(ctx context.Context) ([]byte, error) {
	if !isRemote(l.source) {
		body, err := os.ReadFile(filepath.Clean(l.source))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", l.source, err)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", l.source, err)
	}

	response, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", l.source, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logging.Warn("Failed to close response body", "error", err)
		}
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download %s: status %d", l.source, response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxFileSize {
		return nil, fmt.Errorf("catalog %s is larger than %d bytes", l.source, maxFileSize)
	}
	return body, nil
}

// decodeText returns a UTF-8 reader over body. Valid UTF-8 is used as is.
// Otherwise the detected charset picks the decoder: UTF-16 for Excel's
// "Unicode text" exports, else Windows-1252, which reads ISO-8859-1 text
// the same way.
func decodeText(body []byte) io.Reader {
	body = bytes.TrimPrefix(body, []byte("\xef\xbb\xbf"))
	if utf8.Valid(body) {
		return bytes.NewReader(body)
	}

	var decoder transform.Transformer = charmap.Windows1252.NewDecoder()
	if det, err := chardet.NewTextDetector().DetectBest(body[:min(len(body), 4096)]); err == nil && det != nil {
		switch strings.ToLower(det.Charset) {
		case "utf-16le":
			decoder = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
		case "utf-16be":
			decoder = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
		case "iso-8859-1":
			decoder = charmap.ISO8859_1.NewDecoder()
		}
	}
	return transform.NewReader(bytes.NewReader(body), decoder)
}

func readCSV(body []byte) ([][]string, error) {
	cr := csv.NewReader(bufio.NewReader(decodeText(body)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	var table [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		table = append(table, rec)
	}
	return table, nil
}

// readXLSX reads the first sheet.
func readXLSX(body []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return f.GetRows(f.GetSheetName(0))
}

// readXLS reads the first sheet of a legacy workbook. The column count is
// the last non-empty header cell; Row.LastCol is not reliable for files
// written by other tools.
func readXLS(body []byte) (table [][]string, err error) {
	// the xls reader panics on some malformed workbooks
	defer func() {
		if r := recover(); r != nil {
			table, err = nil, fmt.Errorf("malformed xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(body), "utf-8")
	if err != nil {
		return nil, err
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	header := sheet.Row(0)
	if header == nil {
		return nil, nil
	}
	width := 0
	for j := 0; j < maxXLSColumns; j++ {
		if strings.TrimSpace(header.Col(j)) != "" {
			width = j + 1
		}
	}

	table = make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cells := make([]string, width)
		if row != nil {
			for j := 0; j < width; j++ {
				cells[j] = strings.TrimSpace(row.Col(j))
			}
		}
		table = append(table, cells)
	}
	return table, nil
}

// rowsToMaps keys every data row by the lower-cased header. Blank rows are
// dropped; short rows read as empty for the missing cells.
func rowsToMaps(table [][]string) ([]Row, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	header := make([]string, len(table[0]))
	present := make(map[string]bool, len(header))
	for i, h := range table[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
		present[header[i]] = true
	}
	for _, required := range []string{ColID, ColName} {
		if !present[required] {
			return nil, fmt.Errorf("header has no %s column", required)
		}
	}

	rows := make([]Row, 0, len(table)-1)
	for _, rec := range table[1:] {
		row := make(Row, len(header))
		blank := true
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
				if strings.TrimSpace(rec[i]) != "" {
					blank = false
				}
			}
		}
		if !blank {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
