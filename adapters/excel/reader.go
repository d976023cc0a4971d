package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"climindex/domain/grid"
	"climindex/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ReaderConfig
	logger   *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string, config ReaderConfig, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Sheet == "" {
		config.Sheet = "Sheet1"
	}
	return &DataReader{filePath: filePath, fileType: fileType, config: config, logger: logger}
}

// ReadFiles reads several files of one variable and concatenates them in order.
func ReadFiles(paths []string, config ReaderConfig, logger *internal.Logger) (*SeriesData, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	var out *SeriesData
	for _, path := range paths {
		data, err := NewDataReader(path, config, logger).ReadData()
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = data
			continue
		}
		if err := out.Append(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return out, nil
}

// ReadData reads data from Excel or CSV files into a grid
func (r *DataReader) ReadData() (*SeriesData, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	// Check if file exists
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads raw cell values so that dates arrive as serial numbers
func (r *DataReader) readExcelData() (*SeriesData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.config.Sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.Sheet, err)
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", r.config.Sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into a grid
func (r *DataReader) readCSVData() (*SeriesData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)", float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// processRows converts raw string rows: the first column is the time axis,
// every other column a cell. Empty and non-numeric values become the fill value.
func (r *DataReader) processRows(rows [][]string) (*SeriesData, error) {
	headerRow := rows[0]
	if len(headerRow) < 2 {
		return nil, fmt.Errorf("header needs a time column and at least one cell column")
	}
	cells := make([]string, len(headerRow)-1)
	for i, header := range headerRow[1:] {
		cells[i] = strings.TrimSpace(header)
	}

	data := &SeriesData{
		Cells:    cells,
		TimeAxis: make([]time.Time, 0, len(rows)-1),
		Grid:     grid.Grid{Data: make([][]float64, 0, len(rows)-1)},
	}

	missing := 0
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		ts, err := r.parseTime(row[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		values := make([]float64, len(cells))
		for c := range values {
			values[c] = r.config.FillValue
			if c+1 >= len(row) {
				missing++
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(row[c+1]), 64)
			if err != nil || math.IsNaN(v) {
				missing++
				continue
			}
			values[c] = v
		}

		data.TimeAxis = append(data.TimeAxis, ts)
		data.Grid.Data = append(data.Grid.Data, values)
	}

	r.logger.Info("[DataReader] %s file processed (%d cells, %d timesteps, %d missing values)",
		strings.ToUpper(r.fileType), len(cells), len(data.TimeAxis), missing)

	if err := data.Grid.Validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// parseTime accepts Excel serial dates and the configured layouts
func (r *DataReader) parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return excelize.ExcelDateToTime(serial, false)
	}
	for _, layout := range r.config.TimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}
