package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Table 表格数据，Header 已规范化为小写蛇形
type Table struct {
	Header []string
	Rows   [][]string
}

// Record 将第 i 行转为 列名 -> 取值；缺失的单元格为空串
func (t *Table) Record(i int) map[string]string {
	row := t.Rows[i]
	rec := make(map[string]string, len(t.Header))
	for j, col := range t.Header {
		if j < len(row) {
			rec[col] = strings.TrimSpace(row[j])
		} else {
			rec[col] = ""
		}
	}
	return rec
}

// ReadFile 按扩展名读取 .csv 或 .xlsx
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("unsupported catalog format %q", filepath.Ext(path))
	}
}

// ReadCSV 读取 CSV，首行为表头
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return newTable(records)
}

// ReadXLSX 读取工作簿的第一个工作表，首行为表头
func ReadXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("xlsx has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return newTable(rows)
}

func newTable(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("catalog is empty")
	}
	header := make([]string, len(records[0]))
	for i, col := range records[0] {
		header[i] = normalizeColumn(col)
	}
	if !containsColumn(header, colProductID) {
		return nil, fmt.Errorf("catalog is missing required column %q", colProductID)
	}

	t := &Table{Header: header}
	for _, row := range records[1:] {
		if blank(row) {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func normalizeColumn(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "_")
}

func containsColumn(header []string, name string) bool {
	for _, h := range header {
		if h == name {
			return true
		}
	}
	return false
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
