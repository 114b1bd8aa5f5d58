package model

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// FileType represents supported file types
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// ExtCSV is the CSV file extension
	ExtCSV = ".csv"
	// ExtTSV is the TSV file extension
	ExtTSV = ".tsv"
	// ExtXLSX is the Excel XLSX file extension
	ExtXLSX = ".xlsx"
	// ExtParquet is the Parquet file extension
	ExtParquet = ".parquet"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// Delimiters
const (
	csvDelimiter = ','
	tsvDelimiter = '\t'
)

// File represents a source file that can be converted to Table
type File struct {
	path     string
	fileType FileType
}

// NewFile creates a new File
func NewFile(path string) *File {
	return &File{
		path:     path,
		fileType: detectFileType(path),
	}
}

// IsSupportedFile checks if the file has a supported extension
func IsSupportedFile(fileName string) bool {
	fileName = strings.ToLower(fileName)

	// Remove compression extensions
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(fileName, ext) {
			fileName = strings.TrimSuffix(fileName, ext)
			break
		}
	}

	return strings.HasSuffix(fileName, ExtCSV) ||
		strings.HasSuffix(fileName, ExtTSV) ||
		strings.HasSuffix(fileName, ExtXLSX) ||
		strings.HasSuffix(fileName, ExtParquet)
}

// Path returns file path
func (f *File) Path() string {
	return f.path
}

// Type returns file type
func (f *File) Type() FileType {
	return f.fileType
}

// IsCompressed returns true if file is compressed
func (f *File) IsCompressed() bool {
	return f.isGZ() || f.isBZ2() || f.isXZ() || f.isZSTD()
}

func (f *File) isGZ() bool {
	return strings.HasSuffix(f.path, ExtGZ)
}

func (f *File) isBZ2() bool {
	return strings.HasSuffix(f.path, ExtBZ2)
}

func (f *File) isXZ() bool {
	return strings.HasSuffix(f.path, ExtXZ)
}

func (f *File) isZSTD() bool {
	return strings.HasSuffix(f.path, ExtZSTD)
}

// ToTable converts file to Table structure
func (f *File) ToTable() (*Table, error) {
	switch f.fileType {
	case FileTypeCSV:
		return f.parseDelimitedFile(csvDelimiter)
	case FileTypeTSV:
		return f.parseDelimitedFile(tsvDelimiter)
	case FileTypeXLSX:
		return f.parseXLSX()
	case FileTypeParquet:
		return f.parseParquet()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", f.path)
	}
}

// detectFileType detects file type from extension, considering compressed files
func detectFileType(path string) FileType {
	basePath := path

	// Remove compression extensions
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(path, ext) {
			basePath = strings.TrimSuffix(path, ext)
			break
		}
	}

	switch strings.ToLower(filepath.Ext(basePath)) {
	case ExtCSV:
		return FileTypeCSV
	case ExtTSV:
		return FileTypeTSV
	case ExtXLSX:
		return FileTypeXLSX
	case ExtParquet:
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// openReader opens file and returns a reader that handles compression
func (f *File) openReader() (io.Reader, func() error, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, nil, err
	}

	var reader io.Reader = file
	closer := file.Close

	if f.isGZ() {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			_ = file.Close() // Ignore close error during error handling
			return nil, nil, err
		}
		reader = gzReader
		closer = func() error {
			_ = gzReader.Close() // Ignore close error in cleanup
			return file.Close()
		}
	} else if f.isBZ2() {
		reader = bzip2.NewReader(file)
		closer = file.Close
	} else if f.isXZ() {
		xzReader, err := xz.NewReader(file)
		if err != nil {
			_ = file.Close() // Ignore close error during error handling
			return nil, nil, err
		}
		reader = xzReader
		closer = file.Close
	} else if f.isZSTD() {
		decoder, err := zstd.NewReader(file)
		if err != nil {
			_ = file.Close() // Ignore close error during error handling
			return nil, nil, err
		}
		reader = decoder
		closer = func() error {
			decoder.Close()
			return file.Close()
		}
	}

	return reader, closer, nil
}

// validateColumnNames checks a header row for duplicate column names
func validateColumnNames(names []string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateColumnName, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}

// parseDelimitedFile parses CSV or TSV files with specified delimiter
func (f *File) parseDelimitedFile(delimiter rune) (*Table, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer closer()

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.path)
	}

	header := NewHeader(records[0])
	if err := validateColumnNames(records[0]); err != nil {
		return nil, err
	}

	tableRecords := make([]Record, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		tableRecords = append(tableRecords, NewRecord(records[i]))
	}

	tableName := TableFromFilePath(f.path)
	return NewTable(tableName, header, tableRecords), nil
}

// parseXLSX parses the first sheet of an XLSX file with compression support
func (f *File) parseXLSX() (*Table, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer closer()

	// excelize needs random access, so read everything into memory
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	xlsxFile, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file: %s", f.path)
	}

	rows, err := xlsxFile.GetRows(sheetNames[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetNames[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.path)
	}

	header := NewHeader(rows[0])
	if err := validateColumnNames(rows[0]); err != nil {
		return nil, err
	}

	// Pad short rows so every record matches the header width
	tableRecords := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(Record, len(header))
		for i := range header {
			if i < len(row) {
				record[i] = row[i]
			}
		}
		tableRecords = append(tableRecords, record)
	}

	tableName := TableFromFilePath(f.path)
	return NewTable(tableName, header, tableRecords), nil
}

// parseParquet parses a Parquet file with compression support
func (f *File) parseParquet() (*Table, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer closer()

	// Parquet requires random access, so read everything into memory
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyFile, f.path)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	arrowTable, err := arrowReader.ReadTable(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet table: %w", err)
	}
	defer arrowTable.Release()

	schema := arrowTable.Schema()
	header := make(Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	if err := validateColumnNames(header); err != nil {
		return nil, err
	}

	tableReader := array.NewTableReader(arrowTable, 0)
	defer tableReader.Release()

	var tableRecords []Record
	for tableReader.Next() {
		batch := tableReader.Record()
		numRows := batch.NumRows()
		for i := int64(0); i < numRows; i++ {
			row := make(Record, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = arrowValueString(col, int(i))
			}
			tableRecords = append(tableRecords, row)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, fmt.Errorf("error reading parquet records: %w", err)
	}

	tableName := TableFromFilePath(f.path)
	return NewTable(tableName, header, tableRecords), nil
}

// arrowValueString renders one cell of an arrow column as its string form.
// Nulls become empty strings, matching how delimited files represent them.
func arrowValueString(col arrow.Array, row int) string {
	if col.IsNull(row) {
		return ""
	}
	return col.ValueStr(row)
}
