package ingestion

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/testsabirweb/slack_render/pkg/models"
)

// ParserConfig contains configuration for the CSV parser
type ParserConfig struct {
	BatchSize       int  // Number of records to process in a batch
	SkipErrors      bool // Whether to skip records with errors
	ValidateRecords bool // Whether to validate records
}

// DefaultParserConfig returns default parser configuration
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		BatchSize:       100,
		SkipErrors:      true,
		ValidateRecords: true,
	}
}

// Record is one CSV row: a message together with the channel it was posted in
type Record struct {
	ChannelID   string
	ChannelName string
	Private     bool
	Message     models.Message
}

// CSVParser handles parsing of Slack CSV export files
type CSVParser struct {
	config           ParserConfig
	totalRecords     int
	processedRecords int
	errorCount       int
	errors           []error
}

// NewCSVParser creates a new CSV parser instance
func NewCSVParser(config ...ParserConfig) *CSVParser {
	cfg := DefaultParserConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return &CSVParser{
		config: cfg,
		errors: make([]error, 0),
	}
}

// BatchCallback is called for each batch of records
type BatchCallback func(records []Record, batchNum int) error

// ProgressCallback is called to report progress
type ProgressCallback func(processed, total int, errors int)

// ParseFile parses a CSV file with batch processing and progress tracking
func (p *CSVParser) ParseFile(filename string, batchCallback BatchCallback, progressCallback ProgressCallback) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return p.ParseWithCallbacks(file, batchCallback, progressCallback)
}

// ParseWithCallbacks parses CSV data with batch processing. Records are
// delivered in file order.
func (p *CSVParser) ParseWithCallbacks(r io.Reader, batchCallback BatchCallback, progressCallback ProgressCallback) error {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true // Handle quotes in fields
	reader.TrimLeadingSpace = true

	// Read header
	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	// Map header columns
	columnMap := make(map[string]int)
	for i, col := range header {
		columnMap[strings.TrimSpace(col)] = i
	}

	// Validate required columns
	requiredColumns := []string{"text", "user", "channel_id", "ts"}
	for _, col := range requiredColumns {
		if _, ok := columnMap[col]; !ok {
			return fmt.Errorf("required column %s not found in CSV", col)
		}
	}

	batchSize := p.config.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}
	batch := make([]Record, 0, batchSize)
	batchNum := 0
	p.totalRecords = 0
	p.processedRecords = 0
	p.errorCount = 0

	for {
		row, err := reader.Read()
		if err == io.EOF {
			// Process final batch
			if len(batch) > 0 {
				if err := batchCallback(batch, batchNum); err != nil {
					return fmt.Errorf("batch callback error: %w", err)
				}
			}
			break
		}
		if err != nil {
			if p.config.SkipErrors {
				p.recordError(fmt.Errorf("failed to read record %d: %w", p.totalRecords+1, err))
				p.totalRecords++
				continue
			}
			return fmt.Errorf("failed to read record: %w", err)
		}

		p.totalRecords++

		rec, err := p.parseRecord(row, columnMap)
		if err != nil {
			if p.config.SkipErrors {
				p.recordError(fmt.Errorf("failed to parse record %d: %w", p.totalRecords, err))
				continue
			}
			return fmt.Errorf("failed to parse record %d: %w", p.totalRecords, err)
		}

		if p.config.ValidateRecords {
			if err := validateRecord(rec); err != nil {
				if p.config.SkipErrors {
					p.recordError(fmt.Errorf("invalid record %d: %w", p.totalRecords, err))
					continue
				}
				return fmt.Errorf("invalid record %d: %w", p.totalRecords, err)
			}
		}

		batch = append(batch, rec)
		p.processedRecords++

		if len(batch) >= batchSize {
			if err := batchCallback(batch, batchNum); err != nil {
				return fmt.Errorf("batch callback error: %w", err)
			}
			batchNum++
			batch = make([]Record, 0, batchSize)
		}

		if progressCallback != nil && p.totalRecords%100 == 0 {
			progressCallback(p.processedRecords, p.totalRecords, p.errorCount)
		}
	}

	if progressCallback != nil {
		progressCallback(p.processedRecords, p.totalRecords, p.errorCount)
	}

	return nil
}

// Parse parses all records at once (for smaller files)
func (p *CSVParser) Parse(r io.Reader) ([]Record, error) {
	var all []Record

	err := p.ParseWithCallbacks(r, func(records []Record, batchNum int) error {
		all = append(all, records...)
		return nil
	}, nil)
	if err != nil {
		return nil, err
	}

	return all, nil
}

// parseRecord converts a CSV row to a Record
func (p *CSVParser) parseRecord(row []string, columnMap map[string]int) (Record, error) {
	getField := func(fieldName string) string {
		if idx, ok := columnMap[fieldName]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	rec := Record{
		ChannelID:   getField("channel_id"),
		ChannelName: getField("channel_name"),
		Message: models.Message{
			// Leading and trailing whitespace is part of the message text
			Text:            rawField(row, columnMap, "text"),
			User:            getField("user"),
			Timestamp:       getField("ts"),
			ThreadTimestamp: getField("thread_ts"),
		},
	}

	if tsStr := rec.Message.Timestamp; tsStr != "" {
		if _, err := parseSlackTimestamp(tsStr); err != nil {
			return rec, fmt.Errorf("failed to parse timestamp %s: %w", tsStr, err)
		}
	}

	if replyCountStr := getField("reply_count"); replyCountStr != "" {
		if count, err := strconv.Atoi(replyCountStr); err == nil {
			rec.Message.ReplyCount = count
		}
	}

	if privateStr := getField("is_private"); privateStr != "" {
		if private, err := strconv.ParseBool(privateStr); err == nil {
			rec.Private = private
		}
	}

	return rec, nil
}

func rawField(row []string, columnMap map[string]int, fieldName string) string {
	if idx, ok := columnMap[fieldName]; ok && idx < len(row) {
		return row[idx]
	}
	return ""
}

// parseSlackTimestamp parses Slack's timestamp format
func parseSlackTimestamp(ts string) (time.Time, error) {
	// Try Unix timestamp with microseconds format first (e.g., "1599934232.150700")
	if strings.Contains(ts, ".") {
		parts := strings.Split(ts, ".")
		if len(parts) == 2 {
			seconds, err := strconv.ParseInt(parts[0], 10, 64)
			if err == nil {
				microseconds, err := strconv.ParseInt(parts[1], 10, 64)
				if err == nil {
					return time.Unix(0, seconds*1e9+microseconds*1000), nil
				}
			}
		}
	} else if seconds, err := strconv.ParseInt(ts, 10, 64); err == nil {
		return time.Unix(seconds, 0), nil
	}

	formats := []string{
		"2006-01-02 15:04:05",
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid timestamp format: %s", ts)
}

// validateRecord checks the fields every rendered message needs
func validateRecord(rec Record) error {
	if rec.ChannelID == "" {
		return fmt.Errorf("no channel ID")
	}
	if rec.Message.Timestamp == "" {
		return fmt.Errorf("no timestamp")
	}
	return nil
}

// recordError records a parsing error
func (p *CSVParser) recordError(err error) {
	p.errorCount++
	p.errors = append(p.errors, err)
}

// GetErrors returns all parsing errors
func (p *CSVParser) GetErrors() []error {
	return p.errors
}

// GetStats returns parsing statistics
func (p *CSVParser) GetStats() (total, processed, errors int) {
	return p.totalRecords, p.processedRecords, p.errorCount
}
