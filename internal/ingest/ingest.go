// Package ingest reads SMS exports (CSV or JSON lines) into messages.
package ingest

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/rupee-flow/internal/model"
	"github.com/google/uuid"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// Errors returned while reading exports.
var (
	ErrUnknownFormat = errors.New("unknown import format")
	ErrMissingColumn = errors.New("missing required column")
	ErrInvalidRecord = errors.New("invalid record")
)

// maxLineBytes bounds a single JSON line.
const maxLineBytes = 1 << 20

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006 15:04:05",
	"2006-01-02",
}

// Defaults fill in fields a record leaves empty.
type Defaults struct {
	Now    func() time.Time
	UserID string
}

func (d Defaults) now() time.Time {
	if d.Now != nil {
		return d.Now().UTC()
	}
	return time.Now().UTC()
}

// DetectFormat picks a format from a file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONL, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatCSV, FormatJSONL:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Read parses r in the given format.
func Read(r io.Reader, format Format, d Defaults) ([]model.Message, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r, d)
	case FormatJSONL:
		return ReadJSONL(r, d)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadCSV parses a CSV export with a header row. The message column (or
// body) is required; id, user_id, sender and received_at (or date) are
// optional.
func ReadCSV(r io.Reader, d Defaults) ([]model.Message, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	col := func(names ...string) int {
		for _, n := range names {
			if i, ok := columns[n]; ok {
				return i
			}
		}
		return -1
	}

	bodyCol := col("message", "body")
	if bodyCol < 0 {
		return nil, fmt.Errorf("%w: message", ErrMissingColumn)
	}
	idCol, userCol, senderCol, timeCol := col("id"), col("user_id"), col("sender"), col("received_at", "date")

	field := func(record []string, i int) string {
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var messages []model.Message
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		msg, err := normalize(rawMessage{
			ID:         field(record, idCol),
			UserID:     field(record, userCol),
			Sender:     field(record, senderCol),
			Body:       field(record, bodyCol),
			ReceivedAt: field(record, timeCol),
		}, d)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ReadJSONL parses one JSON message object per line. Blank lines are
// ignored.
func ReadJSONL(r io.Reader, d Defaults) ([]model.Message, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var messages []model.Message
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var raw rawMessage
		if err := json.Unmarshal([]byte(text), &raw); err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", line, ErrInvalidRecord, err)
		}
		msg, err := normalize(raw, d)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		messages = append(messages, msg)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read JSON lines: %w", err)
	}
	return messages, nil
}

type rawMessage struct {
	ID         string `json:"id"`
	UserID     string `json:"user_id"`
	Sender     string `json:"sender"`
	Body       string `json:"message"`
	ReceivedAt string `json:"received_at"`
}

func normalize(raw rawMessage, d Defaults) (model.Message, error) {
	msg := model.Message{
		ID:     raw.ID,
		UserID: raw.UserID,
		Sender: raw.Sender,
		Body:   raw.Body,
	}
	if msg.UserID == "" {
		msg.UserID = d.UserID
	}
	if msg.UserID == "" {
		return msg, fmt.Errorf("%w: no user id", ErrInvalidRecord)
	}
	if strings.TrimSpace(msg.Body) == "" {
		return msg, fmt.Errorf("%w: empty message", ErrInvalidRecord)
	}

	if raw.ReceivedAt == "" {
		msg.ReceivedAt = d.now()
	} else {
		t, err := parseTime(raw.ReceivedAt)
		if err != nil {
			return msg, err
		}
		msg.ReceivedAt = t
	}

	if msg.ID == "" {
		msg.ID = MessageID(msg)
	}
	return msg, nil
}

// MessageID derives a stable id from a message's content, so importing the
// same export twice stores each message once.
func MessageID(msg model.Message) string {
	key := strings.Join([]string{msg.UserID, msg.Sender, msg.ReceivedAt.UTC().Format(time.RFC3339Nano), msg.Body}, "\x00")
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized time %q", ErrInvalidRecord, s)
}
