package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"liquiplanner/internal/core"
	"liquiplanner/internal/ledger"
)

// FormatVersion is the version written into every envelope.
const FormatVersion = 1

var (
	ErrUnknownFormat      = errors.New("unrecognized ledger document")
	ErrUnsupportedVersion = errors.New("unsupported ledger format version")
	ErrNotObject          = errors.New("record is not an object")
)

type envelope struct {
	Version int               `json:"version"`
	Entries []json.RawMessage `json:"entries"`
}

type recordOut struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Amount int64  `json:"amount"`
	Kind   string `json:"kind"`
	Date   string `json:"date"`
}

// recordIn accepts both the current field names and the underscore-prefixed
// German ones written by the browser ledger.
type recordIn struct {
	ID     json.RawMessage `json:"id"`
	Title  *string         `json:"title"`
	Amount json.RawMessage `json:"amount"`
	Kind   *string         `json:"kind"`
	Date   *string         `json:"date"`

	LegacyTitle     *string         `json:"_titel"`
	LegacyAmount    json.RawMessage `json:"_betrag"`
	LegacyKind      *string         `json:"_typ"`
	LegacyDate      *string         `json:"_datum"`
	LegacyTimestamp json.RawMessage `json:"_timestamp"`
}

// Encode renders entries as a versioned JSON envelope.
func Encode(entries []core.Entry) ([]byte, error) {
	out := struct {
		Version int         `json:"version"`
		Entries []recordOut `json:"entries"`
	}{Version: FormatVersion, Entries: make([]recordOut, 0, len(entries))}

	for _, e := range entries {
		out.Entries = append(out.Entries, recordOut{
			ID:     int64(e.ID),
			Title:  e.Title,
			Amount: e.Amount.Cents,
			Kind:   string(e.Kind),
			Date:   e.Date.String(),
		})
	}
	return json.Marshal(out)
}

// Decode reads a ledger document: the versioned envelope, a bare array of
// records or the legacy browser array. An empty document holds no records.
// Elements that cannot be read become records carrying Err, so a single bad
// element never fails the whole load.
func Decode(data []byte) ([]ledger.RawRecord, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var items []json.RawMessage
	switch data[0] {
	case '{':
		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
		}
		if env.Version > FormatVersion {
			return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.Version)
		}
		items = env.Entries
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnknownFormat, err)
		}
	default:
		return nil, ErrUnknownFormat
	}

	records := make([]ledger.RawRecord, 0, len(items))
	for i, raw := range items {
		records = append(records, decodeRecord(i, raw))
	}
	return records, nil
}

func decodeRecord(index int, raw json.RawMessage) ledger.RawRecord {
	rec := ledger.RawRecord{Index: index}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		rec.Err = ErrNotObject
		return rec
	}
	var in recordIn
	if err := json.Unmarshal(raw, &in); err != nil {
		rec.Err = fmt.Errorf("decode record: %w", err)
		return rec
	}

	rec.ID = firstNonEmpty(scalarText(in.ID), scalarText(in.LegacyTimestamp))
	rec.Title = firstNonEmpty(deref(in.Title), deref(in.LegacyTitle))
	rec.Amount = firstNonEmpty(scalarText(in.Amount), scalarText(in.LegacyAmount))
	rec.Kind = firstNonEmpty(deref(in.Kind), deref(in.LegacyKind))
	rec.Date = firstNonEmpty(deref(in.Date), deref(in.LegacyDate))
	return rec
}

// scalarText returns a JSON string's content or a number's literal text.
func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return strings.TrimSpace(s)
	}
	return string(raw)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
