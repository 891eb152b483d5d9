// Package http serves the ledger web UI.
//
// This file parses submitted entry forms. Bodies may be form-encoded, as
// sent by browsers and htmx, or JSON, as sent by scripts.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"liquiplanner/internal/core"
	"liquiplanner/internal/ledger"
)

// Form field names, as used by the entry form.
const (
	fieldTitel  = "titel"
	fieldBetrag = "betrag"
	fieldTyp    = "typ"
	fieldDatum  = "datum"
)

// maxBodyBytes bounds entry submissions.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body of r once so it can be parsed later.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.IsJSONContent() {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// IsJSONContent reports whether the body is declared or looks like JSON.
func (p *RequestBodyParser) IsJSONContent() bool {
	if strings.HasPrefix(p.contentType, "application/json") {
		return true
	}
	return len(p.body) > 0 && p.body[0] == '{'
}

// Get returns a sanitized string value from the parsed data.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// EntryForm is a submitted entry as typed by the user.
type EntryForm struct {
	Titel  string
	Betrag string
	Typ    string
	Datum  string
}

// ParseEntryForm reads the entry fields from p, which must be parsed.
func ParseEntryForm(p *RequestBodyParser) EntryForm {
	return EntryForm{
		Titel:  p.Get(fieldTitel),
		Betrag: p.Get(fieldBetrag),
		Typ:    strings.ToLower(p.Get(fieldTyp)),
		Datum:  p.Get(fieldDatum),
	}
}

// Input converts the form into ledger input. Unparseable kinds and dates are
// passed on in a form the core rejects, so every bad field is reported at once.
func (f EntryForm) Input() ledger.EntryInput {
	in := ledger.EntryInput{Title: f.Titel, Amount: f.Betrag}

	if f.Typ != "" {
		kind, err := core.ParseKind(f.Typ)
		if err != nil {
			kind = core.Kind(f.Typ)
		}
		in.Kind = kind
	}

	if d, err := core.ParseDate(f.Datum); err == nil {
		in.Date = d
	}
	return in
}
