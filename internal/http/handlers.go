package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"liquiplanner/internal/core"
	"liquiplanner/internal/format"
	"liquiplanner/internal/ledger"
	applog "liquiplanner/internal/log"
)

const persistWarning = "Die Änderung wurde übernommen, konnte aber nicht gespeichert werden."

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.writeTemplate(w, r, http.StatusOK, "index.html", pageOf(s.ledger.Snapshot(), emptyForm(s.now())))
}

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	s.writeTemplate(w, r, http.StatusOK, "months", pageOf(s.ledger.Snapshot(), formView{}))
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	s.writeTemplate(w, r, http.StatusOK, "balance", totalsViewOf(s.ledger.Totals()))
}

func (s *Server) handleLedgerJSON(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ledgerJSONOf(s.ledger.Snapshot()))
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		logger.WarnContext(ctx, "Unreadable entry submission", applog.FieldError, err)
		BadRequestError("Ungültige Anfrage").Write(w)
		return
	}
	form := ParseEntryForm(p)

	entry, err := s.ledger.AddEntry(ctx, form.Input())
	if ve, ok := core.AsValidationError(err); ok {
		s.respondInvalid(w, r, p, form, ve)
		return
	}
	persisted := !errors.Is(err, ledger.ErrPersist)
	if err != nil && persisted {
		logger.ErrorContext(ctx, "Adding entry failed", applog.FieldError, err)
		InternalServerError("Der Eintrag konnte nicht hinzugefügt werden").Write(w)
		return
	}

	logger.InfoContext(ctx, "Entry added", applog.NewFields().
		WithOperation(applog.OpCreate).
		WithEntry(int64(entry.ID), entry.Title, string(entry.Kind), entry.Amount.Cents).
		ToSlice()...)

	switch {
	case p.IsJSON():
		writeJSON(w, http.StatusCreated, entryJSON{
			ID:          int64(entry.ID),
			Title:       entry.Title,
			AmountCents: entry.Amount.Cents,
			Kind:        string(entry.Kind),
			Date:        entry.Date.String(),
		})
	case isHTMX(r):
		body, rerr := s.render(ctx, "error_box", formView{})
		if rerr != nil {
			InternalServerError("Die Seite konnte nicht angezeigt werden").Write(w)
			return
		}
		b := NewHTMXResponse().
			TriggerLedgerChanged(string(ledger.OpAdd), entry.ID.String()).
			TriggerFormReset().
			BodyHTML(body)
		if persisted {
			b.TriggerSuccessNotification(format.KindLabel(entry.Kind) + " „" + entry.Title + "“ hinzugefügt")
		} else {
			b.TriggerWarningNotification(persistWarning)
		}
		b.Write(w)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) respondInvalid(w http.ResponseWriter, r *http.Request, p *RequestBodyParser, form EntryForm, ve *core.ValidationError) {
	switch {
	case p.IsJSON():
		fields := make([]string, len(ve.Fields))
		for i, f := range ve.Fields {
			fields[i] = string(f)
		}
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": fields})
	case isHTMX(r):
		s.writeTemplate(w, r, http.StatusUnprocessableEntity, "error_box", formWithErrors(form, ve))
	default:
		s.writeTemplate(w, r, http.StatusUnprocessableEntity, "index.html",
			pageOf(s.ledger.Snapshot(), formWithErrors(form, ve)))
	}
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)
	raw := sanitizeInput(chi.URLParam(r, "id"))

	err := s.ledger.RemoveEntryString(ctx, raw)
	persisted := err == nil
	if err != nil && !errors.Is(err, ledger.ErrPersist) {
		logger.ErrorContext(ctx, "Removing entry failed", applog.FieldEntryID, raw, applog.FieldError, err)
		InternalServerError("Der Eintrag konnte nicht entfernt werden").Write(w)
		return
	}
	logger.InfoContext(ctx, "Entry removed", applog.FieldOperation, applog.OpDelete, applog.FieldEntryID, raw)

	if !isHTMX(r) && r.Method == http.MethodPost {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	b := NewHTMXResponse().TriggerLedgerChanged(string(ledger.OpRemove), raw)
	if !persisted {
		b.TriggerWarningNotification(persistWarning)
	}
	b.Write(w)
}

// rateLimited counts a rejected mutation. HTMX clients get a warning toast
// instead of the plain 429 body.
func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) bool {
	s.metrics.rateLimited.Inc()
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Mutation rate limit exceeded",
		applog.FieldClientIP, r.RemoteAddr, applog.FieldPath, r.URL.Path)
	if !isHTMX(r) {
		return false
	}
	NewHTMXResponse().
		Status(http.StatusTooManyRequests).
		TriggerWarningNotification("Zu viele Änderungen in kurzer Zeit, bitte kurz warten.").
		Write(w)
	return true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]string{"templates": "ok", "storage": "ok"}

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status, httpStatus = "not_ready", http.StatusServiceUnavailable
	}
	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "Readiness check failed", applog.FieldError, err)
			checks["storage"] = "failed: " + err.Error()
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		InternalServerError("encoding failed").Write(w)
		return
	}
	NewHTMXResponse().
		Status(status).
		Header("Content-Type", "application/json").
		Body(body).
		Write(w)
}
