package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/discovery/internal/export"
	"github.com/Simplici0/discovery/internal/metrics"
	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/profile"
	"github.com/Simplici0/discovery/internal/session"
)

func (s *server) handleTariff(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Tariff())
}

func (s *server) handleSampleProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, profile.Sample())
}

func (s *server) handleBudget(w http.ResponseWriter, r *http.Request) {
	var p profile.ClientProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.calculate(p))
}

func (s *server) calculate(p profile.ClientProfile) pricing.BudgetResult {
	budget := s.engine.Calculate(p)

	active := p.Products.Active()
	modules := make([]string, len(active))
	for i, m := range active {
		modules[i] = string(m)
	}
	metrics.RecordBudget(modules)
	return budget
}

// handleDraftHead answers 200 when a draft can be resumed and 404 otherwise.
func (s *server) handleDraftHead(w http.ResponseWriter, r *http.Request) {
	has, err := s.store.HasDraft(r.Context())
	if err != nil {
		s.logger.Error("check draft", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if !has {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *server) handleDraftGet(w http.ResponseWriter, r *http.Request) {
	d, err := s.store.LoadDraft(r.Context())
	if err != nil {
		s.logger.Error("load draft", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load draft")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *server) handleDraftPut(w http.ResponseWriter, r *http.Request) {
	var d session.Draft
	if err := decodeJSON(w, r, &d); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.store.SaveDraft(r.Context(), d)
	if err != nil {
		s.logger.Error("save draft", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save draft")
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *server) handleDraftDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearDraft(r.Context()); err != nil {
		s.logger.Error("clear draft", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to clear draft")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleProposalCreate prices the profile, writes the narrative and stores
// the result in the history.
func (s *server) handleProposalCreate(w http.ResponseWriter, r *http.Request) {
	var p profile.ClientProfile
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	budget := s.calculate(p)
	report := s.narrator.Compose(r.Context(), p, budget)

	tariff := s.engine.Tariff()
	saved, err := s.store.Save(r.Context(), session.Session{
		TariffVersion: tariff.Version,
		Currency:      tariff.Currency,
		Profile:       p,
		Budget:        budget,
		Report:        report,
	})
	if err != nil {
		s.logger.Error("save session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to save session")
		return
	}
	metrics.SessionsSaved.Inc()

	s.logger.Info("proposal saved",
		zap.String("id", saved.ID),
		zap.String("company", p.CompanyName),
		zap.Float64("one_time", budget.TotalOneTime),
		zap.Float64("recurring", budget.TotalRecurringYearly),
	)
	writeJSON(w, http.StatusCreated, saved)
}

func (s *server) handleSessionsList(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.logger.Error("list sessions", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleSessionGet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.sessionError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.sessionError(w, err, id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleSessionText(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "text", func(d export.Document) ([]byte, string, error) {
		return []byte(export.DocumentText(d)), "text/plain; charset=utf-8", nil
	})
}

func (s *server) handleSessionPDF(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "pdf", func(d export.Document) ([]byte, string, error) {
		out, err := export.PDF(d)
		return out, "application/pdf", err
	})
}

func (s *server) handleSessionXLSX(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, "xlsx", func(d export.Document) ([]byte, string, error) {
		out, err := export.XLSX(d)
		return out, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	})
}

type renderFunc func(export.Document) (body []byte, contentType string, err error)

// serveExport renders a stored session. The stored budget is used as is.
func (s *server) serveExport(w http.ResponseWriter, r *http.Request, format string, render renderFunc) {
	id := chi.URLParam(r, "id")
	sess, err := s.store.Get(r.Context(), id)
	if err != nil {
		s.sessionError(w, err, id)
		return
	}

	body, contentType, err := render(documentFor(sess))
	if err != nil {
		s.logger.Error("render export", zap.String("id", id), zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to render export")
		return
	}
	metrics.ExportsRendered.WithLabelValues(format).Inc()

	w.Header().Set("Content-Type", contentType)
	if format != "text" {
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, exportName(sess), format))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func documentFor(sess session.Session) export.Document {
	return export.Document{
		CompanyName:   sess.Profile.CompanyName,
		Sector:        sess.Profile.Sector,
		Date:          sess.CreatedAt,
		Currency:      sess.Currency,
		TariffVersion: sess.TariffVersion,
		Budget:        sess.Budget,
		Report:        sess.Report,
	}
}

// exportName builds an ASCII file name from the company and session id.
func exportName(sess session.Session) string {
	var b strings.Builder
	for _, r := range strings.ToLower(sess.Profile.CompanyName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.':
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "-") {
				b.WriteByte('-')
			}
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "propuesta"
	}
	short := sess.ID
	if len(short) > 8 {
		short = short[:8]
	}
	return name + "-" + short
}
