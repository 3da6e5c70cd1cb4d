package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/oncowatch/oncowatch/pkg/domain/types"
	"github.com/oncowatch/oncowatch/pkg/service/storage"
	"github.com/oncowatch/oncowatch/pkg/service/workbook"
	"github.com/oncowatch/oncowatch/pkg/usecase"
	"github.com/oncowatch/oncowatch/pkg/utils/async"
	"github.com/oncowatch/oncowatch/pkg/utils/errutil"
	"github.com/oncowatch/oncowatch/pkg/utils/logging"
)

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) insightsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, s.uc.Insights.Get(r.Context()))
}

func (s *Server) cancerTypesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, map[string][]model.CancerType{
		"cancer_types": s.cancerTypes,
	})
}

type rosterResponse struct {
	Patients    []*model.RosterEntry `json:"patients"`
	GeneratedAt *time.Time           `json:"generated_at,omitempty"`
	Error       string               `json:"error,omitempty"`
}

func parseRosterFilter(r *http.Request) usecase.RosterFilter {
	var f usecase.RosterFilter
	if v := r.URL.Query().Get("cancer_type"); v != "" {
		f.CancerTypes = strings.Split(v, ",")
	}
	f.Query = r.URL.Query().Get("q")
	return f
}

// writeRoster renders a snapshot. A failed load renders an empty roster
// with the error message.
func writeRoster(ctx context.Context, w http.ResponseWriter, r *http.Request, snapshot *model.RosterSnapshot, err error) {
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to load roster")
		writeJSON(ctx, w, http.StatusOK, rosterResponse{
			Patients: []*model.RosterEntry{},
			Error:    err.Error(),
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, rosterResponse{
		Patients:    usecase.Filter(snapshot.Entries, parseRosterFilter(r)),
		GeneratedAt: &snapshot.GeneratedAt,
	})
}

func (s *Server) rosterHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.uc.Roster.Snapshot(r.Context())
	writeRoster(r.Context(), w, r, snapshot, err)
}

func (s *Server) rosterRefreshHandler(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.uc.Roster.Load(r.Context())
	writeRoster(r.Context(), w, r, snapshot, err)
}

func (s *Server) patientDetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	patientID := model.PatientID(chi.URLParam(r, "patientID"))

	detail, err := sessionFromContext(ctx).SelectPatient(ctx, patientID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, detail)
}

type trendResponse struct {
	PatientID model.PatientID       `json:"patient_id"`
	Window    types.Window          `json:"window"`
	Symptoms  []model.SymptomSeries `json:"symptoms"`
	Points    []model.WindowPoint   `json:"points"`
}

// patientTrendHandler serves one window of the selected patient. Asking for
// a patient other than the current selection selects it first.
func (s *Server) patientTrendHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	session := sessionFromContext(ctx)
	patientID := model.PatientID(chi.URLParam(r, "patientID"))

	window := types.DefaultWindow
	if v := r.URL.Query().Get("window"); v != "" {
		parsed, err := types.ParseWindow(v)
		if err != nil {
			writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		window = parsed
	}

	trend, err := session.Trend(patientID)
	if errors.Is(err, usecase.ErrNoSelection) {
		detail, selErr := session.SelectPatient(ctx, patientID)
		if selErr != nil {
			writeError(ctx, w, selErr)
			return
		}
		trend, err = detail.Trend, nil
	}
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, trendResponse{
		PatientID: patientID,
		Window:    window,
		Symptoms:  trend.Symptoms,
		Points:    trend.Windows[window],
	})
}

type draftRequest struct {
	ActionTaken *bool   `json:"action_taken"`
	Notes       *string `json:"notes"`
}

func (s *Server) draftHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := model.SubmissionID(chi.URLParam(r, "submissionID"))

	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "invalid draft body"})
		return
	}

	workflow, err := sessionFromContext(ctx).Workflow()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if req.ActionTaken != nil {
		if err := workflow.SetActionTaken(id, *req.ActionTaken); err != nil {
			writeError(ctx, w, err)
			return
		}
	}
	if req.Notes != nil {
		if err := workflow.SetNotes(id, *req.Notes); err != nil {
			writeError(ctx, w, err)
			return
		}
	}

	view, err := workflow.View(id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeJSON(ctx, w, http.StatusOK, view)
}

type saveFailedResponse struct {
	Error      string                `json:"error"`
	Annotation *model.AnnotationView `json:"annotation"`
}

func (s *Server) saveHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := model.SubmissionID(chi.URLParam(r, "submissionID"))

	workflow, err := sessionFromContext(ctx).Workflow()
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	if _, err := workflow.Save(ctx, id); err != nil {
		status := statusOf(err)
		if status != http.StatusBadGateway {
			writeError(ctx, w, err)
			return
		}

		// the draft is kept; return it so the clinician can retry
		_ = errutil.Handle(ctx, err, "annotation save failed")
		view, viewErr := workflow.View(id)
		if viewErr != nil {
			writeError(ctx, w, viewErr)
			return
		}
		writeJSON(ctx, w, status, saveFailedResponse{Error: err.Error(), Annotation: view})
		return
	}

	view, err := workflow.View(id)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	// the roster shows the latest submission's action state
	async.Dispatch(ctx, "roster reload after save", func(ctx context.Context) error {
		_, err := s.uc.Roster.Load(ctx)
		return err
	})

	writeJSON(ctx, w, http.StatusOK, view)
}

type notificationsResponse struct {
	Notifications []*model.Notification `json:"notifications"`
	Error         string                `json:"error,omitempty"`
}

func (s *Server) notificationsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notifications, err := s.uc.Notification.List(ctx)
	if err != nil {
		_ = errutil.Handle(ctx, err, "failed to list notifications")
		writeJSON(ctx, w, http.StatusOK, notificationsResponse{
			Notifications: []*model.Notification{},
			Error:         err.Error(),
		})
		return
	}

	writeJSON(ctx, w, http.StatusOK, notificationsResponse{Notifications: notifications})
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	export, err := s.uc.Export.Build(ctx)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to build export"), http.StatusBadGateway)
		return
	}

	name := usecase.FileName(export.GeneratedAt)
	w.Header().Set("Content-Type", storage.XLSXContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := workbook.Write(w, export); err != nil {
		_ = errutil.Handle(ctx, goerr.Wrap(err, "failed to write workbook", goerr.V("file", name)), "export aborted")
		return
	}

	logging.From(ctx).Info("export downloaded",
		"file", name,
		"patients", len(export.Patients),
		"submissions", len(export.Submissions),
	)
}

func (s *Server) sessionDeleteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.uc.Sessions.Delete(sessionFromContext(ctx).ID)

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}
