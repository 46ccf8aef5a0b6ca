package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bookwell/scheduler/internal/observability/metrics"
	redisclient "github.com/bookwell/scheduler/internal/redis"
	"github.com/bookwell/scheduler/internal/store"
)

type handlerDeps struct {
	repo    store.Repository
	locker  redisclient.Locker
	metrics *metrics.SchedulingMetrics
	logger  *zap.Logger
}

func (d handlerDeps) observe(route string, status int) {
	d.metrics.ObserveRequest(route, strconv.Itoa(status))
}

func listWindowsHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		windows, err := d.repo.ListProviderWindows(r.Context())
		if err != nil {
			d.logger.Error("list provider windows", zap.Error(err))
			d.observe("list_windows", http.StatusInternalServerError)
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]WindowResponse, 0, len(windows))
		for _, pw := range windows {
			resp = append(resp, WindowResponse{
				ID:        pw.ID,
				Start:     pw.StartTime,
				End:       pw.EndTime,
				CreatedAt: pw.CreatedAt,
			})
		}

		d.observe("list_windows", http.StatusOK)
		writeJSON(w, http.StatusOK, resp)
	}
}

func createWindowHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeWindowRequest(w, r)
		if !ok {
			d.observe("create_window", http.StatusBadRequest)
			return
		}

		pw, err := d.repo.CreateProviderWindow(r.Context(), req.Start, req.End)
		if err != nil {
			if errors.Is(err, store.ErrWindowOverlap) {
				d.metrics.ObserveConflict("window_overlap")
				d.observe("create_window", http.StatusConflict)
				writeError(w, http.StatusConflict, "window_overlap", err.Error())
				return
			}
			d.logger.Error("create provider window", zap.Error(err))
			d.observe("create_window", http.StatusInternalServerError)
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		d.metrics.ObserveWindowCreated()
		d.observe("create_window", http.StatusCreated)
		writeJSON(w, http.StatusCreated, WindowResponse{
			ID:        pw.ID,
			Start:     pw.StartTime,
			End:       pw.EndTime,
			CreatedAt: pw.CreatedAt,
		})
	}
}

func deleteWindowHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			d.observe("delete_window", http.StatusBadRequest)
			writeError(w, http.StatusBadRequest, "invalid_window_id", "id must be a valid UUID")
			return
		}

		if err := d.repo.DeleteProviderWindow(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrWindowNotFound) {
				d.observe("delete_window", http.StatusNotFound)
				writeError(w, http.StatusNotFound, "window_not_found", err.Error())
				return
			}
			d.logger.Error("delete provider window", zap.Error(err))
			d.observe("delete_window", http.StatusInternalServerError)
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		d.observe("delete_window", http.StatusNoContent)
		w.WriteHeader(http.StatusNoContent)
	}
}

func listAppointmentsHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := d.repo.ListAppointments(r.Context())
		if err != nil {
			d.logger.Error("list appointments", zap.Error(err))
			d.observe("list_appointments", http.StatusInternalServerError)
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]WindowResponse, 0, len(appts))
		for _, a := range appts {
			resp = append(resp, WindowResponse{
				ID:        a.ID,
				Start:     a.StartTime,
				End:       a.EndTime,
				CreatedAt: a.CreatedAt,
			})
		}

		d.observe("list_appointments", http.StatusOK)
		writeJSON(w, http.StatusOK, resp)
	}
}

func createAppointmentHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeWindowRequest(w, r)
		if !ok {
			d.observe("create_appointment", http.StatusBadRequest)
			return
		}

		covered, err := d.repo.HasWindowCovering(r.Context(), req.Start, req.End)
		if err != nil {
			d.logger.Error("check availability", zap.Error(err))
			d.observe("create_appointment", http.StatusInternalServerError)
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}
		if !covered {
			d.metrics.ObserveConflict("outside_availability")
			d.observe("create_appointment", http.StatusUnprocessableEntity)
			writeError(w, http.StatusUnprocessableEntity, "outside_availability",
				"requested span is not inside any provider window")
			return
		}

		var created *store.Appointment

		// Serialize competing bookings of the same start point.
		err = d.locker.WithWindowLock(r.Context(), req.Start, func(lockCtx context.Context) error {
			appt, err := d.repo.CreateAppointment(lockCtx, req.Start, req.End)
			if err != nil {
				return err
			}
			created = appt
			return nil
		})
		if err != nil {
			switch {
			case errors.Is(err, store.ErrSlotTaken):
				d.metrics.ObserveConflict("slot_taken")
				d.observe("create_appointment", http.StatusConflict)
				writeError(w, http.StatusConflict, "slot_taken", err.Error())
			case errors.Is(err, redisclient.ErrLockNotAcquired):
				d.metrics.ObserveConflict("slot_being_booked")
				d.observe("create_appointment", http.StatusConflict)
				writeError(w, http.StatusConflict, "slot_being_booked",
					"slot is currently being booked, please retry shortly")
			default:
				d.logger.Error("create appointment", zap.Error(err))
				d.observe("create_appointment", http.StatusInternalServerError)
				writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			}
			return
		}

		d.metrics.ObserveAppointmentCreated()
		d.observe("create_appointment", http.StatusCreated)
		writeJSON(w, http.StatusCreated, WindowResponse{
			ID:        created.ID,
			Start:     created.StartTime,
			End:       created.EndTime,
			CreatedAt: created.CreatedAt,
		})
	}
}

func deleteAppointmentHandler(d handlerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			d.observe("delete_appointment", http.StatusBadRequest)
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		if err := d.repo.DeleteAppointment(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrAppointmentNotFound) {
				d.observe("delete_appointment", http.StatusNotFound)
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			d.logger.Error("delete appointment", zap.Error(err))
			d.observe("delete_appointment", http.StatusInternalServerError)
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		d.observe("delete_appointment", http.StatusNoContent)
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeWindowRequest(w http.ResponseWriter, r *http.Request) (CreateWindowRequest, bool) {
	var req CreateWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return CreateWindowRequest{}, false
	}
	if !req.Start.Before(req.End) {
		writeError(w, http.StatusBadRequest, "invalid_window", "start must be before end")
		return CreateWindowRequest{}, false
	}
	return req, true
}
