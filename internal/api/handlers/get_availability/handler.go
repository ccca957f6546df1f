package get_availability

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/spaflow/booking-engine/internal/api/handlers"
	"github.com/spaflow/booking-engine/internal/domain"
	getDateAvailability "github.com/spaflow/booking-engine/internal/usecase/get_date_availability"
	getTimeSlots "github.com/spaflow/booking-engine/internal/usecase/get_time_slots"
	"github.com/spaflow/booking-engine/pkg/ptr"
)

const (
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDays     = "некорректное значение days"
	msgInvalidID       = "некорректный идентификатор в параметрах запроса"
	msgRangeTooLarge   = "запрошенный диапазон дат слишком большой"
	msgServiceNotFound = "услуга не найдена"
	msgServiceInactive = "услуга недоступна для бронирования"
	msgInvalidInput    = "некорректные параметры запроса"
)

type Handler struct {
	slotsUseCase   GetTimeSlotsUseCase
	summaryUseCase GetDateAvailabilityUseCase
	logger         Logger
}

func NewHandler(slotsUseCase GetTimeSlotsUseCase, summaryUseCase GetDateAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		slotsUseCase:   slotsUseCase,
		summaryUseCase: summaryUseCase,
		logger:         logger,
	}
}

// Handle GET /api/v1/availability
//
// Два режима по параметрам запроса:
//   - date=YYYY-MM-DD - слоты на дату (плюс опциональные serviceId, staffId, roomId)
//   - startDate=YYYY-MM-DD&days=N - сводка доступности по датам диапазона
//
// Без параметров возвращается сводка от сегодняшней даты
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if query.Get("date") != "" {
		h.handleTimeSlots(w, r)
		return
	}

	h.handleDateSummaries(w, r)
}

func (h *Handler) handleTimeSlots(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	date, err := time.Parse(domain.DateFormat, query.Get("date"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	serviceID, err := parseOptionalID(query.Get("serviceId"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid serviceId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}
	staffID, err := parseOptionalID(query.Get("staffId"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid staffId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}
	roomID, err := parseOptionalID(query.Get("roomId"))
	if err != nil {
		h.logger.Warn("GET /availability - Invalid roomId: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	result, err := h.slotsUseCase.Execute(r.Context(), &getTimeSlots.Request{
		Date:      date,
		ServiceID: serviceID,
		StaffID:   staffID,
		RoomID:    roomID,
	})
	if err != nil {
		switch {
		case errors.Is(err, getTimeSlots.ErrServiceNotFound):
			h.logger.Warn("GET /availability - Service not found: service_id=%v", serviceID)
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, getTimeSlots.ErrServiceInactive):
			h.logger.Warn("GET /availability - Service inactive: service_id=%v", serviceID)
			handlers.RespondBadRequest(w, msgServiceInactive)

		case errors.Is(err, getTimeSlots.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /availability - Failed to get time slots: date=%s, error=%v",
				date.Format(domain.DateFormat), err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability - Time slots retrieved: date=%s, slots=%d",
		date.Format(domain.DateFormat), len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, FromTimeSlotsResponse(result))
}

func (h *Handler) handleDateSummaries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var startDate time.Time
	if raw := query.Get("startDate"); raw != "" {
		parsed, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			h.logger.Warn("GET /availability - Invalid startDate: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
		startDate = parsed
	}

	days := 0
	if raw := query.Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.logger.Warn("GET /availability - Invalid days: %s", raw)
			handlers.RespondBadRequest(w, msgInvalidDays)
			return
		}
		days = parsed
	}

	result, err := h.summaryUseCase.Execute(r.Context(), &getDateAvailability.Request{
		StartDate: startDate,
		Days:      days,
	})
	if err != nil {
		switch {
		case errors.Is(err, getDateAvailability.ErrRangeTooLarge):
			h.logger.Warn("GET /availability - Range too large: days=%d", days)
			handlers.RespondBadRequest(w, msgRangeTooLarge)

		case errors.Is(err, getDateAvailability.ErrInvalidInput):
			h.logger.Warn("GET /availability - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("GET /availability - Failed to get date summaries: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /availability - Date summaries retrieved: start=%s, days=%d",
		result.StartDate.Format(domain.DateFormat), result.Days)
	handlers.RespondJSON(w, http.StatusOK, FromDateAvailabilityResponse(result))
}

func parseOptionalID(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return ptr.Ptr(id), nil
}
