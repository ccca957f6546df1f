// Package auditservice клиент внешнего сервиса аудита бронирований
// Каждый переход статуса отправляется как событие; недоступность аудита
// не блокирует основной поток бронирования (graceful degradation)
package auditservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с аудит-сервисом
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента аудит-сервиса
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// BookingStatusChanged отправляет событие смены статуса бронирования
// Ошибка доставки логируется, но не возвращается вызывающему: аудит не должен
// ломать путь бронирования. Событию присваивается uuid для дедупликации
// на стороне аудит-сервиса
func (c *Client) BookingStatusChanged(ctx context.Context, event StatusChangeEvent) {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := c.post(ctx, event); err != nil {
		c.log.Error("AuditService unavailable, status change event dropped: booking_id=%d, %s -> %s: %v",
			event.BookingID, event.OldStatus, event.NewStatus, err)
		return
	}

	c.log.Info("AuditService: status change event delivered: booking_id=%d, %s -> %s, event_id=%s",
		event.BookingID, event.OldStatus, event.NewStatus, event.EventID)
}

func (c *Client) post(ctx context.Context, event StatusChangeEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event: %v", ErrInternal, err)
	}

	url := fmt.Sprintf("%s/internal/booking-events", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted:
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}

// NoopNotifier заглушка, используется при выключенном аудите
type NoopNotifier struct{}

// BookingStatusChanged ничего не делает
func (NoopNotifier) BookingStatusChanged(context.Context, StatusChangeEvent) {}
