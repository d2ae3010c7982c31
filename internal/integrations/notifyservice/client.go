package notifyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с NotifyService.
// Все отправки best-effort: вызывающая сторона логирует сбой и продолжает.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента NotifyService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// SendBookingConfirmation ставит в очередь письмо о подтверждении бронирования
func (c *Client) SendBookingConfirmation(ctx context.Context, msg *ConfirmationMessage) error {
	return c.post(ctx, "/internal/notifications/booking-confirmed", msg)
}

// SendBookingCancellation ставит в очередь письмо об отмене бронирования
func (c *Client) SendBookingCancellation(ctx context.Context, msg *CancellationMessage) error {
	return c.post(ctx, "/internal/notifications/booking-cancelled", msg)
}

// SendSyncConflict ставит в очередь уведомление о конфликте бронирований,
// обнаруженном при синхронизации календарей
func (c *Client) SendSyncConflict(ctx context.Context, msg *SyncConflictMessage) error {
	return c.post(ctx, "/internal/notifications/booking-conflict", msg)
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal payload: %v", ErrInternal, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
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
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(respBody))
	}
}
