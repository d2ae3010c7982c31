package icalfeed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для загрузки внешних iCal календарей.
// Таймаут жестко ограничен: зависший фид не должен блокировать
// синхронизацию остальных пространств.
type Client struct {
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый клиент загрузки календарей
func NewClient(timeout time.Duration, log Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// Fetch загружает и парсит внешний календарь по URL
func (c *Client) Fetch(ctx context.Context, url string) (*ics.Calendar, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrFetchFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s: unexpected status code %d: %s", ErrFetchFailed, url, resp.StatusCode, string(body))
	}

	cal, err := ics.ParseCalendar(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParseFailed, url, err)
	}

	return cal, nil
}
