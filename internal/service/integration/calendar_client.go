package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/mtwilk/smart-study-buddy/internal/config"
	"github.com/mtwilk/smart-study-buddy/internal/models"
)

type CalendarClient interface {
	ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]CalendarEventItem, error)
	ListBusyIntervals(ctx context.Context, day time.Time) ([]models.BusyInterval, error)
	CreateEvent(ctx context.Context, input EventInput) (string, error)
}

type CalendarEventItem struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Start       string
	End         string
	AllDay      bool
}

type EventInput struct {
	Summary      string
	Description  string
	Start        time.Time
	End          time.Time
	TimeZone     string
	PopupMinutes int
	EmailMinutes int
	ColorID      string
}

type calendarClient struct {
	baseURL    string
	calendarID string
	retryCount int
	retryDelay time.Duration
	client     *http.Client
	logger     zerolog.Logger
}

type eventTimeBody struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type eventBody struct {
	ID          string        `json:"id,omitempty"`
	Summary     string        `json:"summary,omitempty"`
	Description string        `json:"description,omitempty"`
	Location    string        `json:"location,omitempty"`
	Start       eventTimeBody `json:"start"`
	End         eventTimeBody `json:"end"`
	ColorID     string        `json:"colorId,omitempty"`
}

type eventListBody struct {
	Items []eventBody `json:"items"`
}

// NewCalendarClient builds a Google Calendar REST client authenticated with
// a refresh token. Requests go through an oauth2 transport that renews the
// access token as needed.
func NewCalendarClient(cfg config.CalendarConfig, logger zerolog.Logger) CalendarClient {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: cfg.TokenURL,
		},
	}

	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := oauthCfg.Client(context.Background(), token)
	httpClient.Timeout = cfg.Timeout

	return &calendarClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		calendarID: cfg.CalendarID,
		retryCount: cfg.RetryCount,
		retryDelay: cfg.RetryDelay,
		client:     httpClient,
		logger:     logger,
	}
}

func (c *calendarClient) ListEvents(ctx context.Context, timeMin, timeMax time.Time, maxResults int) ([]CalendarEventItem, error) {
	params := url.Values{}
	params.Set("timeMin", timeMin.UTC().Format(time.RFC3339))
	params.Set("timeMax", timeMax.UTC().Format(time.RFC3339))
	params.Set("singleEvents", "true")
	params.Set("orderBy", "startTime")
	if maxResults > 0 {
		params.Set("maxResults", strconv.Itoa(maxResults))
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events?%s", c.baseURL, url.PathEscape(c.calendarID), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("calendar api returned status %d: %s", resp.StatusCode, string(body))
	}

	var list eventListBody
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}

	items := make([]CalendarEventItem, 0, len(list.Items))
	for _, it := range list.Items {
		item := CalendarEventItem{
			ID:          it.ID,
			Summary:     it.Summary,
			Description: it.Description,
			Location:    it.Location,
		}
		if it.Start.DateTime != "" {
			item.Start = it.Start.DateTime
		} else {
			item.Start = it.Start.Date
			item.AllDay = true
		}
		if it.End.DateTime != "" {
			item.End = it.End.DateTime
		} else {
			item.End = it.End.Date
		}
		items = append(items, item)
	}

	return items, nil
}

// ListBusyIntervals returns timed commitments for the given day. All-day
// entries carry no clock time and are skipped.
func (c *calendarClient) ListBusyIntervals(ctx context.Context, day time.Time) ([]models.BusyInterval, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	items, err := c.ListEvents(ctx, dayStart, dayEnd, 0)
	if err != nil {
		return nil, err
	}

	var intervals []models.BusyInterval
	for _, item := range items {
		if item.AllDay {
			continue
		}

		start, err := time.Parse(time.RFC3339, item.Start)
		if err != nil {
			continue
		}
		end, err := time.Parse(time.RFC3339, item.End)
		if err != nil {
			continue
		}

		intervals = append(intervals, models.BusyInterval{Start: start, End: end})
	}

	return intervals, nil
}

func (c *calendarClient) CreateEvent(ctx context.Context, input EventInput) (string, error) {
	body := map[string]interface{}{
		"summary":     input.Summary,
		"description": input.Description,
		"start": map[string]string{
			"dateTime": input.Start.Format(time.RFC3339),
			"timeZone": input.TimeZone,
		},
		"end": map[string]string{
			"dateTime": input.End.Format(time.RFC3339),
			"timeZone": input.TimeZone,
		},
	}

	if input.PopupMinutes > 0 || input.EmailMinutes > 0 {
		var overrides []map[string]interface{}
		if input.PopupMinutes > 0 {
			overrides = append(overrides, map[string]interface{}{"method": "popup", "minutes": input.PopupMinutes})
		}
		if input.EmailMinutes > 0 {
			overrides = append(overrides, map[string]interface{}{"method": "email", "minutes": input.EmailMinutes})
		}
		body["reminders"] = map[string]interface{}{
			"useDefault": false,
			"overrides":  overrides,
		}
	}

	if input.ColorID != "" {
		body["colorId"] = input.ColorID
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal event: %w", err)
	}

	endpoint := fmt.Sprintf("%s/calendars/%s/events", c.baseURL, url.PathEscape(c.calendarID))

	var lastErr error
	for attempt := 0; attempt <= c.retryCount; attempt++ {
		if attempt > 0 {
			c.logger.Warn().Int("attempt", attempt).Msg("Retrying calendar event creation")
			time.Sleep(c.retryDelay * time.Duration(attempt))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("calendar api returned status %d: %s", resp.StatusCode, string(respBody))
			continue
		}

		var created eventBody
		err = json.NewDecoder(resp.Body).Decode(&created)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to decode created event: %w", err)
		}

		c.logger.Info().
			Str("event_id", created.ID).
			Str("summary", input.Summary).
			Msg("Calendar event created")

		return created.ID, nil
	}

	return "", fmt.Errorf("failed to create calendar event after %d attempts: %w", c.retryCount+1, lastErr)
}
