package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client wraps HTTP calls to the reqarr server.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new reqarr API client.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		baseURL: serverURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-success response from the server.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server error %d", e.StatusCode)
}

func (c *Client) do(method, path string, body, result any, accept ...int) (int, error) {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshal error: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("request creation failed: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	ok := resp.StatusCode == http.StatusOK
	for _, code := range accept {
		if resp.StatusCode == code {
			ok = true
		}
	}
	if !ok {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		respBody, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(respBody, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(bytes.TrimSpace(respBody))
		}
		return resp.StatusCode, apiErr
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) get(path string, result any) error {
	_, err := c.do(http.MethodGet, path, nil, result)
	return err
}

// API response types (mirror server types)

type StatusResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	User     string `json:"user"`
	Dispatch *struct {
		Workers   int   `json:"workers"`
		Queued    int   `json:"queued"`
		InFlight  int64 `json:"in_flight"`
		Completed int64 `json:"completed"`
		Panicked  int64 `json:"panicked"`
	} `json:"dispatch,omitempty"`
	EventsDropped int64 `json:"events_dropped"`
}

type SeasonResponse struct {
	SeasonNumber int    `json:"season_number"`
	Status       string `json:"status"`
}

type RequestResponse struct {
	ID                int64            `json:"id"`
	MediaID           int64            `json:"media_id"`
	Type              string           `json:"type"`
	Status            string           `json:"status"`
	Is4K              bool             `json:"is4k"`
	RequestedBy       int64            `json:"requested_by"`
	ModifiedBy        *int64           `json:"modified_by,omitempty"`
	ServerID          *int64           `json:"server_id,omitempty"`
	ProfileID         *int64           `json:"profile_id,omitempty"`
	RootFolder        *string          `json:"root_folder,omitempty"`
	LanguageProfileID *int64           `json:"language_profile_id,omitempty"`
	Seasons           []SeasonResponse `json:"seasons,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DispatchError     string           `json:"dispatch_error,omitempty"`
}

type PageInfo struct {
	Pages    int `json:"pages"`
	PageSize int `json:"page_size"`
	Results  int `json:"results"`
	Page     int `json:"page"`
}

type ListRequestsResponse struct {
	PageInfo PageInfo          `json:"page_info"`
	Results  []RequestResponse `json:"results"`
}

type CountResponse struct {
	Pending    int `json:"pending"`
	Approved   int `json:"approved"`
	Processing int `json:"processing"`
	Available  int `json:"available"`
}

type CreateRequest struct {
	MediaType         string  `json:"media_type"`
	MediaID           int64   `json:"media_id"`
	TVDBID            *int64  `json:"tvdb_id,omitempty"`
	Is4K              bool    `json:"is4k"`
	Seasons           []int   `json:"seasons,omitempty"`
	ServerID          *int64  `json:"server_id,omitempty"`
	ProfileID         *int64  `json:"profile_id,omitempty"`
	RootFolder        *string `json:"root_folder,omitempty"`
	LanguageProfileID *int64  `json:"language_profile_id,omitempty"`
	UserID            *int64  `json:"user_id,omitempty"`
}

type EditRequest struct {
	Seasons           []int   `json:"seasons,omitempty"`
	ServerID          *int64  `json:"server_id,omitempty"`
	ProfileID         *int64  `json:"profile_id,omitempty"`
	RootFolder        *string `json:"root_folder,omitempty"`
	LanguageProfileID *int64  `json:"language_profile_id,omitempty"`
	UserID            *int64  `json:"user_id,omitempty"`
}

type TrackResponse struct {
	Status              string  `json:"status"`
	ServiceID           *int64  `json:"service_id,omitempty"`
	ExternalServiceID   *int64  `json:"external_service_id,omitempty"`
	ExternalServiceSlug *string `json:"external_service_slug,omitempty"`
}

type MediaResponse struct {
	ID       int64         `json:"id"`
	Type     string        `json:"type"`
	TMDBID   int64         `json:"tmdb_id"`
	TVDBID   *int64        `json:"tvdb_id,omitempty"`
	Standard TrackResponse `json:"standard"`
	FourK    TrackResponse `json:"4k"`
}

type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityID   int64  `json:"entity_id"`
	OccurredAt string `json:"occurred_at"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
	Limit int             `json:"limit"`
}

// ErrAllSeasonsRequested is returned by CreateRequest when every requested
// season is already claimed.
var ErrAllSeasonsRequested = errors.New("all seasons already requested")

// API methods

func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.get("/api/v1/status", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListOptions selects a page of requests.
type ListOptions struct {
	Filter      string
	Sort        string
	Take        int
	Skip        int
	RequestedBy int64
}

func (c *Client) Requests(opts ListOptions) (*ListRequestsResponse, error) {
	params := url.Values{}
	if opts.Filter != "" {
		params.Set("filter", opts.Filter)
	}
	if opts.Sort != "" {
		params.Set("sort", opts.Sort)
	}
	if opts.Take > 0 {
		params.Set("take", strconv.Itoa(opts.Take))
	}
	if opts.Skip > 0 {
		params.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.RequestedBy > 0 {
		params.Set("requested_by", strconv.FormatInt(opts.RequestedBy, 10))
	}

	path := "/api/v1/requests"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var resp ListRequestsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Request(id int64) (*RequestResponse, error) {
	var resp RequestResponse
	if err := c.get(fmt.Sprintf("/api/v1/requests/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CountRequests() (*CountResponse, error) {
	var resp CountResponse
	if err := c.get("/api/v1/requests/count", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateRequest(body CreateRequest) (*RequestResponse, error) {
	var resp RequestResponse
	code, err := c.do(http.MethodPost, "/api/v1/requests", body, &resp, http.StatusCreated, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if code == http.StatusAccepted {
		return nil, ErrAllSeasonsRequested
	}
	return &resp, nil
}

func (c *Client) EditRequest(id int64, body EditRequest) (*RequestResponse, error) {
	var resp RequestResponse
	code, err := c.do(http.MethodPut, fmt.Sprintf("/api/v1/requests/%d", id), body, &resp, http.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if code == http.StatusAccepted {
		return nil, ErrAllSeasonsRequested
	}
	return &resp, nil
}

// SetStatus moves a request to status: pending, approve or decline.
func (c *Client) SetStatus(id int64, status string) (*RequestResponse, error) {
	var resp RequestResponse
	if _, err := c.do(http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/%s", id, status), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) RetryRequest(id int64) (*RequestResponse, error) {
	var resp RequestResponse
	if _, err := c.do(http.MethodPost, fmt.Sprintf("/api/v1/requests/%d/retry", id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DeleteRequest(id int64) error {
	_, err := c.do(http.MethodDelete, fmt.Sprintf("/api/v1/requests/%d", id), nil, nil, http.StatusNoContent)
	return err
}

func (c *Client) RequestEvents(id int64) (*ListEventsResponse, error) {
	var resp ListEventsResponse
	if err := c.get(fmt.Sprintf("/api/v1/requests/%d/events", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Media(id int64) (*MediaResponse, error) {
	var resp MediaResponse
	if err := c.get(fmt.Sprintf("/api/v1/media/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Events(limit int) (*ListEventsResponse, error) {
	var resp ListEventsResponse
	if err := c.get(fmt.Sprintf("/api/v1/events?limit=%d", limit), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
