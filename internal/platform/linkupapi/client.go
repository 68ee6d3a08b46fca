package linkupapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	apperrors "github.com/OneAIforWeb3/linkup/internal/common/errors"
	"github.com/OneAIforWeb3/linkup/internal/common/logger"
)

// Client is a stateless wrapper over the LinkUp backend REST API. Every call
// is a single round trip: no retries, no caching, no batching.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		log:     logger.Component("linkupapi"),
	}
}

// BaseURL returns the configured backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetUserByTgID looks up a profile by Telegram ID. A 404 yields a typed
// user-not-found error.
func (c *Client) GetUserByTgID(ctx context.Context, tgID int64) (*Profile, error) {
	params := url.Values{"tg_id": {fmt.Sprintf("%d", tgID)}}

	var envelope struct {
		User *Profile `json:"user"`
	}
	if err := c.makeRequest(ctx, http.MethodGet, "/get-user-by-tg-id", params, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, apperrors.NewUserNotFoundError(tgID)
	}
	return envelope.User, nil
}

// GetUserDetails looks up a profile by its backend user_id.
func (c *Client) GetUserDetails(ctx context.Context, userID int64) (*Profile, error) {
	params := url.Values{"user_id": {fmt.Sprintf("%d", userID)}}

	var envelope struct {
		User *Profile `json:"user"`
	}
	if err := c.makeRequest(ctx, http.MethodGet, "/get-user-details", params, nil, &envelope); err != nil {
		return nil, err
	}
	if envelope.User == nil {
		return nil, apperrors.NewUserNotFoundError(userID)
	}
	return envelope.User, nil
}

// CreateUser registers a new profile and returns the server-assigned user_id.
// The response is not the full record; callers re-read for the canonical row.
func (c *Client) CreateUser(ctx context.Context, payload CreateUserPayload) (int64, error) {
	var result struct {
		Message string `json:"message"`
		UserID  int64  `json:"user_id"`
	}
	if err := c.makeRequest(ctx, http.MethodPost, "/create-user", nil, payload, &result); err != nil {
		return 0, err
	}
	return result.UserID, nil
}

// UpdateUser submits a partial update. The response carries only a status
// message; callers re-read for the canonical row.
func (c *Client) UpdateUser(ctx context.Context, userID int64, payload UpdateUserPayload) error {
	var result struct {
		Message string `json:"message"`
	}
	return c.makeRequest(ctx, http.MethodPut, fmt.Sprintf("/update-user/%d", userID), nil, payload, &result)
}

// DeleteUser removes a profile.
func (c *Client) DeleteUser(ctx context.Context, userID int64) error {
	var result struct {
		Message string `json:"message"`
	}
	return c.makeRequest(ctx, http.MethodDelete, fmt.Sprintf("/delete-user/%d", userID), nil, nil, &result)
}

// GetUserGroups returns the connections of a user, newest first as ordered
// by the backend.
func (c *Client) GetUserGroups(ctx context.Context, userID int64) ([]Connection, error) {
	params := url.Values{"user_id": {fmt.Sprintf("%d", userID)}}

	var envelope struct {
		Groups []Connection `json:"groups"`
	}
	if err := c.makeRequest(ctx, http.MethodGet, "/get-user-groups", params, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Groups, nil
}

// CreateGroup records a pairing between two users and returns the group id.
func (c *Client) CreateGroup(ctx context.Context, payload CreateGroupPayload) (int64, error) {
	var result struct {
		Message string `json:"message"`
		GroupID int64  `json:"group_id"`
	}
	if err := c.makeRequest(ctx, http.MethodPost, "/create-group", nil, payload, &result); err != nil {
		return 0, err
	}
	return result.GroupID, nil
}

// GetGroupDetails returns a group with its participants' full profiles.
func (c *Client) GetGroupDetails(ctx context.Context, groupID int64) (*GroupDetails, error) {
	var details GroupDetails
	if err := c.makeRequest(ctx, http.MethodGet, fmt.Sprintf("/group-details/%d", groupID), nil, nil, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// CheckParticipants returns the raw participant rows of a group.
func (c *Client) CheckParticipants(ctx context.Context, groupID int64) ([]Participant, error) {
	params := url.Values{"group_id": {fmt.Sprintf("%d", groupID)}}

	var envelope struct {
		Participants []Participant `json:"participants"`
	}
	if err := c.makeRequest(ctx, http.MethodGet, "/check-participants", params, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Participants, nil
}

// QRImageURL builds the display URL of a user's QR code image. Pure string
// construction; no network call, no check that the image exists.
func (c *Client) QRImageURL(tgID int64) string {
	return fmt.Sprintf("%s/api/generate-qr?tg_id=%d", c.baseURL, tgID)
}

func (c *Client) makeRequest(ctx context.Context, method, path string, params url.Values, body, result interface{}) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "failed to encode request body for %s", path)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeInternal, "failed to create request for %s", path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("API server not available")
		return apperrors.NewExternalAPIError(method+" "+path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewExternalAPIError(method+" "+path, err)
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		if result != nil {
			if err := json.Unmarshal(raw, result); err != nil {
				return apperrors.Wrapf(err, apperrors.ErrCodeExternalAPI, "failed to parse response from %s", path)
			}
		}
		return nil
	case http.StatusNotFound:
		c.log.Debug().Str("path", path).Msg("Resource not found")
		return apperrors.New(apperrors.ErrCodeNotFound, fmt.Sprintf("resource not found: %s", path))
	case http.StatusConflict:
		c.log.Warn().Str("path", path).Msg("Conflict response")
		return apperrors.New(apperrors.ErrCodeAlreadyExists, "already exists")
	default:
		c.log.Error().Int("status", resp.StatusCode).Str("path", path).Str("body", string(raw)).Msg("API request failed")
		return apperrors.New(apperrors.ErrCodeExternalAPI, fmt.Sprintf("unexpected status %d from %s", resp.StatusCode, path))
	}
}
