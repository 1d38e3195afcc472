package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultRemoteTimeout = 10 * time.Second

// RemoteStoreConfig describes how to reach the roster HTTP API.
type RemoteStoreConfig struct {
	BaseURL     string
	HTTPClient  *http.Client
	TokenSource func() string
	Logger      *zap.Logger
}

// RemoteStore implements Store against the roster HTTP API.
// Transport failures surface as ErrFetchFailed.
type RemoteStore struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource func() string
	logger      *zap.Logger
}

type listResponsePayload struct {
	Users []UserRecord `json:"users"`
}

// NewRemoteStore constructs a store client for the given base URL.
func NewRemoteStore(cfg RemoteStoreConfig) (*RemoteStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, newServiceError(opRemoteStoreNew, "missing_base_url", errMissingBaseURL)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, newServiceError(opRemoteStoreNew, "invalid_base_url", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRemoteTimeout}
	}
	tokenSource := cfg.TokenSource
	if tokenSource == nil {
		tokenSource = func() string { return "" }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &RemoteStore{
		baseURL:     baseURL,
		httpClient:  httpClient,
		tokenSource: tokenSource,
		logger:      logger,
	}, nil
}

// List fetches the collection.
func (s *RemoteStore) List(ctx context.Context) ([]UserRecord, error) {
	response, err := s.do(ctx, http.MethodGet, "/users", nil)
	if err != nil {
		logError(s.logger, opList, reasonTransport, err)
		return nil, fetchFailed(opList, reasonTransport, err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		statusErr := unexpectedStatus(response)
		logError(s.logger, opList, reasonStatus, statusErr)
		return nil, fetchFailed(opList, reasonStatus, statusErr)
	}
	var payload listResponsePayload
	if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
		logError(s.logger, opList, reasonDecodeFailed, err)
		return nil, fetchFailed(opList, reasonDecodeFailed, err)
	}
	if payload.Users == nil {
		payload.Users = []UserRecord{}
	}
	return payload.Users, nil
}

// Get fetches one record.
func (s *RemoteStore) Get(ctx context.Context, id string) (UserRecord, error) {
	if strings.TrimSpace(id) == "" {
		return UserRecord{}, newServiceError(opGet, reasonMissingID, errMissingRecordID)
	}
	response, err := s.do(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil)
	if err != nil {
		logError(s.logger, opGet, reasonTransport, err)
		return UserRecord{}, fetchFailed(opGet, reasonTransport, err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return UserRecord{}, newServiceError(opGet, reasonNotFound, ErrNotFound)
	default:
		statusErr := unexpectedStatus(response)
		logError(s.logger, opGet, reasonStatus, statusErr)
		return UserRecord{}, fetchFailed(opGet, reasonStatus, statusErr)
	}
	var record UserRecord
	if err := json.NewDecoder(response.Body).Decode(&record); err != nil {
		return UserRecord{}, fetchFailed(opGet, reasonDecodeFailed, err)
	}
	return record, nil
}

// Create posts a new record.
func (s *RemoteStore) Create(ctx context.Context, fields Fields) (UserRecord, error) {
	if err := fields.validate(); err != nil {
		return UserRecord{}, newServiceError(opCreate, reasonInvalidFields, err)
	}
	response, err := s.do(ctx, http.MethodPost, "/users", fields)
	if err != nil {
		logError(s.logger, opCreate, reasonTransport, err)
		return UserRecord{}, newServiceError(opCreate, reasonTransport, err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusBadRequest:
		return UserRecord{}, newServiceError(opCreate, reasonInvalidFields, fmt.Errorf("%w: %v", ErrInvalidFields, unexpectedStatus(response)))
	default:
		statusErr := unexpectedStatus(response)
		logError(s.logger, opCreate, reasonStatus, statusErr)
		return UserRecord{}, newServiceError(opCreate, reasonStatus, statusErr)
	}
	var record UserRecord
	if err := json.NewDecoder(response.Body).Decode(&record); err != nil {
		return UserRecord{}, newServiceError(opCreate, reasonDecodeFailed, err)
	}
	return record, nil
}

// Update replaces the fields of a remote record.
func (s *RemoteStore) Update(ctx context.Context, id string, fields Fields) error {
	if strings.TrimSpace(id) == "" {
		return newServiceError(opUpdate, reasonMissingID, errMissingRecordID)
	}
	if err := fields.validate(); err != nil {
		return newServiceError(opUpdate, reasonInvalidFields, err)
	}
	response, err := s.do(ctx, http.MethodPut, "/users/"+url.PathEscape(id), fields)
	if err != nil {
		logError(s.logger, opUpdate, reasonTransport, err)
		return newServiceError(opUpdate, reasonTransport, err)
	}
	defer response.Body.Close()

	switch response.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return newServiceError(opUpdate, reasonNotFound, ErrNotFound)
	case http.StatusBadRequest:
		return newServiceError(opUpdate, reasonInvalidFields, fmt.Errorf("%w: %v", ErrInvalidFields, unexpectedStatus(response)))
	default:
		statusErr := unexpectedStatus(response)
		logError(s.logger, opUpdate, reasonStatus, statusErr)
		return newServiceError(opUpdate, reasonStatus, statusErr)
	}
}

func (s *RemoteStore) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}
	request, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token := strings.TrimSpace(s.tokenSource()); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	return s.httpClient.Do(request)
}

func unexpectedStatus(response *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(response.Body, 512))
	return fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(snippet)))
}
