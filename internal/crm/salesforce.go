package crm

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

	"github.com/agenthands/cobalt/internal/core/model"
)

const apiVersion = "v59.0"

// SalesforceStore talks to a Salesforce org over the REST API using the
// username-password OAuth flow. Construction authenticates immediately;
// an auth or connection failure here is fatal to the run.
type SalesforceStore struct {
	httpClient  *http.Client
	instanceURL string
	accessToken string
	log         *zap.Logger
}

// Credentials for the username-password OAuth flow. LoginURL defaults to
// the production login host; set it to a sandbox or test host as needed.
type Credentials struct {
	Username      string
	Password      string
	SecurityToken string
	ClientID      string
	ClientSecret  string
	LoginURL      string
}

func NewSalesforceStore(ctx context.Context, creds Credentials, log *zap.Logger) (*SalesforceStore, error) {
	if log == nil {
		log = zap.NewNop()
	}
	loginURL := creds.LoginURL
	if loginURL == "" {
		loginURL = "https://login.salesforce.com"
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", creds.ClientID)
	form.Set("client_secret", creds.ClientSecret)
	form.Set("username", creds.Username)
	form.Set("password", creds.Password+creds.SecurityToken)

	httpClient := &http.Client{Timeout: 60 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL+"/services/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach login host: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w (%d): %s", ErrAuthFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok struct {
		AccessToken string `json:"access_token"`
		InstanceURL string `json:"instance_url"`
	}
	if err := json.Unmarshal(body, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tok.AccessToken == "" || tok.InstanceURL == "" {
		return nil, fmt.Errorf("token response missing access_token or instance_url")
	}

	log.Info("connected to Salesforce", zap.String("instance", tok.InstanceURL))
	return &SalesforceStore{
		httpClient:  httpClient,
		instanceURL: tok.InstanceURL,
		accessToken: tok.AccessToken,
		log:         log,
	}, nil
}

// Query runs a SOQL statement and follows nextRecordsUrl until the result
// set is complete.
func (s *SalesforceStore) Query(ctx context.Context, soql string) ([]model.Record, error) {
	path := fmt.Sprintf("/services/data/%s/query?q=%s", apiVersion, url.QueryEscape(soql))
	var records []model.Record
	for path != "" {
		var page struct {
			Done           bool             `json:"done"`
			NextRecordsURL string           `json:"nextRecordsUrl"`
			Records        []map[string]any `json:"records"`
		}
		if err := s.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		for _, raw := range page.Records {
			rec := make(model.Record, len(raw))
			for k, v := range raw {
				if k == "attributes" {
					continue
				}
				rec[k] = v
			}
			records = append(records, rec)
		}
		if page.Done {
			break
		}
		path = page.NextRecordsURL
	}
	return records, nil
}

// Describe returns the set of valid field names on an object.
func (s *SalesforceStore) Describe(ctx context.Context, object string) (map[string]bool, error) {
	var desc struct {
		Fields []struct {
			Name string `json:"name"`
		} `json:"fields"`
	}
	path := fmt.Sprintf("/services/data/%s/sobjects/%s/describe", apiVersion, object)
	if err := s.do(ctx, http.MethodGet, path, nil, &desc); err != nil {
		return nil, err
	}
	valid := make(map[string]bool, len(desc.Fields))
	for _, f := range desc.Fields {
		valid[f.Name] = true
	}
	return valid, nil
}

// Update patches a single record.
func (s *SalesforceStore) Update(ctx context.Context, object, id string, fields map[string]any) error {
	path := fmt.Sprintf("/services/data/%s/sobjects/%s/%s", apiVersion, object, id)
	return s.do(ctx, http.MethodPatch, path, fields, nil)
}

// UpdateBatch patches up to 200 records through the composite endpoint.
// Each entry must carry an Id key; per-record failures are folded into the
// returned error, partial success is not rolled back (allOrNone=false).
func (s *SalesforceStore) UpdateBatch(ctx context.Context, object string, records []map[string]any) error {
	type sObject map[string]any
	payload := struct {
		AllOrNone bool      `json:"allOrNone"`
		Records   []sObject `json:"records"`
	}{}
	for _, rec := range records {
		obj := sObject{"attributes": map[string]string{"type": object}}
		for k, v := range rec {
			obj[k] = v
		}
		payload.Records = append(payload.Records, obj)
	}

	var results []struct {
		ID      string `json:"id"`
		Success bool   `json:"success"`
		Errors  []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	path := fmt.Sprintf("/services/data/%s/composite/sobjects", apiVersion)
	if err := s.do(ctx, http.MethodPatch, path, payload, &results); err != nil {
		return err
	}
	var failed []string
	for _, r := range results {
		if !r.Success {
			msg := ""
			if len(r.Errors) > 0 {
				msg = r.Errors[0].Message
			}
			failed = append(failed, fmt.Sprintf("%s: %s", r.ID, msg))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("batch update left %d failures: %s", len(failed), strings.Join(failed, "; "))
	}
	return nil
}

// Delete removes a single record.
func (s *SalesforceStore) Delete(ctx context.Context, object, id string) error {
	path := fmt.Sprintf("/services/data/%s/sobjects/%s/%s", apiVersion, object, id)
	return s.do(ctx, http.MethodDelete, path, nil, nil)
}

func (s *SalesforceStore) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.instanceURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil && len(data) > 0 {
			return json.Unmarshal(data, out)
		}
		return nil
	}

	// Error bodies are a list of {message, errorCode} objects.
	var apiErrs []struct {
		Message   string `json:"message"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(data, &apiErrs); err == nil && len(apiErrs) > 0 {
		first := apiErrs[0]
		if first.ErrorCode == "MALFORMED_QUERY" || first.ErrorCode == "INVALID_FIELD" {
			return fmt.Errorf("%w: %s", ErrMalformedQuery, first.Message)
		}
		return fmt.Errorf("%s (%s): %s", resp.Status, first.ErrorCode, first.Message)
	}
	return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(data)))
}
