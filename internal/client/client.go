// Package client talks to the sales leads server over HTTP.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"

	"salesleads/internal/leads"
	"salesleads/internal/slicefile"
)

const maxErrorBody = 4 << 10

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    httpClient,
	}
}

type DocumentInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	SliceSize  int    `json:"slice_size"`
	SliceCount int    `json:"slice_count"`
}

type ImportResult struct {
	Customers int      `json:"customers"`
	Leads     int      `json:"leads"`
	Owners    []string `json:"owners"`
}

func (c *Client) Document(ctx context.Context, id string) (DocumentInfo, error) {
	var info DocumentInfo
	err := c.getJSON(ctx, "/api/v1/documents/"+url.PathEscape(id), &info)
	return info, err
}

// OpenDocument returns the stored document as a slicefile.Document whose
// slices are fetched on demand.
func (c *Client) OpenDocument(ctx context.Context, id string) (*RemoteDocument, error) {
	info, err := c.Document(ctx, id)
	if err != nil {
		return nil, err
	}
	return &RemoteDocument{client: c, info: info}, nil
}

func (c *Client) Analysis(ctx context.Context, owner string) (leads.Analysis, error) {
	var a leads.Analysis
	err := c.getJSON(ctx, "/api/v1/analysis/"+url.PathEscape(owner), &a)
	return a, err
}

func (c *Client) Salespeople(ctx context.Context) ([]leads.OwnerSummary, error) {
	var body struct {
		Items []leads.OwnerSummary `json:"items"`
	}
	err := c.getJSON(ctx, "/api/v1/salespeople", &body)
	return body.Items, err
}

func (c *Client) Import(ctx context.Context) (ImportResult, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/v1/import")
	if err != nil {
		return ImportResult{}, err
	}
	defer resp.Body.Close()

	var out ImportResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ImportResult{}, fmt.Errorf("decode import result: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// do sends a request and returns the response when the status is 2xx.
func (c *Client) do(ctx context.Context, method, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}
	return resp, nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	var echoErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &echoErr) == nil && echoErr.Message != "" {
		msg = echoErr.Message
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}

// RemoteDocument reads slices from the server one request at a time.
type RemoteDocument struct {
	client *Client
	info   DocumentInfo
	closed atomic.Bool
}

var _ slicefile.Document = (*RemoteDocument)(nil)

func (d *RemoteDocument) Info() DocumentInfo { return d.info }

func (d *RemoteDocument) SliceCount() int { return d.info.SliceCount }

func (d *RemoteDocument) FetchSlice(ctx context.Context, index int) (slicefile.Slice, error) {
	if d.closed.Load() {
		return slicefile.Slice{}, slicefile.ErrClosed
	}
	path := fmt.Sprintf("/api/v1/documents/%s/slices/%d", url.PathEscape(d.info.ID), index)
	resp, err := d.client.do(ctx, http.MethodGet, path)
	if err != nil {
		return slicefile.Slice{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, slicefile.MaxSliceSize+1))
	if err != nil {
		return slicefile.Slice{}, fmt.Errorf("read slice %d: %w", index, err)
	}
	if len(data) > slicefile.MaxSliceSize {
		return slicefile.Slice{}, fmt.Errorf("slice %d exceeds %d bytes", index, slicefile.MaxSliceSize)
	}

	got := index
	if raw := resp.Header.Get("X-Slice-Index"); raw != "" {
		if got, err = strconv.Atoi(raw); err != nil {
			return slicefile.Slice{}, fmt.Errorf("slice %d: bad X-Slice-Index %q", index, raw)
		}
	}
	return slicefile.Slice{Index: got, Data: data}, nil
}

func (d *RemoteDocument) Close() error {
	d.closed.Store(true)
	return nil
}
