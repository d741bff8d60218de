// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package torbox is a thin client for the remote download-management API.
// The automation engine consumes it through narrow interfaces; nothing here
// retries or re-times requests beyond the HTTP client's own timeout.
package torbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/boxarr/boxarr/internal/buildinfo"
)

const defaultTimeout = 30 * time.Second

// Client talks to the remote download-management API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client (tests, custom timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the standard API response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", buildinfo.UserAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s %s: status %d: decode response: %w", method, path, resp.StatusCode, err)
	}

	if resp.StatusCode != http.StatusOK || !env.Success {
		detail := env.Detail
		if detail == "" {
			detail = http.StatusText(resp.StatusCode)
		}
		log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("detail", detail).
			Msg("torbox: request failed")
		return fmt.Errorf("%s %s: %s", method, path, detail)
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%s %s: decode data: %w", method, path, err)
		}
	}
	return nil
}

// ListTorrents fetches the torrent collection.
func (c *Client) ListTorrents(ctx context.Context) ([]TorrentRecord, error) {
	var records []TorrentRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/torrents/mylist", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListUsenet fetches the usenet collection.
func (c *Client) ListUsenet(ctx context.Context) ([]UsenetRecord, error) {
	var records []UsenetRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/usenet/mylist", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ListWebDownloads fetches the web download collection.
func (c *Client) ListWebDownloads(ctx context.Context) ([]WebDownloadRecord, error) {
	var records []WebDownloadRecord
	if err := c.doJSON(ctx, http.MethodGet, "/api/webdl/mylist", nil, nil, &records); err != nil {
		return nil, err
	}
	return records, nil
}

type controlRequest struct {
	ID        int64  `json:"id"`
	Operation string `json:"operation"`
}

// ControlTorrent issues a control operation against one torrent.
// Reannounce is only valid here; usenet and web controls reject it.
func (c *Client) ControlTorrent(ctx context.Context, id int64, op ControlOperation) error {
	return c.doJSON(ctx, http.MethodPost, "/api/torrents/controltorrent", controlRequest{ID: id, Operation: string(op)}, nil, nil)
}

// ControlUsenet issues a control operation against one usenet download.
func (c *Client) ControlUsenet(ctx context.Context, id int64, op ControlOperation) error {
	return c.doJSON(ctx, http.MethodPost, "/api/usenet/controlusenetdownload", controlRequest{ID: id, Operation: string(op)}, nil, nil)
}

// ControlWebDownload issues a control operation against one web download.
func (c *Client) ControlWebDownload(ctx context.Context, id int64, op ControlOperation) error {
	return c.doJSON(ctx, http.MethodPost, "/api/webdl/controlwebdownload", controlRequest{ID: id, Operation: string(op)}, nil, nil)
}

type linkResponse string

func linkPath(kind DownloadKind) (string, string, error) {
	switch kind {
	case KindTorrent:
		return "/api/torrents/requestdl", "torrent_id", nil
	case KindUsenet:
		return "/api/usenet/requestdl", "usenet_id", nil
	case KindWeb:
		return "/api/webdl/requestdl", "web_id", nil
	default:
		return "", "", fmt.Errorf("unknown download kind: %s", kind)
	}
}

// RequestDownloadLink generates a download URL for one file of a download.
func (c *Client) RequestDownloadLink(ctx context.Context, kind DownloadKind, id int64, fileID int64) (string, error) {
	return c.requestLink(ctx, kind, id, fileID, false)
}

// RequestStreamLink generates a streaming URL for one file of a download.
func (c *Client) RequestStreamLink(ctx context.Context, kind DownloadKind, id int64, fileID int64) (string, error) {
	return c.requestLink(ctx, kind, id, fileID, true)
}

func (c *Client) requestLink(ctx context.Context, kind DownloadKind, id int64, fileID int64, stream bool) (string, error) {
	path, idParam, err := linkPath(kind)
	if err != nil {
		return "", err
	}

	query := url.Values{}
	query.Set(idParam, strconv.FormatInt(id, 10))
	query.Set("file_id", strconv.FormatInt(fileID, 10))
	if stream {
		query.Set("stream", "true")
	}

	var link linkResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, query, &link); err != nil {
		return "", err
	}
	if link == "" {
		return "", fmt.Errorf("%s: empty link in response", path)
	}
	return string(link), nil
}
