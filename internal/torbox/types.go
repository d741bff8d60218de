// Copyright (c) 2026, the boxarr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package torbox

// DownloadKind identifies which of the three remote collections an item
// belongs to. The API exposes distinct endpoints per kind.
type DownloadKind string

const (
	KindTorrent DownloadKind = "torrent"
	KindUsenet  DownloadKind = "usenet"
	KindWeb     DownloadKind = "web"
)

// ControlOperation is an operation accepted by the per-kind control endpoints.
type ControlOperation string

const (
	OpPause      ControlOperation = "pause"
	OpResume     ControlOperation = "resume"
	OpDelete     ControlOperation = "delete"
	OpReannounce ControlOperation = "reannounce" // torrents only
)

// DownloadFile is one file inside a remote download.
type DownloadFile struct {
	ID   int64  `json:"id"`
	Name string `json:"name,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// TorrentRecord is one item from the torrent list endpoint.
type TorrentRecord struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Size          int64          `json:"size"`
	Progress      float64        `json:"progress"`
	DownloadSpeed int64          `json:"download_speed"`
	ETA           int64          `json:"eta"`
	DownloadState string         `json:"download_state"`
	Peers         int64          `json:"peers"`
	Seeds         int64          `json:"seeds"`
	Ratio         float64        `json:"ratio"`
	Availability  float64        `json:"availability"`
	Tracker       string         `json:"tracker"`
	UpdatedAt     string         `json:"updated_at"`
	CreatedAt     string         `json:"created_at"`
	Files         []DownloadFile `json:"files"`
}

// UsenetRecord is one item from the usenet list endpoint. Usenet downloads
// carry no swarm or tracker data.
type UsenetRecord struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Size          int64          `json:"size"`
	Progress      float64        `json:"progress"`
	DownloadSpeed int64          `json:"download_speed"`
	ETA           int64          `json:"eta"`
	DownloadState string         `json:"download_state"`
	UpdatedAt     string         `json:"updated_at"`
	CreatedAt     string         `json:"created_at"`
	Files         []DownloadFile `json:"files"`
}

// WebDownloadRecord is one item from the web download list endpoint. Older
// API versions report the id as webdownload_id or web_id instead of id.
type WebDownloadRecord struct {
	ID            int64          `json:"id"`
	WebDownloadID int64          `json:"webdownload_id"`
	WebID         int64          `json:"web_id"`
	Name          string         `json:"name"`
	Size          int64          `json:"size"`
	Progress      float64        `json:"progress"`
	DownloadSpeed int64          `json:"download_speed"`
	ETA           int64          `json:"eta"`
	DownloadState string         `json:"download_state"`
	UpdatedAt     string         `json:"updated_at"`
	CreatedAt     string         `json:"created_at"`
	Files         []DownloadFile `json:"files"`
}

// ItemID resolves the record id across the known alternate field names.
func (r WebDownloadRecord) ItemID() int64 {
	if r.ID != 0 {
		return r.ID
	}
	if r.WebDownloadID != 0 {
		return r.WebDownloadID
	}
	return r.WebID
}
