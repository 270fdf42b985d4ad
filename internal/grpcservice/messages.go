package grpcservice

import (
	"go.klb.dev/clipstream/internal/core"
	"go.klb.dev/clipstream/internal/history"
	"go.klb.dev/clipstream/internal/hub"
)

type Empty struct{}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type SearchResponse struct {
	Entries []history.Entry `json:"entries"`
}

type EntryRequest struct {
	ID int64 `json:"id"`
}

type EntryResponse struct {
	Entry *history.Entry `json:"entry"`
}

type CopyRequest struct {
	ID     int64  `json:"id"`
	Format string `json:"format,omitempty"`
}

type PinResponse struct {
	Pinned bool `json:"pinned"`
}

type DeleteResponse struct {
	Removed bool `json:"removed"`
}

type UpdateRequest struct {
	ID      int64  `json:"id"`
	Content string `json:"content"`
}

type IgnoredAppsResponse struct {
	Names []string `json:"names"`
}

type IgnoredAppRequest struct {
	Name string `json:"name"`
}

type SettingRequest struct {
	Key   string `json:"key"`
	Value string `json:"value,omitempty"`
}

type SettingResponse struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Found bool   `json:"found"`
}

type CleanupRequest struct {
	MaxAgeDays int `json:"max_age_days"`
	MaxEntries int `json:"max_entries"`
}

type CleanupResponse struct {
	Removed int64 `json:"removed"`
}

type MonitorRequest struct {
	Enabled bool `json:"enabled"`
}

type StatusResponse = core.Status

type WatchRequest struct {
	// Kinds filters events by kind; empty means all.
	Kinds []string `json:"kinds,omitempty"`
}

type WatchEvent struct {
	Kind    hub.Kind       `json:"kind"`
	ID      int64          `json:"id,omitempty"`
	Entry   *history.Entry `json:"entry,omitempty"`
	Removed int64          `json:"removed,omitempty"`
}
