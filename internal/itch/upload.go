package itch

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
)

// Upload is one build file attached to a game.
type Upload struct {
	ID          UploadID        `json:"id"`
	Filename    string          `json:"filename"`
	DisplayName string          `json:"display_name"`
	Size        int64           `json:"size"`
	URL         string          `json:"url"`
	CreatedAt   string          `json:"created_at"`
	UpdatedAt   string          `json:"updated_at"`
	Raw         json.RawMessage `json:"-"`
}

// UploadID is compared as a string; the API sends numbers.
type UploadID string

func (id *UploadID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = UploadID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("upload id: %w", err)
	}
	*id = UploadID(n.String())
	return nil
}

func (id UploadID) String() string {
	return string(id)
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.000000",
	time.RFC3339Nano,
	time.RFC3339,
}

// UpdatedTime parses updated_at, which itch reports in UTC without a zone.
func (u Upload) UpdatedTime() (time.Time, bool) {
	return parseTimestamp(u.UpdatedAt)
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), true
	}
	return time.Time{}, false
}
