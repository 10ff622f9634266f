package models

import "time"

type WatcherError struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

type TitleStatus struct {
	LastCheck    *time.Time    `json:"lastCheck"`
	LastSuccess  *time.Time    `json:"lastSuccess"`
	LastError    *WatcherError `json:"lastError"`
	ChecksCount  int           `json:"checksCount"`
	UpdatesFound int           `json:"updatesFound"`
}

type WatcherStatus struct {
	LastCheck    *time.Time              `json:"lastCheck"`
	LastSuccess  *time.Time              `json:"lastSuccess"`
	LastError    *WatcherError           `json:"lastError"`
	ChecksCount  int                     `json:"checksCount"`
	UpdatesFound int                     `json:"updatesFound"`
	PerTitle     map[string]*TitleStatus `json:"perTitle"`
	PollInterval string                  `json:"pollInterval"`
	TitleIDs     []string                `json:"titleIds"`
}
