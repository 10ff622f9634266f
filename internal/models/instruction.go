package models

import "time"

const (
	ActionLaunch = "launch"
	ActionIdle   = "idle"
)

type LauncherInstruction struct {
	Action    string     `json:"action"`
	TitleID   string     `json:"titleId,omitempty"`
	Version   string     `json:"version,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

func IdleInstruction() LauncherInstruction {
	return LauncherInstruction{Action: ActionIdle}
}
