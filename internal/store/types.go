package store

import "time"

// ConnectionRecord captures the result of a connectivity check.
type ConnectionRecord struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
	Connected bool      `json:"connected"`
	Duration  string    `json:"duration"`
	Error     string    `json:"error,omitempty"`
}

// EraseRecord captures a chip erase. Success only means the tool ran to
// completion; J-Link output is not inspected for erase.
type EraseRecord struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Duration  string    `json:"duration"`
	Error     string    `json:"error,omitempty"`
}

// FlashRecord captures the result of a program operation.
type FlashRecord struct {
	ID        string    `json:"id"`
	Device    string    `json:"device"`
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Outcome   string    `json:"outcome"`
	Duration  string    `json:"duration"`
	HexFiles  []string  `json:"hex_files,omitempty"`
	BinFiles  []string  `json:"bin_files,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// MonitorSession tracks a target UART session opened after flashing.
type MonitorSession struct {
	ID        string    `json:"id"`
	Port      string    `json:"port"`
	BaudRate  int       `json:"baud_rate"`
	Timestamp time.Time `json:"timestamp"`
	LogFile   string    `json:"log_file,omitempty"`
}
