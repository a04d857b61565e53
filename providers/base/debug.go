package base

import (
	"encoding/json"
	"os"
	"sync"
	"time"
)

// DebugLogger appends provider traffic to a file as JSON lines.
// A nil *DebugLogger is valid and discards everything.
type DebugLogger struct {
	mu       sync.Mutex
	f        *os.File
	enc      *json.Encoder
	provider string
	model    string
}

// NewDebugLogger opens path for appending. An empty path disables logging and returns nil.
func NewDebugLogger(path, provider, model string) (*DebugLogger, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &DebugLogger{f: f, enc: json.NewEncoder(f), provider: provider, model: model}, nil
}

func (l *DebugLogger) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// Record writes one entry stamped with the logger's provider and model.
func (l *DebugLogger) Record(recordType string, data any) error {
	if l == nil || l.enc == nil {
		return nil
	}
	rec := NewDebugRecord(recordType, data)
	rec.Provider = l.provider
	rec.Model = l.model

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(rec)
}

// DebugRecord is a normalized JSONL entry.
type DebugRecord struct {
	Time     string `json:"time"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Type     string `json:"type"`
	Data     any    `json:"data,omitempty"`
}

func NewDebugRecord(recordType string, data any) DebugRecord {
	return DebugRecord{
		Time: time.Now().UTC().Format(time.RFC3339Nano),
		Type: recordType,
		Data: data,
	}
}
