package quizforge

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DebugRecorder captures raw request/response payloads exchanged with
// collaborator APIs so failed generations can be diagnosed from the exact
// bytes involved. Intended for non-production runs only; a nil recorder is a
// no-op everywhere it is accepted.
type DebugRecorder struct {
	mu   sync.Mutex
	file *os.File
}

type debugEntry struct {
	Time      string `json:"time"`
	Kind      string `json:"kind"`
	Component string `json:"component"`
	Payload   any    `json:"payload"`
}

// NewDebugRecorder creates a per-run capture file under dir.
func NewDebugRecorder(dir, runID string) (*DebugRecorder, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create debug log directory: %w", err)
	}
	file, err := os.Create(filepath.Join(dir, runID+".ndjson"))
	if err != nil {
		return nil, fmt.Errorf("failed to create debug log file: %w", err)
	}
	return &DebugRecorder{file: file}, nil
}

// RecordRequest captures an outgoing payload.
func (r *DebugRecorder) RecordRequest(component string, payload any) {
	r.write("request", component, payload)
}

// RecordResponse captures an incoming payload.
func (r *DebugRecorder) RecordResponse(component string, payload any) {
	r.write("response", component, payload)
}

func (r *DebugRecorder) write(kind, component string, payload any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}

	entry := debugEntry{
		Time:      time.Now().Format(time.RFC3339Nano),
		Kind:      kind,
		Component: component,
		Payload:   payload,
	}
	line, err := json.Marshal(entry)
	if err != nil {
		// Payload is not marshalable; keep the event with a description.
		entry.Payload = fmt.Sprintf("unserializable payload: %v", err)
		line, _ = json.Marshal(entry)
	}
	r.file.Write(line)
	r.file.Write([]byte{'\n'})
	r.file.Sync()
}

func (r *DebugRecorder) Close() error {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
