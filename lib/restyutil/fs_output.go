package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FilesystemOutput writes each dumped HTTP message to its own file in a directory.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return FilesystemOutput{}, err
	}
	return FilesystemOutput{directory: dir}, nil
}

func (o FilesystemOutput) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(o.directory, id+".http"), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write http dump", "id", id, "err", err)
	}
}

// MemoryOutput keeps dumped HTTP messages in memory, keyed by id.
type MemoryOutput struct {
	mutex    sync.Mutex
	messages map[string]string
}

func NewMemoryOutput() *MemoryOutput {
	return &MemoryOutput{messages: map[string]string{}}
}

func (o *MemoryOutput) Write(id string, contents string) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.messages[id] = contents
}

// Messages returns a copy of every message written so far.
func (o *MemoryOutput) Messages() map[string]string {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	out := make(map[string]string, len(o.messages))
	for id, contents := range o.messages {
		out[id] = contents
	}
	return out
}
