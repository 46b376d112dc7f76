package retry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"
)

// DLQEntry - операция, которая так и не выполнилась
type DLQEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Attempts    int       `json:"attempts"`
	LastError   string    `json:"last_error"`
	FailureType string    `json:"failure_type"`
	Data        any       `json:"data,omitempty"`
}

// DLQStats статистика очереди
type DLQStats struct {
	TotalEntries int
	OldestEntry  time.Time
	NewestEntry  time.Time
	FailureTypes map[string]int
}

// DLQ - dead letter queue, хранится в файле как JSON массив.
// Каждое изменение сразу записывается в файл
type DLQ struct {
	mu      sync.RWMutex
	config  DLQConfig
	entries []DLQEntry
	counter int
}

// NewDLQ открывает очередь и загружает записи из config.FilePath
func NewDLQ(config DLQConfig) (*DLQ, error) {
	d := &DLQ{config: config}
	if err := d.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return d, nil
}

// Add добавляет запись, обрезает очередь до MaxSize и сохраняет ее
func (d *DLQ) Add(entry DLQEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.counter++
	entry.ID = fmt.Sprintf("dlq-%d-%d", entry.Timestamp.Unix(), d.counter)
	d.entries = append(d.entries, entry)

	if d.config.MaxSize > 0 && len(d.entries) > d.config.MaxSize {
		d.entries = d.entries[len(d.entries)-d.config.MaxSize:]
	}
	return d.save()
}

// Entries возвращает копию очереди
func (d *DLQ) Entries() []DLQEntry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]DLQEntry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Size возвращает количество записей
func (d *DLQ) Size() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Clear очищает очередь
func (d *DLQ) Clear() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.entries = nil
	return d.save()
}

// CleanupOld удаляет записи старше RetentionPeriod
// и возвращает количество удаленных
func (d *DLQ) CleanupOld(now time.Time) (int, error) {
	if d.config.RetentionPeriod == 0 {
		return 0, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	cutoff := now.Add(-d.config.RetentionPeriod)
	kept := d.entries[:0]
	for _, e := range d.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(d.entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	d.entries = kept
	return removed, d.save()
}

// Stats возвращает статистику очереди
func (d *DLQ) Stats() DLQStats {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := DLQStats{
		TotalEntries: len(d.entries),
		FailureTypes: make(map[string]int),
	}
	if len(d.entries) == 0 {
		return stats
	}

	stats.OldestEntry = d.entries[0].Timestamp
	stats.NewestEntry = d.entries[len(d.entries)-1].Timestamp
	for _, e := range d.entries {
		stats.FailureTypes[e.FailureType]++
	}
	return stats
}

// Save сохраняет очередь в файл
func (d *DLQ) Save() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save()
}

// save вызывается под mu
func (d *DLQ) save() error {
	data, err := json.MarshalIndent(d.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ: %w", err)
	}
	if err := os.WriteFile(d.config.FilePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write DLQ file: %w", err)
	}
	return nil
}

// Load заменяет очередь в памяти содержимым файла
func (d *DLQ) Load() error {
	data, err := os.ReadFile(d.config.FilePath)
	if err != nil {
		return fmt.Errorf("failed to read DLQ file: %w", err)
	}

	var entries []DLQEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal DLQ: %w", err)
	}

	d.mu.Lock()
	d.entries = entries
	d.counter = len(entries)
	d.mu.Unlock()
	return nil
}
