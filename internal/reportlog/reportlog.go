// Package reportlog keeps an append-only JSONL audit trail of generated
// daily reports, one file per day, with gzip compression of files older
// than the configured retention.
package reportlog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry is one generated report.
type Entry struct {
	Time     string         `json:"time"`
	Date     string         `json:"date"`
	Narrated bool           `json:"narrated"`
	Savings  float64        `json:"savings"`
	Text     string         `json:"text"`
	Extra    map[string]any `json:"extra,omitempty"`
}

// Log writes entries under a base directory.
type Log struct {
	mu  sync.Mutex
	dir string
}

func New(dir string) *Log {
	if dir == "" {
		dir = "logs"
	}
	return &Log{dir: dir}
}

func (l *Log) dailyFilepath(t time.Time) string {
	return filepath.Join(l.dir, "reports", t.Format("2006-01-02")+".jsonl")
}

// Append writes one entry to today's file, stamping the entry time.
func (l *Log) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	e.Time = now.Format("2006-01-02 15:04:05")
	p := l.dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips report files older than retentionDays and removes
// the originals. A non-positive retention disables compression.
func (l *Log) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(l.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || info.ModTime().After(cutoff) {
			return nil
		}
		if er := gzipFile(p); er != nil {
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

func gzipFile(p string) error {
	in, err := os.Open(p)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(p + ".gz")
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
