// Package storage archives attendance records as one JSON file per day
// under <base>/YYYY/MM/DD.json.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/Tiliavir/trivial-attendance-tracker/internal/model"
	"github.com/Tiliavir/trivial-attendance-tracker/internal/timecalc"
)

// DayFile is the on-disk form of one day's records.
type DayFile struct {
	Date    string                   `json:"date"`
	Records []model.AttendanceRecord `json:"records"`
}

// BaseDir returns the default archive directory (~/.tat/attendance).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".tat", "attendance"), nil
}

func dayFilePath(base string, t time.Time) string {
	return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// LoadDay loads the DayFile for the given date. A missing file yields an
// empty DayFile.
func LoadDay(base string, t time.Time) (DayFile, error) {
	path := dayFilePath(base, t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DayFile{Date: timecalc.DayKey(t), Records: []model.AttendanceRecord{}}, nil
	}
	if err != nil {
		return DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the given date.
func SaveDay(base string, t time.Time, df DayFile) error {
	path := dayFilePath(base, t)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// WriteRecords merges records into their day files by ID: a stored record
// with the same ID is replaced, others are appended. It returns the number
// of day files written.
func WriteRecords(base string, records []model.AttendanceRecord, loc *time.Location) (int, error) {
	byDay := map[string][]model.AttendanceRecord{}
	for _, r := range records {
		byDay[r.Date] = append(byDay[r.Date], r)
	}
	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Strings(days)

	for _, key := range days {
		day, err := timecalc.ParseDay(key, loc)
		if err != nil {
			return 0, fmt.Errorf("record date %q: %w", key, err)
		}
		df, err := LoadDay(base, day)
		if err != nil {
			return 0, err
		}
		for _, r := range byDay[key] {
			df.Records = upsert(df.Records, r)
		}
		if err := SaveDay(base, day, df); err != nil {
			return 0, err
		}
	}
	return len(days), nil
}

func upsert(records []model.AttendanceRecord, r model.AttendanceRecord) []model.AttendanceRecord {
	for i, existing := range records {
		if existing.ID == r.ID {
			records[i] = r
			return records
		}
	}
	return append(records, r)
}

// LoadRange loads all records in [from, to] inclusive.
func LoadRange(base string, from, to time.Time) ([]model.AttendanceRecord, error) {
	var records []model.AttendanceRecord
	for d := timecalc.StartOfDay(from); !d.After(to); d = d.AddDate(0, 0, 1) {
		df, err := LoadDay(base, d)
		if err != nil {
			return nil, err
		}
		records = append(records, df.Records...)
	}
	return records, nil
}
