package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/textgate/textgate/internal/models"
)

// UsageStore handles usage statistics persistence
type UsageStore struct {
	usageDir string
}

// NewUsageStore creates a new usage store
func NewUsageStore(usageDir string) *UsageStore {
	return &UsageStore{
		usageDir: usageDir,
	}
}

// UsageRecord aggregates one model's token usage for one day.
type UsageRecord struct {
	Date             string `json:"date"` // YYYY-MM-DD
	Model            string `json:"model"`
	PromptTokens     int64  `json:"prompt_tokens"`
	CompletionTokens int64  `json:"completion_tokens"`
	TotalTokens      int64  `json:"total_tokens"`
	RequestCount     int64  `json:"request_count"`
}

// Record adds one response's usage to today's aggregate for the model.
func (s *UsageStore) Record(model string, usage models.Usage) error {
	if err := os.MkdirAll(s.usageDir, 0755); err != nil {
		return fmt.Errorf("failed to create usage directory: %w", err)
	}

	today := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("%s_%s.json", today, sanitizeModelFilename(model))
	filePath := filepath.Join(s.usageDir, filename)

	var record UsageRecord
	data, err := os.ReadFile(filePath)
	if err == nil {
		json.Unmarshal(data, &record)
	} else {
		record = UsageRecord{
			Date:  today,
			Model: model,
		}
	}

	record.PromptTokens += int64(usage.PromptTokens)
	record.CompletionTokens += int64(usage.CompletionTokens)
	record.TotalTokens += int64(usage.TotalTokens)
	record.RequestCount++

	data, err = json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal usage record: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}

	return nil
}

// History returns the usage records of the last days.
func (s *UsageStore) History(days int) ([]UsageRecord, error) {
	entries, err := os.ReadDir(s.usageDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []UsageRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read usage directory: %w", err)
	}

	records := []UsageRecord{}
	cutoffDate := time.Now().AddDate(0, 0, -days)

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		// Filename is YYYY-MM-DD_<model>.json
		parts := strings.SplitN(entry.Name(), "_", 2)
		if len(parts) < 2 {
			continue
		}

		recordDate, err := time.Parse("2006-01-02", parts[0])
		if err != nil || recordDate.Before(cutoffDate) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.usageDir, entry.Name()))
		if err != nil {
			continue
		}

		var record UsageRecord
		if err := json.Unmarshal(data, &record); err != nil {
			continue
		}

		records = append(records, record)
	}

	return records, nil
}

// sanitizeModelFilename converts a model id to a safe filename
func sanitizeModelFilename(model string) string {
	model = strings.ReplaceAll(model, "/", "_")
	return strings.ReplaceAll(model, ":", "_")
}
