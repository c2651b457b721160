// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

const exportLimit = 100000

// ExportYAML writes every stored analysis, including narratives and
// marker readings, to historyDir/export.yaml and returns the path.
func (s *Store) ExportYAML(ctx context.Context) (string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM analyses ORDER BY created_at DESC LIMIT ?`, exportLimit)
	if err != nil {
		return "", fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows.Scan)
		if err != nil {
			return "", fmt.Errorf("scanning analysis: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	for i := range records {
		full, err := s.Get(ctx, records[i].ID)
		if err != nil {
			return "", err
		}
		records[i] = *full
	}

	path := filepath.Join(s.historyDir, "export.yaml")
	data, err := yaml.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
