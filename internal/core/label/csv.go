package label

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// requiredColumns are ensured on input; missing ones become empty columns
// so exports with partial headers still process.
var requiredColumns = []string{"Id", "Impacted_Categories__c", "Name"}

// ProcessCSV reads an issue export, appends Proposed_Label /
// Proposed_Confidence / Proposed_Reason columns, and writes the labeled
// copy. An empty outputPath defaults to out/<base>_labeled<ext> under the
// working directory. Returns the output path written.
func (p *Proposer) ProcessCSV(ctx context.Context, inputPath, outputPath string) (string, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to open input csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read input csv: %w", err)
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("input csv is empty")
	}

	header := rows[0]
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := colIdx[col]; !ok {
			colIdx[col] = len(header)
			header = append(header, col)
		}
	}

	if outputPath == "" {
		base := filepath.Base(inputPath)
		ext := filepath.Ext(base)
		outDir := "out"
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create output dir: %w", err)
		}
		outputPath = filepath.Join(outDir, strings.TrimSuffix(base, ext)+"_labeled"+ext)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to create output csv: %w", err)
	}
	defer out.Close()
	writer := csv.NewWriter(out)

	outHeader := append(append([]string{}, header...), "Proposed_Label", "Proposed_Confidence", "Proposed_Reason")
	if err := writer.Write(outHeader); err != nil {
		return "", err
	}

	for _, row := range rows[1:] {
		padded := make([]string, len(header))
		copy(padded, row)
		rowMap := make(map[string]string, len(colIdx))
		for col, idx := range colIdx {
			if idx < len(padded) {
				rowMap[col] = strings.TrimSpace(padded[idx])
			}
		}
		prop := p.ProposeRow(ctx, rowMap)
		outRow := append(padded, prop.Label, fmt.Sprintf("%.2f", prop.Confidence), prop.Reason)
		if err := writer.Write(outRow); err != nil {
			return "", err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("failed to write output csv: %w", err)
	}
	return outputPath, nil
}
