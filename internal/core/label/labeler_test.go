package label

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLLM struct {
	response string
	err      error
	calls    int
}

func (m *mockLLM) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	return m.response, m.err
}

func TestProposeForTextTokenTable(t *testing.T) {
	tests := []struct {
		text  string
		label string
	}{
		{"Onboarding stuck for new restaurant", "Onboarding"},
		{"Duplicate account created twice", "Account"},
		{"Quote not generated", "Order/Quote"},
		{"High churn this quarter", "Churn"},
		{"Wrong zenchef id on record", "Data Issue"},
	}
	for _, tt := range tests {
		prop := ProposeForText(tt.text)
		assert.Equal(t, tt.label, prop.Label, tt.text)
		assert.Equal(t, 1.0, prop.Confidence, tt.text)
	}
}

func TestProposeForTextTokenOrderWins(t *testing.T) {
	// "onboarding" sits above "account" in the table, so it wins even when
	// both tokens appear.
	prop := ProposeForText("account onboarding broken")
	assert.Equal(t, "Onboarding", prop.Label)
}

func TestProposeForTextWordingFallbacks(t *testing.T) {
	prop := ProposeForText("cannot save the form")
	assert.Equal(t, "Bug", prop.Label)
	assert.Equal(t, 0.6, prop.Confidence)

	prop = ProposeForText("please onboard the new team")
	assert.Equal(t, "Onboarding", prop.Label)
	assert.Equal(t, 0.9, prop.Confidence)
}

func TestProposeForTextWeakAndEmpty(t *testing.T) {
	prop := ProposeForText("something vague happened")
	assert.Equal(t, "Other", prop.Label)
	assert.Equal(t, 0.2, prop.Confidence)

	prop = ProposeForText("   ")
	assert.Equal(t, "Other", prop.Label)
	assert.Equal(t, 0.0, prop.Confidence)
}

func TestProposeRowPrefersImpactedCategories(t *testing.T) {
	p := NewProposer(nil, nil)
	prop := p.ProposeRow(context.Background(), map[string]string{
		"Impacted_Categories__c": "Lead routing",
		"Name":                   "Some vague title",
	})
	assert.Equal(t, "Lead", prop.Label)
}

func TestProposeRowFallsBackToName(t *testing.T) {
	p := NewProposer(nil, nil)
	prop := p.ProposeRow(context.Background(), map[string]string{
		"Impacted_Categories__c": "unclear stuff",
		"Name":                   "Payment sync failing",
	})
	assert.Equal(t, "Billing", prop.Label)
}

func TestProposeRowLLMFallback(t *testing.T) {
	client := &mockLLM{response: `{"label": "Migration", "confidence": 0.8, "reason": "mentions moving data"}`}
	p := NewProposer(client, nil)

	prop := p.ProposeRow(context.Background(), map[string]string{
		"Name": "Things are oddly broken somewhere",
	})
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "Migration", prop.Label)
	assert.Equal(t, 0.8, prop.Confidence)
	assert.Equal(t, "llm: mentions moving data", prop.Reason)
}

func TestProposeRowLLMNotCalledOnConfidentMatch(t *testing.T) {
	client := &mockLLM{response: `{"label": "Migration", "confidence": 0.9, "reason": "x"}`}
	p := NewProposer(client, nil)

	prop := p.ProposeRow(context.Background(), map[string]string{"Name": "Report totals wrong"})
	assert.Equal(t, "Reporting", prop.Label)
	assert.Zero(t, client.calls)
}

func TestProposeRowLLMErrorKeepsHeuristic(t *testing.T) {
	client := &mockLLM{err: fmt.Errorf("model unavailable")}
	p := NewProposer(client, nil)

	prop := p.ProposeRow(context.Background(), map[string]string{"Name": "vague thing"})
	assert.Equal(t, "Other", prop.Label)
	assert.Equal(t, 0.2, prop.Confidence)
}

func TestProposeRowLLMUnknownLabelRejected(t *testing.T) {
	client := &mockLLM{response: `{"label": "Made Up", "confidence": 0.95, "reason": "x"}`}
	p := NewProposer(client, nil)

	prop := p.ProposeRow(context.Background(), map[string]string{"Name": "vague thing"})
	assert.Equal(t, "Other", prop.Label)
}

func TestProcessCSVAppendsProposalColumns(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "issues.csv")
	content := "Id,Name,Impacted_Categories__c\n" +
		"1,Onboarding stuck,\n" +
		"2,Totally vague,\n"
	require.NoError(t, os.WriteFile(input, []byte(content), 0o644))

	p := NewProposer(nil, nil)
	output := filepath.Join(dir, "labeled.csv")
	got, err := p.ProcessCSV(context.Background(), input, output)
	require.NoError(t, err)
	assert.Equal(t, output, got)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Id", "Name", "Impacted_Categories__c", "Proposed_Label", "Proposed_Confidence", "Proposed_Reason"}, rows[0])
	assert.Equal(t, "Onboarding", rows[1][3])
	assert.Equal(t, "1.00", rows[1][4])
	assert.Equal(t, "Other", rows[2][3])
}

func TestProcessCSVPadsMissingColumns(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "partial.csv")
	require.NoError(t, os.WriteFile(input, []byte("Name\nLead import broken\n"), 0o644))

	p := NewProposer(nil, nil)
	output := filepath.Join(dir, "out.csv")
	_, err := p.ProcessCSV(context.Background(), input, output)
	require.NoError(t, err)

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	assert.Contains(t, rows[0], "Id")
	assert.Contains(t, rows[0], "Impacted_Categories__c")
	assert.Equal(t, "Lead", rows[1][len(rows[1])-3])
}

func TestProcessCSVEmptyInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(input, nil, 0o644))

	p := NewProposer(nil, nil)
	_, err := p.ProcessCSV(context.Background(), input, "")
	assert.Error(t, err)
}
