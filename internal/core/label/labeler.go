// Package label proposes a category label for internal-issue rows using an
// ordered token table, with an optional LLM fallback for weak matches.
package label

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/agenthands/cobalt/internal/core/common"
	"github.com/agenthands/cobalt/internal/llm"
)

// labelPriority is scanned in order; the first token found in the text
// wins with full confidence.
var labelPriority = []struct {
	Token string
	Label string
}{
	{"onboarding", "Onboarding"},
	{"account", "Account"},
	{"contact", "Contact"},
	{"lead", "Lead"},
	{"opportunity", "Sales Opportunity"},
	{"order", "Order/Quote"},
	{"quote", "Order/Quote"},
	{"churn", "Churn"},
	{"customer", "Customer"},
	{"report", "Reporting"},
	{"product", "Product"},
	{"user", "User"},
	{"payment", "Billing"},
	{"migration", "Migration"},
	{"error", "Bug"},
	{"zenchef id", "Data Issue"},
}

var (
	bugWording        = regexp.MustCompile(`cannot|can't|cannot create|fail|error`)
	onboardingWording = regexp.MustCompile(`onboarding|onboard`)
)

// llmConfidenceFloor: heuristic results below this ask the LLM, when one
// is configured.
const llmConfidenceFloor = 0.6

// Proposal is one row's proposed label with its confidence and rationale.
type Proposal struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// ProposeForText matches the token table first, then falls back to wording
// heuristics, then to a low-confidence "Other".
func ProposeForText(text string) Proposal {
	if strings.TrimSpace(text) == "" {
		return Proposal{Label: "Other", Confidence: 0, Reason: "no text"}
	}
	txt := strings.ToLower(text)
	for _, entry := range labelPriority {
		if strings.Contains(txt, entry.Token) {
			return Proposal{Label: entry.Label, Confidence: 1.0, Reason: fmt.Sprintf("matched token %q in text", entry.Token)}
		}
	}
	if bugWording.MatchString(txt) {
		return Proposal{Label: "Bug", Confidence: 0.6, Reason: "contains error/fail wording"}
	}
	if onboardingWording.MatchString(txt) {
		return Proposal{Label: "Onboarding", Confidence: 0.9, Reason: "contains onboarding wording"}
	}
	return Proposal{Label: "Other", Confidence: 0.2, Reason: "no strong match"}
}

// Proposer labels rows. With a nil client it is purely heuristic.
type Proposer struct {
	llm llm.Client
	log *zap.Logger
}

func NewProposer(client llm.Client, log *zap.Logger) *Proposer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Proposer{llm: client, log: log}
}

// ProposeRow prefers the impacted-categories field when it yields a
// confident match, then the name, then the LLM fallback.
func (p *Proposer) ProposeRow(ctx context.Context, row map[string]string) Proposal {
	if impacted := row["Impacted_Categories__c"]; impacted != "" {
		if prop := ProposeForText(impacted); prop.Confidence >= llmConfidenceFloor {
			return prop
		}
	}
	prop := ProposeForText(row["Name"])
	if prop.Confidence >= llmConfidenceFloor || p.llm == nil {
		return prop
	}
	if fromLLM, ok := p.proposeViaLLM(ctx, row); ok {
		return fromLLM
	}
	return prop
}

func (p *Proposer) proposeViaLLM(ctx context.Context, row map[string]string) (Proposal, bool) {
	labels := make([]string, 0, len(labelPriority)+1)
	seen := map[string]bool{}
	for _, entry := range labelPriority {
		if !seen[entry.Label] {
			seen[entry.Label] = true
			labels = append(labels, entry.Label)
		}
	}
	labels = append(labels, "Other")

	prompt := fmt.Sprintf(`Classify this internal issue into exactly one of these labels: %s.

Name: %s
Impacted categories: %s

Return a JSON object: {"label": "...", "confidence": 0.0-1.0, "reason": "..."}`,
		strings.Join(labels, ", "), row["Name"], row["Impacted_Categories__c"])

	response, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.log.Warn("llm label fallback failed", zap.Error(err))
		return Proposal{}, false
	}
	prop, err := common.ParseJSON[Proposal](response)
	if err != nil {
		p.log.Warn("llm label response unparseable", zap.Error(err))
		return Proposal{}, false
	}
	if !seen[prop.Label] && prop.Label != "Other" {
		return Proposal{}, false
	}
	prop.Reason = "llm: " + prop.Reason
	return prop, true
}
