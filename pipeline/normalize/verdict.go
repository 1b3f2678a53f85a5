/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/kaptinlin/jsonrepair"
)

// Band is the overall outcome of a judged conversion, keyed to fixed score
// ranges.
type Band string

const (
	BandExcellent Band = "EXCELLENT" // 90-100
	BandGood      Band = "GOOD"      // 75-89
	BandPass      Band = "PASS"      // 50-74
	BandFail      Band = "FAIL"      // 30-49
	BandRejected  Band = "REJECTED"  // 0-29
)

// BandForScore maps a total score onto its outcome band.
func BandForScore(total float64) Band {
	switch {
	case total >= 90:
		return BandExcellent
	case total >= 75:
		return BandGood
	case total >= 50:
		return BandPass
	case total >= 30:
		return BandFail
	default:
		return BandRejected
	}
}

// CategoryScore is one scored rubric category.
type CategoryScore struct {
	Score float64 `json:"score"`
	Max   float64 `json:"max"`
	Notes string  `json:"notes"`
}

// DetectedError is one typed error annotation from the judge.
type DetectedError struct {
	Code        string `json:"code"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// Verification holds the judge's mandatory 3D-conversion checks.
type Verification struct {
	WallsHaveHeight      bool   `json:"walls_have_height"`
	WallThicknessVisible bool   `json:"wall_thickness_visible"`
	DepthPerceivable     bool   `json:"depth_perceivable"`
	AngledView           bool   `json:"angled_view"`
	RoofRemoved          bool   `json:"roof_removed"`
	Notes                string `json:"notes"`
}

// Verdict is the structured rubric score a judge model returns, plus the
// metadata fields injected before persistence.
type Verdict struct {
	IsValid3DConversion    bool                     `json:"is_valid_3d_conversion"`
	ConversionVerification Verification             `json:"conversion_verification"`
	Scores                 map[string]CategoryScore `json:"scores"`
	DetectedErrors         []DetectedError          `json:"detected_errors"`
	TotalScore             float64                  `json:"total_score"`
	Verdict                Band                     `json:"verdict"`
	Summary                string                   `json:"summary,omitempty"`

	// Injected metadata, not part of the judge's reply.
	EvaluatorModel string `json:"evaluator_model,omitempty"`
	EvaluatedModel string `json:"evaluated_model,omitempty"`
	InputFile      string `json:"input_file,omitempty"`
}

// Reconcile recomputes the total score from the sub-scores and re-derives
// the outcome band from the total. The totals are a pure function of the
// sub-scores, independent of whatever the judge wrote in those fields.
func (v *Verdict) Reconcile() {
	var total float64
	for _, cat := range v.Scores {
		total += cat.Score
	}
	v.TotalScore = total
	v.Verdict = BandForScore(total)
}

// MalformedVerdictError reports a judge reply whose body could not be parsed
// as a verdict. Raw carries the reply text for sidecar persistence.
type MalformedVerdictError struct {
	Raw string
	Err error
}

func (e *MalformedVerdictError) Error() string {
	return fmt.Sprintf("judge reply is not a valid verdict: %v", e.Err)
}

func (e *MalformedVerdictError) Unwrap() error { return e.Err }

var (
	fencedJSONRE = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	braceJSONRE  = regexp.MustCompile(`(?s)(\{.*\})`)
)

// ExtractJSON pulls the JSON object out of judge reply text. A fenced code
// block wins; otherwise the first brace-delimited top-level object found by
// greedy scanning is used; otherwise the text is returned as-is for the
// parser to reject.
func ExtractJSON(text string) string {
	if m := fencedJSONRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	if m := braceJSONRE.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return text
}

// ParseVerdict extracts and parses a judge reply into a Verdict, then
// reconciles its derived fields. Malformed JSON gets one repair pass before
// the reply is declared malformed; the returned MalformedVerdictError then
// carries the raw text for diagnostic persistence.
func ParseVerdict(text string) (*Verdict, error) {
	payload := ExtractJSON(text)

	var v Verdict
	if err := json.Unmarshal([]byte(payload), &v); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(payload)
		if rerr != nil {
			return nil, &MalformedVerdictError{Raw: text, Err: err}
		}
		if err := json.Unmarshal([]byte(repaired), &v); err != nil {
			return nil, &MalformedVerdictError{Raw: text, Err: err}
		}
	}

	v.Reconcile()
	return &v, nil
}
