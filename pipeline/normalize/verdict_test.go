/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package normalize_test

import (
	"errors"
	"testing"

	"chainguard.dev/planbench/pipeline/normalize"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestBandForScore(t *testing.T) {
	t.Parallel()

	tests := []struct {
		total float64
		want  normalize.Band
	}{
		{100, normalize.BandExcellent},
		{90, normalize.BandExcellent},
		{89, normalize.BandGood},
		{75, normalize.BandGood},
		{74, normalize.BandPass},
		{50, normalize.BandPass},
		{49, normalize.BandFail},
		{30, normalize.BandFail},
		{29, normalize.BandRejected},
		{0, normalize.BandRejected},
	}

	for _, tc := range tests {
		if got := normalize.BandForScore(tc.total); got != tc.want {
			t.Errorf("BandForScore(%v) = %s, want %s", tc.total, got, tc.want)
		}
	}
}

const verdictJSON = `{
  "is_valid_3d_conversion": true,
  "conversion_verification": {
    "walls_have_height": true,
    "wall_thickness_visible": true,
    "depth_perceivable": true,
    "angled_view": true,
    "roof_removed": false,
    "notes": "roof partially present"
  },
  "scores": {
    "3d_conversion_fundamentals": {"score": 30, "max": 35, "notes": "solid"},
    "geometric_accuracy": {"score": 25, "max": 30, "notes": ""},
    "interior_elements": {"score": 12, "max": 15, "notes": ""},
    "visual_clarity": {"score": 15, "max": 20, "notes": ""}
  },
  "detected_errors": [
    {"code": "E3-MIN", "severity": "minor", "description": "one window misplaced"}
  ],
  "total_score": 1,
  "verdict": "REJECTED",
  "summary": "Faithful conversion with minor opening mismatches."
}`

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	v, err := normalize.ParseVerdict(verdictJSON)
	require.NoError(t, err)

	// Totals and band are derived from sub-scores, overriding whatever the
	// judge wrote in those fields.
	require.Equal(t, float64(82), v.TotalScore)
	require.Equal(t, normalize.BandGood, v.Verdict)

	require.True(t, v.IsValid3DConversion)
	require.False(t, v.ConversionVerification.RoofRemoved)
	require.Len(t, v.DetectedErrors, 1)
	require.Equal(t, "E3-MIN", v.DetectedErrors[0].Code)
	require.Equal(t, float64(35), v.Scores["3d_conversion_fundamentals"].Max)
}

func TestParseVerdict_FencedEqualsUnwrapped(t *testing.T) {
	t.Parallel()

	fenced := "```json\n" + verdictJSON + "\n```"
	plain, err := normalize.ParseVerdict(verdictJSON)
	if err != nil {
		t.Fatalf("ParseVerdict(plain) = %v", err)
	}
	wrapped, err := normalize.ParseVerdict(fenced)
	if err != nil {
		t.Fatalf("ParseVerdict(fenced) = %v", err)
	}
	if diff := cmp.Diff(plain, wrapped); diff != "" {
		t.Fatalf("fenced parse differs from plain (-plain +fenced):\n%s", diff)
	}
}

func TestParseVerdict_SurroundingProse(t *testing.T) {
	t.Parallel()

	text := "Here is my evaluation:\n" + verdictJSON + "\nLet me know if you need more."
	v, err := normalize.ParseVerdict(text)
	if err != nil {
		t.Fatalf("ParseVerdict() = %v", err)
	}
	if v.TotalScore != 82 {
		t.Fatalf("TotalScore = %v, want 82", v.TotalScore)
	}
}

func TestParseVerdict_RepairsTrailingComma(t *testing.T) {
	t.Parallel()

	// Models emit trailing commas often enough that one repair pass runs
	// before the reply is declared malformed.
	v, err := normalize.ParseVerdict(`{"scores": {"visual_clarity": {"score": 10, "max": 20, "notes": ""},}, "verdict": "PASS"}`)
	if err != nil {
		t.Fatalf("ParseVerdict() = %v", err)
	}
	if v.TotalScore != 10 {
		t.Fatalf("TotalScore = %v, want 10", v.TotalScore)
	}
}

func TestParseVerdict_Malformed(t *testing.T) {
	t.Parallel()

	text := "I am unable to evaluate these images."
	_, err := normalize.ParseVerdict(text)

	var malformed *normalize.MalformedVerdictError
	if !errors.As(err, &malformed) {
		t.Fatalf("ParseVerdict() = %v, want MalformedVerdictError", err)
	}
	if malformed.Raw != text {
		t.Fatalf("Raw = %q, want original reply text", malformed.Raw)
	}
}

func TestExtractJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{{
		name: "fenced json block",
		text: "```json\n{\"a\": 1}\n```",
		want: `{"a": 1}`,
	}, {
		name: "fenced block without language tag",
		text: "```\n{\"a\": 1}\n```",
		want: `{"a": 1}`,
	}, {
		name: "bare object with prose",
		text: "sure: {\"a\": 1} done",
		want: `{"a": 1}`,
	}, {
		name: "no object returns input",
		text: "nothing here",
		want: "nothing here",
	}}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := normalize.ExtractJSON(tc.text); got != tc.want {
				t.Fatalf("ExtractJSON() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReconcileEmptyScores(t *testing.T) {
	t.Parallel()

	v := &normalize.Verdict{TotalScore: 95, Verdict: normalize.BandExcellent}
	v.Reconcile()
	if v.TotalScore != 0 {
		t.Fatalf("TotalScore = %v, want 0", v.TotalScore)
	}
	if v.Verdict != normalize.BandRejected {
		t.Fatalf("Verdict = %s, want REJECTED", v.Verdict)
	}
}
