package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
)

var ErrSchemaMismatch = errors.New("analysis response does not match schema")

type rawStats struct {
	ColorHarmony   *float64 `json:"color_harmony"`
	Symmetry       *float64 `json:"symmetry"`
	FitAccuracy    *float64 `json:"fit_accuracy"`
	TextureQuality *float64 `json:"texture_quality"`
	Composition    *float64 `json:"composition"`
}

type rawInsights struct {
	Lighting    *float64 `json:"lighting"`
	Style       *float64 `json:"style"`
	Cleanliness *float64 `json:"cleanliness"`
	Grooming    *float64 `json:"grooming"`
	Confidence  *float64 `json:"confidence"`
	Alignment   *float64 `json:"alignment"`
}

type rawReport struct {
	Score         *float64     `json:"score"`
	Verdict       *string      `json:"verdict"`
	FixTip        *string      `json:"fix_tip"`
	DetailedStats *rawStats    `json:"detailedStats"`
	Insights      *rawInsights `json:"insights"`
}

// ParseReport decodes and validates model output. Code fences and text
// around the outermost JSON object are tolerated; missing fields are not.
func ParseReport(content string) (vibe.VibeReport, error) {
	content = stripFences(content)

	var raw rawReport
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return vibe.VibeReport{}, fmt.Errorf("%w: no JSON object: %v", ErrSchemaMismatch, err)
		}
		raw = rawReport{}
		if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
			return vibe.VibeReport{}, fmt.Errorf("%w: %v", ErrSchemaMismatch, err)
		}
	}
	return raw.validate()
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}
	return strings.TrimSpace(content)
}

func (r rawReport) validate() (vibe.VibeReport, error) {
	v := &validator{}
	out := vibe.VibeReport{Score: v.metric("score", r.Score)}

	switch {
	case r.Verdict == nil:
		v.fail("verdict missing")
	default:
		verdict, ok := vibe.ParseVerdict(*r.Verdict)
		if !ok {
			v.fail(fmt.Sprintf("verdict %q not one of YES, RISKY, NO", *r.Verdict))
		}
		out.Verdict = verdict
	}

	if r.FixTip == nil || strings.TrimSpace(*r.FixTip) == "" {
		v.fail("fix_tip missing")
	} else {
		out.FixTip = strings.TrimSpace(*r.FixTip)
	}

	if s := r.DetailedStats; s == nil {
		v.fail("detailedStats missing")
	} else {
		out.DetailedStats = vibe.DetailedStats{
			ColorHarmony:   v.metric("detailedStats.color_harmony", s.ColorHarmony),
			Symmetry:       v.metric("detailedStats.symmetry", s.Symmetry),
			FitAccuracy:    v.metric("detailedStats.fit_accuracy", s.FitAccuracy),
			TextureQuality: v.metric("detailedStats.texture_quality", s.TextureQuality),
			Composition:    v.metric("detailedStats.composition", s.Composition),
		}
	}

	if in := r.Insights; in == nil {
		v.fail("insights missing")
	} else {
		out.Insights = vibe.Insights{
			Lighting:    v.metric("insights.lighting", in.Lighting),
			Style:       v.metric("insights.style", in.Style),
			Cleanliness: v.metric("insights.cleanliness", in.Cleanliness),
			Grooming:    v.metric("insights.grooming", in.Grooming),
			Confidence:  v.metric("insights.confidence", in.Confidence),
			Alignment:   v.metric("insights.alignment", in.Alignment),
		}
	}

	if len(v.problems) > 0 {
		return vibe.VibeReport{}, fmt.Errorf("%w: %s", ErrSchemaMismatch, strings.Join(v.problems, "; "))
	}
	return out, nil
}

type validator struct {
	problems []string
}

func (v *validator) fail(msg string) {
	v.problems = append(v.problems, msg)
}

// metric rounds to the nearest integer and clamps into [0,100].
func (v *validator) metric(field string, f *float64) int {
	if f == nil {
		v.fail(field + " missing")
		return 0
	}
	if math.IsNaN(*f) || math.IsInf(*f, 0) {
		v.fail(field + " not a finite number")
		return 0
	}
	return clamp(int(math.Round(*f)), 0, 100)
}

func clamp(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
