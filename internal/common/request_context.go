// request_context.go - Per-call tracking: request id, step timing, token usage

package common

import (
	"fmt"
	"log"
	"time"

	"github.com/bosocmputer/ocr_gemini_plugin/configs"
	"github.com/google/uuid"
)

// RequestContext follows one OCR call from upload to response
type RequestContext struct {
	RequestID   string
	Source      string
	StartTime   time.Time
	Steps       []StepLog
	TotalTokens TokenUsage

	step          *StepLog
	subStep       string
	subStepStart  time.Time
	subStepsSoFar []SubStepLog
}

// StepLog is one timed stage of a call (normalize_image, gemini_ocr)
type StepLog struct {
	Name      string       `json:"name"`
	StartTime time.Time    `json:"start_time"`
	Duration  int64        `json:"duration_ms"`
	Status    string       `json:"status"`
	Tokens    *TokenUsage  `json:"tokens,omitempty"`
	Error     string       `json:"error,omitempty"`
	SubSteps  []SubStepLog `json:"sub_steps,omitempty"`
}

// SubStepLog is a timed part of a step (build_request, call_gemini, parse_response)
type SubStepLog struct {
	Name     string `json:"name"`
	Duration int64  `json:"duration_ms"`
	Details  string `json:"details,omitempty"`
}

// TokenUsage is taken from Gemini's usageMetadata
type TokenUsage struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// NewRequestContext starts tracking a call. source identifies the caller (client address, test name).
func NewRequestContext(source string) *RequestContext {
	rc := &RequestContext{
		RequestID: uuid.New().String(),
		Source:    source,
		StartTime: time.Now(),
		Steps:     []StepLog{},
	}
	log.Printf("[%s] 🚀 New request | Source: %s", rc.RequestID, source)
	return rc
}

func (rc *RequestContext) StartStep(name string) {
	rc.step = &StepLog{Name: name, StartTime: time.Now()}
	rc.subStepsSoFar = nil
	log.Printf("[%s] ┌── %s", rc.RequestID, name)
}

// EndStep closes the open step. tokens, when set, are added to the call total.
func (rc *RequestContext) EndStep(status string, tokens *TokenUsage, err error) {
	if rc.step == nil {
		return
	}
	step := *rc.step
	step.Duration = time.Since(step.StartTime).Milliseconds()
	step.Status = status
	step.Tokens = tokens
	step.SubSteps = rc.subStepsSoFar

	if err != nil {
		step.Error = err.Error()
		log.Printf("[%s] └── ❌ %s failed after %dms: %v", rc.RequestID, step.Name, step.Duration, err)
	} else if tokens != nil {
		rc.TotalTokens.InputTokens += tokens.InputTokens
		rc.TotalTokens.OutputTokens += tokens.OutputTokens
		rc.TotalTokens.TotalTokens += tokens.TotalTokens
		rc.TotalTokens.CostUSD += tokens.CostUSD
		log.Printf("[%s] └── ✅ %dms | 🪙 %d in + %d out | 💰 $%.6f",
			rc.RequestID, step.Duration, tokens.InputTokens, tokens.OutputTokens, tokens.CostUSD)
	} else {
		log.Printf("[%s] └── ✅ %dms", rc.RequestID, step.Duration)
	}

	rc.Steps = append(rc.Steps, step)
	rc.step = nil
	rc.subStepsSoFar = nil
}

func (rc *RequestContext) StartSubStep(name string) {
	rc.subStep = name
	rc.subStepStart = time.Now()
}

// EndSubStep records the open sub-step; without one it does nothing
func (rc *RequestContext) EndSubStep(details string) {
	if rc.subStep == "" {
		return
	}
	sub := SubStepLog{
		Name:     rc.subStep,
		Duration: time.Since(rc.subStepStart).Milliseconds(),
		Details:  details,
	}
	rc.subStepsSoFar = append(rc.subStepsSoFar, sub)
	rc.subStep = ""
	log.Printf("[%s]    ├─ %s %dms %s", rc.RequestID, sub.Name, sub.Duration, details)
}

// CalculateTokenCost prices token counts with the configured per-million rates
func CalculateTokenCost(inputTokens, outputTokens int) TokenUsage {
	return TokenUsage{
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		TotalTokens:  inputTokens + outputTokens,
		CostUSD: (float64(inputTokens)*configs.GEMINI_INPUT_PRICE_PER_MILLION +
			float64(outputTokens)*configs.GEMINI_OUTPUT_PRICE_PER_MILLION) / 1_000_000,
	}
}

// GetSummary is the report returned alongside OCR results
func (rc *RequestContext) GetSummary() map[string]interface{} {
	total := time.Since(rc.StartTime).Milliseconds()
	log.Printf("[%s] 🎯 %dms | steps: %d | tokens: %d", rc.RequestID, total, len(rc.Steps), rc.TotalTokens.TotalTokens)

	return map[string]interface{}{
		"request_id":        rc.RequestID,
		"source":            rc.Source,
		"total_duration_ms": total,
		"steps":             rc.Steps,
		"token_usage":       rc.TotalTokens,
	}
}

func (rc *RequestContext) LogInfo(format string, args ...interface{}) {
	log.Printf("[%s] ℹ️  %s", rc.RequestID, fmt.Sprintf(format, args...))
}

func (rc *RequestContext) LogWarning(format string, args ...interface{}) {
	log.Printf("[%s] ⚠️  %s", rc.RequestID, fmt.Sprintf(format, args...))
}

func (rc *RequestContext) LogError(format string, args ...interface{}) {
	log.Printf("[%s] ❌ %s", rc.RequestID, fmt.Sprintf(format, args...))
}
