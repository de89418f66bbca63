package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lox/pokerequity/analysis"
	"github.com/lox/pokerequity/ev"
	"github.com/lox/pokerequity/internal/config"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, requestID string, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
		RequestID: requestID,
	}, nil
}

// EquityRequest asks for the equity of a scenario and, when Betting is
// present, the EV of each action. Preset fills the scenario and betting
// context from a named preset; explicit fields take precedence.
type EquityRequest struct {
	Preset string `json:"preset,omitempty"`
	analysis.ScenarioText
	Tuning  TuningData  `json:"tuning,omitempty"`
	Betting *ev.Context `json:"betting,omitempty"`
}

// TuningData is the wire form of analysis.Tuning.
type TuningData struct {
	MaxTrials    int64   `json:"max_trials,omitempty"`
	TargetRadius float64 `json:"target_radius,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	Seed         *int64  `json:"seed,omitempty"`
	TimeBudgetMs int64   `json:"time_budget_ms,omitempty"`
	Method       string  `json:"method,omitempty"`
}

// Tuning converts the wire form.
func (d TuningData) Tuning() (analysis.Tuning, error) {
	method, err := analysis.ParseMethod(d.Method)
	if err != nil {
		return analysis.Tuning{}, err
	}
	if d.TimeBudgetMs < 0 {
		return analysis.Tuning{}, fmt.Errorf("%w: time budget must not be negative", analysis.ErrConfiguration)
	}
	return analysis.Tuning{
		MaxTrials:    d.MaxTrials,
		TargetRadius: d.TargetRadius,
		Confidence:   d.Confidence,
		Seed:         d.Seed,
		TimeBudget:   time.Duration(d.TimeBudgetMs) * time.Millisecond,
		Method:       method,
	}, nil
}

// EquityResultData answers an EquityRequest.
type EquityResultData struct {
	Scenario string                `json:"scenario"`
	Result   analysis.EquityResult `json:"result"`
	EV       *ev.Result            `json:"ev,omitempty"`
}

// PresetListData lists the configured presets.
type PresetListData struct {
	Presets []config.Preset `json:"presets"`
}

// ErrorData reports a failed request. Kind is one of validation,
// infeasible, evaluation, configuration, canceled, internal or
// invalid_message.
type ErrorData struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
