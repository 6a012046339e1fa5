package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// InterviewScript holds the fixed spoken lines and the turn limits for a
// call. Limits default to the tuned values; the YAML file may override them
// for experiments but the scoring heuristics do not read from here.
type InterviewScript struct {
	IntroText        string `yaml:"intro_text"`
	ClosingText      string `yaml:"closing_text"`
	FallbackQuestion string `yaml:"fallback_question"`
	Voice            string `yaml:"voice"`

	MinQuestions    int `yaml:"min_questions"`
	MaxAnswers      int `yaml:"max_answers"`
	MaxRefusals     int `yaml:"max_refusals"`
	MaxShortAnswers int `yaml:"max_short_answers"`
}

func DefaultInterviewScript() *InterviewScript {
	return &InterviewScript{
		IntroText: "Hello, this is an automated interview call from the HR team. " +
			"I will ask you a few questions to understand your experience and skills. " +
			"Please answer clearly. Are you ready for that?",
		ClosingText: "Thank you for your time. We have enough information for now. " +
			"Our HR team will contact you.",
		FallbackQuestion: "Could you explain more?",
		Voice:            "alice",
		MinQuestions:     4,
		MaxAnswers:       6,
		MaxRefusals:      2,
		MaxShortAnswers:  3,
	}
}

// LoadInterviewScript reads the script YAML, filling any omitted field from
// the defaults. A missing file is not an error; the defaults are used.
func LoadInterviewScript(path string) (*InterviewScript, error) {
	script := DefaultInterviewScript()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return script, nil
		}
		return nil, fmt.Errorf("failed to read interview script %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, script); err != nil {
		return nil, fmt.Errorf("failed to parse interview script: %w", err)
	}

	if err := validateScript(script); err != nil {
		return nil, fmt.Errorf("invalid interview script: %w", err)
	}

	return script, nil
}

func validateScript(script *InterviewScript) error {
	if strings.TrimSpace(script.IntroText) == "" {
		return fmt.Errorf("intro_text must not be empty")
	}
	if strings.TrimSpace(script.ClosingText) == "" {
		return fmt.Errorf("closing_text must not be empty")
	}
	if strings.TrimSpace(script.FallbackQuestion) == "" {
		return fmt.Errorf("fallback_question must not be empty")
	}
	if script.MinQuestions < 0 {
		return fmt.Errorf("min_questions must not be negative")
	}
	if script.MaxAnswers <= 0 {
		return fmt.Errorf("max_answers must be greater than 0")
	}
	if script.MaxAnswers < script.MinQuestions {
		return fmt.Errorf("max_answers (%d) must not be below min_questions (%d)",
			script.MaxAnswers, script.MinQuestions)
	}
	if script.MaxRefusals <= 0 {
		return fmt.Errorf("max_refusals must be greater than 0")
	}
	if script.MaxShortAnswers <= 0 {
		return fmt.Errorf("max_short_answers must be greater than 0")
	}
	return nil
}
