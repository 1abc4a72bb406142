// coach.go
//
// Session-authenticated data service for the Runway AI pageant training application
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of runway.
// runway is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// runway is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with runway.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrCoachNotConfigured is returned when no completion API key is set
var ErrCoachNotConfigured = errors.New("AI coach is not configured")

// UpstreamError is a failure of an external provider (completion or email)
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// AnalyzeRequest is one rehearsed interview answer
type AnalyzeRequest struct {
	Question  string  `json:"question" validate:"required"`
	Response  string  `json:"response" validate:"required"`
	TimeTaken float64 `json:"timeTaken"`
}

// Feedback is the coach's assessment of an interview answer
type Feedback struct {
	Score        float64  `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Overall      string   `json:"overall"`
}

// Coach answers pageant questions and grades interview answers
type Coach interface {
	Chat(ctx context.Context, message string) (string, error)
	Analyze(ctx context.Context, req AnalyzeRequest) (*Feedback, error)
}

const chatSystemPrompt = `You are an expert pageant coach with years of experience helping contestants win major beauty pageants. You know runway walking and stage presence, interview preparation and public speaking, talent presentation, evening gown and swimsuit presentation, competition etiquette and strategy, fitness and wellness, mental preparation, styling, and platform development.

Give expert, encouraging, practical advice in two or three sentences. Be professional but warm, and focus on specific techniques.`

const analyzeSystemPrompt = `You are an expert pageant coach and interview trainer. Analyze the pageant interview response for content quality, structure, confidence and authenticity, strengths, and areas to improve.

Reply with a JSON object with these fields:
- score: number from 1 to 10
- strengths: array of 2-3 specific strengths
- improvements: array of 2-3 specific areas for improvement
- overall: string with an overall feedback summary

Be encouraging but constructive.`

// OpenAICoach is a Coach backed by an OpenAI-compatible chat completion API
type OpenAICoach struct {
	client *openai.Client
	model  string
}

// NewOpenAICoach returns a coach for apiKey, or nil when apiKey is empty.
// baseURL overrides the API endpoint when set.
func NewOpenAICoach(apiKey, baseURL, model string) *OpenAICoach {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAICoach{client: openai.NewClientWithConfig(cfg), model: model}
}

// Chat answers a free-form coaching question
func (o *OpenAICoach) Chat(ctx context.Context, message string) (string, error) {
	if o == nil {
		return "", &UpstreamError{Service: "openai", Err: ErrCoachNotConfigured}
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: chatSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		return "", &UpstreamError{Service: "openai", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Service: "openai", Err: errors.New("no choices in completion")}
	}
	return resp.Choices[0].Message.Content, nil
}

// Analyze grades an interview answer. The score is clamped to [1, 10].
func (o *OpenAICoach) Analyze(ctx context.Context, req AnalyzeRequest) (*Feedback, error) {
	if o == nil {
		return nil, &UpstreamError{Service: "openai", Err: ErrCoachNotConfigured}
	}

	prompt := fmt.Sprintf("Question: %q\nResponse: %q\nTime taken: %g seconds\n\nPlease analyze this pageant interview response and provide specific feedback.",
		req.Question, req.Response, req.TimeTaken)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, &UpstreamError{Service: "openai", Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, &UpstreamError{Service: "openai", Err: errors.New("no feedback received")}
	}

	var feedback Feedback
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &feedback); err != nil {
		return nil, &UpstreamError{Service: "openai", Err: fmt.Errorf("decode feedback: %w", err)}
	}
	feedback.Score = clampScore(feedback.Score)
	if feedback.Strengths == nil {
		feedback.Strengths = []string{}
	}
	if feedback.Improvements == nil {
		feedback.Improvements = []string{}
	}
	return &feedback, nil
}

func clampScore(score float64) float64 {
	return max(1, min(10, score))
}
