package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"autofill-api/internal/config"
	"autofill-api/internal/logger"
	"autofill-api/internal/model"
)

// Predictor answers a form question with the hosted model. Implementations
// may be slow (seconds) and may fail; callers must not let that take the
// matcher path down.
type Predictor interface {
	Predict(ctx context.Context, req *model.PredictRequest, profile *model.UserProfile) (*model.PredictResponse, error)
}

// allowedIntents is the taxonomy the model is asked to classify into
var allowedIntents = []string{
	"personal.firstName", "personal.lastName", "personal.fullName",
	"contact.email", "contact.phone",
	"address.street", "address.city", "address.state", "address.zip", "address.country",
	"work.company", "work.jobTitle", "work.experienceYears",
	"education.school", "education.degree", "education.fieldOfStudy",
	"eeo.gender", "eeo.race", "eeo.veteranStatus", "eeo.disability",
	"legal.workAuthorization", "legal.sponsorship",
	"links.linkedin", "links.website", "links.github",
	model.IntentUnknown,
}

// GeminiPredictor calls the Gemini API in JSON mode. When no API key is
// configured (or a call fails) it falls back to a heuristic mock so local
// development works without credentials.
type GeminiPredictor struct {
	config *config.AIConfig
	client *http.Client
	log    *logger.Logger
}

// NewGeminiPredictor creates a predictor from the AI config
func NewGeminiPredictor(cfg *config.AIConfig, log *logger.Logger) *GeminiPredictor {
	return &GeminiPredictor{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
		log: log,
	}
}

// Predict asks the model for an answer to the form question
func (s *GeminiPredictor) Predict(ctx context.Context, req *model.PredictRequest, profile *model.UserProfile) (*model.PredictResponse, error) {
	if !s.config.IsEnabled() {
		return s.mockPredict(req, profile), nil
	}

	prompt := s.buildPrompt(req, profile)
	response, err := s.callGemini(ctx, prompt)
	if err != nil {
		s.log.Warn("model call failed, using mock predictor", "error", err)
		return s.mockPredict(req, profile), nil
	}

	var result model.PredictResponse
	if err := json.Unmarshal([]byte(response), &result); err != nil {
		s.log.Warn("model returned unparseable JSON, using mock predictor", "error", err)
		return s.mockPredict(req, profile), nil
	}

	if !isAllowedIntent(result.Intent) {
		result.Intent = model.IntentUnknown
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return &result, nil
}

// callGemini makes a request to the Gemini API
func (s *GeminiPredictor) callGemini(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"parts": []map[string]string{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s?key=%s", s.config.ModelEndpoint(), s.config.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var geminiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}

	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return "", err
	}

	if len(geminiResp.Candidates) > 0 && len(geminiResp.Candidates[0].Content.Parts) > 0 {
		return geminiResp.Candidates[0].Content.Parts[0].Text, nil
	}

	return "", fmt.Errorf("empty response from Gemini")
}

func (s *GeminiPredictor) buildPrompt(req *model.PredictRequest, profile *model.UserProfile) string {
	profileJSON := "{}"
	if profile != nil && profile.ProfileData != nil {
		if data, err := json.Marshal(profile.ProfileData); err == nil {
			profileJSON = string(data)
		}
	}

	optionsStr := "none"
	if len(req.Options) > 0 {
		optionsStr = strings.Join(req.Options, " | ")
	}

	return fmt.Sprintf(`You are filling out a job application form on behalf of a user. Return ONLY valid JSON matching this schema:
{
  "answer": "the value to type or select",
  "confidence": 0.0 to 1.0,
  "intent": "one of the allowed intents",
  "reasoning": "one short sentence"
}

Allowed intents: %s

Form question: %s
Field type: %s
Available options: %s
User profile: %s

Rules:
1. If options are given, the answer MUST be one of them, verbatim.
2. Use the user profile when it holds the value; keep confidence low when guessing.
3. If the question maps to no allowed intent, use "unknown".
4. Never invent personal data not present in the profile.`,
		strings.Join(allowedIntents, ", "),
		req.Question, req.FieldType, optionsStr, profileJSON)
}

// mockPredict answers from the profile with keyword intent guessing. Its
// confidence stays below the learn threshold so mock answers are never
// remembered as patterns.
func (s *GeminiPredictor) mockPredict(req *model.PredictRequest, profile *model.UserProfile) *model.PredictResponse {
	question := Normalize(req.Question)

	intent := model.IntentUnknown
	switch {
	case strings.Contains(question, "first name"):
		intent = "personal.firstName"
	case strings.Contains(question, "last name"):
		intent = "personal.lastName"
	case strings.Contains(question, "email"):
		intent = "contact.email"
	case strings.Contains(question, "phone"):
		intent = "contact.phone"
	case strings.Contains(question, "city"):
		intent = "address.city"
	case strings.Contains(question, "company"):
		intent = "work.company"
	case strings.Contains(question, "gender"):
		intent = "eeo.gender"
	}

	answer := ""
	if profile != nil {
		answer = profileLookup(profile.ProfileData, intent)
	}

	return &model.PredictResponse{
		Answer:     answer,
		Confidence: 0.30,
		Intent:     intent,
		Reasoning:  "Mock prediction - configure GEMINI_API_KEY for real answers",
	}
}

// profileLookup walks the nested profile map along the intent's dotted path
func profileLookup(data map[string]interface{}, intent string) string {
	current := data
	parts := strings.Split(intent, ".")
	for i, part := range parts {
		val, ok := current[part]
		if !ok {
			return ""
		}
		if i == len(parts)-1 {
			if str, ok := val.(string); ok {
				return str
			}
			return ""
		}
		current, ok = val.(map[string]interface{})
		if !ok {
			return ""
		}
	}
	return ""
}

func isAllowedIntent(intent string) bool {
	for _, allowed := range allowedIntents {
		if intent == allowed {
			return true
		}
	}
	return false
}
