package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"civiguard-backend-go/internal/genai"
	"civiguard-backend-go/internal/models"
)

var errGenerationDisabled = errors.New("text generation is disabled")

const (
	analysisFallbackExplanation = "Unable to analyze the complaint. Please select category and priority manually."
	validationFallbackReason    = "Unable to validate complaint"
	letterDateLayout            = "January 2, 2006"
)

type enhancementService struct {
	generator       genai.Generator
	timeout         time.Duration
	defaultLocation models.Location
	logger          *zap.Logger
	now             func() time.Time
}

// NewEnhancementService wraps generator, which may be nil when no provider is
// configured. Each provider call is bounded by timeout.
func NewEnhancementService(generator genai.Generator, timeout time.Duration, defaultLocation models.Location, logger *zap.Logger) EnhancementService {
	return &enhancementService{
		generator:       generator,
		timeout:         timeout,
		defaultLocation: defaultLocation,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *enhancementService) generate(ctx context.Context, req genai.Request) (string, error) {
	if s.generator == nil {
		return "", errGenerationDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.generator.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", genai.ErrEmptyResponse
	}
	return out, nil
}

func (s *enhancementService) logFallback(op string, err error) {
	if errors.Is(err, errGenerationDisabled) {
		s.logger.Debug("Text generation disabled, using fallback", zap.String("operation", op))
		return
	}
	s.logger.Warn("Text generation failed, using fallback", zap.String("operation", op), zap.Error(err))
}

// Enhance rewrites text with the provider and returns text unchanged on any failure.
func (s *enhancementService) Enhance(ctx context.Context, text string, kind TextKind) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	var prompt string
	switch kind {
	case KindTitle:
		prompt = fmt.Sprintf("Enhance this complaint title to be more descriptive and professional while keeping it concise (max 100 chars): %q", text)
	default:
		prompt = fmt.Sprintf("Enhance this complaint description to be more detailed and professional while maintaining the key information: %q", text)
	}

	out, err := s.generate(ctx, genai.Request{
		System: "You rewrite citizen reports of civic issues. Reply with the rewritten text only, without quotes, labels or alternatives.",
		Prompt: prompt,
	})
	if err != nil {
		s.logFallback("enhance_"+string(kind), err)
		return text
	}
	return out
}

func (s *enhancementService) EnhanceComplaintText(ctx context.Context, title, description string) models.EnhancedText {
	var result models.EnhancedText
	g, gctx := errgroup.WithContext(ctx)
	if title != "" {
		g.Go(func() error {
			result.EnhancedTitle = s.Enhance(gctx, title, KindTitle)
			return nil
		})
	}
	if description != "" {
		g.Go(func() error {
			result.EnhancedDescription = s.Enhance(gctx, description, KindDescription)
			return nil
		})
	}
	_ = g.Wait()
	return result
}

type analysisOutput struct {
	Category    string `json:"category" validate:"required"`
	Priority    string `json:"priority" validate:"required"`
	Explanation string `json:"explanation" validate:"required"`
}

// Analyze suggests a category and priority. Unknown values are coerced to
// other/medium; unusable output yields the manual-selection fallback.
func (s *enhancementService) Analyze(ctx context.Context, title, description string) models.ComplaintAnalysis {
	fallback := models.ComplaintAnalysis{
		Category:    models.CategoryOther,
		Priority:    models.PriorityMedium,
		Explanation: analysisFallbackExplanation,
	}

	prompt := fmt.Sprintf(`Analyze this civic complaint and determine its category and priority level.
Title: %s
Description: %s

Please analyze this complaint and provide:
1. The most appropriate category (pothole, garbage, water leak, street light, or other)
2. The priority level (low, medium, high, or critical)
3. A brief explanation for your categorization

Respond with a JSON object containing these fields:
{
  "category": "category_name",
  "priority": "priority_level",
  "explanation": "your_explanation"
}`, title, description)

	out, err := s.generate(ctx, genai.Request{Prompt: prompt, JSON: true})
	if err != nil {
		s.logFallback("analyze", err)
		return fallback
	}
	var parsed analysisOutput
	if err := decodeGenerated(out, &parsed); err != nil {
		s.logFallback("analyze", err)
		return fallback
	}

	category, ok := models.ParseCategory(parsed.Category)
	if !ok {
		category = models.CategoryOther
	}
	priority, ok := models.ParsePriority(parsed.Priority)
	if !ok {
		priority = models.PriorityMedium
	}
	return models.ComplaintAnalysis{
		Category:    category,
		Priority:    priority,
		Explanation: parsed.Explanation,
		Generated:   true,
	}
}

type validationOutput struct {
	IsValid *bool  `json:"isValid" validate:"required"`
	Reason  string `json:"reason"`
}

// ValidateComplaint screens out spam. It fails open.
func (s *enhancementService) ValidateComplaint(ctx context.Context, title, description string) models.ComplaintValidation {
	fallback := models.ComplaintValidation{IsValid: true, Reason: validationFallbackReason}

	prompt := fmt.Sprintf(`Analyze if this civic complaint is valid and relevant.
Title: %s
Description: %s

A valid civic complaint should:
1. Be about a real issue that affects the community
2. Be specific and clear about the problem
3. Be related to public infrastructure, services, or community concerns
4. Not contain spam, inappropriate content, or personal grievances

Respond with a JSON object containing:
{
  "isValid": true/false,
  "reason": "brief explanation of why the complaint is valid or invalid"
}`, title, description)

	out, err := s.generate(ctx, genai.Request{Prompt: prompt, JSON: true})
	if err != nil {
		s.logFallback("validate", err)
		return fallback
	}
	var parsed validationOutput
	if err := decodeGenerated(out, &parsed); err != nil {
		s.logFallback("validate", err)
		return fallback
	}
	return models.ComplaintValidation{IsValid: *parsed.IsValid, Reason: parsed.Reason, Generated: true}
}

type geocodeOutput struct {
	Lat *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" validate:"required,min=-180,max=180"`
}

// Geocode resolves a free-text address. The default location is returned,
// flagged approximate, when the provider cannot answer.
func (s *enhancementService) Geocode(ctx context.Context, address string) models.GeocodeResult {
	fallback := models.GeocodeResult{Location: s.defaultLocation, Approximate: true}
	if strings.TrimSpace(address) == "" {
		return fallback
	}

	prompt := fmt.Sprintf(`Given this address: %q, provide the latitude and longitude coordinates in this exact format:
{
  "lat": number,
  "lng": number
}
Only return the JSON object, nothing else.`, address)

	out, err := s.generate(ctx, genai.Request{Prompt: prompt, JSON: true})
	if err != nil {
		s.logFallback("geocode", err)
		return fallback
	}
	var parsed geocodeOutput
	if err := decodeGenerated(out, &parsed); err != nil {
		s.logFallback("geocode", err)
		return fallback
	}
	return models.GeocodeResult{Location: models.Location{Lat: *parsed.Lat, Lng: *parsed.Lng}}
}

// DraftNotificationEmail writes a formal letter to the municipal commissioner.
// The fallback is the same letter filled from a fixed template.
func (s *enhancementService) DraftNotificationEmail(ctx context.Context, complaint *models.Complaint, recipient string) models.EmailDraft {
	date := s.now().Format(letterDateLayout)
	draft := models.EmailDraft{
		Recipient: recipient,
		Subject:   "Formal Complaint: " + complaint.Title,
	}

	prompt := fmt.Sprintf(`Format a formal complaint letter using this exact format:

[Your Name]
[Your Address]
[City, State ZIP Code]
[Date]

%s

Please format this as a formal letter following the exact structure above, but:
1. Replace [Your Name] with "CIVIGUARD Admin Team"
2. Replace [Your Address] with "CIVIGUARD Office"
3. Replace [City, State ZIP Code] with "Hyderabad, Telangana 500001"
4. Replace [Date] with %q
5. Keep the GHMC address as is
6. Make the description more formal and detailed
7. Add a proper closing paragraph requesting action
8. End with "Thank you for your time and consideration."

Keep the tone formal and professional.`, letterBody(complaint), date)

	out, err := s.generate(ctx, genai.Request{Prompt: prompt})
	if err != nil {
		s.logFallback("draft_email", err)
		draft.Body = letterTemplate(complaint, date)
		return draft
	}
	draft.Body = out
	draft.Generated = true
	return draft
}

// letterBody is the addressee, subject and complaint details shared by the
// prompt and the fallback letter.
func letterBody(c *models.Complaint) string {
	var b strings.Builder
	b.WriteString("The Municipal Commissioner\n")
	b.WriteString("Greater Hyderabad Municipal Corporation (GHMC)\n")
	b.WriteString("[Address]\n")
	b.WriteString("[City, State ZIP Code]\n\n")
	fmt.Fprintf(&b, "Subject: Complaint about %s\n\n", c.Title)
	b.WriteString("Respected Sir/Madam,\n\n")
	b.WriteString("I am writing this letter to bring to your attention the following issue:\n\n")
	b.WriteString("Complaint Details:\n")
	fmt.Fprintf(&b, "- Title: %s\n", c.Title)
	if c.Category != "" {
		fmt.Fprintf(&b, "- Category: %s\n", c.Category)
	}
	if c.Priority != "" {
		fmt.Fprintf(&b, "- Priority: %s\n", c.Priority)
	}
	if c.Status != "" {
		fmt.Fprintf(&b, "- Status: %s\n", c.Status)
	}
	if c.Location != (models.Location{}) {
		fmt.Fprintf(&b, "- Location: %.6f, %.6f\n", c.Location.Lat, c.Location.Lng)
	}
	b.WriteString("\nDescription:\n")
	b.WriteString(c.Description)
	return b.String()
}

func letterTemplate(c *models.Complaint, date string) string {
	return "CIVIGUARD Admin Team\n" +
		"CIVIGUARD Office\n" +
		"Hyderabad, Telangana 500001\n" +
		date + "\n\n" +
		letterBody(c) + "\n\n" +
		"We request your immediate attention to this matter and appropriate action to resolve the issue. " +
		"The concerned department has been notified, and we hope for a prompt response.\n\n" +
		"Thank you for your time and consideration.\n\n" +
		"Sincerely,\n" +
		"CIVIGUARD Admin Team"
}

// decodeGenerated parses provider JSON, tolerating markdown code fences, and
// checks it against the struct's validate tags.
func decodeGenerated(out string, v interface{}) error {
	text := strings.TrimSpace(out)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), v); err != nil {
		return fmt.Errorf("malformed provider output: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("provider output failed schema check: %w", err)
	}
	return nil
}
