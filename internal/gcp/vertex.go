package gcp

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// --- Brand Analyst Model Prompts ---
const AnalystSystemPrompt = "You are a B2B brand strategist. Your task is to analyze company information and produce concrete, actionable visual and messaging insights for high-performing LinkedIn ad images."
const AnalystPromptTemplate = `Analyze the following company information and provide comprehensive insights for creating high-performing LinkedIn B2B ad images:

Company URL: %s
Product: %s
Business Value: %s
Target Audience: %s
Body Text: %s
Footer Text: %s

Provide:

1. **Brand Personality & Visual Tone**: Analyze brand voice and recommend specific visual aesthetics (corporate, innovative, approachable, authoritative)
2. **Audience Persona Insights**: Detail target customer demographics, pain points, and visual preferences
3. **B2B Messaging Themes**: Identify key value propositions that resonate (ROI, efficiency, innovation, trust, expertise)
4. **Emotional Tone & Mood**: Specify lighting, expressions, and atmosphere (confident, collaborative, innovative, trustworthy)
5. **Thumb-Stopping Elements**: Identify attention-grabbing visual elements that maintain B2B credibility

Format your analysis with specific, actionable recommendations for detailed AI image generation prompts.`

// --- Prompt Stylist Model Prompts ---
const StylistSystemPrompt = "You are an expert at writing prompts for AI image generation models. Your task is to turn a business brief, a brand analysis, and a visual style guide into one concise, highly detailed image generation prompt."
const StylistPromptTemplate = `Create a highly-optimized image generation prompt for a LinkedIn ad image with people (1 or 2 people max) on a simple background and a CTA text area with a high-contrast background.

**Context:**
- Product/Service: %s
- Target Audience: %s
- Business Value: %s
- Style: %s
- Company Analysis: %s

**Style Guide:** %s

**Prompt Requirements:**

1. **Main Subject:** Professional business people (not more than 1 or 2) representing the target audience, confident and approachable, diverse representation, upper body or headshot composition.
2. **Background:** Simple and clean - solid colors, subtle gradients, or minimal geometric elements ONLY. High contrast with the person for text overlay. NO offices, NO detailed environments, NO busy patterns.
3. **Technical Specs:** Square format (1:1 aspect ratio), professional photography quality (studio lighting), sharp focus on the person, leave 30%% of image space clear for text overlay.
4. **CTA Integration:** Reserve 20-30%% of image space for text overlay with a contrast ratio of at least 4.5:1. The image must include the CTA text: "%s" in a high-contrast area.

The prompt should be concise (max 300 words). The style specs must be highly differentiated and present in the prompt. Return ONLY the prompt with no preamble.`

// --- Copywriter Model Prompts ---
const CopywriterSystemPrompt = "You are a LinkedIn advertising expert. Your task is to create high-converting B2B ad copy. You must output your response as a single valid JSON object."
const CopywriterPromptTemplate = `Create high-converting B2B LinkedIn ad copy.

**Campaign Context:**
Company Analysis: %s
Product/Service: %s
Core Values: %s
Target Audience: %s

Use the AIDA structure: an attention hook addressing an audience pain point, a clear value proposition, a social proof or authority signal, and a persuasive call to action. Lead with the transformation, not product features. Keep a professional tone appropriate for B2B LinkedIn.

**Output Requirements:**
Generate JSON with exactly these fields:
{
    "headline": "Attention-grabbing headline (max 150 chars) using a hook strategy",
    "description": "AIDA-structured description (max 600 chars) with value prop + social proof",
    "cta": "Compelling action-oriented CTA (max 20 chars)"
}

Return ONLY the JSON with no additional text or formatting.`

// --- Image Modification Prompt ---
const ModificationPromptTemplate = `Create a professional LinkedIn advertisement image based on this modification request: %s

The original image was generated from this prompt:
%s

Ensure the image maintains LinkedIn B2B ad best practices:
- Professional business people (1-2 max) as main subjects
- Simple, clean backgrounds (solid colors, subtle gradients) that contrast well with text
- High contrast areas reserved for CTA text overlay
- Square format (1024x1024) optimized for the LinkedIn mobile feed
- Professional photography quality with studio lighting
- Style constraints to preserve: %s

Apply the requested modifications while maintaining these professional standards.`

// resolutionSuffix is appended to every image generation prompt.
const resolutionSuffix = "\n\nIMPORTANT: Generate the image in exactly 1024x1024 pixels resolution. Ensure proper aspect ratio and high quality."

// VertexClient holds all pre-configured generative models for our app.
type VertexClient struct {
	AnalystModel    *genai.GenerativeModel
	StylistModel    *genai.GenerativeModel
	CopywriterModel *genai.GenerativeModel
	ImageModel      *genai.GenerativeModel
	baseClient      *genai.Client
}

// NewVertexClient creates a new client holding all necessary models.
func NewVertexClient(ctx context.Context, projectID, region string) (*VertexClient, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("NewVertexClient: projectID and region cannot be empty")
	}

	baseClient, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}

	// --- Configure the analyst model ---
	analystModel := baseClient.GenerativeModel("gemini-1.5-pro")
	analystModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(AnalystSystemPrompt)},
	}
	analystModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.7),
	}

	// --- Configure the prompt stylist model ---
	stylistModel := baseClient.GenerativeModel("gemini-1.5-pro")
	stylistModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(StylistSystemPrompt)},
	}
	stylistModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.7),
	}

	// --- Configure the copywriter model ---
	copywriterModel := baseClient.GenerativeModel("gemini-1.5-pro")
	copywriterModel.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(CopywriterSystemPrompt)},
	}
	copywriterModel.GenerationConfig = genai.GenerationConfig{
		// Force JSON output. This is a critical setting for this model.
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0.3),
	}

	// --- Configure the image generation model ---
	imageModel := baseClient.GenerativeModel("gemini-2.0-flash-preview-image-generation")
	imageModel.SafetySettings = []*genai.SafetySetting{
		{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockNone},
		{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockNone},
	}

	return &VertexClient{
		AnalystModel:    analystModel,
		StylistModel:    stylistModel,
		CopywriterModel: copywriterModel,
		ImageModel:      imageModel,
		baseClient:      baseClient,
	}, nil
}

// Complete sends a plain text prompt to the text model and returns the
// extracted text.
func (c *VertexClient) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.AnalystModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from gemini: %w", err)
	}
	return extractText(resp), nil
}

// CompleteJSON sends a prompt to the JSON-configured copywriter model and
// returns the raw JSON string.
func (c *VertexClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := c.CopywriterModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate structured content from gemini: %w", err)
	}
	jsonString := extractText(resp)
	if jsonString == "" {
		return "", fmt.Errorf("gemini returned an empty response instead of JSON")
	}
	return jsonString, nil
}

// GenerateImage sends the prompt plus any reference images inline and
// returns the raw bytes of the first image in the response.
func (c *VertexClient) GenerateImage(ctx context.Context, prompt string, refs [][]byte) ([]byte, error) {
	parts := []genai.Part{genai.Text(prompt + resolutionSuffix)}
	for _, ref := range refs {
		parts = append(parts, genai.Blob{MIMEType: "image/png", Data: ref})
	}

	resp, err := c.ImageModel.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image from gemini: %w", err)
	}

	data := extractImage(resp)
	if data == nil {
		return nil, fmt.Errorf("gemini response contained no image payload")
	}
	return data, nil
}

func (c *VertexClient) Close() error {
	if c.baseClient != nil {
		return c.baseClient.Close()
	}
	return nil
}

// extractText parses a model response and robustly extracts text content.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return ""
	}

	var content strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			content.WriteString(string(txt))
		}
	}

	contentStr := strings.TrimSpace(content.String())
	contentStr = strings.TrimPrefix(contentStr, "```json")
	contentStr = strings.TrimPrefix(contentStr, "```")
	contentStr = strings.TrimSuffix(contentStr, "```")
	return strings.TrimSpace(contentStr)
}

// extractImage walks the response parts and returns the first inline image.
func extractImage(resp *genai.GenerateContentResponse) []byte {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if blob, ok := part.(genai.Blob); ok && len(blob.Data) > 0 {
			return blob.Data
		}
	}
	return nil
}
