package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const maxAlternatives = 2

// Rewrite is a corrected query with optional fallbacks.
type Rewrite struct {
	Primary      string   `json:"primary"`
	Alternatives []string `json:"alternatives"`
}

// Rewriter turns what the customer typed into a better search query.
type Rewriter interface {
	Rewrite(ctx context.Context, raw string) (Rewrite, error)
}

// Identity searches for exactly what was typed.
type Identity struct{}

func (Identity) Rewrite(_ context.Context, raw string) (Rewrite, error) {
	return Rewrite{Primary: strings.TrimSpace(raw)}, nil
}

const rewritePrompt = `You rewrite search queries for an Arabic beauty and cosmetics store.
Tasks:
1) Fix spelling mistakes in Arabic or English while preserving intent.
2) Keep brand and product line names intact (e.g. "La Roche-Posay", "لوريال").
3) Return STRICT JSON ONLY with this schema (no markdown, no prose):

{
  "primary": "<one corrected query>",
  "alternatives": ["<alt1>", "<alt2>"]
}

Guidelines:
- Do not add new intent or adjectives.
- If the input is already clean, return it unchanged as "primary".
- Provide up to 2 short alternatives (the same query in the other language, close spellings) or an empty list.
`

// GeminiRewriter asks a Gemini model to correct queries.
type GeminiRewriter struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiRewriter connects to the Gemini API with apiKey.
func NewGeminiRewriter(ctx context.Context, apiKey, model string) (*GeminiRewriter, error) {
	if apiKey == "" {
		return nil, errors.New("gemini rewriter: missing API key")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini rewriter: %w", err)
	}
	gm := client.GenerativeModel(model)
	gm.SetTemperature(0)
	gm.ResponseMIMEType = "application/json"
	return &GeminiRewriter{client: client, model: gm}, nil
}

func (g *GeminiRewriter) Rewrite(ctx context.Context, raw string) (Rewrite, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Rewrite{}, errors.New("empty query")
	}
	resp, err := g.model.GenerateContent(ctx, genai.Text(rewritePrompt), genai.Text(fmt.Sprintf("Input: %q", raw)))
	if err != nil {
		return Rewrite{}, err
	}
	return parseRewrite(raw, extractText(resp)), nil
}

// Close releases the underlying client.
func (g *GeminiRewriter) Close() error {
	return g.client.Close()
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return ""
	}
	c := resp.Candidates[0].Content
	if c == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range c.Parts {
		if t, ok := p.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return b.String()
}

// parseRewrite decodes the model's JSON answer. Anything malformed falls back
// to the raw query.
func parseRewrite(raw, txt string) Rewrite {
	dec := json.NewDecoder(strings.NewReader(txt))
	dec.DisallowUnknownFields()

	var r Rewrite
	if err := dec.Decode(&r); err != nil {
		return Rewrite{Primary: raw}
	}
	r = clean(r)
	if r.Primary == "" {
		r.Primary = raw
	}
	return r
}

// clean trims and de-duplicates, dropping alternatives equal to the primary.
func clean(r Rewrite) Rewrite {
	seen := map[string]struct{}{}
	keep := func(s string) (string, bool) {
		s = strings.TrimSpace(s)
		if s == "" {
			return "", false
		}
		k := strings.ToLower(s)
		if _, ok := seen[k]; ok {
			return "", false
		}
		seen[k] = struct{}{}
		return s, true
	}

	out := Rewrite{}
	if p, ok := keep(r.Primary); ok {
		out.Primary = p
	}
	for _, a := range r.Alternatives {
		if v, ok := keep(a); ok {
			out.Alternatives = append(out.Alternatives, v)
			if len(out.Alternatives) >= maxAlternatives {
				break
			}
		}
	}
	return out
}
