package site

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/internal/model"
	"github.com/aiboostly/leadpilot/internal/resilience"
	"github.com/aiboostly/leadpilot/pkg/anthropic"
)

const (
	// scrapedPromptCap bounds how much scraped text goes into the prompt.
	scrapedPromptCap = 6000

	maxWebSearches = 3
)

var (
	openFence  = regexp.MustCompile("(?i)^```(?:html?)?\\s*\n?")
	closeFence = regexp.MustCompile("\n?```\\s*$")
)

const systemPrompt = `You are an expert web designer building premium preview websites for Dutch local businesses (loodgieters, elektriciens, autowerkplaatsen, kappers, fysiotherapeuten, etc).

Your output must be a COMPLETE, READY-TO-DEPLOY single HTML file. Nothing else — no explanations, no markdown fences, no comments outside the HTML. Just the raw HTML starting with <!DOCTYPE html>.

HARD RULES (non-negotiable):
1. Single file: all CSS in <style> tags, all JS inline in <script> if needed. Google Fonts via @import or <link> is fine.
2. Dutch: every word visible to the user must be in Dutch.
3. Real data only: if information is missing, skip that section entirely. NEVER invent services, staff names, testimonials, statistics, review quotes, hours, or anything else not in the provided data.
4. Footer: must include the text "Website gemaakt door AiBoostly" as a clickable link to https://aiboostly.com
5. Call CTA: must have a prominent click-to-call button (href="tel:..."). No contact forms — tradespeople don't fill out forms.
6. Mobile-first responsive design — these owners read on their phones between jobs.
7. No empty links: never output href="". If a social URL is missing from the data, don't render that icon/link.
8. No fake maps: never render a grey placeholder. Use a real Google Maps iframe or make the address a clickable Maps link.
9. Phone links: tel: href must strip all spaces (tel:+31201234567). Display version keeps spaces.
10. Email: if "Email Status" is "BLACKLISTED" or "INVALID", do NOT show the email.
11. No emojis anywhere — ever. Not in headings, buttons, lists, or body text. Use Font Awesome 6 icons instead: load via <link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.0/css/all.min.css"> and use <i class="fas fa-phone"></i>, <i class="fas fa-map-marker-alt"></i>, <i class="fas fa-star"></i>, etc. Icons should feel intentional and premium, not decorative clutter.

DESIGN PHILOSOPHY:
- Be creative. Choose colors, fonts, and layout that match the business personality and type.
- An electrician site should feel different from a chiropractor's or a plumber's.
- Aim for "holy shit this looks better than what I have" within 3 seconds on mobile.
- Use the business category, scraped branding cues, and your design judgment.
- Modern, premium, obviously better than typical WordPress templates.
- Add subtle CSS animations: fade-in on scroll (IntersectionObserver), hover effects on cards and buttons.
- Use natural Dutch section headings, not corporate uppercase ("Wat we voor u doen" not "ONZE DIENSTEN").

SECTIONS (include only if you have the data):
- Hero: business name, city/location, primary CTA (call button)
- Services: from Subtypes/Services field and scraped website content
- About/Trust: company description, contact person, years in business if found. "About" field is a JSON string — parse it.
- Social proof: Google rating + review count (from "Rating" and "Reviews" fields), link to Google reviews. Never invent review quotes.
- Opening hours: parse "Monday,9am,5pm|Tuesday,9am,5pm|..." format
- Features/amenities: from About JSON (wheelchair access, payment methods, etc)
- Contact: phone, email, full address, Google Maps link/embed, social media links (only if URLs exist in data)
- Strong closing CTA: business-specific, not generic. Include phone number again.
- Footer: AiBoostly credit with link, nav links to sections, © year

OUTPUT: raw HTML only. No markdown. No explanation. Start with <!DOCTYPE html>.`

// Generator produces a complete single-file HTML website for a business.
type Generator struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// GeneratorOption customizes the generator.
type GeneratorOption func(*Generator)

// WithRetryConfig overrides the overload retry policy.
func WithRetryConfig(cfg resilience.RetryConfig) GeneratorOption {
	return func(g *Generator) {
		g.retry = cfg
	}
}

// NewGenerator creates a Generator.
func NewGenerator(client anthropic.Client, modelID string, maxTokens int64, opts ...GeneratorOption) *Generator {
	g := &Generator{
		client:    client,
		model:     modelID,
		maxTokens: maxTokens,
		retry:     OverloadRetryConfig(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OverloadRetryConfig retries only the provider's overloaded signal, waiting
// 20s then 40s between the three attempts.
func OverloadRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 20 * time.Second,
		Multiplier:     2.0,
		ShouldRetry:    anthropic.IsOverloaded,
		OnRetry:        resilience.RetryLogger("anthropic", "generate website"),
	}
}

// Generate returns the full HTML document for the business. scrapedText and
// reviewsText are optional context; the record alone is enough.
func (g *Generator) Generate(ctx context.Context, record model.BusinessRecord, scrapedText, reviewsText string) (string, error) {
	prompt := buildUserPrompt(record, scrapedText, reviewsText)

	resp, err := resilience.DoVal(ctx, g.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return g.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:           g.model,
			MaxTokens:       g.maxTokens,
			System:          systemPrompt,
			Messages:        []anthropic.Message{{Role: "user", Content: prompt}},
			EnableWebSearch: true,
			MaxWebSearches:  maxWebSearches,
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "site: generate website")
	}
	resp.Usage.LogUsage(g.model, "build_website")

	text, err := resp.PrimaryText()
	if err != nil {
		return "", eris.Wrap(err, "site: generate website")
	}

	html, err := ExtractHTML(text)
	if err != nil {
		return "", err
	}

	zap.L().Info("site: generated website",
		zap.String("business", record.Name()),
		zap.Int("chars", len(html)),
	)
	return html, nil
}

// ExtractHTML strips surrounding markdown fences and validates that the
// result is a document. Downstream consumers deploy this verbatim, so a
// response that does not look like HTML is a contract violation, not
// something to retry.
func ExtractHTML(text string) (string, error) {
	text = openFence.ReplaceAllString(text, "")
	text = closeFence.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	lower := strings.ToLower(text)
	if !strings.HasPrefix(lower, "<!doctype") && !strings.HasPrefix(lower, "<html") {
		head := text
		if len(head) > 200 {
			head = head[:200]
		}
		return "", eris.Errorf("site: output doesn't look like HTML, first 200 chars: %s", head)
	}
	return text, nil
}

func buildUserPrompt(record model.BusinessRecord, scrapedText, reviewsText string) string {
	name := record.Name()
	if name == "" {
		name = "dit bedrijf"
	}

	scraped := scrapedText
	if len(scraped) > scrapedPromptCap {
		scraped = scraped[:scrapedPromptCap]
	}
	if scraped == "" {
		scraped = "Niet beschikbaar"
	}

	var b strings.Builder
	b.WriteString("Build a premium Dutch preview website for this local business.\n\n")
	b.WriteString("BUSINESS DATA:\n")
	b.WriteString(record.JSON())
	b.WriteString("\n\nCURRENT WEBSITE CONTENT (scraped from their existing site):\n")
	b.WriteString(scraped)
	if reviewsText != "" {
		b.WriteString("\n\n")
		b.WriteString(reviewsText)
	}
	b.WriteString("\n\nINSTRUCTIONS:\n")
	fmt.Fprintf(&b, "1. First use web_search to research %q — look for any additional context about the business, but do NOT invent testimonials, statistics, or review quotes from search results.\n", strings.TrimSpace(name+" "+record.City()))
	b.WriteString("2. Then generate the complete single-file HTML website following all rules in your system prompt.\n")
	b.WriteString("3. Before outputting, verify every fact on the page traces back to the BUSINESS DATA or SCRAPED CONTENT above. Remove anything you can't trace.\n\n")
	b.WriteString("Output the raw HTML only. Nothing else.")
	return b.String()
}
