package outreach

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/internal/model"
	"github.com/aiboostly/leadpilot/internal/resilience"
	"github.com/aiboostly/leadpilot/internal/site"
	"github.com/aiboostly/leadpilot/pkg/anthropic"
)

const (
	scrapedPromptCap = 3000
	reviewsPromptCap = 2000
)

const composerSystemPrompt = `Je bent Dan, een jonge AI-specialist die net zijn eigen bureau AiBoostly is gestart.
Je schrijft korte, eerlijke cold emails aan lokale Nederlandse ondernemers.

═══ WIE JE BENT ═══
- Jong, technisch, nuchter
- Je hebt NET een preview-website gebouwd voor dit bedrijf — ongevraagd, als demo
- Je bent geen verkoper. Je bent een vakman die zijn werk laat zien
- Je schrijft zoals je praat: direct, zonder poespas

═══ EMAILSTRUCTUUR (STRIKT) ═══
Regel 1:     Korte persoonlijke opening (gebruik hun naam als beschikbaar)
Regels 2-3:  Wat je voor ze gebouwd hebt + de link
Regels 4-5:  Eén concreet voordeel gebaseerd op HUN bedrijfsdata
Regel 6:     Zachte CTA ("neem gerust een kijkje", "benieuwd wat je ervan vindt")
Afsluiting:  "Groet, Dan" of "Groeten, Dan"

Maximaal 6-8 regels totaal. Elk woord moet er toe doen.

═══ TOON ═══
- Schrijf alsof je een bekende een appje stuurt — maar dan net iets netter
- Wees specifiek: noem hun bedrijfsnaam, hun stad, hun branche
- Als ze goede reviews hebben: noem dat als kracht, niet als verkooptruc
- Eén link, naar de preview-site. Geen andere links
- Geen "Beste heer/mevrouw" — gewoon hun naam, of "Hoi" als je geen naam hebt

═══ VERBODEN ═══
- Woorden: "innovatief", "uniek", "beste", "exclusief", "cutting-edge", "baanbrekend", "toonaangevend"
- Lange alinea's (max 2 zinnen per blok)
- Meer dan één link
- Nepurgentie ("alleen vandaag!", "beperkt aanbod!")
- Specifieke beloftes met cijfers ("300% meer klanten")
- Opsommingen met bullets
- Formele aanhef ("Geachte", "Beste heer/mevrouw")
- Engelse woorden (behalve technische termen die in het Nederlands gangbaar zijn)

═══ HET GEHEIM ═══
De preview-site IS je pitch. Je hoeft niet te verkopen.
Laat het werk spreken. De email is alleen de uitnodiging om te kijken.`

// Composer drafts a short Dutch cold outreach email for a business.
type Composer struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	retry     resilience.RetryConfig
}

// ComposerOption customizes the composer.
type ComposerOption func(*Composer)

// WithComposerRetryConfig overrides the overload retry policy.
func WithComposerRetryConfig(cfg resilience.RetryConfig) ComposerOption {
	return func(c *Composer) {
		c.retry = cfg
	}
}

// NewComposer creates a Composer.
func NewComposer(client anthropic.Client, modelID string, maxTokens int64, opts ...ComposerOption) *Composer {
	c := &Composer{
		client:    client,
		model:     modelID,
		maxTokens: maxTokens,
		retry:     site.OverloadRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose returns the drafted email body. No web search here: everything the
// email needs already came through the pipeline.
func (c *Composer) Compose(ctx context.Context, record model.BusinessRecord, liveURL, scrapedText, reviewsText string) (string, error) {
	prompt := buildComposerPrompt(record, liveURL, scrapedText, reviewsText)

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     c.model,
			MaxTokens: c.maxTokens,
			System:    composerSystemPrompt,
			Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
		})
	})
	if err != nil {
		return "", eris.Wrap(err, "outreach: draft email")
	}
	resp.Usage.LogUsage(c.model, "draft_email")

	text, err := resp.PrimaryText()
	if err != nil {
		return "", eris.Wrap(err, "outreach: draft email")
	}

	body := strings.TrimSpace(text)
	zap.L().Info("outreach: drafted email",
		zap.String("business", record.Name()),
		zap.Int("chars", len(body)),
	)
	return body, nil
}

func buildComposerPrompt(record model.BusinessRecord, liveURL, scrapedText, reviewsText string) string {
	orDefault := func(v, def string) string {
		if v == "" {
			return def
		}
		return v
	}

	scraped := scrapedText
	if len(scraped) > scrapedPromptCap {
		scraped = scraped[:scrapedPromptCap]
	}
	reviews := reviewsText
	if len(reviews) > reviewsPromptCap {
		reviews = reviews[:reviewsPromptCap]
	}

	var b strings.Builder
	b.WriteString("Schrijf een cold email voor dit bedrijf.\n\n")
	b.WriteString("BEDRIJFSGEGEVENS:\n")
	fmt.Fprintf(&b, "Naam: %s\n", orDefault(record.Name(), "dit bedrijf"))
	fmt.Fprintf(&b, "Contactpersoon: %s\n", orDefault(record.ContactName(), "onbekend"))
	fmt.Fprintf(&b, "Stad: %s\n", record.City())
	fmt.Fprintf(&b, "Branche: %s\n", record.Category())
	fmt.Fprintf(&b, "Services: %s\n", record.Services())
	fmt.Fprintf(&b, "Rating: %s (%s reviews)\n", record.Rating(), record.ReviewCount())
	fmt.Fprintf(&b, "Telefoon: %s\n", record.Phone())
	fmt.Fprintf(&b, "\nPREVIEW WEBSITE:\n%s\n", liveURL)
	fmt.Fprintf(&b, "\nGESCRAPETE WEBSITE-INHOUD:\n%s\n", orDefault(scraped, "Niet beschikbaar"))
	fmt.Fprintf(&b, "\nGOOGLE REVIEWS:\n%s\n", orDefault(reviews, "Geen reviews beschikbaar"))
	b.WriteString("\nSchrijf NUR de email. Geen uitleg, geen opties, geen markdown.")
	return b.String()
}
