package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/raghavshulka/maps-llm-based-scrapper/config"
	"github.com/raghavshulka/maps-llm-based-scrapper/extract"
	"github.com/raghavshulka/maps-llm-based-scrapper/harvest"
	"github.com/raghavshulka/maps-llm-based-scrapper/models"
	"github.com/raghavshulka/maps-llm-based-scrapper/parser"
	"github.com/raghavshulka/maps-llm-based-scrapper/remote"
)

// websiteFetcher is the content-retrieval collaborator surface.
type websiteFetcher interface {
	FetchEmails(ctx context.Context, websiteURL, selfEmail string, extraLinks []string) ([]string, error)
}

// completer is the language-model collaborator surface.
type completer interface {
	Complete(ctx context.Context, system, user string, opts remote.Options) (string, error)
}

// Outcome is a terminal orchestrator result: ordered emails, the first being
// primary, tagged with how they were obtained. Empty Emails means the
// listing explicitly yielded nothing.
type Outcome struct {
	Emails []string
	Source models.Provenance
}

const analysisSystemPrompt = "You are a helpful assistant specialized in finding business contact information. Always respond with valid JSON."

const generationSystemPrompt = "You are an expert at generating likely business email addresses based on business information. Respond only with the most likely email address in a valid email format, nothing else."

// Orchestrator walks a listing through the discovery states in order,
// stopping at the first one that produces accepted emails: harvest the
// listing view, infer from the website domain, fetch the website through a
// relay, ask the model to analyse the website, ask the model to generate an
// address. Failures inside a state are logged and mean the state produced
// nothing.
type Orchestrator struct {
	cfg       *config.Config
	harvester *harvest.Harvester
	inferrer  *extract.Inferrer
	validator *extract.Validator
	fetcher   websiteFetcher
	llm       completer
	metrics   *Metrics
	log       *slog.Logger
}

// NewOrchestrator wires the discovery states together. fetcher and llm may
// be nil, which disables their states.
func NewOrchestrator(cfg *config.Config, harvester *harvest.Harvester, validator *extract.Validator, fetcher websiteFetcher, llm completer, metrics *Metrics) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		harvester: harvester,
		inferrer:  extract.NewInferrer(validator),
		validator: validator,
		fetcher:   fetcher,
		llm:       llm,
		metrics:   metrics,
		log:       slog.Default(),
	}
}

// FindEmails resolves emails for the listing described by record, reading
// the live view through src. Of the returned outcome, an empty email list is
// a definitive "none found", not an error; errors are reserved for the view
// itself becoming unreadable.
func (o *Orchestrator) FindEmails(ctx context.Context, src harvest.PageSource, expander harvest.Expander, record *models.ListingRecord, selfEmail string) (Outcome, error) {
	// State 1: harvest the listing view.
	result, err := o.harvester.HarvestWithRetries(ctx, src, expander, selfEmail)
	if err != nil {
		return Outcome{}, fmt.Errorf("harvesting listing %q: %w", record.Name, err)
	}
	if len(result.Emails) > 0 {
		return Outcome{Emails: result.Emails, Source: models.ProvenanceDirect}, nil
	}

	domain := parser.ExtractDomain(record.Website)

	// State 2: infer from the website domain.
	if domain != "" {
		if guesses := o.inferrer.Infer(domain, record.Name); len(guesses) > 0 {
			o.log.Debug("using inferred emails",
				slog.String("listing", record.Name), slog.String("domain", domain))
			return Outcome{Emails: guesses, Source: models.ProvenanceInferred}, nil
		}
	}

	// State 3: fetch the website through a relay.
	if o.fetcher != nil && record.Website != "" {
		o.metrics.IncRemoteAttempt("relay")
		emails, err := o.fetcher.FetchEmails(ctx, record.Website, selfEmail, result.ContactLinks)
		if err != nil {
			o.noteStateFailure("website fetch", record.Name, err)
		} else if len(emails) > 0 {
			return Outcome{
				Emails: extract.Rank(emails, record.Name),
				Source: models.ProvenanceWebsite,
			}, nil
		}
	}

	// State 4: model analysis of the website.
	if o.llmReady() && record.Website != "" {
		if emails := o.analyzeWebsite(ctx, record, selfEmail); len(emails) > 0 {
			return Outcome{Emails: emails, Source: models.ProvenanceAI}, nil
		}
	}

	// State 5: model generation, with a deterministic tail. Only runs when
	// the operator has remote fallback on; a missing credential still falls
	// through to the tail, a disabled flag means no email at all.
	if o.cfg.RemoteFallback {
		if email, source := o.generateEmail(ctx, record, selfEmail); email != "" {
			return Outcome{Emails: []string{email}, Source: source}, nil
		}
	}

	return Outcome{}, nil
}

// llmReady reports whether model states may issue network calls. A missing
// or too-short key short-circuits them entirely.
func (o *Orchestrator) llmReady() bool {
	return o.llm != nil && o.cfg.RemoteFallback && o.cfg.APIKeyConfigured()
}

// analyzeWebsite asks the model which addresses the business's website
// likely carries, then validates whatever comes back.
func (o *Orchestrator) analyzeWebsite(ctx context.Context, record *models.ListingRecord, selfEmail string) []string {
	name := record.Name
	if name == "" {
		name = "Unknown Business"
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Analyze the website %s for the business %q and determine the email addresses it most likely publishes.\n\n", record.Website, name)
	fmt.Fprintf(&prompt, "Business details:\n- Type: %s\n- Location: %s\n", orUnknown(record.BusinessType), orUnknown(record.Location))
	if record.AdditionalInfo != "" {
		fmt.Fprintf(&prompt, "- Additional information: %s\n", record.AdditionalInfo)
	}
	prompt.WriteString(`
Consider common business email patterns (info@, contact@, sales@, support@), domain emails matching the business name, and industry-standard contact methods.

Return the results in this JSON format:
{
    "emails": ["email1@example.com", "email2@example.com"],
    "confidence": "high|medium|low",
    "reasoning": "Brief explanation of why these emails are likely"
}

If no emails can be reasonably inferred, return an empty emails array.`)

	o.metrics.IncRemoteAttempt("llm")
	content, err := o.llm.Complete(ctx, analysisSystemPrompt, prompt.String(), remote.Options{
		Temperature: 0.3,
		MaxTokens:   300,
		TopP:        0.9,
	})
	if err != nil {
		o.noteStateFailure("website analysis", record.Name, err)
		return nil
	}

	analysis := remote.DecodeEmailAnalysis(content)
	return o.validator.Filter(analysis.Emails, selfEmail)
}

// generateEmail asks the model for a single most-likely address. When the
// model is unavailable or answers with something unusable, the deterministic
// guess info@<sanitized-name>.com takes over, tagged as an inference.
func (o *Orchestrator) generateEmail(ctx context.Context, record *models.ListingRecord, selfEmail string) (string, models.Provenance) {
	if o.llmReady() {
		prompt := o.cfg.RenderPrompt(record.Name, record.BusinessType, record.Location)
		o.metrics.IncRemoteAttempt("llm")
		content, err := o.llm.Complete(ctx, generationSystemPrompt, prompt, remote.Options{
			Temperature: 0.3,
			MaxTokens:   50,
		})
		if err != nil {
			o.noteStateFailure("email generation", record.Name, err)
		} else {
			email := strings.ToLower(strings.TrimSpace(content))
			if extract.IsCanonical(email) && o.validator.Validate(email, selfEmail) {
				return email, models.ProvenanceAI
			}
			o.log.Debug("model answer was not a usable address",
				slog.String("listing", record.Name), slog.String("answer", content))
		}
	}

	clean := extract.SanitizeName(record.Name, 30)
	if clean == "" {
		return "", ""
	}
	fallback := "info@" + clean + ".com"
	if !o.validator.Validate(fallback, selfEmail) {
		return "", ""
	}
	return fallback, models.ProvenanceInferred
}

func (o *Orchestrator) noteStateFailure(state, listing string, err error) {
	classified := classifyError(err)
	o.metrics.IncError(errorTypeLabel(classified))
	o.log.Warn("discovery state failed, moving on",
		slog.String("state", state),
		slog.String("listing", listing),
		slog.Any("error", classified),
	)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}
