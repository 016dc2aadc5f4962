// Package synthesis turns a natural-language prompt into a runnable Manim
// script via the Gemini API: one generation call, a bounded validate/repair
// loop, and an optional voiceover transformation pass. The adapter never
// touches job state; it only returns results.
package synthesis

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aiedgeeliza/videogen/internal/domain"
)

// Options configures the generator.
type Options struct {
	APIKey            string
	BaseURL           string
	Model             string
	Timeout           time.Duration
	MaxRepairAttempts int
	EnableVoiceover   bool
	Voice             string
	HTTPClient        *http.Client
}

// Generator is the script synthesis adapter.
type Generator struct {
	logger            *slog.Logger
	client            *http.Client
	apiKey            string
	baseURL           string
	model             string
	timeout           time.Duration
	maxRepairAttempts int
	enableVoiceover   bool
	voice             string
}

// New creates a generator from options, filling in defaults.
func New(opts Options, logger *slog.Logger) *Generator {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	voice := opts.Voice
	if voice == "" {
		voice = "en-US-JennyNeural"
	}
	attempts := opts.MaxRepairAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Generator{
		logger:            logger,
		client:            client,
		apiKey:            opts.APIKey,
		baseURL:           baseURL,
		model:             opts.Model,
		timeout:           opts.Timeout,
		maxRepairAttempts: attempts,
		enableVoiceover:   opts.EnableVoiceover,
		voice:             voice,
	}
}

// GenerateScript produces an initial candidate script for the prompt. The
// raw model output is cleaned (markdown fences stripped, known Manim
// pitfalls rewritten) but not yet validated.
func (g *Generator) GenerateScript(ctx context.Context, prompt string, durationLimit int) (string, error) {
	g.logger.Debug("Generating initial script",
		slog.Int("prompt_len", len(prompt)),
		slog.Int("duration_limit", durationLimit),
	)

	raw, err := g.generateContent(ctx, buildGenerationPrompt(prompt, durationLimit))
	if err != nil {
		return "", &domain.SynthesisError{Reason: "generation call failed", Err: err}
	}

	script := cleanScript(raw)
	if strings.TrimSpace(script) == "" {
		return "", &domain.SynthesisError{Reason: "model returned an empty script"}
	}

	g.logger.Info("Initial script generated",
		slog.Int("script_len", len(script)),
	)
	return script, nil
}

// RefineScript validates the candidate and runs the bounded repair loop:
// while the script fails structural validation, a corrective model call is
// issued carrying the failure reason, up to the configured attempt budget.
// Exhausting the budget reports the last validation failure. A valid script
// then goes through the voiceover pass when enabled.
func (g *Generator) RefineScript(ctx context.Context, script string) (string, error) {
	reason, ok := validateStructure(script)

	attempts := 0
	for !ok {
		if attempts >= g.maxRepairAttempts {
			g.logger.Warn("Script repair budget exhausted",
				slog.Int("attempts", attempts),
				slog.String("reason", reason),
			)
			return "", &domain.SynthesisError{Reason: "repair budget exhausted: " + reason}
		}
		attempts++

		g.logger.Info("Requesting script repair",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", g.maxRepairAttempts),
			slog.String("reason", reason),
		)

		raw, err := g.generateContent(ctx, buildRepairPrompt(script, reason))
		if err != nil {
			return "", &domain.SynthesisError{Reason: "repair call failed", Err: err}
		}
		script = cleanScript(raw)
		reason, ok = validateStructure(script)
	}

	if g.enableVoiceover {
		script = g.addVoiceover(ctx, script)
	}

	g.logger.Info("Script validated",
		slog.Int("repair_attempts", attempts),
		slog.Int("script_len", len(script)),
	)
	return script, nil
}

// addVoiceover asks the model to rewrite the scene as a VoiceoverScene. A
// failed or incomplete transformation falls back to a deterministic rewrite
// so the validated script is never lost.
func (g *Generator) addVoiceover(ctx context.Context, script string) string {
	raw, err := g.generateContent(ctx, buildVoiceoverPrompt(script, g.voice))
	if err != nil {
		g.logger.Warn("Voiceover call failed, applying basic voiceover structure",
			slog.String("error", err.Error()),
		)
		return addBasicVoiceover(script, g.voice)
	}

	transformed := cleanScript(raw)
	if !strings.Contains(transformed, "VoiceoverScene") {
		g.logger.Warn("Voiceover transformation incomplete, applying basic voiceover structure")
		return addBasicVoiceover(script, g.voice)
	}
	if _, ok := validateStructure(transformed); !ok {
		g.logger.Warn("Voiceover transformation broke script structure, keeping validated script")
		return addBasicVoiceover(script, g.voice)
	}

	return transformed
}
