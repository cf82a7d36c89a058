package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tjmaxx/jevehome-agent/events"
	"github.com/tjmaxx/jevehome-agent/llm"
	"github.com/tjmaxx/jevehome-agent/logger"
)

// Run processes one user message through the full loop: step engine,
// reflexion retries, grounding fallback, and result aggregation. It returns
// an error only for model-transport failures; every tool-level problem is
// absorbed into the conversation.
func (a *Agent) Run(ctx context.Context, req Request) (*RunResult, error) {
	runID := uuid.NewString()
	started := time.Now()
	log := a.log.With(logger.String("run_id", runID))

	a.emitter.Emit(events.New(runID, events.RunStart, 0, nil))

	system := a.buildSystem(ctx, req)
	base := a.buildMessages(ctx, req)
	tools := a.toolDecls(req.EnabledTools)

	engine := &stepEngine{
		model:          a.model,
		dispatcher:     a.dispatcher,
		emitter:        a.emitter,
		registry:       a.registry,
		log:            log,
		maxSteps:       a.maxSteps,
		temperature:    a.temperature,
		runID:          runID,
		wantStructured: req.WantStructured,
	}

	attempt, err := engine.run(ctx, system, base, tools)
	if err != nil {
		a.emitter.Emit(events.New(runID, events.RunError, 0, &events.RunErrorData{Error: err.Error()}))
		return nil, err
	}

	totalSteps := attempt.steps
	totalSuccessful := attempt.successfulCalls
	records := attempt.records
	reply := attempt.reply

	// Reflexion: bounded self-correction with a fresh step budget per retry.
	retries := 0
	for retries < a.maxRetries && shouldRetry(attempt) {
		retries++
		a.emitter.Emit(events.New(runID, events.Retry, totalSteps, &events.RetryData{
			Attempt: retries,
			Max:     a.maxRetries,
			Reason:  "no tool succeeded and the reply looked weak",
		}))
		log.Info("reflexion retry",
			logger.Int("attempt", retries),
			logger.Int("max_retries", a.maxRetries))

		retryMsgs := make([]llm.Message, 0, len(base)+1)
		retryMsgs = append(retryMsgs, base...)
		retryMsgs = append(retryMsgs, llm.Message{Role: llm.RoleUser, Text: correctiveInstruction})

		attempt, err = engine.run(ctx, system, retryMsgs, tools)
		if err != nil {
			a.emitter.Emit(events.New(runID, events.RunError, totalSteps, &events.RunErrorData{Error: err.Error()}))
			return nil, err
		}
		totalSteps += attempt.steps
		totalSuccessful += attempt.successfulCalls
		records = append(records, attempt.records...)
		reply = attempt.reply
	}

	// Grounding fallback: only when no tool step ever ran and web search is
	// not disabled. A grounding failure keeps the prior reply.
	var citations []llm.Citation
	grounded := false
	if totalSteps == 0 && webSearchEnabled(req.EnabledTools) {
		g, gerr := a.model.GenerateGrounded(ctx, llm.GroundedRequest{
			System:   groundingInstruction,
			Messages: base,
		})
		if gerr != nil {
			log.Warn("grounding fallback failed, keeping prior reply", logger.Err(gerr))
		} else {
			grounded = true
			if strings.TrimSpace(g.Text) != "" {
				reply = g.Text
			}
			citations = g.Citations
			a.emitter.Emit(events.New(runID, events.WebSearch, totalSteps, &events.WebSearchData{
				CitationCount: len(g.Citations),
			}))
		}
	}

	citations = append(mergeCitations(records), citations...)
	visual := mergePayloads(records)
	artifact := selectArtifact(records)
	if artifact != nil {
		a.emitter.Emit(events.New(runID, events.ArtifactReady, totalSteps, &events.ArtifactData{
			Kind:  artifact.Kind,
			Title: artifact.Title,
		}))
	}

	// Last resort for an empty reply after successful tool work: one
	// summarization call before giving up with an empty string.
	if strings.TrimSpace(reply) == "" && totalSuccessful > 0 {
		if summary, serr := a.summarizeFindings(ctx, system, base, records); serr != nil {
			log.Warn("summary fallback failed", logger.Err(serr))
		} else {
			reply = summary
		}
	}

	a.appendHistory(ctx, req, reply, visual)

	a.emitter.Emit(events.New(runID, events.RunEnd, totalSteps, &events.RunEndData{
		Steps:           totalSteps,
		SuccessfulCalls: totalSuccessful,
		Retries:         retries,
		Grounded:        grounded,
		Duration:        time.Since(started),
	}))
	log.Info("run complete",
		logger.Int("steps", totalSteps),
		logger.Int("successful_calls", totalSuccessful),
		logger.Int("retries", retries),
		logger.Bool("grounded", grounded),
		logger.Duration("duration", time.Since(started)))

	return &RunResult{
		Reply:     reply,
		Visual:    visual,
		Citations: citations,
		Artifact:  artifact,
	}, nil
}

// summarizeFindings asks the model to turn successful tool results into a
// short answer when it produced none itself.
func (a *Agent) summarizeFindings(ctx context.Context, system string, base []llm.Message, records []StepRecord) (string, error) {
	var b strings.Builder
	b.WriteString("Summarize what you just found for the user. Tool results:\n")
	for _, rec := range records {
		if !rec.Result.OK() {
			continue
		}
		msg := rec.Result.Message
		if len(msg) > 500 {
			msg = msg[:500]
		}
		fmt.Fprintf(&b, "- %s: %s\n", rec.Label, msg)
	}

	messages := make([]llm.Message, 0, len(base)+1)
	messages = append(messages, base...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Text: b.String()})

	resp, err := a.model.GenerateContent(ctx, llm.ChatRequest{
		System:      system,
		Messages:    messages,
		Temperature: a.temperature,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

// appendHistory writes the user and assistant turns back through the history
// provider. Failures are logged and ignored; persistence is a collaborator
// concern.
func (a *Agent) appendHistory(ctx context.Context, req Request, reply string, visual *VisualPayload) {
	if a.history == nil || req.ConversationID == "" {
		return
	}
	if err := a.history.Append(ctx, req.ConversationID, Turn{Role: RoleUser, Text: req.Message}); err != nil {
		a.log.Warn("failed to store user turn", logger.Err(err))
		return
	}
	turn := Turn{Role: RoleAssistant, Text: reply, Visual: visual}
	if err := a.history.Append(ctx, req.ConversationID, turn); err != nil {
		a.log.Warn("failed to store assistant turn", logger.Err(err))
	}
}
