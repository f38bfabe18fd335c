package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"personal-assistant/internal/agent"
	"personal-assistant/internal/gateway"
	"personal-assistant/pkg/llmprovider"
)

// ErrEmptyQuery rejects a blank user utterance.
var ErrEmptyQuery = errors.New("orchestrator: query must not be empty")

// ErrReasoningFailed marks an LLM failure or an unparseable decision.
// It is terminal for the current turn only; the session stays usable.
var ErrReasoningFailed = errors.New("orchestrator: reasoning failed")

// ProcessQuery runs one reasoning loop: consult the LLM, dispatch tool
// calls through the gateway, feed results back, and repeat until a final
// answer or the iteration bound.
func (o *Orchestrator) ProcessQuery(ctx context.Context, sessionID, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", ErrEmptyQuery
	}

	sess := o.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	catalog := o.gw.Catalog()
	byName := make(map[string]agent.ToolDescriptor, len(catalog))
	for _, d := range catalog {
		byName[d.Name] = d
	}
	tools := agent.FunctionDefinitions(catalog)

	system := &llmprovider.Message{
		Role:  "system",
		Parts: []llmprovider.Part{{Text: systemPrompt + buildTimeContext(o.cfg.Timezone)}},
	}

	messages := append(append([]llmprovider.Message{}, sess.history...), llmprovider.Message{
		Role:  "user",
		Parts: []llmprovider.Part{{Text: query}},
	})

	for iteration := 1; iteration <= o.cfg.MaxToolIterations; iteration++ {
		o.l.Debugf(ctx, "session %s: reasoning iteration %d/%d", sessionID, iteration, o.cfg.MaxToolIterations)

		resp, err := o.llm.GenerateContent(ctx, &llmprovider.Request{
			SystemInstruction: system,
			Messages:          messages,
			Tools:             tools,
		})
		if err != nil {
			o.l.Errorf(ctx, "session %s: LLM call failed at iteration %d: %v", sessionID, iteration, err)
			return "", fmt.Errorf("%w: %v", ErrReasoningFailed, err)
		}

		fc, text := decision(resp)
		if fc == nil {
			if text == "" {
				return "", fmt.Errorf("%w: model returned an empty decision", ErrReasoningFailed)
			}
			o.commit(sess, messages, text)
			return text, nil
		}

		o.l.Infof(ctx, "session %s: calling tool %s", sessionID, fc.Name)
		result := o.executeTool(ctx, sessionID, byName, fc)
		messages = append(messages, assistantToolCall(fc), toolResult(fc.Name, result))
	}

	// Iteration bound hit: one forced synthesis pass with tools disabled
	// guarantees termination with a best-effort answer.
	o.l.Warnf(ctx, "session %s: tool iteration bound (%d) reached, forcing synthesis", sessionID, o.cfg.MaxToolIterations)
	messages = append(messages, llmprovider.Message{
		Role:  "user",
		Parts: []llmprovider.Part{{Text: synthesisPrompt}},
	})
	resp, err := o.llm.GenerateContent(ctx, &llmprovider.Request{
		SystemInstruction: system,
		Messages:          messages,
	})
	if err == nil {
		if _, text := decision(resp); text != "" {
			o.commit(sess, messages, text)
			return text, nil
		}
	} else {
		o.l.Errorf(ctx, "session %s: synthesis pass failed: %v", sessionID, err)
	}

	o.commit(sess, messages, msgSynthesisFallback)
	return msgSynthesisFallback, nil
}

// executeTool validates and dispatches one tool call. Every failure is
// folded into the response payload so the LLM can self-correct or explain;
// nothing here ends the turn.
func (o *Orchestrator) executeTool(ctx context.Context, sessionID string, byName map[string]agent.ToolDescriptor, fc *llmprovider.FunctionCall) map[string]interface{} {
	desc, known := byName[fc.Name]
	if !known {
		o.l.Warnf(ctx, "session %s: model requested unknown tool %q", sessionID, fc.Name)
		return map[string]interface{}{
			"error": fmt.Sprintf("tool %q does not exist; use one of the listed tools", fc.Name),
			"kind":  string(gateway.KindValidation),
		}
	}

	// Schema violations never reach the gateway.
	if err := agent.ValidateArgs(desc, fc.Args); err != nil {
		o.l.Warnf(ctx, "session %s: rejected arguments for %s: %v", sessionID, fc.Name, err)
		return map[string]interface{}{
			"error": err.Error(),
			"kind":  string(gateway.KindValidation),
		}
	}

	inv, err := o.gw.Invoke(ctx, sessionID, fc.Name, fc.Args)
	if err != nil {
		terr := gateway.AsToolError(err)
		o.l.Warnf(ctx, "session %s: tool %s failed (%s): %v", sessionID, fc.Name, terr.Kind, err)
		payload := map[string]interface{}{
			"error": terr.Message,
			"kind":  string(terr.Kind),
		}
		if terr.Kind == gateway.KindAuthorizationRequired {
			payload["instruction"] = "Tell the user to complete the authorization flow before using this tool again."
		}
		return payload
	}

	return map[string]interface{}{"result": inv.Result}
}

// commit appends the final assistant answer and stores the bounded
// history back onto the session.
func (o *Orchestrator) commit(sess *Session, messages []llmprovider.Message, final string) {
	history := append(messages, llmprovider.Message{
		Role:  "assistant",
		Parts: []llmprovider.Part{{Text: final}},
	})
	if len(history) > maxSessionHistory {
		history = history[len(history)-maxSessionHistory:]
	}
	sess.history = history
	sess.lastActive = time.Now()
}

// decision reads the model's choice: a tool call, or final answer text.
func decision(resp *llmprovider.Response) (*llmprovider.FunctionCall, string) {
	var text string
	for _, part := range resp.Content.Parts {
		if part.FunctionCall != nil {
			return part.FunctionCall, ""
		}
		if part.Text != "" {
			text = part.Text
		}
	}
	return nil, text
}

func assistantToolCall(fc *llmprovider.FunctionCall) llmprovider.Message {
	return llmprovider.Message{
		Role:  "assistant",
		Parts: []llmprovider.Part{{FunctionCall: fc}},
	}
}

func toolResult(name string, payload map[string]interface{}) llmprovider.Message {
	return llmprovider.Message{
		Role: "tool",
		Parts: []llmprovider.Part{{
			FunctionResponse: &llmprovider.FunctionResponse{Name: name, Response: payload},
		}},
	}
}
