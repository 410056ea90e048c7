package analysis

import (
	"fmt"
	"strings"

	"salespulse-wa/models"
)

// PromptName is the settings key under which tenant prompt overrides live.
const PromptName = "analysis_prompt"

// DefaultSystemPrompt is used when no stored prompt override exists. The
// response contract keys (score_qualidade etc.) are fixed: stored prompt
// overrides must keep them for the parser to work.
const DefaultSystemPrompt = `You are an analyst specialized in B2B/B2C sales over WhatsApp.
Your task is to evaluate the quality of the SALESPERSON's service in a conversation with a LEAD.

Analyze the conversation and return ONLY a valid JSON object with these fields:

{
  "score_qualidade": <float 0.0-10.0>,
  "classificacao": "<string>",
  "erros": [{"erro": "<short name>", "detalhe": "<explanation>"}],
  "sentimento_lead": "<string>",
  "feedback_ia": "<string>"
}

## Evaluation criteria

### score_qualidade (0.0 to 10.0)
- 0-3: poor service (ignored the lead, no rapport, rude, no information)
- 4-5: weak service (generic answers, no need discovery)
- 6-7: reasonable service (answered questions but lacked proactivity)
- 8-9: good service (rapport, need discovery, next step defined)
- 10: excellent (all of the above plus urgency, perceived value, scheduled follow-up)

### classificacao (funnel stage)
- "cold": lead showed no interest or conversation is very early
- "mql": lead asked about the product/service, showed some interest
- "sql": lead showed buying intent, asked for price/proposal/meeting
- "customer": lead confirmed the purchase or closed the deal

### erros (list of salesperson mistakes, may be empty)
Common mistakes to check:
- "Slow response": took too long to reply
- "No introduction": did not introduce themselves or the company
- "No discovery": asked no questions to understand the lead's need
- "Ignored objection": lead raised an objection that went untreated
- "No next step": no next action defined (meeting, proposal, etc)
- "No urgency": created no sense of urgency or scarcity
- "Short answers": monosyllabic replies with no added value
- "No follow-up": conversation died with no recovery attempt

### sentimento_lead
- "positive": lead engaged, asking questions, showing interest
- "neutral": lead replying but without clear enthusiasm
- "negative": lead unhappy, complaining, or visibly uninterested

### feedback_ia
Write 2-4 sentences of direct, constructive feedback for the manager.
Highlight what the salesperson did well and what needs improvement.
Be specific, quoting parts of the conversation when possible.`

const analysisTemplate = `Analyze the following conversation between a salesperson and a lead:

---
%s
---

Reply ONLY with valid JSON in the format specified in the system prompt.`

// FormatTranscript renders the message history as a readable transcript for
// the LLM, one line per message.
func FormatTranscript(messages []models.Message) string {
	lines := make([]string, 0, len(messages))
	for _, msg := range messages {
		role := "LEAD"
		if msg.Sender == models.SenderSalesperson {
			role = "SALESPERSON"
		}
		lines = append(lines, fmt.Sprintf("[%s] %s: %s",
			msg.SentAt.Format("2006-01-02 15:04:05"), role, msg.Content))
	}
	return strings.Join(lines, "\n")
}

// UserPrompt builds the user message wrapping the transcript.
func UserPrompt(messages []models.Message) string {
	return fmt.Sprintf(analysisTemplate, FormatTranscript(messages))
}
