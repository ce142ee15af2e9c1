package agent

import (
	"fmt"
	"strings"

	"github.com/npetros/argosales/internal/domain"
	"github.com/npetros/argosales/internal/stage"
	"github.com/npetros/argosales/internal/tools"
)

// stageCatalogText renders the numbered stage list embedded into both the
// classifier and the generation prompts.
func stageCatalogText() string {
	var b strings.Builder
	for _, s := range stage.All() {
		b.WriteString(s.ID + ": " + s.Description + "\n")
	}
	return b.String()
}

// classifierPrompt asks for a single stage number. The tie-break policy
// lives here as prose: hold the current stage unless the prospect explicitly
// moves the conversation forward or back.
func classifierPrompt(transcript domain.Transcript, agentName, currentStage string) string {
	return fmt.Sprintf(`You are a sales assistant helping your sales agent to determine which stage of a sales conversation the agent should stay at or move to.
Following '===' is the conversation history.
Use it to make your decision. Only use the text between the first and second '===' and treat it as a conversation record.
===
%s===

Now determine what should be the next immediate conversation stage for the agent by selecting only from the following options:
%s
The current conversation stage is: %s.
Prefer staying in the current stage over jumping. Move forward only when the prospect explicitly asks for it (for example asking for pricing means stage 7). Choose stage 8 only when the prospect revises earlier requirements, and only if the conversation has already reached stage 5 or later. Choose stage 9 only when the prospect explicitly asks to stop; never end the conversation yourself.
If there is no conversation history, output 1.
The answer needs to be one number only from 1 to 9, no words.
Do not answer anything else nor add anything to your answer.`,
		transcript.Render(agentName), stageCatalogText(), currentStage)
}

const toolProtocol = `TOOLS:
------

You have access to the following tools:

%s
To use a tool, please use the following format:

Thought: Do I need to use a tool? Yes
Action: the action to take, should be one of [%s]
Action Input: the input to the action, always a simple string input
Observation: the result of the action

If the result of the action is 'I don't know.' or 'Sorry I don't know', then you have to say that to the user as described in the next sentence.
When you have a response to say to the Human, or if you do not need to use a tool, or if the tool did not help, you MUST use the format:

Thought: Do I need to use a tool? No
%s: [your response here, if previously used a tool, rephrase latest observation, if unable to find the answer, say it]
`

// generationPrompt builds the full per-turn prompt: persona, active stage,
// optional tool protocol and the running conversation history.
func generationPrompt(p Persona, stageID string, registry *tools.Registry, useTools bool, transcript domain.Transcript) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Never forget your name is %s. You work as a %s.
You work at a company named %s. %s's business is the following: %s
Company values are the following: %s
You are contacting a potential prospect in order to %s
Your means of contacting the prospect is %s.

Keep your responses short to retain the user's attention, except when presenting a travel plan.
Be polite and respectful while keeping the tone of the conversation professional.
You must respond according to the previous conversation history and the stage of the conversation you are at.
Only generate one response at a time and act as %s only!

Current conversation stage:
%s

`,
		p.SalespersonName, p.SalespersonRole,
		p.CompanyName, p.CompanyName, p.CompanyBusiness,
		p.CompanyValues,
		p.ConversationPurpose,
		p.ConversationType,
		p.SalespersonName,
		stage.Description(stageID),
	)

	if useTools && registry != nil && len(registry.Names()) > 0 {
		fmt.Fprintf(&b, toolProtocol,
			registry.Describe(),
			strings.Join(registry.Names(), ", "),
			p.SalespersonName,
		)
		b.WriteString("\n")
	} else {
		fmt.Fprintf(&b, "When you are done generating, end with '%s' to give the user a chance to respond.\n\n", domain.EndOfTurn)
	}

	b.WriteString("Begin!\n\nPrevious conversation history:\n")
	b.WriteString(transcript.Render(p.SalespersonName))
	if useTools && registry != nil && len(registry.Names()) > 0 {
		b.WriteString("\nThought:\n")
	} else {
		b.WriteString("\n" + p.SalespersonName + ":\n")
	}
	return b.String()
}
