// Package stage defines the fixed catalog of sales-conversation stages.
//
// The catalog is process-wide, read-only data. Stage IDs are stable strings;
// reordering or renumbering is a breaking change for any persisted session
// that references a stage by ID.
package stage

// Stage IDs. The dialogue always starts in Introduction and can only end in
// EndConversation, which is terminal.
const (
	Introduction      = "1"
	ValueProposition  = "2"
	NeedsAnalysis     = "3"
	PlanPresentation  = "4"
	ObjectionHandling = "5"
	Qualification     = "6"
	Close             = "7"
	StepBack          = "8"
	EndConversation   = "9"
)

// Stage couples a stable ID with the natural-language description used to
// condition generation and stage classification.
type Stage struct {
	ID          string
	Name        string
	Description string
}

var catalog = []Stage{
	{Introduction, "Introduction",
		"Introduction: Start the conversation by analysing in which step of the below you should go based on the prospect first message. If the prospect asks you to introduce yourself then introduce yourself and your company. Be polite and respectful while keeping the tone of the conversation professional. Your greeting should be welcoming. If the client asks you directly for assistance go to the step below you believe is the ideal."},
	{ValueProposition, "Value proposition",
		"Value proposition: Only if the prospect client asks you then briefly explain how your service can benefit the prospect. Focus on the unique selling points and value proposition of your product/service that sets it apart from competitors. Else bypass this step."},
	{NeedsAnalysis, "Needs analysis",
		"Needs analysis: Ask open-ended questions to uncover the prospect's needs, requirements and desires. Listen carefully to their responses and take notes."},
	{PlanPresentation, "Travel plan presentation",
		"Travel plan presentation: Based on the prospect's needs, present your ideal trip solution that can address their needs."},
	{ObjectionHandling, "Objection handling",
		"Objection handling: Address any objections that the prospect may have regarding your proposed trip plan. Be prepared to provide evidence or testimonials to support your suggested plan."},
	{Qualification, "Qualification",
		"Qualification: Ensure that they have the authority to make purchasing decisions."},
	{Close, "Close",
		"Close: Ask for the sale by proposing a next step where you will provide a pricing list for all the items (hotels, van, airplane, ferries, taxi and extra services) included in the trip planned. Ensure to summarize what has been discussed."},
	{StepBack, "Step back",
		"Step Back to previous steps: Do this only if the customer changed their mind during the discussion so you probably need to start again from 'Needs analysis'."},
	{EndConversation, "End conversation",
		"End conversation: Only the client can tell you to end the conversation."},
}

var byID = func() map[string]Stage {
	m := make(map[string]Stage, len(catalog))
	for _, s := range catalog {
		m[s.ID] = s
	}
	return m
}()

// All returns the catalog in its fixed order. Callers must not modify the
// returned slice.
func All() []Stage {
	return catalog
}

// Description returns the description for the given stage ID. Unknown IDs
// return the Introduction description so a corrupted stage never produces an
// empty prompt section.
func Description(id string) string {
	if s, ok := byID[id]; ok {
		return s.Description
	}
	return byID[Introduction].Description
}

// Valid reports whether id names a catalog stage.
func Valid(id string) bool {
	_, ok := byID[id]
	return ok
}

// IsTerminal reports whether the stage has no outgoing transitions.
func IsTerminal(id string) bool {
	return id == EndConversation
}

// CanStepBack reports whether StepBack is reachable from the given stage.
// Stepping back only makes sense once a plan has met resistance.
func CanStepBack(from string) bool {
	return from == ObjectionHandling || from == Qualification ||
		from == Close || from == StepBack
}

// Default returns the stage every new session starts in.
func Default() string {
	return Introduction
}
