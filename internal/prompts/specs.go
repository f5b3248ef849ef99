package prompts

const analyzeSpec = `Respond with a JSON object matching this exact structure:

{
  "confidence": 0.0,
  "suggested_project": "<project or null>",
  "suggested_client": "<client or null>",
  "category": "<client|internal|admin|meeting>",
  "billable": false,
  "meeting_type": "<type or null>",
  "enhanced_description": "<rewritten description>",
  "tags": ["<tag1>", "<tag2>"],
  "reasoning": "<explanation>"
}

Field constraints:
- confidence: Number between 0.0 and 1.0 reflecting how certain the
  analysis is. High values require a clear project or client match and
  consistency with recent work records.
- suggested_project: A project name taken verbatim from the provided
  context, or null when no project matches the activity.
- suggested_client: A client name taken verbatim from the provided
  context, or null when no client matches the activity.
- category: One of client, internal, admin, or meeting. Internal and
  admin work is never billable.
- billable: Whether the work should be billed to a client. Requires a
  client match and a client-facing category.
- meeting_type: For meetings, one of kickoff, discovery, implementation,
  support, training, check-in, or escalation. Null for non-meetings.
- enhanced_description: The activity description rewritten as a concise,
  professional work-log entry. Preserve concrete facts; never invent
  details that are not present in the activity.
- tags: Up to five short lowercase keywords describing the work.
- reasoning: Brief explanation of how the project, client, category, and
  billability were determined, referencing the context that supports them.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Process exactly one activity per response
- Suggest only project and client names present in the provided context
- When uncertain, lower the confidence rather than guessing`

var specs = map[Stage]string{
	StageAnalyze: analyzeSpec,
}

// Spec returns the hardcoded specification for an analysis stage.
// Specifications define the expected output format and behavioral constraints.
// Returns ErrInvalidStage if the stage is not recognized.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
