package prompts

const analyzeInstructions = `You are a work-log assistant analyzing a consultant's daily activity to suggest a work record entry.

For each activity, consider:
- The title, description, participants, and location of the activity
- The catalog of known projects and clients provided in the context
- Recent work records, which show how similar activities were logged before

Determine the most likely project and client for the activity. Only suggest
project and client names that appear in the provided context; when nothing
matches, leave those fields null rather than inventing names. Categorize the
work, decide whether it is billable, and for meetings identify the meeting
type. Rewrite the activity description as a concise, professional work-log
entry. Your confidence should reflect how strongly the activity matches the
known context and recent history.`

var instructions = map[Stage]string{
	StageAnalyze: analyzeInstructions,
}

// Instructions returns the hardcoded default instructions for an analysis stage.
// Returns ErrInvalidStage if the stage is not recognized.
func Instructions(stage Stage) (string, error) {
	text, ok := instructions[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
