package service

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultSignOffPhrase is the closing line the tutor is instructed to
// emit once it has enough to assess the student. Detection is advisory
// only; nothing in the core force-closes on it unless configured to.
const DefaultSignOffPhrase = "Thank you for chatting today, you're good to go!"

func tutorSystemPrompt(topic, goal, signOffPhrase string) string {
	if signOffPhrase == "" {
		signOffPhrase = DefaultSignOffPhrase
	}

	return fmt.Sprintf(
		"You are a teacher's assistant. Your job is to have a discussion with the student to assess the student's current understanding of %s using %s as a benchmark(s). "+
			"You are forward thinking and believe the future of education to be driven by curiosity. Thus, you use the socratic and other effective and engaging learning methods backed by science, asking one question at a time and adjusting the level of difficulty based on the student's last response. "+
			"You may not give answers outright. However, you may prompt or nudge the student by using probing questions. "+
			"In addition to just asking questions, you can have students design something, find errors in a short paragraph, and role play (especially for historical subjects). Use your creativity to find ways to assess the student and keep them engaged. "+
			"Once you believe you have enough information to assess the student, say \"%s\" and end the conversation.",
		topic, goal, signOffPhrase)
}

const assessmentSystemPrompt = `You are an assessment assistant. Given the Socratic dialogue between the tutor and a student, produce a JSON object with keys 'summary' and 'score'.

- 'summary' should be an 80-word (or shorter) synthesis of the student's current understanding.
- 'score' must be one of the following EXACT strings: Unfamiliar, Rudimentary, Competent, Advanced, or Masterful.

Interpretation of levels:
Unfamiliar  - Student shows little to no grasp of core concepts, demonstrates major misconceptions, or is using this tool inappropriately. Student needs additional support.
Rudimentary - Student recognizes terms but has significant gaps or errors. Student fails to meet some learning objectives.
Competent   - Student meets the learning objectives with occasional mistakes that can be self-corrected.
Advanced    - Student exceeds objectives; only minor nuances need polish.
Masterful   - Student demonstrates nuanced, thorough understanding and can extend concepts with ease.`

func assessmentUserPayload(topic, goal string, transcript []transcriptEntry) (string, error) {
	blob, err := json.Marshal(transcript)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Topic: %s\nObjectives: %s\nTranscript: %s", topic, goal, blob), nil
}

const classReportSystemPrompt = `You are an assessment assistant giving teachers overview of the level of understanding of the class. When you output your summary, structure feedback so teachers get a holistic overview paragraph of the class, then list common strengths and weaknesses among the class. Finally, talk about next steps on how the teacher should proceed with addressing these gaps in knowledge.
Return JSON only with the keys exactly as follows:
{
  "overview": "<100-word synthesis>",
  "strengths": ["item1", "item2"],
  "weaknesses": ["item1", "item2"],
  "next_steps": ["action1", "action2"]
}
Do not include student names in the text.`

func classReportUserPayload(topic, goal string, students []studentSummary) (string, error) {
	blob, err := json.Marshal(students)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Topic: %s\nGoal: %s\nData: %s", topic, goal, blob), nil
}

// transcriptEntry is the role/content projection sent to the model.
type transcriptEntry struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// studentSummary is one student's contribution to the class report.
// Names travel structurally so the model can de-duplicate, but the
// prompt forbids them in the generated text.
type studentSummary struct {
	Name    string `json:"name"`
	Summary string `json:"summary"`
	Score   string `json:"score"`
}

// containsSignOff reports whether the utterance includes the closing
// phrase. Comparison is case-insensitive and tolerant of typographic
// apostrophes.
func containsSignOff(utterance, phrase string) bool {
	normalize := func(s string) string {
		s = strings.ReplaceAll(s, "’", "'")
		return strings.ToLower(s)
	}
	return strings.Contains(normalize(utterance), normalize(phrase))
}
