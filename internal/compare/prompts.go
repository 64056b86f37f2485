package compare

import (
	"strings"

	"compare-ai/internal/llm"
)

// systemTemplate frames the completion as a comparison of two answer sources.
// The follow-up questions slot is kept for parity with the other approaches
// and is always rendered empty here.
const systemTemplate = `You are an Azure OpenAI Completion system. Your persona is {systemPersona}. User persona is {userPersona}.
Compare and contrast the answers provided below from two sources of data. The first source is internal data indexed using a RAG pattern while the second source is from Bing Chat.
Only explain the differences between the two sources and nothing else. Do not provide personal opinions or assumptions.
Only answer in the language {query_term_language}.
If you cannot find answer in below sources, respond with I am not sure. Do not provide personal opinions or assumptions.

{follow_up_questions_prompt}
`

// fewShots establishes the compare-and-contrast framing by example.
var fewShots = []llm.Message{
	{
		Role:    llm.RoleUser,
		Content: "I am looking for comparative information in the Bing Search Response and want to compare against the Internal Documents",
	},
	{
		Role:    llm.RoleAssistant,
		Content: "user is looking to compare information in Bing Search Response against Internal Documents.",
	},
}

const thoughtsLabel = "Searched for:<br>A Comparative Analysis<br><br>Conversations:<br>"

func renderSystemPrompt(systemPersona, userPersona, language string) string {
	return strings.NewReplacer(
		"{systemPersona}", systemPersona,
		"{userPersona}", userPersona,
		"{query_term_language}", language,
		"{follow_up_questions_prompt}", "",
	).Replace(systemTemplate)
}

// comparePrompt is the final user message. Separators are exact: they shape
// what the model sees as the boundary between the two sources.
func comparePrompt(userQuery, internalAnswer, bingAnswer string) string {
	return userQuery + "Internal Documents:\n" + internalAnswer + "\n\n" + " Bing Search Response:\n" + bingAnswer + "\n\n"
}

// renderThoughts joins the prompt into the HTML trace shown to users.
func renderThoughts(messages []llm.Message) string {
	return thoughtsLabel + llm.FormatTranscript(messages)
}
