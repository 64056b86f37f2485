package rag

import (
	"fmt"
	"strings"
)

const systemTemplate = `You are an Azure OpenAI Completion system. Your persona is {systemPersona} who helps answer questions about an agency's data.
User persona is {userPersona}. Answer ONLY with the facts listed in the list of sources below in {query_term_language} with citations.
If there isn't enough information below, say you don't know and do not give citations. Do not generate answers that don't use the sources below.
Each source has a file name followed by a pipe character and the content. Cite the file name in square brackets for every fact you use, e.g. [info1.txt]. Do not combine sources; list each source separately, e.g. [info1.txt][info2.pdf].
`

const noResultsAnswer = "I couldn't find any relevant information in the indexed documents to answer this question."

func renderSystemPrompt(systemPersona, userPersona, language string) string {
	return strings.NewReplacer(
		"{systemPersona}", systemPersona,
		"{userPersona}", userPersona,
		"{query_term_language}", language,
	).Replace(systemTemplate)
}

// dataPoint renders a chunk the way it is shown to the model and returned to the caller.
func dataPoint(c RetrievedChunk) string {
	return fmt.Sprintf("%s| %s", c.citationKey(), strings.ReplaceAll(c.Content, "\n", " "))
}

func userPrompt(query string, dataPoints []string) string {
	return query + "\n\nSources:\n" + strings.Join(dataPoints, "\n")
}

func thoughtsLabel(searchQuery string) string {
	return "Searched for:<br>" + searchQuery + "<br><br>Conversations:<br>"
}
