package analyzer

import "fmt"

// ResponseLanguage is the language every analysis is written in.
const ResponseLanguage = "Portuguese"

const systemPrompt = "You are an expert in log analysis and infrastructure troubleshooting."

const promptTemplate = `You are a senior infrastructure troubleshooting specialist (Linux, web servers, proxies, databases and applications).

You received an excerpt of a LOG and must:

1. Summarize what is happening in at most 10 lines.
2. List the main problems found.
3. Propose 3 to 5 hypotheses for the cause of each problem.
4. Suggest 3 to 5 concrete actions the administrator can take (commands, checks, adjustments).

Context:
- Log type: %s
- Description provided by the user (may be empty): %s

Log excerpt:
` + "```log\n%s\n```" + `
Answer in %s, objectively, using lists and clear steps.`

// BuildPrompt fills the fixed troubleshooting template. Only the category,
// description and snippet vary between calls.
func BuildPrompt(snippet, category, description string) string {
	return fmt.Sprintf(promptTemplate, category, description, snippet, ResponseLanguage)
}
