package llm

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KoVaL05/PRofessor-github-reviewer/internal/domain"
)

// rubricCategories are the fixed review dimensions embedded in every review
// prompt, in a stable order so the prompt is deterministic for a given input.
var rubricCategories = []string{
	"readability",
	"best practices",
	"performance",
	"error handling",
	"security",
	"maintainability",
}

var titleCaser = cases.Title(language.English)

// buildReviewPrompt renders the full review request: every file's name,
// content and patch, the rubric, and the JSON output contract.
func buildReviewPrompt(files []domain.ReviewFile, instructions string) string {
	var b strings.Builder

	b.WriteString("You are reviewing a pull request. Analyze the following changed files")
	b.WriteString(" and provide a thorough code review.\n\n")

	b.WriteString("Evaluate each file against these criteria:\n")
	for _, category := range rubricCategories {
		fmt.Fprintf(&b, "- %s\n", titleCaser.String(category))
	}
	b.WriteString("\n")

	if instructions != "" {
		b.WriteString("Additional review instructions:\n")
		b.WriteString(instructions)
		b.WriteString("\n\n")
	}

	for _, file := range files {
		fmt.Fprintf(&b, "File: %s\n", file.Filename)
		b.WriteString("Content:\n```\n")
		b.WriteString(file.Content)
		b.WriteString("\n```\n")
		if file.Patch != "" {
			b.WriteString("Changes:\n```diff\n")
			b.WriteString(file.Patch)
			b.WriteString("\n```\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with JSON only, using exactly these keys:\n")
	b.WriteString(`{"comments": [{"path": "file path", "body": "comment text", "position": 1}], ` +
		`"summary": "overall review summary", "approved": true or false}`)
	b.WriteString("\nDo not include any text outside the JSON object.")

	return b.String()
}

// buildTestPrompt asks for unit tests for a single file in the configured framework.
func buildTestPrompt(framework, filePath, fileContent string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write comprehensive unit tests using %s for the following file.\n\n", framework)
	fmt.Fprintf(&b, "File: %s\n", filePath)
	b.WriteString("Content:\n```\n")
	b.WriteString(fileContent)
	b.WriteString("\n```\n\n")
	b.WriteString("Cover normal behavior, edge cases, and error paths. ")
	b.WriteString("Respond with the test code only.")

	return b.String()
}

// buildCommentPrompt embeds the developer's question and any surrounding code context.
func buildCommentPrompt(userComment, codeContext string) string {
	var b strings.Builder

	b.WriteString("A developer replied to one of your code review comments. ")
	b.WriteString("Answer helpfully and concisely.\n\n")
	fmt.Fprintf(&b, "Developer comment:\n%s\n", userComment)
	if codeContext != "" {
		b.WriteString("\nRelevant code:\n```\n")
		b.WriteString(codeContext)
		b.WriteString("\n```\n")
	}

	return b.String()
}
