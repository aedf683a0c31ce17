package llm

import (
	"fmt"
	"strings"
)

func DailySummaryPrompt(markdown string) string {
	return markdown + `

Make a markdown table for the items above grouped by squad and add a summary of what was done,
taking into account the description attached to each story. Use the descriptions to inform your
summaries but do not copy them into the report. Use emojis to make the report pleasant to read.
Explanations in () are for you.
Structure is the following:
Summary for all work (TLDR of the report):
Status Breakdown (story count by status):
Key Highlights (key updates of the day, using the story descriptions as context):
Work Items Grouped by Squad:
tables: Task (title with link to story) - Status - Owner(s)
`
}

func EpicSummaryPrompt(markdown string) string {
	return markdown + `

Summarise the epics above in a short markdown report. For each epic give one line on its goal
(based on the description), its progress and its owners, then close with a two sentence overview
of where the larger initiatives stand. Use emojis sparingly.
`
}

func WeeklySummaryPrompt(markdown string) string {
	return markdown + `

Please create a comprehensive weekly release summary with the following structure:

1. **Executive Summary** (2-3 sentences overview of the week's achievements)
2. **Team Contributions** (summary of work completed by each team)
3. **Key Deliverables** (highlight major features or fixes completed)
4. **Platform Breakdown** (if applicable, categorize work by platform)

Use emojis to make the report engaging and keep the language accessible to both technical and non-technical stakeholders.`
}

func DogfoodingPrompt(markdown string) string {
	return markdown + `

Based on the stories above generate **Dogfooding Highlights**: a brief, high-level summary of the most important features or changes to dogfood.
Add a focus area for this week's testing based on the stories, and attach challenges for that focus area so it reads like a quest.
If no solid focus area stands out, pick one from this list:
Security & Privacy Week, New User Onboarding Week, DeFi and DApps Week, Localization & Internationalization Week, Specific Challenges, Performance Challenges, Ecosystem & Integration Challenges, UI/UX Challenges, Edge Case Challenges
Don't add anything else.
Use clear, concise language and emojis to make the document easy to read and act upon.`
}

// ReleaseNotesPrompt asks for store-ready notes for one platform.
func ReleaseNotesPrompt(platform string, stories []string) string {
	name := strings.ToUpper(platform)
	return fmt.Sprintf(`Based on the following completed stories for %s, generate user-friendly release notes:

%s

Write in the style of Apple's release notes: clear, structured content with specific feature highlights.
Organise the notes into Features, Security Enhancements and Bug Fixes. In Features, start each point with a short
subtitle on the same line as its description. Do not add subtitles for Security Enhancements and Bug Fixes.
Explain technical and security updates in plain language for non-technical users, and mention any regional or
device-specific limitations. Keep a professional, neutral tone and avoid the word 'we'.
Android release notes have a limit of 500 characters.
iOS and Extension release notes have a limit of 1000 characters.
Do not add any markdown formatting.

Format the response as clean output for %s release notes.`, name, strings.Join(stories, "\n"), name)
}
