package analyzer

import (
	"fmt"
	"strings"
)

// architectPrompt はアーキテクチャ図生成用のシステムプロンプト
const architectPrompt = `You are CodeAtlas, an expert software architect. Generate a Graphviz DOT diagram showing code architecture with RELATIONSHIPS.

CRITICAL CONSTRAINTS:
- Maximum 15-20 nodes (focus on KEY architectural components)
- Maximum 25-30 edges (most important relationships)
- Group related components into subgraphs
- Omit trivial files (tests, configs, utilities)

WHAT TO SHOW:
- Main entry points and core modules
- Key classes/services with clear responsibilities
- Important data flow and dependencies
- Layer boundaries (API, Business Logic, Data)

RULES:
1. Start with: digraph CodeArchitecture {
2. Every diagram MUST have arrows showing component connections
3. Use actual class/file names from the code
4. Group related items in clusters with descriptive labels
5. Use colors to distinguish layers/types

EXAMPLE:
` + "```dot" + `
digraph CodeArchitecture {
    rankdir=TB;
    node [shape=box, style="rounded,filled", fontname="Helvetica"];

    subgraph cluster_api {
        label="API Layer";
        style="rounded,filled";
        fillcolor="#e8f5e9";
        Routes; Handlers;
    }

    subgraph cluster_services {
        label="Business Logic";
        style="rounded,filled";
        fillcolor="#e3f2fd";
        UserService; DataProcessor;
    }

    Routes -> Handlers;
    Handlers -> UserService;
    Handlers -> DataProcessor;
}
` + "```" + `

Generate ONLY valid DOT code. Focus on architectural clarity.`

// summaryPrompt はコードベース要約用のシステムプロンプト
const summaryPrompt = `You are CodeAtlas. Analyze the codebase and provide a concise summary.

Include:
1. **Project Overview**: What does this codebase do?
2. **Technology Stack**: Languages, frameworks, key dependencies
3. **Architecture Pattern**: MVC, microservices, monolith, etc.
4. **Key Components**: Main modules and their responsibilities
5. **Entry Points**: Where does execution start?

Keep it concise (200-300 words). Be specific about actual file/class names.`

// chatPrompt は質問応答用のシステムプロンプト
const chatPrompt = `You are CodeAtlas, an expert software architect assistant.

You're analyzing a codebase and helping answer questions about its architecture.
Use the provided code context to give accurate, specific answers.
Reference actual file names, class names, and code patterns when relevant.

Be helpful, concise, and technical. If you're unsure about something, say so.`

// narrationPrompt は音声ナレーション用の説明文生成プロンプト
const narrationPrompt = `Analyze this architecture diagram and provide a brief, conversational summary suitable for audio narration.
Keep it under 200 words. Focus on what the codebase does, key components and their relationships, and the overall architecture pattern.
Provide a natural, spoken summary (no bullet points, no markdown).`

// buildDiagramPrompt はアーキテクチャ図生成用のユーザープロンプトを構築する
func buildDiagramPrompt(codeContext, focusArea string) string {
	var sb strings.Builder
	sb.WriteString("Analyze this codebase and generate an architecture diagram:\n\n")
	sb.WriteString(codeContext)
	sb.WriteString("\n\nGenerate a Graphviz DOT diagram showing the main components and their relationships.")
	if focusArea != "" {
		sb.WriteString(fmt.Sprintf("\nFocus on: %s", focusArea))
	}
	return sb.String()
}

// buildSummaryPrompt は要約生成用のユーザープロンプトを構築する
func buildSummaryPrompt(codeContext string) string {
	return fmt.Sprintf("Analyze this codebase:\n\n%s\n\nProvide a concise summary.", codeContext)
}

// buildChatPrompt は質問応答用のユーザープロンプトを構築する。
// 履歴は直近6件（3往復分）までをコンテキストに含める。
func buildChatPrompt(message, codeContext string, history []Message) string {
	var sb strings.Builder
	sb.WriteString("Code context:\n")
	sb.WriteString(codeContext)
	sb.WriteString("\n\n")

	start := 0
	if len(history) > 6 {
		start = len(history) - 6
	}
	for _, msg := range history[start:] {
		if msg.Content == "" {
			continue
		}
		role := "Assistant"
		if msg.Role == "user" {
			role = "User"
		}
		sb.WriteString(fmt.Sprintf("%s: %s\n", role, msg.Content))
	}

	sb.WriteString(fmt.Sprintf("Current question: %s", message))
	return sb.String()
}

// buildNarrationPrompt はDOTソースからナレーション生成用のプロンプトを構築する
func buildNarrationPrompt(dotSource string) string {
	return fmt.Sprintf("%s\n\nDOT diagram:\n```\n%s\n```", narrationPrompt, dotSource)
}
