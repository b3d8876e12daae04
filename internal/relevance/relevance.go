// Package relevance decides whether a feed entry is about AI.
package relevance

import "strings"

// Keywords is the AI topic vocabulary. Matching is a case-insensitive
// substring test, so short terms such as "ai" also hit inside longer words.
var Keywords = []string{
	"ai", "artificial intelligence", "machine learning", "deep learning",
	"neural network", "gpt", "chatgpt", "llm", "large language model",
	"openai", "anthropic", "claude", "gemini", "transformer",
	"natural language processing", "nlp", "computer vision",
	"generative ai", "gen ai", "dall-e", "midjourney", "stable diffusion",
	"reinforcement learning", "robotics", "automation", "algorithm",
	"data science", "model training", "inference", "embedding",
	"ai safety", "ai ethics", "ai regulation", "agi",
}

// IsRelevant reports whether title or description mention any AI keyword.
func IsRelevant(title, description string) bool {
	text := strings.ToLower(title + " " + description)
	for _, kw := range Keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
