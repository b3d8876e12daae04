package categorize

import "strings"

const (
	LLMs           = "Large Language Models (LLMs)"
	ComputerVision = "Computer Vision & Image Generation"
	Research       = "AI Research & Breakthroughs"
	Industry       = "AI in Industry"
	Ethics         = "AI Ethics & Regulation"
	Startups       = "AI Startups & Business"

	// DefaultCategory is used when nothing else decides.
	DefaultCategory = Research
)

// Categories is the closed category set, in tie-breaking order.
var Categories = []string{LLMs, ComputerVision, Research, Industry, Ethics, Startups}

// Keywords maps each category to the lower-case phrases that vote for it.
var Keywords = map[string][]string{
	LLMs: {
		"chatgpt", "gpt-4", "gpt-5", "claude", "gemini", "llama", "mistral",
		"llm", "large language model", "language model", "chat bot", "chatbot",
		"openai", "anthropic", "text generation", "prompt", "conversation ai",
	},
	ComputerVision: {
		"dall-e", "midjourney", "stable diffusion", "image generation",
		"computer vision", "image recognition", "video generation", "sora",
		"visual ai", "image ai", "diffusion model", "text-to-image",
		"object detection", "face recognition", "image synthesis",
	},
	Research: {
		"research", "paper", "study", "breakthrough", "discovery", "benchmark",
		"dataset", "training", "model architecture", "neural network",
		"deep learning", "algorithm", "innovation", "academic", "researcher",
		"scientist", "laboratory",
	},
	Industry: {
		"healthcare", "medical", "finance", "banking", "automotive",
		"manufacturing", "retail", "enterprise", "business application",
		"robotics", "automation", "supply chain", "logistics", "industry",
		"sector", "deployment", "implementation",
	},
	Ethics: {
		"ethics", "regulation", "policy", "law", "governance", "bias",
		"fairness", "safety", "risk", "privacy", "responsible ai", "ai act",
		"legislation", "compliance", "transparency", "accountability",
		"eu ai", "congress",
	},
	Startups: {
		"startup", "funding", "investment", "acquisition", "merger",
		"valuation", "series", "venture", "ipo", "launch", "company", "ceo",
		"founder", "billion", "million", "market", "revenue", "growth",
		"business",
	},
}

// IsValid reports whether name is one of Categories, exactly.
func IsValid(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Match maps a free-form answer onto the category set: an exact match
// first, then the first category that contains the answer or is contained
// in it, ignoring case.
func Match(answer string) (string, bool) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", false
	}
	if IsValid(answer) {
		return answer, true
	}

	lower := strings.ToLower(answer)
	for _, c := range Categories {
		lc := strings.ToLower(c)
		if strings.Contains(lower, lc) || strings.Contains(lc, lower) {
			return c, true
		}
	}
	return "", false
}

// ByKeywords picks a category without a model. A valid hint wins outright.
// Otherwise each category scores one point per keyword found in the title
// and content; the highest score wins, earlier categories win ties, and no
// hits at all gives DefaultCategory.
func ByKeywords(title, content, hint string) string {
	if IsValid(hint) {
		return hint
	}

	text := strings.ToLower(title + " " + content)
	best, bestScore := DefaultCategory, 0
	for _, c := range Categories {
		score := 0
		for _, kw := range Keywords[c] {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
