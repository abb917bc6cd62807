package internal

import "fmt"

const defaultPromptEN = "Analyze this screen activity video and provide a concise activity summary. " +
	"Focus on: 1) Main apps/websites used; 2) Activity type (work/entertainment/learning, etc.); " +
	"3) Any distractions or inefficient behaviors. Respond in English, keep it under 100 words."

const defaultPromptZH = "分析这段屏幕活动视频，提供简洁的活动摘要。重点关注：1) 主要使用的应用/网站；" +
	"2) 活动类型（工作/娱乐/学习等）；3) 是否有分心或低效行为。用中文回答，控制在100字以内。"

// DefaultPrompt returns the built-in analysis prompt for a language.
func DefaultPrompt(lang string) string {
	if lang == "en" {
		return defaultPromptEN
	}
	return defaultPromptZH
}

// DailyPrompt builds the aggregate prompt fed to the text-only generation
// when producing a daily digest from prior summaries.
func DailyPrompt(lang, combined string) string {
	if lang == "en" {
		return fmt.Sprintf("Based on the following activity summaries from today, provide a comprehensive daily summary. "+
			"Include: 1) Overall productivity assessment; 2) Main activities and time distribution; "+
			"3) Key insights and recommendations for improvement.\n\nToday's summaries:\n%s", combined)
	}
	return fmt.Sprintf("基于以下今天的所有活动摘要，生成一份综合的每日总结。包括：1) 整体效率评估；"+
		"2) 主要活动和时间分布；3) 关键洞察和改进建议。\n\n今天的摘要：\n%s", combined)
}

// NoActivityMessage is the digest content when a day has no summaries.
func NoActivityMessage(lang string) string {
	if lang == "en" {
		return "No activity recorded for this day."
	}
	return "今天没有记录任何活动。"
}
