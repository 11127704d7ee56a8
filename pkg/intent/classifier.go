// Package intent decides whether free-form user text is an automation
// request or ordinary conversation. Classification is a weighted
// keyword scan: cheap, deterministic, and biased toward false negatives
// so chat text never triggers command translation by accident.
package intent

import (
	"regexp"
	"strings"
)

// Category groups keywords by the kind of automation they indicate.
type Category string

const (
	CategoryDesktop     Category = "desktop_interaction"
	CategoryAppLaunch   Category = "app_launch"
	CategoryWebBrowsing Category = "web_browsing"
	CategoryFileOps     Category = "file_operation"
	CategorySystem      Category = "system_control"
	CategoryTextInput   Category = "text_input"
)

// RouteThreshold is the minimum score that routes text to the
// translation pipeline instead of conversation.
const RouteThreshold = 2

type keyword struct {
	phrase   string
	weight   int
	category Category
}

// keywords is ordered by tier: strong action verbs first, then domain
// nouns, then weak hints. Multi-word phrases match as whole phrases.
var keywords = []keyword{
	{"click", 3, CategoryDesktop},
	{"double-click", 3, CategoryDesktop},
	{"right-click", 3, CategoryDesktop},
	{"drag", 3, CategoryDesktop},
	{"start menu", 3, CategoryDesktop},
	{"taskbar", 3, CategoryDesktop},
	{"screenshot", 3, CategoryDesktop},
	{"hover", 3, CategoryDesktop},
	{"launch", 3, CategoryAppLaunch},
	{"navigate to", 3, CategoryWebBrowsing},
	{"go to", 3, CategoryWebBrowsing},
	{"automate", 3, CategorySystem},
	{"type", 3, CategoryTextInput},
	{"fill in", 3, CategoryTextInput},

	{"open", 2, CategoryAppLaunch},
	{"close", 2, CategoryAppLaunch},
	{"notepad", 2, CategoryAppLaunch},
	{"calculator", 2, CategoryAppLaunch},
	{"explorer", 2, CategoryAppLaunch},
	{"browser", 2, CategoryWebBrowsing},
	{"website", 2, CategoryWebBrowsing},
	{"url", 2, CategoryWebBrowsing},
	{"search for", 2, CategoryWebBrowsing},
	{"scroll", 2, CategoryDesktop},
	{"window", 2, CategoryDesktop},
	{"mouse", 2, CategoryDesktop},
	{"press", 2, CategoryTextInput},
	{"keyboard", 2, CategoryTextInput},
	{"install", 2, CategorySystem},
	{"uninstall", 2, CategorySystem},
	{"create file", 2, CategoryFileOps},
	{"delete file", 2, CategoryFileOps},
	{"copy file", 2, CategoryFileOps},
	{"move file", 2, CategoryFileOps},
	{"rename", 2, CategoryFileOps},
	{"folder", 2, CategoryFileOps},
	{"directory", 2, CategoryFileOps},

	{"run", 1, CategorySystem},
	{"execute", 1, CategorySystem},
	{"desktop", 1, CategoryDesktop},
	{"menu", 1, CategoryDesktop},
	{"button", 1, CategoryDesktop},
	{"file", 1, CategoryFileOps},
	{"save", 1, CategoryFileOps},
	{"download", 1, CategoryWebBrowsing},
	{"page", 1, CategoryWebBrowsing},
}

var keywordPatterns = compileKeywords()

func compileKeywords() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw.phrase) + `\b`)
	}
	return patterns
}

// Result is the outcome of classifying one piece of text.
type Result struct {
	Score      int
	Categories []Category
	Matched    []string
}

// Automation reports whether the text should be routed to command
// translation.
func (r Result) Automation() bool {
	return r.Score >= RouteThreshold
}

// Classify scores text against the keyword tiers. Every matched phrase
// contributes its weight once; categories are deduplicated in first-hit
// order for display.
func Classify(text string) Result {
	lowered := strings.ToLower(text)
	var res Result
	seen := map[Category]bool{}
	for i, kw := range keywords {
		if !keywordPatterns[i].MatchString(lowered) {
			continue
		}
		res.Score += kw.weight
		res.Matched = append(res.Matched, kw.phrase)
		if !seen[kw.category] {
			seen[kw.category] = true
			res.Categories = append(res.Categories, kw.category)
		}
	}
	return res
}
