package domain

import "regexp"

// shorthandPattern matches a colon-bounded emoji shorthand token such as
// ":bug:" or ":+1:".
var shorthandPattern = regexp.MustCompile(`:([a-zA-Z0-9_+-]+):`)

var emojiByShorthand = map[string]string{
	"smile":            "😄",
	"grin":             "😁",
	"joy":              "😂",
	"wink":             "😉",
	"thinking":         "🤔",
	"sweat_smile":      "😅",
	"+1":               "👍",
	"thumbsup":         "👍",
	"-1":               "👎",
	"thumbsdown":       "👎",
	"clap":             "👏",
	"muscle":           "💪",
	"eyes":             "👀",
	"bug":              "🐛",
	"fire":             "🔥",
	"rocket":           "🚀",
	"tada":             "🎉",
	"sparkles":         "✨",
	"star":             "⭐",
	"zap":              "⚡",
	"heart":            "❤️",
	"warning":          "⚠️",
	"white_check_mark": "✅",
	"x":                "❌",
	"memo":             "📝",
	"book":             "📖",
	"bulb":             "💡",
	"wrench":           "🔧",
	"hammer":           "🔨",
	"lock":             "🔒",
	"key":              "🔑",
	"coffee":           "☕",
	"calendar":         "📅",
	"clock":            "🕐",
	"phone":            "📱",
	"computer":         "💻",
	"email":            "📧",
	"100":              "💯",
}

// ExpandShorthand replaces every known colon-bounded shorthand token in s
// with its emoji. Unknown tokens are left untouched. The expansion is
// applied before task text is used as a key anywhere, so lookups and the
// timecard dedup key always agree on the canonical form.
func ExpandShorthand(s string) string {
	return shorthandPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		if emoji, ok := emojiByShorthand[name]; ok {
			return emoji
		}
		return match
	})
}
