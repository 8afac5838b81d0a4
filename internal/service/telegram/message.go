package telegram

import (
	"strings"

	"CryptoPulse/internal/domain/models"
	"CryptoPulse/pkg/util"
)

var markdownV2 = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`, "*", `\*`, "[", `\[`, "]", `\]`, "(", `\(`, ")", `\)`,
	"~", `\~`, "`", "\\`", ">", `\>`, "#", `\#`, "+", `\+`, "-", `\-`,
	"=", `\=`, "|", `\|`, "{", `\{`, "}", `\}`, ".", `\.`, "!", `\!`,
)

// Escape escapes every character Telegram reserves in MarkdownV2.
func Escape(s string) string {
	return markdownV2.Replace(s)
}

// FormatMessage renders the batch of suggestions as one MarkdownV2 message.
// Every dynamic value is escaped; the literal markup is written pre-escaped.
func FormatMessage(suggestions []models.Suggestion) string {
	var b strings.Builder
	b.WriteString("🚨 *DIP BUY ALERT* 🚨\n")
	b.WriteString("The market is offering entry points:\n\n")

	for _, s := range suggestions {
		b.WriteString("💰 *" + Escape(s.Symbol) + "* \\(" + Escape(s.AssetID) + "\\) 🎯\n")
		b.WriteString("   \\- Price: *" + Escape(util.FormatPrice(s.Quote.Price)) + "*\n")
		b.WriteString("   \\- 24h: " + Escape(util.FormatPercent(s.Quote.Change24h)) + "\n")
		b.WriteString("   \\- 7d: " + Escape(util.FormatPercent(s.Quote.Change7d)) + "\n")
		b.WriteString("   \\- *Suggested limit \\(\\-2%\\):* *" + Escape(util.FormatLimitPrice(s.LimitPrice)) + "* ✍️\n")
		b.WriteString("   \\- Time to target: " + Escape(s.TimeToTarget.String()) + "\n\n")
	}

	b.WriteString("\\-\\-\\-\n")
	b.WriteString("Signals from *CryptoPulse*\\. Not financial advice\\.")
	return b.String()
}
