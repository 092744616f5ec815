package notifier

import (
	"fmt"
	"html"
	"strings"

	"CompteClient/internal/dashboard"
	"CompteClient/internal/view"
)

// FormatDigest formats the concentration-risk metrics of a snapshot into a
// Telegram message.
func FormatDigest(snap *dashboard.Snapshot) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🏦 <b>%s</b> | %s\n\n", dashboard.Title, snap.Meta.GeneratedAt.Format("2006-01-02 15:04")))

	for _, m := range view.SummaryMetrics(snap.Metrics) {
		b.WriteString(fmt.Sprintf("%s: <b>%s</b>\n", html.EscapeString(m.Label), m.Value))
		if m.Warning != "" {
			b.WriteString(fmt.Sprintf("  ⚠️ %s\n", html.EscapeString(m.Warning)))
		}
	}

	if len(snap.Dataset.TopDepositors) > 0 {
		top := view.TopDepositors(snap.Dataset.TopDepositors[:1])
		b.WriteString(fmt.Sprintf("\nPremier déposant: %s (%s)\n",
			html.EscapeString(top.Rows[0][0].Text), top.Rows[0][1].Text))
	}
	if n := len(snap.Dataset.Issues); n > 0 {
		b.WriteString(fmt.Sprintf("\n⚠️ %d valeur(s) invalide(s) dans les agrégats\n", n))
	}

	b.WriteString(fmt.Sprintf("\nDonnées du %s", snap.Meta.LoadedAt.Format("2006-01-02 15:04")))
	return b.String()
}

// FormatLoadFailure formats the message sent when the aggregates could not be
// loaded.
func FormatLoadFailure(err error) string {
	return fmt.Sprintf("❌ <b>%s</b>: données indisponibles\n\n%s", dashboard.Title, html.EscapeString(err.Error()))
}
