package telegram

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"neuranest-explorer/internal/entity"
)

const maxMessageLen = 4090

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// FormatImportJobSettled formats a finished import job into a Markdown message.
func FormatImportJobSettled(job entity.ImportJob) string {
	var builder strings.Builder

	icon := "✅"
	title := "Import Completed"
	if job.Status == entity.ImportFailed {
		icon = "❌"
		title = "Import Failed"
	}
	builder.WriteString(fmt.Sprintf("%s *%s*\n\n", icon, title))
	builder.WriteString(fmt.Sprintf("📄 *File:* %s\n", markdownEscaper.Replace(job.Filename)))
	builder.WriteString(fmt.Sprintf("🆔 *Job:* `%s`\n", job.ID))
	if job.Country != "" {
		builder.WriteString(fmt.Sprintf("🌍 *Country:* %s\n", strings.ToUpper(job.Country)))
	}
	if job.ReportMonth != nil && *job.ReportMonth != "" {
		builder.WriteString(fmt.Sprintf("🗓 *Report Month:* %s\n", *job.ReportMonth))
	}

	builder.WriteString(fmt.Sprintf("\n📊 *Rows:* %d total\n", job.TotalRows))
	builder.WriteString(fmt.Sprintf("  - imported: %d\n", job.ImportedRows))
	builder.WriteString(fmt.Sprintf("  - skipped: %d\n", job.SkippedRows))
	builder.WriteString(fmt.Sprintf("  - errors: %d\n", job.ErrorRows))

	if job.ErrorMessage != nil && *job.ErrorMessage != "" {
		builder.WriteString(fmt.Sprintf("\n⚠️ *Error:* _%s_\n", markdownEscaper.Replace(*job.ErrorMessage)))
	}
	if job.CompletedAt != nil {
		builder.WriteString(fmt.Sprintf("\n⏱ %s\n", job.CompletedAt.Format("2006-01-02 15:04 MST")))
	}

	return truncate(builder.String(), maxMessageLen)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
