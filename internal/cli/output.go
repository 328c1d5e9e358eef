// Package cli formats command output and talks to a running ragchat server.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/4everinbeta/ragchat/internal/builder"
	"github.com/4everinbeta/ragchat/internal/knowledge"
	"github.com/4everinbeta/ragchat/internal/models"
	"github.com/4everinbeta/ragchat/internal/retrieval"
	"github.com/4everinbeta/ragchat/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// StatusReport is the knowledge-base summary printed by the status command.
type StatusReport struct {
	Source         string           `json:"source"`
	Documents      int              `json:"documents"`
	Embeddings     int              `json:"embeddings"`
	Model          string           `json:"model"`
	Dimension      int              `json:"dimension"`
	Aligned        bool             `json:"aligned"`
	Embedder       string           `json:"embedder,omitempty"`
	Completion     bool             `json:"completion"`
	DiskUsageBytes *int64           `json:"disk_usage_bytes,omitempty"`
	SQLite         *knowledge.Stats `json:"sqlite,omitempty"`
}

// WriteAnswer writes a chat response in the given format.
func WriteAnswer(w io.Writer, resp *models.ChatResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintln(w, resp.Answer)
	if resp.Fallback {
		fmt.Fprintln(w, "(no model answer available; showing the fallback response)")
	}
	if len(resp.Sources) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nSources:")
	for i, s := range resp.Sources {
		fmt.Fprintf(w, "  %d. %s (score %s)\n", i+1, s.Source, retrieval.FormatScore(s.Score))
		if s.Preview != "" {
			fmt.Fprintf(w, "     %s\n", utils.TruncateEllipsis(strings.Join(strings.Fields(s.Preview), " "), 100))
		}
	}
	return nil
}

// WriteStatus writes a status report in the given format.
func WriteStatus(w io.Writer, st *StatusReport, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "Source:      %s\n", st.Source)
	fmt.Fprintf(w, "Documents:   %d\n", st.Documents)
	fmt.Fprintf(w, "Embeddings:  %d\n", st.Embeddings)
	fmt.Fprintf(w, "Model:       %s (dimension %d)\n", st.Model, st.Dimension)
	if st.Aligned {
		fmt.Fprintln(w, "Aligned:     yes")
	} else {
		fmt.Fprintln(w, "Aligned:     NO (documents and embeddings differ in length)")
	}
	if st.Embedder != "" {
		fmt.Fprintf(w, "Embedder:    %s\n", st.Embedder)
	}
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "Disk usage:  %s\n", FormatBytes(*st.DiskUsageBytes))
	}
	if st.SQLite != nil && !st.SQLite.BuiltAt.IsZero() {
		fmt.Fprintf(w, "Last build:  %s (%d chunks from %d sources)\n",
			st.SQLite.BuiltAt.Local().Format(time.RFC1123), st.SQLite.Documents, st.SQLite.Sources)
	}
	return nil
}

// WriteBuildReport writes the result of a build in the given format.
func WriteBuildReport(w io.Writer, r *builder.Report, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, r)
	}
	fmt.Fprintf(w, "Wrote %d chunks across %d documents.\n", r.Chunks, r.Documents)
	fmt.Fprintf(w, "Model: %s (dimension %d), took %s\n", r.Model, r.Dimension, r.Duration.Round(time.Millisecond))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped: %s\n", strings.Join(r.Skipped, ", "))
	}
	return nil
}

// FormatBytes renders n in binary units.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
