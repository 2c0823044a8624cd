package component

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"opencsg.com/auth-exerciser/common/types"
)

type printer struct {
	mu     sync.Mutex
	out    io.Writer
	indent bool
}

func newPrinter(out io.Writer, indent bool) *printer {
	if out == nil {
		out = io.Discard
	}
	return &printer{out: out, indent: indent}
}

// response writes a header line naming the step and status, then the body as received.
// JSON bodies are pretty printed when indenting is on.
func (p *printer) response(name string, raw *types.RawResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, _ = fmt.Fprintf(p.out, "==> %s [%d]\n", name, raw.StatusCode)
	body := bytes.TrimSpace(raw.Body)
	if p.indent && json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			body = buf.Bytes()
		}
	}
	_, _ = p.out.Write(body)
	_, _ = io.WriteString(p.out, "\n")
}

func (p *printer) report(report *types.CheckReport, format string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if format == "json" {
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	counts := map[types.CheckStatus]int{}
	_, _ = fmt.Fprintf(p.out, "contract checks against %s (run %s, %s / %s)\n", report.BaseURL, report.RunID, report.Email, report.Username)
	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "CHECK\tSTATUS\tDURATION\tDETAIL")
	for _, c := range report.Checks {
		counts[c.Status]++
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, strings.ToUpper(string(c.Status)), c.Duration.Round(time.Millisecond), c.Detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(p.out, "%d passed, %d failed, %d skipped\n",
		counts[types.CheckPassed], counts[types.CheckFailed], counts[types.CheckSkipped])
	return err
}
