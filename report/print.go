package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/use-agent/vibcheck/fingerprint"
	"github.com/use-agent/vibcheck/models"
)

const rule = "============================================================"

// printer renders styled sections. Styling degrades to plain text when w
// is not a terminal.
type printer struct {
	w      io.Writer
	title  lipgloss.Style
	header lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	err    error
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:      w,
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("13")),
		header: r.NewStyle().Bold(true).Underline(true),
		pass:   r.NewStyle().Foreground(lipgloss.Color("10")),
		fail:   r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (p *printer) line(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) mark(ok bool) string {
	if ok {
		return p.pass.Render("✅")
	}
	return p.fail.Render("❌")
}

// Print writes the full report: raw record fields, derived checks, the
// overall verdict and, only when the verdict fails, the remediation list.
func Print(w io.Writer, r models.Record, v models.Verdict) error {
	p := newPrinter(w)

	p.line("")
	p.line(rule)
	p.line("%s", p.title.Render("🔍 VIB34D INSPECTION REPORT"))
	p.line(rule)

	p.line("")
	p.line("%s", p.header.Render("📊 Inspection record"))
	for _, f := range r.Fields() {
		p.line("   %-18s %v", f.Name+":", f.Value)
	}

	p.line("")
	p.line("%s", p.header.Render("🧪 Checks"))
	for _, c := range checks(v) {
		p.line("   %s %s", p.mark(c.ok), c.label)
	}

	p.line("")
	if v.Overall {
		p.line("🏁 Overall: %s", p.pass.Render("✅ PASS, the system is fully operational"))
	} else {
		p.line("🏁 Overall: %s", p.fail.Render("❌ FAIL, see remediation below"))
		p.line("")
		p.line("%s", p.header.Render("🔧 Remediation"))
		for i, fix := range Remediation(v) {
			p.line("   %d. %s", i+1, fix)
		}
	}
	p.line(rule)
	return p.err
}

// PrintStates writes the captured screenshots and how much the DOM
// structure moved between consecutive states. Informational only.
func PrintStates(w io.Writer, shots []models.Screenshot) error {
	p := newPrinter(w)

	p.line("")
	p.line("%s", p.header.Render("📸 Captured states"))
	if len(shots) == 0 {
		p.line("   (none)")
		return p.err
	}
	for i, s := range shots {
		p.line("   %-13s %s", s.State, s.File)
		if i == 0 {
			continue
		}
		prev := shots[i-1]
		if prev.Fingerprint == 0 || s.Fingerprint == 0 {
			p.line("   %-13s structure unknown", "")
			continue
		}
		d := fingerprint.Distance(prev.Fingerprint, s.Fingerprint)
		p.line("   %-13s %s", "", describeChange(prev.State, d))
	}
	return p.err
}

func describeChange(from string, distance int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "structure vs %s: ", from)
	if distance == 0 {
		b.WriteString("unchanged")
	} else {
		fmt.Fprintf(&b, "changed (distance %d)", distance)
	}
	return b.String()
}
