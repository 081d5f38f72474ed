// Package status renders setup progress as colored console lines.
package status

import (
	"fmt"
	"io"
	"strings"

	"github.com/fastfind/setupenv/pkg/cli/internal/wrapped"
	"github.com/fastfind/setupenv/pkg/cli/styles"
)

const detailIndent = 6

var (
	markSuccess = styles.Success().Render("✓")
	markInfo    = styles.Info().Render("•")
	markWarn    = styles.Warning().Render("!")
	markFail    = styles.Failure().Render("✗")
)

// Printer writes status lines to an io.Writer. It satisfies
// bootstrap.Reporter.
type Printer struct {
	out      io.Writer
	sections int
}

func New(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Section(title string) {
	if p.sections > 0 {
		fmt.Fprintln(p.out)
	}
	p.sections++
	fmt.Fprintln(p.out, styles.Heading().Render("==> "+title))
}

func (p *Printer) Success(msg string) {
	p.line(markSuccess, styles.Success().Render(msg))
}

func (p *Printer) Info(msg string) {
	p.line(markInfo, styles.Default().Render(msg))
}

func (p *Printer) Warn(msg string) {
	p.line(markWarn, styles.Warning().Render(msg))
}

func (p *Printer) Fail(msg string) {
	p.line(markFail, styles.Failure().Render(msg))
}

func (p *Printer) Detail(lines ...string) {
	for _, l := range lines {
		fmt.Fprintln(p.out, styles.Faint().Render(wrapped.Indented(l, detailIndent)))
	}
}

func (p *Printer) line(mark, msg string) {
	fmt.Fprintf(p.out, "  %s %s\n", mark, strings.TrimRight(wrapped.Sprint(msg), "\n"))
}
