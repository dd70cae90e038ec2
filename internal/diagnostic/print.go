package diagnostic

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	infoColor = color.New(color.FgCyan)
)

// Print writes all diagnostics to w, severity-colored, errors last so
// they stay visible in terminal scrollback.
func (d *Diagnostics) Print(w io.Writer) {
	for _, di := range d.Infos {
		fmt.Fprintf(w, "%s: %s\n", infoColor.Sprint(di.Severity), di)
	}

	for _, di := range d.Warnings {
		fmt.Fprintf(w, "%s: %s\n", warnColor.Sprint(di.Severity), di)
	}

	for _, di := range d.Errors {
		fmt.Fprintf(w, "%s: %s\n", errColor.Sprint(di.Severity), di)
	}
}
