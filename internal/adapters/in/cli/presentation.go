package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/bnema/wgate/internal/adapters/in/cli/ui/styles"
)

func renderTitle(msg string) string {
	return styles.Theme.Title.Render(msg)
}

func renderMuted(msg string) string {
	return styles.Theme.Muted.Render(msg)
}

func renderMeta(label, value string) string {
	return styles.Theme.Bold.Render(label) + " " + value
}

func renderError(err error) string {
	return styles.RenderError(err.Error())
}

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.RenderSuccess(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.RenderWarning(fmt.Sprintf(format, args...)))
}

// printStep announces a provisioning step.
func printStep(w io.Writer, name string) {
	fmt.Fprintf(w, "%s %s\n", color.CyanString("==>"), color.New(color.Bold).Sprint(name))
}
