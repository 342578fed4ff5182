package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/bnema/wgate/internal/usecase/provision"
)

// progress prints step headers and a spinner while a container boots.
type progress struct {
	w       io.Writer
	spinner *progressbar.ProgressBar
}

func newProgress(w io.Writer) *progress {
	return &progress{w: w}
}

func (p *progress) hooks() provision.Hooks {
	return provision.Hooks{
		OnStep: func(name string) {
			p.stop()
			printStep(p.w, name)
		},
		OnPoll: func(id, attempt int, next time.Duration) {
			if p.spinner == nil {
				p.spinner = progressbar.NewOptions(-1,
					progressbar.OptionSetWriter(p.w),
					progressbar.OptionSpinnerType(14),
					progressbar.OptionClearOnFinish(),
				)
			}
			p.spinner.Describe(fmt.Sprintf("waiting for container %d (attempt %d, retry in %s)", id, attempt, next))
			_ = p.spinner.Add(1)
		},
	}
}

func (p *progress) stop() {
	if p.spinner == nil {
		return
	}
	_ = p.spinner.Finish()
	p.spinner = nil
}
