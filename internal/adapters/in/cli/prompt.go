package cli

import (
	"errors"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/bnema/wgate/internal/config"
	"github.com/bnema/wgate/internal/domain"
)

// Prompter asks the operator questions.
type Prompter interface {
	Confirm(message string, def bool) (bool, error)
	Input(message, def string) (string, error)
}

// SurveyPrompter prompts on the terminal.
type SurveyPrompter struct{}

func (SurveyPrompter) Confirm(message string, def bool) (bool, error) {
	var answer bool
	if err := survey.AskOne(&survey.Confirm{Message: message, Default: def}, &answer); err != nil {
		return false, promptError(err)
	}
	return answer, nil
}

func (SurveyPrompter) Input(message, def string) (string, error) {
	var answer string
	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer); err != nil {
		return "", promptError(err)
	}
	return answer, nil
}

func promptError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return domain.ErrOperationCancelled
	}
	return fmt.Errorf("survey failed: %w", err)
}

// PromptDownstreamContainer asks whether to add a container behind the
// gateway and, if so, for its ID and address. It returns nil when the
// operator declines.
func PromptDownstreamContainer(p Prompter, cfg *config.Config) (*config.DownstreamConfig, error) {
	proceed, err := p.Confirm("Create a container routed through the gateway?", false)
	if err != nil {
		return nil, err
	}
	if !proceed {
		return nil, nil
	}

	defID, defIP := cfg.NextDownstream()
	defIDText := ""
	if defID > 0 {
		defIDText = strconv.Itoa(defID)
	}

	idText, err := p.Input("Container ID", defIDText)
	if err != nil {
		return nil, err
	}
	idText = strings.TrimSpace(idText)
	if idText == "" {
		return nil, fmt.Errorf("%w: container ID", domain.ErrInputRequired)
	}
	id, err := strconv.Atoi(idText)
	if err != nil {
		return nil, fmt.Errorf("%w: container ID %q is not a number", domain.ErrInvalidConfig, idText)
	}

	ip, err := p.Input("Container IP (CIDR)", defIP)
	if err != nil {
		return nil, err
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return nil, fmt.Errorf("%w: container IP", domain.ErrInputRequired)
	}

	d := config.DownstreamConfig{ID: id, IP: withBridgePrefix(cfg, ip)}
	if err := checkDownstream(cfg, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// withBridgePrefix adds the bridge prefix length to a bare address.
func withBridgePrefix(cfg *config.Config, ip string) string {
	if strings.Contains(ip, "/") {
		return ip
	}
	bridge, err := netip.ParsePrefix(cfg.Bridge.CIDR)
	if err != nil {
		return ip
	}
	return ip + "/" + strconv.Itoa(bridge.Bits())
}

// checkDownstream validates the configuration as it would be with d added.
func checkDownstream(cfg *config.Config, d config.DownstreamConfig) error {
	candidate := *cfg
	candidate.Downstream = append(append([]config.DownstreamConfig(nil), cfg.Downstream...), d)
	return candidate.Validate()
}
