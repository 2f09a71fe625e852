package input

import (
	"github.com/manifoldco/promptui"

	apperrors "sitedeploy/internal/errors"
)

// Prompter abstracts interactive terminal input so the collection sequence
// can be driven by scripted answers in tests.
type Prompter interface {
	Ask(label string) (string, error)
	AskSecret(label string) (string, error)
	Confirm(question string) (bool, error)
	Select(label string, options []string) (string, error)
}

// TerminalPrompter implements Prompter on top of promptui.
type TerminalPrompter struct{}

// NewTerminalPrompter returns the interactive prompter used in production.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{}
}

// Ask reads a single line of input.
func (p *TerminalPrompter) Ask(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}

	value, err := prompt.Run()
	if err != nil {
		return "", wrapPromptErr(err)
	}
	return value, nil
}

// AskSecret reads a masked line of input.
func (p *TerminalPrompter) AskSecret(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
	}

	value, err := prompt.Run()
	if err != nil {
		return "", wrapPromptErr(err)
	}
	return value, nil
}

// Confirm asks a y/n question. The answer is validated once; an answer
// outside {y, yes, n, no} is a hard input error, not a re-prompt.
func (p *TerminalPrompter) Confirm(question string) (bool, error) {
	prompt := promptui.Prompt{Label: question + " [y/n]"}

	answer, err := prompt.Run()
	if err != nil {
		return false, wrapPromptErr(err)
	}
	return ParseYesNo(answer)
}

// Select presents a fixed option list.
func (p *TerminalPrompter) Select(label string, options []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: options,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}:",
			Active:   "▶ {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "✅ {{ . | green }}",
		},
	}

	_, value, err := prompt.Run()
	if err != nil {
		return "", wrapPromptErr(err)
	}
	return value, nil
}

func wrapPromptErr(err error) error {
	if err == promptui.ErrInterrupt || err == promptui.ErrEOF {
		return apperrors.InputError(
			apperrors.CodeInputGeneric,
			"input cancelled by operator",
			err,
		).WithModule("input")
	}
	return apperrors.InputError(
		apperrors.CodeInputGeneric,
		"failed to read interactive input",
		err,
	).WithModule("input")
}
