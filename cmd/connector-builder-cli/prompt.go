package main

import (
	"context"
	"errors"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("prompt aborted")

// Prompter asks the user for values the flags left out.
type Prompter interface {
	ConnectorName(ctx context.Context, suggestion string) (string, error)
	Confirm(ctx context.Context, message string) (bool, error)
}

type surveyPrompter struct{}

func (surveyPrompter) ConnectorName(ctx context.Context, suggestion string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: "Connector name",
		Help:    "Shown in the builder; manifests do not store it.",
		Default: suggestion,
	}
	err := survey.AskOne(prompt, &out, survey.WithValidator(func(ans any) error {
		if value, _ := ans.(string); strings.TrimSpace(value) == "" {
			return errors.New("connector name is required")
		}
		return nil
	}))
	if err != nil {
		return "", translateSurveyErr(err)
	}
	return strings.TrimSpace(out), nil
}

func (surveyPrompter) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var out bool
	if err := survey.AskOne(&survey.Confirm{Message: message}, &out); err != nil {
		return false, translateSurveyErr(err)
	}
	return out, nil
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}
