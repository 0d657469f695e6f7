package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/jcommit/jcommit/internal/pkg/ai"
)

// Endpoint kinds offered by the setup wizard.
const (
	SetupOpenAI = "openai"
	SetupAzure  = "azure"
	SetupCustom = "custom"
)

// SetupStore persists the answers of the setup wizard.
type SetupStore interface {
	Init() error
	Set(key, value string) error
	AcknowledgeNotice() error
	GetConfigPath() string
}

// SetupAnswers are the values collected by the setup wizard.
type SetupAnswers struct {
	Kind       string
	Endpoint   string
	APIKey     string
	Model      string
	APIVersion string
}

// RunInteractiveSetup asks for the endpoint settings and writes them to store.
func RunInteractiveSetup(store SetupStore) error {
	answers := SetupAnswers{Kind: SetupOpenAI}

	err := huh.NewSelect[string]().
		Title("Which completion API do you use?").
		Options(
			huh.NewOption("OpenAI", SetupOpenAI),
			huh.NewOption("Azure OpenAI", SetupAzure),
			huh.NewOption("Other OpenAI-compatible server", SetupCustom),
		).
		Value(&answers.Kind).
		Run()
	if err != nil {
		return err
	}

	answers.Model = ai.DefaultModel
	if answers.Kind == SetupAzure {
		answers.APIVersion = ai.DefaultAzureAPIVersion
	}

	fields := []huh.Field{}
	if answers.Kind != SetupOpenAI {
		fields = append(fields,
			huh.NewInput().
				Title("API Endpoint").
				Description(endpointHint(answers.Kind)).
				Value(&answers.Endpoint).
				Validate(nonEmpty("endpoint")),
		)
	}
	fields = append(fields,
		huh.NewInput().
			Title("API Key").
			Description("Leave empty for servers without authentication").
			Value(&answers.APIKey).
			EchoMode(huh.EchoModePassword),
		huh.NewInput().
			Title(modelTitle(answers.Kind)).
			Value(&answers.Model).
			Validate(nonEmpty("model")),
	)
	if answers.Kind == SetupAzure {
		fields = append(fields,
			huh.NewInput().
				Title("API Version").
				Value(&answers.APIVersion),
		)
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return err
	}

	if err := ApplySetup(store, answers); err != nil {
		return err
	}

	fmt.Printf("\nConfiguration saved to %s\n", store.GetConfigPath())
	return nil
}

// SetupValues maps answers to configuration keys.
func SetupValues(answers SetupAnswers) map[string]string {
	values := map[string]string{
		"model":    strings.TrimSpace(answers.Model),
		"api_key":  strings.TrimSpace(answers.APIKey),
		"is_azure": fmt.Sprintf("%t", answers.Kind == SetupAzure),
	}

	switch answers.Kind {
	case SetupOpenAI:
		values["api_endpoint"] = ai.DefaultBaseURL
	default:
		values["api_endpoint"] = strings.TrimSpace(answers.Endpoint)
	}
	if answers.Kind == SetupAzure {
		values["api_version"] = strings.TrimSpace(answers.APIVersion)
	}
	return values
}

// ApplySetup writes answers to store, creating the file if needed.
func ApplySetup(store SetupStore, answers SetupAnswers) error {
	// An existing file is fine; Set only needs it to be writable.
	_ = store.Init()

	values := SetupValues(answers)
	for _, key := range []string{"api_endpoint", "model", "api_key", "is_azure", "api_version"} {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := store.Set(key, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	// The wizard already told the user where diffs go.
	return store.AcknowledgeNotice()
}

func endpointHint(kind string) string {
	if kind == SetupAzure {
		return "Resource URL, e.g. https://my-resource.openai.azure.com"
	}
	return "Base URL, e.g. http://localhost:11434/v1"
}

func modelTitle(kind string) string {
	if kind == SetupAzure {
		return "Deployment Name"
	}
	return "Model Name"
}

func nonEmpty(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", what)
		}
		return nil
	}
}
