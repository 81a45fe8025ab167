package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/felixgeelhaar/leasehold/internal/api"
)

// PromptLogin asks for whichever of email and password is still empty.
// Nothing is shown when both are set.
func PromptLogin(email, password *string) error {
	return runForm(loginFields(email, password))
}

// PromptRegister asks for every registration field that is still empty.
func PromptRegister(req *api.RegisterRequest) error {
	return runForm(registerFields(req))
}

func loginFields(email, password *string) []huh.Field {
	var fields []huh.Field
	if strings.TrimSpace(*email) == "" {
		fields = append(fields, emailInput(email))
	}
	if *password == "" {
		fields = append(fields, passwordInput(password))
	}
	return fields
}

func registerFields(req *api.RegisterRequest) []huh.Field {
	var fields []huh.Field
	if strings.TrimSpace(req.FirstName) == "" {
		fields = append(fields, requiredInput("First name", &req.FirstName))
	}
	if strings.TrimSpace(req.LastName) == "" {
		fields = append(fields, requiredInput("Last name", &req.LastName))
	}
	if strings.TrimSpace(req.Email) == "" {
		fields = append(fields, emailInput(&req.Email))
	}
	if req.Password == "" {
		fields = append(fields, passwordInput(&req.Password))
	}
	if req.Role == "" {
		options := make([]huh.Option[api.Role], len(api.Roles))
		for i, role := range api.Roles {
			options[i] = huh.NewOption(string(role), role)
		}
		fields = append(fields, huh.NewSelect[api.Role]().
			Title("I am a").
			Options(options...).
			Value(&req.Role))
	}
	return fields
}

func emailInput(value *string) *huh.Input {
	return requiredInput("Email", value).Placeholder("you@example.com")
}

func passwordInput(value *string) *huh.Input {
	return huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Validate(required("password")).
		Value(value)
}

func requiredInput(title string, value *string) *huh.Input {
	return huh.NewInput().
		Title(title).
		Validate(required(strings.ToLower(title))).
		Value(value)
}

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func runForm(fields []huh.Field) error {
	if len(fields) == 0 {
		return nil
	}
	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}

// IsInteractive returns true if stdin is a terminal (not piped)
func IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ShouldPrompt returns true if prompts should be shown based on environment
// Prompts are disabled in CI environments or when stdin is not a terminal
func ShouldPrompt() bool {
	// Check common CI environment variables
	ciEnvVars := []string{
		"CI",
		"GITHUB_ACTIONS",
		"GITLAB_CI",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"BUILDKITE",
	}

	for _, envVar := range ciEnvVars {
		if os.Getenv(envVar) != "" {
			return false
		}
	}

	return IsInteractive()
}
