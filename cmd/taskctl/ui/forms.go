package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

func required(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func run(fields ...huh.Field) error {
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCatppuccin()).Run()
}

// Credentials asks for whichever of email and password are still empty.
func Credentials(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Value(email).
			Validate(required("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return run(fields...)
}

// Registration asks for the account name plus any missing credentials.
func Registration(name, email, password *string) error {
	if *name == "" {
		if err := run(huh.NewInput().
			Title("Name").
			Description("2 to 50 characters").
			Value(name).
			Validate(required("name"))); err != nil {
			return err
		}
	}
	return Credentials(email, password)
}

// NewTask collects the fields of a task to create. Title must already be
// set or is asked for; other fields are offered with their current values.
func NewTask(title, description, priority, due *string) error {
	if *priority == "" {
		*priority = "medium"
	}
	return run(
		huh.NewInput().
			Title("Title").
			Value(title).
			Validate(required("title")),
		huh.NewText().
			Title("Description").
			Value(description),
		huh.NewSelect[string]().
			Title("Priority").
			Options(huh.NewOptions("low", "medium", "high")...).
			Value(priority),
		huh.NewInput().
			Title("Due date").
			Description("YYYY-MM-DD, leave empty for none").
			Value(due),
	)
}

// PasswordChange asks for the current and new passwords, with confirmation.
func PasswordChange(current, next *string) error {
	var confirm string
	return run(
		huh.NewInput().
			Title("Current password").
			EchoMode(huh.EchoModePassword).
			Value(current).
			Validate(required("current password")),
		huh.NewInput().
			Title("New password").
			Description("At least 6 characters including a number").
			EchoMode(huh.EchoModePassword).
			Value(next).
			Validate(required("new password")),
		huh.NewInput().
			Title("Confirm new password").
			EchoMode(huh.EchoModePassword).
			Value(&confirm).
			Validate(func(s string) error {
				if s != *next {
					return fmt.Errorf("passwords do not match")
				}
				return nil
			}),
	)
}

// Ask prompts for value unless it is already set.
func Ask(title string, value *string) error {
	if *value != "" {
		return nil
	}
	return run(huh.NewInput().Title(title).Value(value).Validate(required(strings.ToLower(title))))
}

// AskSecret is Ask with the input masked.
func AskSecret(title string, value *string) error {
	if *value != "" {
		return nil
	}
	return run(huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(value).
		Validate(required(strings.ToLower(title))))
}

// Confirm asks a yes/no question.
func Confirm(question string) (bool, error) {
	var ok bool
	err := run(huh.NewConfirm().Title(question).Value(&ok))
	return ok, err
}
