package cli

import (
	"context"
	"fmt"
	"strings"
)

// resolveContractorID accepts a full UUID or a unique prefix.
func resolveContractorID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("contractor ID is required")
	}

	contractors, err := app.Contractors.ListContractors(ctx)
	if err != nil {
		return "", err
	}

	for _, c := range contractors {
		if c.ID == input {
			return c.ID, nil
		}
	}

	var matches []string
	for _, c := range contractors {
		if strings.HasPrefix(c.ID, input) {
			matches = append(matches, c.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("contractor not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("contractor ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}

// resolveJobID accepts a full UUID or a unique prefix.
func resolveJobID(ctx context.Context, app *App, input string) (string, error) {
	if input == "" {
		return "", fmt.Errorf("job ID is required")
	}

	jobs, err := app.Jobs.ListJobs(ctx, "", "")
	if err != nil {
		return "", err
	}

	for _, j := range jobs {
		if j.ID == input {
			return j.ID, nil
		}
	}

	var matches []string
	for _, j := range jobs {
		if strings.HasPrefix(j.ID, input) {
			matches = append(matches, j.ID)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("job not found: %q", input)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("job ID prefix %q is ambiguous (%d matches)", input, len(matches))
	}
}
