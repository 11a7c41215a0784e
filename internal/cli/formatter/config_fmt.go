package formatter

import (
	"fmt"
	"strings"

	"github.com/dispatchly/smartsched/internal/domain"
)

// FormatWeightsConfig renders the active scoring configuration.
func FormatWeightsConfig(cfg *domain.WeightsConfig) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s v%d", Bold("Scoring weights"), cfg.Version))
	if cfg.IsActive {
		b.WriteString("  " + StyleGreen.Render("● active"))
	}
	b.WriteString("\n\n")

	b.WriteString(weightRow("availability", cfg.Weights.Availability))
	b.WriteString(weightRow("rating", cfg.Weights.Rating))
	b.WriteString(weightRow("distance", cfg.Weights.Distance))

	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", Dim("Tie-breakers:"), strings.Join(cfg.TieBreakers, " > ")))

	b.WriteString("\n")
	if cfg.Rotation.Enabled {
		b.WriteString(fmt.Sprintf("%s boost +%.1f below %.0f%% utilization\n",
			StyleGreen.Render("Rotation:"), cfg.Rotation.Boost, cfg.Rotation.UnderUtilizationThreshold*100))
	} else {
		b.WriteString(Dim("Rotation: disabled") + "\n")
	}

	return RenderBox("Config", b.String())
}

// FormatSystemConfiguration renders the job-type and skill catalogs.
func FormatSystemConfiguration(cfg *domain.SystemConfiguration) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s v%d\n\n", Bold("System catalog"), cfg.Version))
	b.WriteString(catalogRow("Job types", cfg.AllowedJobTypes))
	b.WriteString(catalogRow("Skills", cfg.AllowedSkills))

	return RenderBox("Catalog", b.String())
}

func weightRow(name string, value float64) string {
	barWidth := int(value * 30)
	if barWidth < 0 {
		barWidth = 0
	}
	bar := StyleBlue.Render(strings.Repeat("█", barWidth))
	return fmt.Sprintf("  %-14s %.2f %s\n", name, value, bar)
}

func catalogRow(label string, values []string) string {
	if len(values) == 0 {
		return fmt.Sprintf("%s %s\n", Dim(label+":"), Dim("any"))
	}
	return fmt.Sprintf("%s %s\n", Dim(label+":"), strings.Join(values, ", "))
}
