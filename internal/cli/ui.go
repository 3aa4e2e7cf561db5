package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mcptooling/mcpreg/pkg/registry"
)

// descriptionWidth is the column budget for server descriptions in the
// search results table.
const descriptionWidth = 60

// Color palette.
var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// Styles.
var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)
	StyleLink      = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue     = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached = lipgloss.NewStyle().Foreground(colorGreen)
	styleFresh  = lipgloss.NewStyle().Foreground(colorGray)

	styleTableHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// Icons.
const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints a search summary line: result count plus whether the
// answer came from the cache.
func printStats(count int, cached bool) {
	status := iconFresh
	statusStyle := styleFresh
	if cached {
		status = iconCached
		statusStyle = styleCached
	}
	noun := "servers"
	if count == 1 {
		noun = "server"
	}
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf("%d %s", count, noun)) +
		StyleDim.Render(" · ") + statusStyle.Render(status))
}

// truncate shortens s to max runes, ending with an ellipsis when cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// renderSearchTable renders search results as a bordered table.
func renderSearchTable(servers []registry.Server) string {
	rows := make([][]string, 0, len(servers))
	for _, srv := range servers {
		rows = append(rows, []string{
			srv.Name,
			truncate(srv.Description, descriptionWidth),
			srv.Version,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Description", "Version").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if col == 0 {
				return StyleHighlight
			}
			return StyleValue
		})
	return t.Render()
}

// printServer renders the full detail view for one server.
func printServer(srv *registry.Server) {
	fmt.Println(StyleTitle.Render(srv.Name))
	if srv.Description != "" {
		fmt.Println(StyleDim.Render(srv.Description))
	}
	fmt.Println()

	printKeyValue("ID", srv.ID())
	printKeyValue("Version", srv.Version)
	printKeyValue("Status", srv.Status)
	if !srv.Meta.Official.PublishedAt.IsZero() {
		printKeyValue("Published", srv.Meta.Official.PublishedAt.Format("2006-01-02"))
	}
	if !srv.Meta.Official.UpdatedAt.IsZero() {
		printKeyValue("Updated", srv.Meta.Official.UpdatedAt.Format("2006-01-02"))
	}
	if srv.Repository.URL != "" {
		printKeyValue("Repository", StyleLink.Render(srv.Repository.URL))
	}

	if len(srv.Remotes) > 0 {
		fmt.Println()
		fmt.Println(StyleTitle.Render("Remotes"))
		for _, remote := range srv.Remotes {
			printDetail("%s %s", remote.Type, remote.URL)
		}
	}

	for _, pkg := range srv.Packages {
		fmt.Println()
		fmt.Println(StyleTitle.Render("Package " + pkg.Identifier))
		printKeyValue("Registry", pkg.RegistryType)
		printKeyValue("Version", pkg.Version)
		if pkg.RuntimeHint != "" {
			printKeyValue("Runtime", pkg.RuntimeHint)
		}
		if pkg.Transport != nil {
			printKeyValue("Transport", strings.TrimSpace(pkg.Transport.Type+" "+pkg.Transport.URL))
		}
		if len(pkg.EnvironmentVars) > 0 {
			fmt.Println(StyleDim.Render("  Environment:"))
			for _, env := range pkg.EnvironmentVars {
				line := env.Name
				if env.IsRequired {
					line += " (required)"
				}
				if env.IsSecret {
					line += " (secret)"
				}
				if env.Description != "" {
					line += " - " + env.Description
				}
				printDetail("%s", line)
			}
		}
	}
}
