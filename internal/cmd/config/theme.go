package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	appconfig "github.com/Iron-Ham/rebuttal/internal/config"
	"github.com/Iron-Ham/rebuttal/internal/tui/styles"
)

// themeFs holds custom theme files; tests swap in a memory filesystem.
var themeFs afero.Fs = afero.NewOsFs()

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Manage color themes",
	Long: `Manage color themes for the debate screen.

Rebuttal ships built-in themes and reads custom themes from YAML files.
Custom themes live in ~/.config/rebuttal/themes/ and are selected with
  rebuttal config set tui.theme themes/<name>.yaml

Use 'theme list' to see all available themes.
Use 'theme export' to create a template for custom themes.
Use 'theme info' to view details about a specific theme.`,
}

var themeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available themes",
	RunE:  runThemeList,
}

var themeExportCmd = &cobra.Command{
	Use:   "export <theme-name> [output-file]",
	Short: "Export a theme to YAML",
	Long: `Export a theme to YAML format for customization or sharing.

If no output file is specified, the YAML is printed to stdout.

Examples:
  rebuttal config theme export default                 # Print default theme to stdout
  rebuttal config theme export classroom my-theme.yaml # Save classroom theme to file`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runThemeExport,
}

var themeInfoCmd = &cobra.Command{
	Use:   "info <theme-name>",
	Short: "Show information about a theme",
	Args:  cobra.ExactArgs(1),
	RunE:  runThemeInfo,
}

var themePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the custom themes directory path",
	RunE:  runThemePath,
}

var themeCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new custom theme from the default template",
	Long: `Create a new custom theme file in your themes directory.

Example:
  rebuttal config theme create chalkboard
  # Creates ~/.config/rebuttal/themes/chalkboard.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runThemeCreate,
}

func init() {
	themeCmd.AddCommand(themeListCmd)
	themeCmd.AddCommand(themeExportCmd)
	themeCmd.AddCommand(themeInfoCmd)
	themeCmd.AddCommand(themePathCmd)
	themeCmd.AddCommand(themeCreateCmd)
	configCmd.AddCommand(themeCmd)
}

// themesDir is where custom theme files are kept.
func themesDir() string {
	return filepath.Join(appconfig.ConfigDir(), styles.ThemesDirName)
}

// customThemeFiles lists the YAML files in the themes directory.
func customThemeFiles() ([]string, error) {
	entries, err := afero.ReadDir(themeFs, themesDir())
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && styles.IsThemeFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// loadTheme resolves a built-in name, a custom theme name, or a path to a
// theme file. custom is false for built-in themes.
func loadTheme(name string) (theme *styles.ThemeFile, custom bool, err error) {
	if styles.IsBuiltinTheme(name) {
		return styles.ThemeFileFromPalette(name, styles.GetPalette(styles.ThemeName(name))), false, nil
	}

	path := name
	if !styles.IsThemeFile(path) {
		path = filepath.Join(styles.ThemesDirName, name+".yaml")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(appconfig.ConfigDir(), path)
	}
	if exists, _ := afero.Exists(themeFs, path); !exists {
		return nil, false, fmt.Errorf("unknown theme: %s\n\nRun 'rebuttal config theme list' to see available themes.\nCustom themes should be placed in: %s", name, themesDir())
	}
	theme, err = styles.LoadThemeFile(themeFs, path)
	if err != nil {
		return nil, true, fmt.Errorf("theme '%s' exists but failed to load: %w\n\nFix the errors in your theme file and try again", name, err)
	}
	return theme, true, nil
}

func runThemeList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	fmt.Fprintln(out, "Available themes:")
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Built-in themes:")
	printList(out, styles.BuiltinThemes())

	files, _ := customThemeFiles()
	if len(files) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Custom themes:")
		for _, file := range files {
			theme, err := styles.LoadThemeFile(themeFs, filepath.Join(themesDir(), file))
			switch {
			case err != nil:
				fmt.Fprintf(out, "  - %s (failed to load: %v)\n", file, err)
			case theme.Author != "":
				fmt.Fprintf(out, "  - %s: %s (by %s)\n", file, theme.Name, theme.Author)
			default:
				fmt.Fprintf(out, "  - %s: %s\n", file, theme.Name)
			}
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Custom themes directory: %s\n", themesDir())
	return nil
}

func runThemeExport(cmd *cobra.Command, args []string) error {
	theme, _, err := loadTheme(args[0])
	if err != nil {
		return err
	}

	data, err := theme.Marshal()
	if err != nil {
		return fmt.Errorf("exporting theme: %w", err)
	}

	if len(args) > 1 {
		outputPath := args[1]
		if err := afero.WriteFile(themeFs, outputPath, data, 0o644); err != nil {
			return fmt.Errorf("writing to %s: %w", outputPath, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme exported to: %s\n", outputPath)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), string(data))
	return nil
}

func runThemeInfo(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	name := args[0]

	theme, custom, err := loadTheme(name)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Theme: %s\n", name)
	fmt.Fprintln(out)
	if !custom {
		fmt.Fprintln(out, "Type: Built-in")
	} else {
		fmt.Fprintln(out, "Type: Custom")
		fmt.Fprintf(out, "Name: %s\n", theme.Name)
		if theme.Author != "" {
			fmt.Fprintf(out, "Author: %s\n", theme.Author)
		}
		if theme.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", theme.Description)
		}
	}

	palette := theme.ToPalette()
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Base Colors:")
	fmt.Fprintf(out, "  Primary:   %s\n", palette.Primary)
	fmt.Fprintf(out, "  Secondary: %s\n", palette.Secondary)
	fmt.Fprintf(out, "  Warning:   %s\n", palette.Warning)
	fmt.Fprintf(out, "  Error:     %s\n", palette.Error)
	fmt.Fprintf(out, "  Muted:     %s\n", palette.Muted)
	fmt.Fprintf(out, "  Surface:   %s\n", palette.Surface)
	fmt.Fprintf(out, "  Text:      %s\n", palette.Text)
	fmt.Fprintf(out, "  Border:    %s\n", palette.Border)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Debate Colors:")
	fmt.Fprintf(out, "  Pro:       %s\n", palette.Pro)
	fmt.Fprintf(out, "  Con:       %s\n", palette.Con)
	fmt.Fprintf(out, "  AI:        %s\n", palette.AI)
	return nil
}

func runThemePath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	dir := themesDir()
	fmt.Fprintln(out, dir)

	if exists, _ := afero.DirExists(themeFs, dir); !exists {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Note: This directory does not exist yet.")
		fmt.Fprintln(out, "It will be created when you add your first custom theme.")
	}
	return nil
}

func runThemeCreate(cmd *cobra.Command, args []string) error {
	name := args[0]

	if name == "" {
		return fmt.Errorf("theme name cannot be empty")
	}
	if strings.ContainsAny(name, "/\\:*?\"<>|") {
		return fmt.Errorf("theme name contains invalid characters")
	}
	if styles.IsBuiltinTheme(name) {
		return fmt.Errorf("cannot create custom theme with built-in name '%s'", name)
	}

	themePath := filepath.Join(themesDir(), name+".yaml")
	theme := styles.ThemeFileFromPalette(capitalizeFirst(name), styles.DefaultPalette())
	theme.Description = "A custom rebuttal theme"

	if err := styles.SaveThemeFile(themeFs, themePath, theme); err != nil {
		return fmt.Errorf("creating theme: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created new theme: %s\n", themePath)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Edit this file to customize your theme colors.")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "To use your new theme, run:\n")
	fmt.Fprintf(out, "  rebuttal config set tui.theme %s/%s.yaml\n", styles.ThemesDirName, name)
	return nil
}

// capitalizeFirst capitalizes the first character of a string.
// This is a simple replacement for strings.Title which is deprecated.
func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
