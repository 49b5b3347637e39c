// Package ui renders terminal output for the videohub-cfg commands.
//
// Components use Lipgloss for styling and follow a "print once" pattern:
//
//   - Header: command banner with the hub address and other parameters
//   - ApplyProgress: progress bar plus one line per route directive
//   - RenderComparison: preset-vs-hub table, matches in green, differences in red
//   - Result: success, warning and failure boxes with troubleshooting tips
//   - Confirm: yes/no prompts before overwriting, deleting or applying
//
// The interactive menu lives in package menu and reuses these styles.
//
// Logging is controlled by VIDEOHUB_LOG_LEVEL. When unset, zap is silent
// and only this package's output reaches the terminal.
package ui
