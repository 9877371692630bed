// Command reagent runs the task agent as an interactive REPL: each input
// line becomes one agent run, with the step trace colorized line-by-line and
// the final answer printed at the end. Type "exit" or "quit" (or send EOF)
// to leave.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sbrizzi/reagent"
	"github.com/sbrizzi/reagent/config"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	planStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true)
	confirmStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	checkStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Faint(true)
	actionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	obsStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	finalStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	answerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	todayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	zoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// colorize styles one trace line by its prefix; unknown prefixes pass
// through unchanged.
func colorize(line string) string {
	switch s := strings.TrimSpace(line); {
	case strings.HasPrefix(s, "Plan:"):
		return planStyle.Render(line)
	case strings.HasPrefix(s, "Confirm:"):
		return confirmStyle.Render(line)
	case strings.HasPrefix(s, "Check-Final:"):
		return checkStyle.Render(line)
	case strings.HasPrefix(s, "Action:"):
		return actionStyle.Render(line)
	case strings.HasPrefix(s, "Action Input:"):
		return actionStyle.Render("  " + line)
	case strings.HasPrefix(s, "Observation:"):
		return obsStyle.Render(line)
	case strings.HasPrefix(s, "Final Answer:"):
		return finalStyle.Render(line)
	default:
		return line
	}
}

func main() {
	configPath := flag.String("config", "", "path to a YAML settings file (optional)")
	flag.Parse()

	settings, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[ERROR] "+err.Error()))
		os.Exit(1)
	}

	a, err := reagent.New(settings)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("[ERROR] "+err.Error()))
		os.Exit(1)
	}

	fmt.Println(headerStyle.Render("=== ReAct Agent REPL ==="))
	fmt.Printf("[Env] Today is %s (Timezone: %s)\n",
		todayStyle.Render(a.Today()), zoneStyle.Render(settings.Timezone))
	fmt.Println("Type your question, or 'exit' to quit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(promptStyle.Render("\nYou> "))
		if !scanner.Scan() {
			fmt.Println("\nBye!")
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if lower := strings.ToLower(input); lower == "exit" || lower == "quit" {
			return
		}

		fmt.Println(headerStyle.Render("\n--- Agent Trace ---"))
		final, err := a.Run(context.Background(), input, func(line string) {
			fmt.Println(colorize(line))
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, errorStyle.Render("[ERROR] "+err.Error()))
			continue
		}

		fmt.Println(finalStyle.Render("\n=== Final Answer ==="))
		fmt.Println(answerStyle.Render(final))
	}
}
