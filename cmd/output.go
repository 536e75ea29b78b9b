package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// printJSON pretty-prints a decoded API value to stdout.
func printJSON(data any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(data)
}

// printPRTable renders pull requests as a fixed-width table.
func printPRTable(prs []map[string]any) {
	if len(prs) == 0 {
		fmt.Println("No pull requests.")
		return
	}

	headers := []string{"ID", "STATE", "AUTHOR", "REFS", "TITLE"}
	rows := make([][]string, 0, len(prs))
	for _, pr := range prs {
		rows = append(rows, []string{
			formatID(pr["id"]),
			stringField(pr, "state"),
			prAuthor(pr),
			fmt.Sprintf("%s -> %s", refDisplay(pr, "fromRef"), refDisplay(pr, "toRef")),
			strings.ReplaceAll(stringField(pr, "title"), "\n", " "),
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	printRow := func(row []string) {
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Println(strings.TrimRight(strings.Join(cells, "  "), " "))
	}

	printRow(headers)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	fmt.Println(strings.Join(rule, "  "))
	for _, row := range rows {
		printRow(row)
	}
}

// createdPRSummary builds the one-line confirmation printed after pr create.
func createdPRSummary(created map[string]any) string {
	id := formatID(created["id"])
	if id == "" {
		id = "?"
	}
	summary := "Created PR #" + id

	links := mapField(created, "links")
	if selfLinks, ok := links["self"].([]any); ok && len(selfLinks) > 0 {
		if self, ok := selfLinks[0].(map[string]any); ok {
			if href := stringField(self, "href"); href != "" {
				summary += ": " + href
			}
		}
	}
	return summary
}

func formatID(v any) string {
	switch id := v.(type) {
	case float64:
		return fmt.Sprintf("%.0f", id)
	case string:
		return id
	default:
		return ""
	}
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func mapField(m map[string]any, key string) map[string]any {
	child, _ := m[key].(map[string]any)
	return child
}

// refDisplay prefers the human-readable displayId over the full ref id.
func refDisplay(pr map[string]any, key string) string {
	ref := mapField(pr, key)
	if display := stringField(ref, "displayId"); display != "" {
		return display
	}
	return stringField(ref, "id")
}

// prAuthor prefers the display name over the login name.
func prAuthor(pr map[string]any) string {
	user := mapField(mapField(pr, "author"), "user")
	if display := stringField(user, "displayName"); display != "" {
		return display
	}
	return stringField(user, "name")
}
