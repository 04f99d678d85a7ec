package main

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// copySelection puts the selected connection id, or the selected node
// ids one per line, on the clipboard.
func (m *model) copySelection() {
	var text string
	if id := m.canvas.Selection().Connection(); id != "" {
		text = id
	} else {
		text = strings.Join(m.canvas.Selection().IDs(), "\n")
	}
	if text == "" {
		m.errorMessage = "nothing selected"
		return
	}
	if err := writeClipboardText(text); err != nil {
		m.errorMessage = fmt.Sprintf("failed to copy: %v", err)
		return
	}
	m.successMessage = "Copied to clipboard"
}

func writeClipboardText(text string) error {
	if runtime.GOOS == "darwin" {
		cmd := exec.Command("pbcopy")
		cmd.Stdin = strings.NewReader(text)
		if err := cmd.Run(); err == nil {
			return nil
		}
	}
	return clipboard.WriteAll(text)
}

func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
