package main

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// cleanClipboardText reduces rich clipboard content to plain text with \n line
// endings and no control characters other than tabs.
func cleanClipboardText(text string) string {
	switch {
	case isRTF(text):
		text = stripRTF(text)
	case isHTML(text):
		text = stripHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r >= 32 {
			return r
		}
		return -1
	}, text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf")
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div"))
}

// stripRTF drops groups' braces and control words, keeping \par and \line as newlines.
func stripRTF(rtf string) string {
	var out strings.Builder
	runes := []rune(rtf)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{', '}':
			continue
		case '\\':
			if i+1 >= len(runes) {
				continue
			}
			next := runes[i+1]
			if next == '\\' || next == '{' || next == '}' {
				out.WriteRune(next)
				i++
				continue
			}
			j := i + 1
			for j < len(runes) && isLetter(runes[j]) {
				j++
			}
			word := string(runes[i+1 : j])
			for j < len(runes) && (runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
				j++
			}
			if j < len(runes) && runes[j] == ' ' {
				j++
			}
			switch word {
			case "par", "line":
				out.WriteRune('\n')
			case "tab":
				out.WriteRune('\t')
			}
			i = j - 1
		case '\n', '\r':
			// raw newlines in RTF source are not content
		default:
			out.WriteRune(r)
		}
	}
	return strings.TrimSpace(out.String())
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<", "&gt;", ">", "&amp;", "&", "&quot;", "\"", "&#39;", "'", "&nbsp;", " ",
)

func stripHTML(html string) string {
	var out strings.Builder
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return strings.TrimSpace(htmlEntities.Replace(out.String()))
}

// paste creates a note from the clipboard at the pointer.
func (m *ui) paste() {
	raw, err := readClipboardText()
	if err != nil {
		m.fail(err)
		return
	}
	text := cleanClipboardText(raw)
	if strings.TrimSpace(text) == "" {
		m.notify("Clipboard is empty")
		return
	}
	m.selected, m.hasSelected = m.ws.PasteNote(m.docCursor(), text), true
}

func (m *ui) copySelected() {
	text, ok := m.ws.Text(m.selected)
	if !ok {
		m.fail(errNoSelection)
		return
	}
	if err := writeClipboardText(text); err != nil {
		m.fail(err)
		return
	}
	m.notify("Copied %d characters", len([]rune(text)))
}
