package main

import (
	"html"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		// plain text first, otherwise pbpaste may hand back RTF
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

// clipboardNoteText reads the clipboard and reduces rich content to the plain
// text a note can hold.
func clipboardNoteText() (string, error) {
	text, err := readClipboardText()
	if err != nil {
		return "", err
	}
	return plainText(text), nil
}

func plainText(text string) string {
	switch {
	case isRTF(text):
		text = extractTextFromRTF(text)
	case isHTML(text):
		text = extractTextFromHTML(text)
	}
	return cleanClipboardText(text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<p"))
}

// RTF groups whose content is metadata, not document text.
var rtfSkipGroups = map[string]bool{
	"fonttbl":    true,
	"colortbl":   true,
	"stylesheet": true,
	"info":       true,
	"*":          true,
}

// extractTextFromRTF keeps literal text, \par and \line as newlines, \tab as
// a tab and \'hh escapes as the byte they encode.
func extractTextFromRTF(rtf string) string {
	var out strings.Builder
	out.Grow(len(rtf))

	depth := 0
	skipBelow := -1 // depth at which a skipped group started
	skipping := func() bool { return skipBelow >= 0 && depth >= skipBelow }

	for i := 0; i < len(rtf); i++ {
		c := rtf[i]
		switch c {
		case '{':
			depth++
			continue
		case '}':
			if skipBelow == depth {
				skipBelow = -1
			}
			depth--
			continue
		case '\r', '\n':
			continue
		case '\\':
		default:
			if !skipping() {
				out.WriteByte(c)
			}
			continue
		}

		if i+1 >= len(rtf) {
			break
		}
		next := rtf[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			if !skipping() {
				out.WriteByte(next)
			}
			i++
		case next == '\'' && i+3 < len(rtf):
			if v, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil && !skipping() {
				out.WriteByte(byte(v))
			}
			i += 3
		case next == '*':
			if skipBelow < 0 {
				skipBelow = depth
			}
			i++
		case next == '~':
			if !skipping() {
				out.WriteByte(' ')
			}
			i++
		case next == '-' || next == '_':
			if !skipping() && next == '_' {
				out.WriteByte('-')
			}
			i++
		case isASCIILetter(next):
			j := i + 1
			for j < len(rtf) && isASCIILetter(rtf[j]) {
				j++
			}
			word := rtf[i+1 : j]
			for j < len(rtf) && (rtf[j] == '-' || (rtf[j] >= '0' && rtf[j] <= '9')) {
				j++
			}
			if j < len(rtf) && rtf[j] == ' ' {
				j++
			}
			i = j - 1

			if rtfSkipGroups[word] && skipBelow < 0 {
				skipBelow = depth
				continue
			}
			if skipping() {
				continue
			}
			switch word {
			case "par", "line":
				out.WriteByte('\n')
			case "tab":
				out.WriteByte('\t')
			}
		default:
			i++
		}
	}
	return out.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

var (
	htmlBreak = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>`)
	htmlTag   = regexp.MustCompile(`<[^>]*>`)
)

func extractTextFromHTML(doc string) string {
	text := htmlBreak.ReplaceAllString(doc, "\n")
	text = htmlTag.ReplaceAllString(text, "")
	return html.UnescapeString(text)
}

// cleanClipboardText normalises line endings and drops control characters
// other than newline and tab.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 && r != 127 {
			result.WriteRune(r)
		}
	}
	return strings.TrimRight(result.String(), "\n")
}
