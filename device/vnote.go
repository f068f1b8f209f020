// SPDX-License-Identifier: GPL-3.0-or-later
package device

import (
	"fmt"
	"io/ioutil"
	"mime/quotedprintable"
	"strings"
)

// note is the content of a vNote 1.1 object.
type note struct {
	Summary    string
	Body       string
	Categories string
}

var vnoteEscaper = strings.NewReplacer(`\`, `\\`, "\r\n", `\n`, "\n", `\n`, ",", `\,`, ";", `\;`)

func (n *note) encode() string {
	var b strings.Builder
	b.WriteString("BEGIN:VNOTE\r\nVERSION:1.1\r\n")
	fmt.Fprintf(&b, "BODY:%s\r\n", vnoteEscaper.Replace(n.Body))
	summary := n.Summary
	if summary == "" {
		summary = strings.SplitN(strings.TrimSpace(n.Body), "\n", 2)[0]
		summary = strings.TrimSpace(summary)
	}
	if summary != "" {
		fmt.Fprintf(&b, "SUMMARY:%s\r\n", vnoteEscaper.Replace(summary))
	}
	if n.Categories != "" {
		fmt.Fprintf(&b, "CATEGORIES:%s\r\n", n.Categories)
	}
	b.WriteString("END:VNOTE\r\n")
	return b.String()
}

func parseVNote(content string) (*note, error) {
	lines := unfold(content)
	if len(lines) == 0 || !strings.EqualFold(lines[0], "BEGIN:VNOTE") {
		return nil, fmt.Errorf("not a vnote")
	}

	n := &note{}
	for _, line := range lines[1:] {
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		nameAndParams := strings.Split(line[:colon], ";")
		value := line[colon+1:]

		for _, param := range nameAndParams[1:] {
			if strings.EqualFold(param, "ENCODING=QUOTED-PRINTABLE") || strings.EqualFold(param, "QUOTED-PRINTABLE") {
				decoded, err := ioutil.ReadAll(quotedprintable.NewReader(strings.NewReader(value)))
				if err != nil {
					return nil, fmt.Errorf("could not decode quoted-printable value: %w", err)
				}
				value = string(decoded)
			}
		}

		switch strings.ToUpper(nameAndParams[0]) {
		case "BODY":
			n.Body = unescapeText(value)
		case "SUMMARY":
			n.Summary = unescapeText(value)
		case "CATEGORIES":
			n.Categories = value
		case "END":
			return n, nil
		}
	}

	return nil, fmt.Errorf("vnote not terminated")
}

// unfold joins folded lines and quoted-printable soft line breaks.
func unfold(content string) []string {
	raw := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	lines := []string{}
	for _, l := range raw {
		switch {
		case len(lines) > 0 && (strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t")):
			lines[len(lines)-1] += l[1:]
		case len(lines) > 0 && strings.HasSuffix(lines[len(lines)-1], "=") && isQuotedPrintable(lines[len(lines)-1]):
			lines[len(lines)-1] = lines[len(lines)-1][:len(lines[len(lines)-1])-1] + l
		case l != "":
			lines = append(lines, l)
		}
	}
	return lines
}

func isQuotedPrintable(line string) bool {
	colon := strings.IndexByte(line, ':')
	return colon > 0 && strings.Contains(strings.ToUpper(line[:colon]), "QUOTED-PRINTABLE")
}

func unescapeText(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n', 'N':
			b.WriteByte('\n')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
