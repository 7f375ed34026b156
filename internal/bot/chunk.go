package bot

import "strings"

// chunkLines режет текст на куски не длиннее limit байт, по возможности по
// границам строк. Строка длиннее limit режется по рунам.
func chunkLines(text string, limit int) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	if len(text) <= limit {
		return []string{text}
	}

	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for len(line) > limit {
			flush()
			cut := runeCut(line, limit)
			out = append(out, line[:cut])
			line = line[cut:]
		}
		if cur.Len() > 0 && cur.Len()+1+len(line) > limit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()
	return out
}

// runeCut — наибольший индекс <= limit, не разрывающий руну.
func runeCut(s string, limit int) int {
	cut := limit
	for cut > 0 && !isRuneStart(s[cut]) {
		cut--
	}
	if cut == 0 {
		return limit
	}
	return cut
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }

var markdown = strings.NewReplacer("**", "", "__", "", "*", "", "`", "")

// stripMarkdown убирает разметку Discord для чатов, где она не рендерится.
func stripMarkdown(s string) string {
	return markdown.Replace(s)
}
