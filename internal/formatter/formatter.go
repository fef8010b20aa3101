// formatter превращает сырой текст статьи в строковую грамматику,
// которую ожидает система выпуска:
//
//	 -PAGE-
//	Заголовок
//	ГОРОД (Источник) - первая строка
//	   продолжение
//	 -END-
//
// Все функции пакета чистые.
package formatter

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pribylovaa/go-news-formatter/internal/models"
)

const (
	// PageMarker открывает блок статьи.
	PageMarker = " -PAGE-"
	// EndMarker закрывает блок статьи.
	EndMarker = " -END-"
	// Indent заменяет ведущие пробелы строк-продолжений.
	Indent = "   "
	// Separator завершает сохранённый блок: одна пустая строка перед следующим.
	Separator = "\n\n"
)

// Format форматирует статью.
//
// Правила:
//   - первая строка body остаётся как есть;
//   - у каждой следующей строки ведущие пробельные символы заменяются ровно на Indent;
//   - пустые и пробельные строки итогового текста выбрасываются;
//   - результат не заканчивается переводом строки.
//
// Обязательность полей здесь не проверяется — это задача вызывающего.
// Повторный вызов на уже отформатированном тексте ломает отступы маркеров.
func Format(title, city, source, body string) string {
	lines := strings.Split(normalizeNewlines(body), "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = Indent + strings.TrimLeftFunc(lines[i], unicode.IsSpace)
	}

	var b strings.Builder
	b.WriteString(PageMarker)
	b.WriteByte('\n')
	b.WriteString(title)
	b.WriteByte('\n')
	b.WriteString(city)
	b.WriteString(" (")
	b.WriteString(source)
	b.WriteString(") - ")
	b.WriteString(strings.Join(lines, "\n"))
	b.WriteByte('\n')
	b.WriteString(EndMarker)

	return dropBlankLines(b.String())
}

// Record — Format плюс разделитель экспорта; именно это хранится в Article.Body.
func Record(title, city, source, body string) string {
	return Format(title, city, source, body) + Separator
}

var headerRe = regexp.MustCompile(`^(.*?) \(([^()]+)\) - ?(.*)$`)

// Unformat восстанавливает черновик из отформатированного блока.
// Нужен для статей без сохранённого исходника (импорт старого формата).
// Отступы строк-продолжений снимаются, поэтому
// Format(Unformat(x)) == x для любого x, полученного через Format.
// ok=false, если блок не соответствует грамматике.
func Unformat(formatted string) (models.Draft, bool) {
	var lines []string
	for _, l := range strings.Split(normalizeNewlines(formatted), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}

	if len(lines) < 3 ||
		strings.TrimSpace(lines[0]) != strings.TrimSpace(PageMarker) ||
		strings.TrimSpace(lines[len(lines)-1]) != strings.TrimSpace(EndMarker) {
		return models.Draft{}, false
	}
	inner := lines[1 : len(lines)-1]

	var title string
	header := -1
	switch {
	case len(inner) >= 2 && headerRe.MatchString(inner[1]):
		title, header = inner[0], 1
	case headerRe.MatchString(inner[0]):
		header = 0
	default:
		return models.Draft{}, false
	}

	m := headerRe.FindStringSubmatch(inner[header])
	body := []string{m[3]}
	for _, l := range inner[header+1:] {
		body = append(body, strings.TrimLeftFunc(l, unicode.IsSpace))
	}

	return models.Draft{
		Title:  title,
		City:   m[1],
		Source: m[2],
		Body:   strings.Join(body, "\n"),
	}, true
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

func dropBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}

	return strings.Join(out, "\n")
}
