// exporter собирает статьи категории в один текстовый блок для выпуска.
package exporter

import (
	"strings"

	"github.com/pribylovaa/go-news-formatter/internal/formatter"
	"github.com/pribylovaa/go-news-formatter/internal/models"
)

// Export склеивает сохранённые тела статей в порядке records.
// Каждый блок приводится к окончанию ровно одной пустой строкой,
// поэтому соседние блоки разделены одной пустой строкой.
// Тексты не фильтруются и не переформатируются. Пустой ввод -> "".
func Export(records []models.Article) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(strings.TrimRight(r.Body, "\r\n"))
		b.WriteString(formatter.Separator)
	}

	return b.String()
}
