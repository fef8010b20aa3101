package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pribylovaa/go-news-formatter/internal/models"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2196F3"))
	categoryStyle = lipgloss.NewStyle().Width(14)
	countStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#9E9E9E"))
	indexStyle    = lipgloss.NewStyle().Width(5).Align(lipgloss.Right)
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	bodyStyle     = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#d6dae0")).
			Padding(0, 1)
)

// renderCategories — категории со счётчиками; пустые приглушены.
func renderCategories(counts []models.CategoryCount) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Категории"))
	b.WriteByte('\n')

	for _, c := range counts {
		n := countStyle.Render(fmt.Sprint(c.Count))
		if c.Count == 0 {
			n = mutedStyle.Render("0")
		}
		b.WriteString(categoryStyle.Render(c.Category))
		b.WriteString(n)
		b.WriteByte('\n')
	}

	return b.String()
}

// renderList — статьи с индексами хранилища.
func renderList(list []models.IndexedArticle) string {
	if len(list) == 0 {
		return mutedStyle.Render("нет статей") + "\n"
	}

	var b strings.Builder
	for _, it := range list {
		a := it.Article
		b.WriteString(indexStyle.Render(fmt.Sprintf("#%d", it.Index)))
		b.WriteString("  ")
		b.WriteString(categoryStyle.Render(a.Category))
		b.WriteString(a.Title)
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  (%s, %s)", a.City, a.Source)))
		b.WriteByte('\n')
	}

	return b.String()
}

// renderArticle — карточка статьи с отформатированным текстом.
func renderArticle(index int, a models.Article) string {
	head := headerStyle.Render(fmt.Sprintf("#%d %s", index, a.Title)) +
		mutedStyle.Render(fmt.Sprintf("  %s · %s · %s", a.Category, a.City, a.Source))

	return head + "\n" + bodyStyle.Render(strings.TrimRight(a.Body, "\n")) + "\n"
}

func renderWarn(msg string) string {
	return warnStyle.Render(msg) + "\n"
}
