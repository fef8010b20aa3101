// models содержит доменные сущности news-formatter.
// Эти типы используются слоями бизнес-логики, хранилища и транспорта.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Article — сохранённая статья категории.
//
// Особенности:
//   - Body хранит результат форматирования (с завершающей пустой строкой-разделителем),
//     а не исходный текст;
//   - Raw хранит исходный текст для повторного редактирования;
//   - порядок статей задаётся хранилищем, ID в порядке не участвует;
//   - временные метки — в UTC.
type Article struct {
	// ID — уникальный идентификатор статьи (UUIDv4).
	ID uuid.UUID `json:"id"`
	// Category — категория из фиксированного списка.
	Category string `json:"category"`
	// Title — заголовок.
	Title string `json:"title"`
	// City — город-источник в верхнем регистре.
	City string `json:"city"`
	// Source — агентство-источник.
	Source Source `json:"source"`
	// Raw — текст статьи в том виде, в котором его ввёл редактор.
	Raw string `json:"raw,omitempty"`
	// Body — отформатированный текст для экспорта.
	Body string `json:"content"`
	// CreatedAt — время первого сохранения.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt — время последнего пересохранения.
	UpdatedAt time.Time `json:"updated_at"`
}

// Draft — сырой ввод редактора до валидации и форматирования.
type Draft struct {
	Category string
	Title    string
	City     string
	Source   string
	Body     string
}

// CategoryCount — число статей в категории.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// IndexedArticle — статья вместе с её позицией в хранилище.
type IndexedArticle struct {
	Index   int     `json:"index"`
	Article Article `json:"article"`
}
