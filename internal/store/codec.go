package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-news-formatter/internal/formatter"
	"github.com/pribylovaa/go-news-formatter/internal/models"
)

// blobVersion — версия конверта, который пишет encode.
const blobVersion = 1

var errUnsupportedVersion = errors.New("unsupported blob version")

// envelope — формат значения под ключом хранилища.
type envelope struct {
	Version  int              `json:"version"`
	Articles []models.Article `json:"articles"`
}

// legacyArticle — запись старого формата: голый массив без версии.
type legacyArticle struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func encode(items []models.Article) (string, error) {
	if items == nil {
		items = []models.Article{}
	}

	b, err := json.Marshal(envelope{Version: blobVersion, Articles: items})
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// decode разбирает значение из KV. Понимает текущий конверт и старый
// массив {category,title,content}; для старых записей исходник,
// город и источник восстанавливаются из отформатированного текста.
func decode(raw string, now time.Time) ([]models.Article, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var legacy []legacyArticle
		if err := json.Unmarshal([]byte(trimmed), &legacy); err != nil {
			return nil, fmt.Errorf("decode legacy: %w", err)
		}

		items := make([]models.Article, 0, len(legacy))
		for _, l := range legacy {
			items = append(items, fromLegacy(l, now))
		}

		return items, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	if env.Version != blobVersion {
		return nil, fmt.Errorf("%w: %d", errUnsupportedVersion, env.Version)
	}

	for i := range env.Articles {
		if env.Articles[i].ID == uuid.Nil {
			env.Articles[i].ID = uuid.New()
		}
	}

	return env.Articles, nil
}

func fromLegacy(l legacyArticle, now time.Time) models.Article {
	a := models.Article{
		ID:        uuid.New(),
		Category:  l.Category,
		Title:     l.Title,
		Source:    models.DefaultSource,
		Body:      l.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if d, ok := formatter.Unformat(l.Content); ok {
		a.City = d.City
		a.Raw = d.Body
		if src, err := models.ParseSource(d.Source); err == nil {
			a.Source = src
		}
	}

	return a
}
