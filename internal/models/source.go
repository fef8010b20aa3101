package models

import (
	"fmt"
	"strings"
)

// Source — агентство, от имени которого выходит статья.
type Source string

const (
	SourceUnian Source = "Unian"
	SourceBNS   Source = "BNS"
	SourceApsny Source = "Apsny"
)

// DefaultSource подставляется, если источник не указан.
const DefaultSource = SourceUnian

// Sources возвращает допустимые источники в порядке отображения.
func Sources() []Source {
	return []Source{SourceUnian, SourceBNS, SourceApsny}
}

// ParseSource разбирает метку источника без учёта регистра.
// Пустая строка -> DefaultSource.
func ParseSource(s string) (Source, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSource, nil
	}

	for _, src := range Sources() {
		if strings.EqualFold(s, string(src)) {
			return src, nil
		}
	}

	return "", fmt.Errorf("unknown source %q", s)
}

func (s Source) String() string { return string(s) }
