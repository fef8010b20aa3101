// forbidden ищет в тексте статьи запрещённые фразы (стоп-лист источников,
// «Читайте также:» и т.п.) и решает, что с ними делать согласно политике.
package forbidden

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Policy — реакция на найденные запрещённые фразы.
type Policy int

const (
	// Block — сохранение статьи запрещено.
	Block Policy = iota
	// Annotate — строки с фразами помечаются маркером, сохранение разрешено.
	Annotate
)

// DefaultPhrases — стоп-лист по умолчанию.
var DefaultPhrases = []string{"Укринформ", "Читайте также:"}

// DefaultMarker — маркер, которым обрамляются помеченные строки.
const DefaultMarker = "!!!"

// ParsePolicy разбирает политику из конфигурации ("block" | "annotate").
// Пустая строка -> Block.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "block":
		return Block, nil
	case "annotate":
		return Annotate, nil
	default:
		return Block, fmt.Errorf("unknown forbidden policy %q", s)
	}
}

func (p Policy) String() string {
	if p == Annotate {
		return "annotate"
	}

	return "block"
}

// Detector — чистый детектор запрещённых фраз.
// Сравнение регистронезависимое (Unicode case folding).
type Detector struct {
	phrases []string
	folded  []string
	policy  Policy
	marker  string
}

// New создаёт детектор. Пустые фразы отбрасываются,
// пустой marker заменяется на DefaultMarker.
func New(phrases []string, policy Policy, marker string) *Detector {
	d := &Detector{policy: policy, marker: strings.TrimSpace(marker)}
	if d.marker == "" {
		d.marker = DefaultMarker
	}

	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		d.phrases = append(d.phrases, p)
		d.folded = append(d.folded, fold(p))
	}

	return d
}

// Policy возвращает политику детектора.
func (d *Detector) Policy() Policy { return d.policy }

// Detect сообщает, содержит ли text хотя бы одну запрещённую фразу.
func (d *Detector) Detect(text string) bool {
	if text == "" || len(d.folded) == 0 {
		return false
	}

	f := fold(text)
	for _, p := range d.folded {
		if strings.Contains(f, p) {
			return true
		}
	}

	return false
}

// Matches возвращает найденные фразы в написании из стоп-листа.
func (d *Detector) Matches(text string) []string {
	if text == "" {
		return nil
	}

	f := fold(text)
	var out []string
	for i, p := range d.folded {
		if strings.Contains(f, p) {
			out = append(out, d.phrases[i])
		}
	}

	return out
}

// Annotate обрамляет маркером каждую строку body, содержащую запрещённую фразу.
// Остальные строки не меняются.
func (d *Detector) Annotate(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if d.Detect(line) {
			lines[i] = d.marker + " " + line + " " + d.marker
		}
	}

	return strings.Join(lines, "\n")
}

// fold приводит строку к форме для регистронезависимого сравнения.
// cases.Caser хранит состояние, поэтому создаётся на каждый вызов.
func fold(s string) string {
	return cases.Fold().String(s)
}
