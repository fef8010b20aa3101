// rates — справка по официальному курсу валют НБУ для статей основного источника.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pribylovaa/go-news-formatter/internal/clipboard"
	"github.com/pribylovaa/go-news-formatter/internal/models"
	"github.com/pribylovaa/go-news-formatter/pkg/log"
)

// DefaultURL — JSON-выгрузка курсов НБУ на текущую дату.
const DefaultURL = "https://bank.gov.ua/NBUStatService/v1/statdirectory/exchange?json"

// Метки транспорта для OnFailure.
const (
	TransportNetwork   = "rates"
	TransportClipboard = "clipboard"
)

// ErrMissingCurrency — в ответе нет USD или EUR.
var ErrMissingCurrency = errors.New("rates: currency missing in response")

// Options — параметры сервиса курсов.
type Options struct {
	// URL — адрес выгрузки (по умолчанию DefaultURL).
	URL string
	// Primary — источник, для которого выдаётся справка (по умолчанию Unian).
	Primary models.Source
	// Clipboard получает готовую справку; nil — не копировать.
	Clipboard clipboard.Writer
	// OnFailure вызывается с меткой транспорта на каждую ошибку.
	OnFailure func(transport string)
	// Now — источник локального времени для даты справки.
	Now func() time.Time
}

// Service получает курсы и форматирует справку.
type Service struct {
	client *http.Client
	opts   Options
}

// New создаёт сервис. HTTP-клиент настраивается извне (таймауты, прокси).
func New(client *http.Client, opts Options) *Service {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	if opts.URL == "" {
		opts.URL = DefaultURL
	}

	if opts.Primary == "" {
		opts.Primary = models.DefaultSource
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Service{client: client, opts: opts}
}

// Primary — источник, для которого работает справка.
func (s *Service) Primary() models.Source { return s.opts.Primary }

// Lookup возвращает справку и копирует её в буфер обмена.
//
// Поведение:
//   - источник не основной — ("", false) без сетевого запроса;
//   - любая ошибка сети или разбора логируется, ("", false);
//   - ошибка буфера обмена логируется, но справка возвращается.
func (s *Service) Lookup(ctx context.Context, source models.Source) (string, bool) {
	const op = "rates.Lookup"

	if source != s.opts.Primary {
		return "", false
	}

	lg := log.From(ctx)

	usd, eur, err := s.Fetch(ctx)
	if err != nil {
		lg.Warn("rates_fetch_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		s.failed(TransportNetwork)
		return "", false
	}

	text := Format(s.opts.Now(), usd, eur)

	if s.opts.Clipboard != nil {
		if err := s.opts.Clipboard.Write(ctx, text); err != nil {
			lg.Warn("rates_clipboard_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
			s.failed(TransportClipboard)
		}
	}

	lg.Debug("rates_ready", slog.String("op", op), slog.Float64("usd", usd), slog.Float64("eur", eur))

	return text, true
}

// currency — элемент ответа НБУ.
type currency struct {
	CC   string  `json:"cc"`
	Rate float64 `json:"rate"`
}

// Fetch загружает выгрузку и возвращает курсы USD и EUR.
func (s *Service) Fetch(ctx context.Context) (usd, eur float64, err error) {
	const op = "rates.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.opts.URL, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: new_request: %w", op, err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: do: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, 0, fmt.Errorf("%s: status=%d", op, resp.StatusCode)
	}

	var list []currency
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return 0, 0, fmt.Errorf("%s: decode: %w", op, err)
	}

	var haveUSD, haveEUR bool
	for _, c := range list {
		switch c.CC {
		case "USD":
			if !haveUSD {
				usd, haveUSD = c.Rate, true
			}
		case "EUR":
			if !haveEUR {
				eur, haveEUR = c.Rate, true
			}
		}
	}

	if !haveUSD || !haveEUR {
		return 0, 0, fmt.Errorf("%s: %w", op, ErrMissingCurrency)
	}

	return usd, eur, nil
}

// Format собирает трёхстрочную справку. Дата — DD.MM.YYYY, курсы — три знака.
func Format(date time.Time, usd, eur float64) string {
	return fmt.Sprintf("Официальный курс валют НБУ на %s\n1 USD – %.3f грн.\n1 EUR – %.3f грн.",
		date.Format("02.01.2006"), usd, eur)
}

func (s *Service) failed(transport string) {
	if s.opts.OnFailure != nil {
		s.opts.OnFailure(transport)
	}
}
