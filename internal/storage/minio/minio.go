// minio предоставляет реализацию storage.KV поверх MinIO/S3:
// каждое значение — отдельный объект в бакете, имя объекта = ключ.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pribylovaa/go-news-formatter/internal/storage"
)

// Options — параметры подключения к S3-совместимому хранилищу.
type Options struct {
	Endpoint     string
	RootUser     string
	RootPassword string
	Bucket       string
}

// KV — адаптер MinIO для операций Load/Save.
type KV struct {
	client *mclient.Client
	bucket string
}

// New создает клиент MinIO.
// Убирает схему из endpoint, подбирает Secure по схеме
// и выполняет fail-fast-проверку наличия бакета.
func New(ctx context.Context, opts Options) (*KV, error) {
	const op = "storage/minio/New"

	endpoint := opts.Endpoint
	secure := strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(opts.RootUser, opts.RootPassword, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, opts.Bucket)
	}

	return &KV{client: client, bucket: opts.Bucket}, nil
}

func (s *KV) Load(ctx context.Context, key string) (string, error) {
	const op = "storage.minio.Load"

	if key == "" {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, mclient.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}
	defer obj.Close()

	// GetObject ленивый: отсутствие объекта всплывает на Stat/Read.
	if _, err := obj.Stat(); err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, mapErr(err))
	}

	return string(data), nil
}

func (s *KV) Save(ctx context.Context, key, value string) error {
	const op = "storage.minio.Save"

	if key == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(value), int64(len(value)),
		mclient.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Close — у minio-go нет долгоживущих соединений для закрытия.
func (s *KV) Close() error { return nil }

// mapErr переводит «нет такого объекта» в storage.ErrNotFound.
func mapErr(err error) error {
	resp := mclient.ToErrorResponse(err)
	if resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound {
		return storage.ErrNotFound
	}

	return err
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.KV = (*KV)(nil)
