// mongo предоставляет реализацию storage.KV на базе MongoDB:
// один документ на ключ, _id = ключ.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/pribylovaa/go-news-formatter/internal/storage"
)

const (
	defaultCollection = "kv"
	defaultDBName     = "formatter"
)

// document — форма хранения значения.
type document struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KV - тонкий адаптер над коллекцией MongoDB.
type KV struct {
	client *mongodriver.Client
	coll   *mongodriver.Collection
}

// New подключается к MongoDB, проверяет соединение и выбирает коллекцию.
// Имя базы берётся из пути URI, коллекция — из параметра (по умолчанию "kv").
func New(ctx context.Context, uri, collection string) (*KV, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo: empty uri")
	}

	if collection == "" {
		collection = defaultCollection
	}

	cli, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &KV{
		client: cli,
		coll:   cli.Database(databaseFromURI(uri)).Collection(collection),
	}, nil
}

func (m *KV) Load(ctx context.Context, key string) (string, error) {
	const op = "storage.mongo.Load"

	if key == "" {
		return "", fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	var doc document
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return doc.Value, nil
}

func (m *KV) Save(ctx context.Context, key, value string) error {
	const op = "storage.mongo.Save"

	if key == "" {
		return fmt.Errorf("%s: %w", op, storage.ErrEmptyKey)
	}

	_, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *KV) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return m.client.Disconnect(ctx)
}

// databaseFromURI извлекает имя базы данных из URI-пути mongodb.
// Если оно отсутствует или не разбирается, возвращает значение по умолчанию.
func databaseFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err == nil {
		if name := strings.Trim(u.Path, "/"); name != "" {
			return name
		}
	}

	return defaultDBName
}

// Проверка выполнения контракта верхнего уровня.
var _ storage.KV = (*KV)(nil)
