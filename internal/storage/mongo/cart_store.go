package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

// cartLineDocument — документ строки корзины: по документу на пару
// (user_id, item_id), upsert перезаписывает документ целиком.
type cartLineDocument struct {
	UserID     string    `bson:"user_id"`
	ItemID     int64     `bson:"item_id"`
	Name       string    `bson:"name"`
	PriceMinor int64     `bson:"price_minor"`
	Quantity   int       `bson:"quantity"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

type cartStoreMongo struct {
	collection *mongo.Collection
}

var _ domain.CartStore = (*cartStoreMongo)(nil)

// NewCartStore создаёт хранилище корзины в коллекции cart_lines.
func NewCartStore(db *mongo.Database) *cartStoreMongo {
	return &cartStoreMongo{collection: db.Collection("cart_lines")}
}

// EnsureIndexes создаёт индексы коллекции: уникальность пары
// (user_id, item_id) и TTL на updated_at для брошенных корзин.
func (s *cartStoreMongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "item_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60),
		},
	}

	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}
	return nil
}

func (s *cartStoreMongo) Upsert(ctx context.Context, userID string, line domain.CartLine) error {
	doc := cartLineDocument{
		UserID:     userID,
		ItemID:     line.ItemID,
		Name:       line.Name,
		PriceMinor: line.PriceMinor,
		Quantity:   line.Quantity,
		UpdatedAt:  time.Now().UTC(),
	}

	filter := bson.M{"user_id": userID, "item_id": line.ItemID}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	if _, err := s.collection.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

func (s *cartStoreMongo) ListAll(ctx context.Context, userID string) ([]domain.CartLine, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "item_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []cartLineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode cart lines: %w", err)
	}

	lines := make([]domain.CartLine, 0, len(docs))
	for _, doc := range docs {
		lines = append(lines, domain.CartLine{
			ItemID:     doc.ItemID,
			Name:       doc.Name,
			PriceMinor: doc.PriceMinor,
			Quantity:   doc.Quantity,
			UpdatedAt:  doc.UpdatedAt,
		})
	}
	return lines, nil
}

// Delete убирает строку; отсутствие документа не считается ошибкой.
func (s *cartStoreMongo) Delete(ctx context.Context, userID string, itemID int64) error {
	filter := bson.M{"user_id": userID, "item_id": itemID}
	if _, err := s.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	return nil
}

func (s *cartStoreMongo) DeleteAll(ctx context.Context, userID string) error {
	filter := bson.M{"user_id": userID}
	if _, err := s.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
