package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vladislavdragonenkov/houseit/internal/domain"
)

type bookingLineDocument struct {
	ItemID     int64  `bson:"item_id"`
	Name       string `bson:"name"`
	PriceMinor int64  `bson:"price_minor"`
	Quantity   int    `bson:"quantity"`
}

type bookingRequestDocument struct {
	ID           string                `bson:"_id"`
	UserID       string                `bson:"user_id"`
	CategoryKey  string                `bson:"category_key"`
	ProviderID   int64                 `bson:"provider_id"`
	ProviderName string                `bson:"provider_name"`
	Lines        []bookingLineDocument `bson:"lines"`
	TotalMinor   int64                 `bson:"total_minor"`
	Status       string                `bson:"status"`
	CreatedAt    time.Time             `bson:"created_at"`
}

type requestStoreMongo struct {
	collection *mongo.Collection
}

var _ domain.RequestStore = (*requestStoreMongo)(nil)

// NewRequestStore создаёт хранилище заявок в коллекции booking_requests.
func NewRequestStore(db *mongo.Database) *requestStoreMongo {
	return &requestStoreMongo{collection: db.Collection("booking_requests")}
}

func (s *requestStoreMongo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create request indexes: %w", err)
	}
	return nil
}

// Create сохраняет заявку и возвращает сгенерированный идентификатор.
func (s *requestStoreMongo) Create(ctx context.Context, userID string, req domain.BookingRequest) (string, error) {
	doc := toDocument(userID, req)
	doc.ID = uuid.NewString()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = string(domain.BookingStatusPending)
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("insert booking request: %w", err)
	}
	return doc.ID, nil
}

// ListAll возвращает заявки пользователя, новые первыми.
func (s *requestStoreMongo) ListAll(ctx context.Context, userID string) ([]domain.BookingRequest, error) {
	filter := bson.M{"user_id": userID}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list booking requests: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bookingRequestDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode booking requests: %w", err)
	}

	requests := make([]domain.BookingRequest, 0, len(docs))
	for _, doc := range docs {
		requests = append(requests, fromDocument(doc))
	}
	return requests, nil
}

func (s *requestStoreMongo) Get(ctx context.Context, userID, requestID string) (domain.BookingRequest, error) {
	filter := bson.M{"_id": requestID, "user_id": userID}

	var doc bookingRequestDocument
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.BookingRequest{}, domain.ErrRequestNotFound
		}
		return domain.BookingRequest{}, fmt.Errorf("get booking request: %w", err)
	}
	return fromDocument(doc), nil
}

func toDocument(userID string, req domain.BookingRequest) bookingRequestDocument {
	lines := make([]bookingLineDocument, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, bookingLineDocument{
			ItemID:     line.ItemID,
			Name:       line.Name,
			PriceMinor: line.PriceMinor,
			Quantity:   line.Quantity,
		})
	}
	return bookingRequestDocument{
		ID:           req.ID,
		UserID:       userID,
		CategoryKey:  req.CategoryKey,
		ProviderID:   req.ProviderID,
		ProviderName: req.ProviderName,
		Lines:        lines,
		TotalMinor:   req.TotalMinor,
		Status:       string(req.Status),
		CreatedAt:    req.CreatedAt,
	}
}

func fromDocument(doc bookingRequestDocument) domain.BookingRequest {
	lines := make([]domain.CartLine, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		lines = append(lines, domain.CartLine{
			ItemID:     line.ItemID,
			Name:       line.Name,
			PriceMinor: line.PriceMinor,
			Quantity:   line.Quantity,
		})
	}
	return domain.BookingRequest{
		ID:           doc.ID,
		UserID:       doc.UserID,
		CategoryKey:  doc.CategoryKey,
		ProviderID:   doc.ProviderID,
		ProviderName: doc.ProviderName,
		Lines:        lines,
		TotalMinor:   doc.TotalMinor,
		Status:       domain.BookingStatus(doc.Status),
		CreatedAt:    doc.CreatedAt,
	}
}
