package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Cheertaboi/shop-microservices/internal/models"
)

const (
	collUsers    = "users"
	collProducts = "products"
	collCarts    = "carts"
	collOrders   = "orders"
)

// EnsureMongoIndexes creates the unique indexes the services rely on.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)
	idx := []struct {
		coll  string
		model mongo.IndexModel
	}{
		{collUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}},
		{collCarts, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}, Options: unique}},
		{collOrders, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{collProducts, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}},
	}
	for _, i := range idx {
		if _, err := db.Collection(i.coll).Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.coll, err)
		}
	}
	return nil
}

// objectID parses a hex id. Malformed ids cannot match a document, so they
// are reported as not found rather than as an error.
func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func findOne[D any](ctx context.Context, c *mongo.Collection, filter any) (*D, error) {
	var doc D
	err := c.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func findAll[D any](ctx context.Context, c *mongo.Collection, filter any, opts ...*options.FindOptions) ([]D, error) {
	cur, err := c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	var docs []D
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func findAndUpdate[D any](ctx context.Context, c *mongo.Collection, filter, update any) (*D, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc D
	err := c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// --- users ---

type userDoc struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	Address      *models.Address    `bson:"address,omitempty"`
	Role         string             `bson:"role"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d userDoc) model() models.User {
	return models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Address:      d.Address,
		Role:         d.Role,
		CreatedAt:    d.CreatedAt,
	}
}

type MongoUserRepo struct {
	c *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{c: db.Collection(collUsers)}
}

func (r *MongoUserRepo) Create(ctx context.Context, u *models.User) error {
	doc := userDoc{
		ID:           primitive.NewObjectID(),
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Address:      u.Address,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return err
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *MongoUserRepo) ByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, bson.M{"email": email})
}

func (r *MongoUserRepo) ByID(ctx context.Context, id string) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.one(ctx, bson.M{"_id": oid})
}

func (r *MongoUserRepo) one(ctx context.Context, filter bson.M) (*models.User, error) {
	doc, err := findOne[userDoc](ctx, r.c, filter)
	if err != nil || doc == nil {
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (r *MongoUserRepo) UpdateProfile(ctx context.Context, id string, name *string, addr *models.Address) (*models.User, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	set := bson.M{}
	if name != nil {
		set["name"] = *name
	}
	if addr != nil {
		set["address"] = addr
	}
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}
	doc, err := findAndUpdate[userDoc](ctx, r.c, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil || doc == nil {
		return nil, err
	}
	u := doc.model()
	return &u, nil
}

func (r *MongoUserRepo) List(ctx context.Context) ([]models.User, error) {
	docs, err := findAll[userDoc](ctx, r.c, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	out := make([]models.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

// --- products ---

type productDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	ImageURL    string             `bson:"imageUrl"`
	Stock       int                `bson:"stock"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d productDoc) model() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Category:    d.Category,
		ImageURL:    d.ImageURL,
		Stock:       d.Stock,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type MongoProductRepo struct {
	c *mongo.Collection
}

func NewMongoProductRepo(db *mongo.Database) *MongoProductRepo {
	return &MongoProductRepo{c: db.Collection(collProducts)}
}

func (r *MongoProductRepo) Create(ctx context.Context, p *models.Product) error {
	doc := productDoc{
		ID:          primitive.NewObjectID(),
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return err
	}
	p.ID = doc.ID.Hex()
	return nil
}

func (r *MongoProductRepo) ByID(ctx context.Context, id string) (*models.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := findOne[productDoc](ctx, r.c, bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	p := doc.model()
	return &p, nil
}

func (r *MongoProductRepo) List(ctx context.Context, category string) ([]models.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	docs, err := findAll[productDoc](ctx, r.c, filter)
	if err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *MongoProductRepo) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	set := bson.M{"updatedAt": now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.ImageURL != nil {
		set["imageUrl"] = *patch.ImageURL
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	return r.update(ctx, id, bson.M{"$set": set})
}

// AdjustStock uses $inc so concurrent decrements do not overwrite each other.
func (r *MongoProductRepo) AdjustStock(ctx context.Context, id string, delta int) (*models.Product, error) {
	return r.update(ctx, id, bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updatedAt": now()},
	})
}

func (r *MongoProductRepo) update(ctx context.Context, id string, update bson.M) (*models.Product, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := findAndUpdate[productDoc](ctx, r.c, bson.M{"_id": oid}, update)
	if err != nil || doc == nil {
		return nil, err
	}
	p := doc.model()
	return &p, nil
}

func (r *MongoProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	oid, ok := objectID(id)
	if !ok {
		return false, nil
	}
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// --- carts ---

type MongoCartRepo struct {
	c *mongo.Collection
}

func NewMongoCartRepo(db *mongo.Database) *MongoCartRepo {
	return &MongoCartRepo{c: db.Collection(collCarts)}
}

type cartDoc struct {
	UserID    string            `bson:"userId"`
	Items     []models.CartItem `bson:"items"`
	UpdatedAt time.Time         `bson:"updatedAt"`
}

func (r *MongoCartRepo) ByUser(ctx context.Context, userID string) (*models.Cart, error) {
	doc, err := findOne[cartDoc](ctx, r.c, bson.M{"userId": userID})
	if err != nil || doc == nil {
		return nil, err
	}
	items := doc.Items
	if items == nil {
		items = []models.CartItem{}
	}
	return &models.Cart{UserID: doc.UserID, Items: items, UpdatedAt: doc.UpdatedAt}, nil
}

// Save replaces the whole cart document; concurrent writers race and the
// last one wins.
func (r *MongoCartRepo) Save(ctx context.Context, c *models.Cart) error {
	items := c.Items
	if items == nil {
		items = []models.CartItem{}
	}
	doc := cartDoc{UserID: c.UserID, Items: items, UpdatedAt: c.UpdatedAt}
	_, err := r.c.ReplaceOne(ctx, bson.M{"userId": c.UserID}, doc, options.Replace().SetUpsert(true))
	return err
}

// --- orders ---

type orderDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"userId"`
	Items           []models.OrderItem `bson:"items"`
	Total           float64            `bson:"total"`
	Status          string             `bson:"status"`
	ShippingAddress models.Address     `bson:"shippingAddress"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (d orderDoc) model() models.Order {
	return models.Order{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		Items:           d.Items,
		Total:           d.Total,
		Status:          models.OrderStatus(d.Status),
		ShippingAddress: d.ShippingAddress,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

type MongoOrderRepo struct {
	c *mongo.Collection
}

func NewMongoOrderRepo(db *mongo.Database) *MongoOrderRepo {
	return &MongoOrderRepo{c: db.Collection(collOrders)}
}

func (r *MongoOrderRepo) Create(ctx context.Context, o *models.Order) error {
	doc := orderDoc{
		ID:              primitive.NewObjectID(),
		UserID:          o.UserID,
		Items:           o.Items,
		Total:           o.Total,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		return err
	}
	o.ID = doc.ID.Hex()
	return nil
}

func (r *MongoOrderRepo) ByID(ctx context.Context, id string) (*models.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	doc, err := findOne[orderDoc](ctx, r.c, bson.M{"_id": oid})
	if err != nil || doc == nil {
		return nil, err
	}
	o := doc.model()
	return &o, nil
}

func (r *MongoOrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, bson.M{"userId": userID})
}

func (r *MongoOrderRepo) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *MongoOrderRepo) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	docs, err := findAll[orderDoc](ctx, r.c, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := make([]models.Order, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.model())
	}
	return out, nil
}

func (r *MongoOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (*models.Order, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	update := bson.M{"$set": bson.M{"status": string(status), "updatedAt": now()}}
	doc, err := findAndUpdate[orderDoc](ctx, r.c, bson.M{"_id": oid}, update)
	if err != nil || doc == nil {
		return nil, err
	}
	o := doc.model()
	return &o, nil
}
