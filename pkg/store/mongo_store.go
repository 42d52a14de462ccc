package store

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/sudo-god/AI-Receptionist/pkg/turns"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCloseTimeout = 5 * time.Second

// MongoConfig names the database and collections used by MongoStore.
type MongoConfig struct {
	URI                string        `mapstructure:"uri"`
	Database           string        `mapstructure:"database"`
	AccountsCollection string        `mapstructure:"accounts_collection"`
	SessionsCollection string        `mapstructure:"sessions_collection"`
	BusinessCollection string        `mapstructure:"business_collection"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

func (c MongoConfig) withDefaults() MongoConfig {
	if c.Database == "" {
		c.Database = "ai_receptionist"
	}
	if c.AccountsCollection == "" {
		c.AccountsCollection = "accounts"
	}
	if c.SessionsCollection == "" {
		c.SessionsCollection = "sessions"
	}
	if c.BusinessCollection == "" {
		c.BusinessCollection = "business_data"
	}
	return c
}

// MongoStore keeps one document per account with embedded clients, jobs and
// inquiries arrays. Slot booking relies on a single conditional positional update.
type MongoStore struct {
	client   *mongo.Client
	accounts *mongo.Collection
	sessions *mongo.Collection
	business *mongo.Collection
}

var _ Store = (*MongoStore)(nil)

func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New("mongo uri is required")
	}
	cfg = cfg.withDefaults()

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	if cfg.Timeout > 0 {
		opts.SetTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(err, "failed to ping mongo")
	}

	db := client.Database(cfg.Database)
	ms := &MongoStore{
		client:   client,
		accounts: db.Collection(cfg.AccountsCollection),
		sessions: db.Collection(cfg.SessionsCollection),
		business: db.Collection(cfg.BusinessCollection),
	}
	if err := ms.ensureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to create mongo indexes")
	}
	log.Debug().Str("database", cfg.Database).Msg("connected to mongo")
	return ms, nil
}

func (ms *MongoStore) ensureIndexes(ctx context.Context) error {
	_, err := ms.accounts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}
	_, err = ms.business.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "topic", Value: 1}},
	})
	return err
}

func (ms *MongoStore) Close(ctx context.Context) error {
	if ms == nil || ms.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, mongoCloseTimeout)
	defer cancel()
	return ms.client.Disconnect(ctx)
}

func (ms *MongoStore) FindClient(ctx context.Context, accountID, email, phone string) (*Client, error) {
	var or bson.A
	if email != "" {
		or = append(or, bson.M{"email": email})
	}
	if phone != "" {
		or = append(or, bson.M{"phone": phone})
	}
	if len(or) == 0 {
		return nil, nil
	}

	filter := bson.M{
		"account_id": accountID,
		"clients":    bson.M{"$elemMatch": bson.M{"$or": or}},
	}
	projection := bson.M{"clients.$": 1}

	var acc Account
	err := ms.accounts.FindOne(ctx, filter, options.FindOne().SetProjection(projection)).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find client")
	}
	if len(acc.Clients) == 0 {
		return nil, nil
	}
	c := acc.Clients[0]
	return &c, nil
}

func (ms *MongoStore) InsertClient(ctx context.Context, accountID string, c Client) (bool, error) {
	if err := ms.ensureAccount(ctx, accountID); err != nil {
		return false, err
	}
	res, err := ms.accounts.UpdateOne(ctx,
		bson.M{"account_id": accountID, "clients.email": bson.M{"$ne": c.Email}},
		bson.M{"$push": bson.M{"clients": c}},
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to insert client")
	}
	return res.ModifiedCount == 1, nil
}

func (ms *MongoStore) ensureAccount(ctx context.Context, accountID string) error {
	_, err := ms.accounts.UpdateOne(ctx,
		bson.M{"account_id": accountID},
		bson.M{"$setOnInsert": bson.M{"clients": bson.A{}, "jobs": bson.A{}, "inquiries": bson.A{}}},
		options.Update().SetUpsert(true),
	)
	return errors.Wrap(err, "failed to create account")
}

func (ms *MongoStore) UpdateClient(ctx context.Context, accountID, email string, u ClientUpdate) (bool, error) {
	set := bson.M{}
	if u.Name != "" {
		set["clients.$.name"] = u.Name
	}
	if u.Email != "" {
		set["clients.$.email"] = u.Email
	}
	if u.Phone != "" {
		set["clients.$.phone"] = u.Phone
	}
	if len(set) == 0 {
		return false, nil
	}
	res, err := ms.accounts.UpdateOne(ctx,
		bson.M{"account_id": accountID, "clients.email": email},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to update client")
	}
	return res.MatchedCount > 0, nil
}

func (ms *MongoStore) DeleteClient(ctx context.Context, accountID, email string) (bool, error) {
	res, err := ms.accounts.UpdateOne(ctx,
		bson.M{"account_id": accountID, "clients.email": email},
		bson.M{"$pull": bson.M{"clients": bson.M{"email": email}}},
	)
	if err != nil {
		return false, errors.Wrap(err, "failed to delete client")
	}
	return res.MatchedCount > 0, nil
}

func (ms *MongoStore) Slots(ctx context.Context, accountID string, t BookingType, booked bool) ([]Slot, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"account_id": accountID}}},
		{{Key: "$project", Value: bson.M{
			"_id": 0,
			"slots": bson.M{"$filter": bson.M{
				"input": "$" + string(t),
				"as":    "s",
				"cond":  bson.M{"$eq": bson.A{"$$s.is_booked", booked}},
			}},
		}}},
	}
	cursor, err := ms.accounts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list slots")
	}
	defer cursor.Close(ctx)

	var out []Slot
	for cursor.Next(ctx) {
		var doc struct {
			Slots []Slot `bson:"slots"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "failed to decode slots")
		}
		out = append(out, doc.Slots...)
	}
	return out, errors.Wrap(cursor.Err(), "failed to list slots")
}

func (ms *MongoStore) FindSlot(ctx context.Context, accountID string, t BookingType, startTime string) (*Slot, error) {
	field := string(t)
	filter := bson.M{
		"account_id": accountID,
		field:        bson.M{"$elemMatch": bson.M{"start_time": startTime}},
	}
	projection := bson.M{field + ".$": 1}

	var acc Account
	err := ms.accounts.FindOne(ctx, filter, options.FindOne().SetProjection(projection)).Decode(&acc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to find slot")
	}
	slots := *acc.slots(t)
	if len(slots) == 0 {
		return nil, nil
	}
	s := slots[0]
	return &s, nil
}

func (ms *MongoStore) BookSlot(ctx context.Context, accountID string, t BookingType, startTime string, b Booking) (bool, error) {
	field := string(t)
	filter := bson.M{
		"account_id": accountID,
		field: bson.M{"$elemMatch": bson.M{
			"start_time": startTime,
			"is_booked":  false,
		}},
	}
	update := bson.M{"$set": bson.M{
		field + ".$.is_booked":    true,
		field + ".$.client_email": b.ClientEmail,
		field + ".$.title":        b.Title,
		field + ".$.location":     b.Location,
	}}
	res, err := ms.accounts.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, errors.Wrap(err, "failed to book slot")
	}
	return res.ModifiedCount == 1, nil
}

func (ms *MongoStore) UpsertAccount(ctx context.Context, a Account) error {
	if a.AccountID == "" {
		return errors.New("account_id is required")
	}
	if a.Clients == nil {
		a.Clients = []Client{}
	}
	if a.Jobs == nil {
		a.Jobs = []Slot{}
	}
	if a.Inquiries == nil {
		a.Inquiries = []Slot{}
	}
	_, err := ms.accounts.ReplaceOne(ctx, bson.M{"account_id": a.AccountID}, a, options.Replace().SetUpsert(true))
	return errors.Wrap(err, "failed to upsert account")
}

func (ms *MongoStore) LoadSession(ctx context.Context, id string) (*turns.Session, error) {
	var s turns.Session
	err := ms.sessions.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return turns.NewSession(id), nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load session")
	}
	return &s, nil
}

func (ms *MongoStore) SaveSession(ctx context.Context, s *turns.Session) error {
	if s == nil || s.ID == "" {
		return errors.New("session id is required")
	}
	s.UpdatedAt = time.Now().UTC()
	_, err := ms.sessions.ReplaceOne(ctx, bson.M{"_id": s.ID}, s, options.Replace().SetUpsert(true))
	return errors.Wrap(err, "failed to save session")
}

func (ms *MongoStore) DeleteSession(ctx context.Context, id string) error {
	_, err := ms.sessions.DeleteOne(ctx, bson.M{"_id": id})
	return errors.Wrap(err, "failed to delete session")
}

func (ms *MongoStore) FindBusinessInfo(ctx context.Context, accountID, topic string) ([]BusinessInfo, error) {
	filter := bson.M{"account_id": accountID}
	if topic != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(topic), "$options": "i"}
		filter["$or"] = bson.A{bson.M{"topic": pattern}, bson.M{"content": pattern}}
	}
	cursor, err := ms.business.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "topic", Value: 1}}))
	if err != nil {
		return nil, errors.Wrap(err, "failed to query business info")
	}
	defer cursor.Close(ctx)

	var out []BusinessInfo
	if err := cursor.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "failed to decode business info")
	}
	return out, nil
}

func (ms *MongoStore) UpsertBusinessInfo(ctx context.Context, info BusinessInfo) error {
	_, err := ms.business.ReplaceOne(ctx,
		bson.M{"account_id": info.AccountID, "topic": info.Topic},
		info,
		options.Replace().SetUpsert(true),
	)
	return errors.Wrap(err, "failed to upsert business info")
}
