package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const credentialsCollection = "console_credentials"

// CredentialBackend keeps one console profile's credentials in a single
// document: {_id: <profile>, values: {<field>: <value>}}. Dots in keys are
// stored as colons since MongoDB treats them as path separators.
type CredentialBackend struct {
	coll    *mongo.Collection
	profile string
}

func NewCredentialBackend(db *mongo.Database, profile string) *CredentialBackend {
	return &CredentialBackend{coll: db.Collection(credentialsCollection), profile: profile}
}

type credentialDoc struct {
	Profile string            `bson:"_id"`
	Values  map[string]string `bson:"values"`
}

func (b *CredentialBackend) Load(ctx context.Context) (map[string]string, error) {
	var doc credentialDoc
	err := b.coll.FindOne(ctx, bson.M{"_id": b.profile}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find credentials: %w", err)
	}
	values := make(map[string]string, len(doc.Values))
	for field, v := range doc.Values {
		values[keyOf(field)] = v
	}
	return values, nil
}

func (b *CredentialBackend) Put(ctx context.Context, key, value string) error {
	_, err := b.coll.UpdateOne(ctx,
		bson.M{"_id": b.profile},
		bson.M{"$set": bson.M{valuesPath(key): value}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

func (b *CredentialBackend) Delete(ctx context.Context, key string) error {
	_, err := b.coll.UpdateOne(ctx,
		bson.M{"_id": b.profile},
		bson.M{"$unset": bson.M{valuesPath(key): ""}},
	)
	if err != nil {
		return fmt.Errorf("unset credential: %w", err)
	}
	return nil
}

func (b *CredentialBackend) Ping(ctx context.Context) error {
	return b.coll.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}

func valuesPath(key string) string {
	return "values." + fieldOf(key)
}

func fieldOf(key string) string { return strings.ReplaceAll(key, ".", ":") }

func keyOf(field string) string { return strings.ReplaceAll(field, ":", ".") }
