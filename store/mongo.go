package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

// CredentialsCollection is the collection MongoStore keeps its records in.
const CredentialsCollection = "sdk_credentials"

const (
	kindUser    = "user"
	kindClient  = "client"
	kindCurrent = "current_tenant"
)

type mongoRecord struct {
	TenantID      string       `bson:"tenant_id"`
	Kind          string       `bson:"kind"`
	User          *UserToken   `bson:"user,omitempty"`
	Client        *ClientToken `bson:"client,omitempty"`
	CurrentTenant string       `bson:"current_tenant,omitempty"`
}

// MongoStore implements CredentialStore on a MongoDB collection. Intended
// for server deployments that already run MongoDB and want tenant
// credentials shared across instances.
//
// Storage errors collapse into absence the same way as in the other
// persistent backends; expired records are deleted lazily on read.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// ConnectMongo dials MongoDB with an OpenTelemetry command monitor attached
// and verifies the connection with a primary ping.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	clientOptions.SetConnectTimeout(10 * time.Second)
	clientOptions.SetMonitor(otelmongo.NewMonitor())

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}
	return client, nil
}

// NewMongoStore creates a MongoDB-backed credential store.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		coll: db.Collection(CredentialsCollection),
		now:  time.Now,
	}
}

func (s *MongoStore) get(ctx context.Context, tenantID, kind string) *mongoRecord {
	var record mongoRecord
	err := s.coll.FindOne(ctx, bson.M{"tenant_id": tenantID, "kind": kind}).Decode(&record)
	if err != nil {
		return nil
	}
	return &record
}

func (s *MongoStore) put(ctx context.Context, record *mongoRecord) {
	filter := bson.M{"tenant_id": record.TenantID, "kind": record.Kind}
	opts := options.Replace().SetUpsert(true)
	_, _ = s.coll.ReplaceOne(ctx, filter, record, opts)
}

func (s *MongoStore) remove(ctx context.Context, tenantID, kind string) {
	_, _ = s.coll.DeleteOne(ctx, bson.M{"tenant_id": tenantID, "kind": kind})
}

// GetUserToken implements CredentialStore.
func (s *MongoStore) GetUserToken(ctx context.Context, tenantID string) (*UserToken, error) {
	record := s.get(ctx, tenantID, kindUser)
	if record == nil || record.User == nil {
		return nil, nil
	}
	if record.User.Expired(s.now()) {
		s.remove(ctx, tenantID, kindUser)
		return nil, nil
	}
	return record.User, nil
}

// SetUserToken implements CredentialStore.
func (s *MongoStore) SetUserToken(ctx context.Context, tenantID string, token *UserToken) error {
	s.put(ctx, &mongoRecord{TenantID: tenantID, Kind: kindUser, User: token.Clone()})
	return nil
}

// RemoveUserToken implements CredentialStore.
func (s *MongoStore) RemoveUserToken(ctx context.Context, tenantID string) error {
	s.remove(ctx, tenantID, kindUser)
	return nil
}

// GetClientToken implements CredentialStore.
func (s *MongoStore) GetClientToken(ctx context.Context, tenantID string) (*ClientToken, error) {
	record := s.get(ctx, tenantID, kindClient)
	if record == nil || record.Client == nil {
		return nil, nil
	}
	if record.Client.Expired(s.now()) {
		s.remove(ctx, tenantID, kindClient)
		return nil, nil
	}
	return record.Client, nil
}

// SetClientToken implements CredentialStore.
func (s *MongoStore) SetClientToken(ctx context.Context, tenantID string, token *ClientToken) error {
	s.put(ctx, &mongoRecord{TenantID: tenantID, Kind: kindClient, Client: token.Clone()})
	return nil
}

// RemoveClientToken implements CredentialStore.
func (s *MongoStore) RemoveClientToken(ctx context.Context, tenantID string) error {
	s.remove(ctx, tenantID, kindClient)
	return nil
}

// CurrentTenantID implements CredentialStore.
func (s *MongoStore) CurrentTenantID(ctx context.Context) (string, error) {
	record := s.get(ctx, "", kindCurrent)
	if record == nil {
		return "", nil
	}
	return record.CurrentTenant, nil
}

// SetCurrentTenantID implements CredentialStore.
func (s *MongoStore) SetCurrentTenantID(ctx context.Context, tenantID string) error {
	s.put(ctx, &mongoRecord{Kind: kindCurrent, CurrentTenant: tenantID})
	return nil
}

// RemoveCurrentTenantID implements CredentialStore.
func (s *MongoStore) RemoveCurrentTenantID(ctx context.Context) error {
	s.remove(ctx, "", kindCurrent)
	return nil
}

// Clear implements CredentialStore.
func (s *MongoStore) Clear(ctx context.Context) error {
	_, _ = s.coll.DeleteMany(ctx, bson.M{})
	return nil
}

// ListTenants implements CredentialStore.
func (s *MongoStore) ListTenants(ctx context.Context) ([]string, error) {
	filter := bson.M{"kind": bson.M{"$in": []string{kindUser, kindClient}}}
	values, err := s.coll.Distinct(ctx, "tenant_id", filter)
	if err != nil {
		return nil, nil
	}

	tenants := make([]string, 0, len(values))
	for _, v := range values {
		if tenant, ok := v.(string); ok {
			tenants = append(tenants, tenant)
		}
	}
	return tenants, nil
}

var _ CredentialStore = (*MongoStore)(nil)
