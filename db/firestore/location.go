package firestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"cloud.google.com/go/firestore"
	"github.com/groundsync/groundsync-be/model"
)

type LocationDB struct {
	client *firestore.Client
}

func (ldb *LocationDB) GetLocations(ctx context.Context) ([]*model.Location, error) {
	docs, err := ldb.client.Collection(locationsCollection).
		OrderBy("name", firestore.Asc).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, translateErr(err)
	}
	locations := make([]*model.Location, 0, len(docs))
	for _, doc := range docs {
		var location model.Location
		if err := doc.DataTo(&location); err != nil {
			return nil, err
		}
		location.Id = doc.Ref.ID
		locations = append(locations, &location)
	}
	return locations, nil
}

// locationNameKey is a document id safe rendition of a location name.
func locationNameKey(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])
}

// EnsureLocation reserves the name in location_names inside the same transaction that creates
// the location, so two first-time posters of the same name cannot create two locations.
func (ldb *LocationDB) EnsureLocation(ctx context.Context, name string, locationType string) (string, bool, error) {
	var (
		id      string
		created bool
	)
	nameRef := ldb.client.Collection(locationNamesCollection).Doc(locationNameKey(name))
	err := ldb.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		id, created = "", false

		nameSnap, err := tx.Get(nameRef)
		if err == nil {
			if existing, ok := nameSnap.Data()["locationId"].(string); ok && existing != "" {
				id = existing
				return nil
			}
		} else if !isNotFound(err) {
			return err
		}

		// locations written before the name index existed (e.g. seeded ones)
		existing, err := tx.Documents(ldb.client.Collection(locationsCollection).
			Where("name", "==", name).
			Limit(1)).
			GetAll()
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			id = existing[0].Ref.ID
			return tx.Set(nameRef, map[string]interface{}{"locationId": id, "name": name})
		}

		locationRef := ldb.client.Collection(locationsCollection).NewDoc()
		if err := tx.Create(locationRef, map[string]interface{}{
			"name":      name,
			"type":      locationType,
			"postCount": 0,
			"createdAt": firestore.ServerTimestamp,
		}); err != nil {
			return err
		}
		if err := tx.Set(nameRef, map[string]interface{}{"locationId": locationRef.ID, "name": name}); err != nil {
			return err
		}
		id, created = locationRef.ID, true
		return nil
	})
	if err != nil {
		return "", false, translateErr(err)
	}
	return id, created, nil
}

func (ldb *LocationDB) CountLocations(ctx context.Context) (int64, error) {
	return count(ctx, ldb.client.Collection(locationsCollection).Query)
}
