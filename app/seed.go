package app

import (
	"context"

	"github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/logging"
)

type demoLocation struct {
	name         string
	locationType string
}

type demoPost struct {
	location string
	author   string
	content  string
}

var (
	demoLocations = []demoLocation{
		{"Jorhat", "city"},
		{"JIST Campus", "college"},
		{"Titabor", "city"},
		{"Gandhi Park", "community"},
	}
	demoPosts = []demoPost{
		{"Jorhat", "XYZ", "Clean the city on Sunday"},
		{"JIST Campus", "Angela", "Organising a protest for not having good water in college hostel"},
		{"Titabor", "Ripun", "Celebrating birthday on 5th July"},
		{"Gandhi Park", "Rahul", "Planting some trees in Gandhi Park on 5th June"},
	}
)

const (
	DemoUserId    = "demo_user"
	DemoPostTitle = "Demo Post"
)

// Seeder loads the demo dataset into an empty store. Locations are only seeded when there are none,
// posts only when there are none. A store where just the posts were cleared gets the demo posts
// that match surviving locations by name. This is a guard against reseeding on restart, not full
// idempotence.
type Seeder struct {
	db        db.Database
	locations *LocationRegistry
	posts     *PostStore
}

func NewSeeder(database db.Database, locations *LocationRegistry, posts *PostStore) *Seeder {
	return &Seeder{db: database, locations: locations, posts: posts}
}

func (s *Seeder) Seed(ctx context.Context) error {
	locationIds := make(map[string]string)
	locationTypes := make(map[string]string)

	locationCount, err := s.db.CountLocations(ctx)
	if err != nil {
		return err
	}
	if locationCount == 0 {
		logging.Info().Int("locations", len(demoLocations)).Msg("seeding locations")
		for _, location := range demoLocations {
			id, err := s.locations.Ensure(ctx, location.name, location.locationType)
			if err != nil {
				return err
			}
			locationIds[location.name] = id
			locationTypes[location.name] = location.locationType
		}
	} else {
		existing, err := s.locations.List(ctx)
		if err != nil {
			return err
		}
		for _, location := range existing {
			locationIds[location.Name] = location.Id
			locationTypes[location.Name] = location.Type
		}
	}

	postCount, err := s.db.CountPosts(ctx)
	if err != nil {
		return err
	}
	if postCount > 0 {
		return nil
	}
	logging.Info().Int("posts", len(demoPosts)).Msg("seeding posts")
	for _, post := range demoPosts {
		locationId, ok := locationIds[post.location]
		if !ok {
			continue
		}
		if _, err := s.posts.Create(ctx, &db.CreatePost{
			UserId:       DemoUserId,
			LocationId:   locationId,
			LocationName: post.location,
			Category:     locationTypes[post.location],
			Title:        DemoPostTitle,
			Content:      post.content,
			AuthorName:   post.author,
		}); err != nil {
			return err
		}
	}
	return nil
}
