package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
)

type PostDB struct {
	client *firestore.Client
}

func (pdb *PostDB) CreatePost(ctx context.Context, req *appDb.CreatePost) (string, error) {
	var postId string
	locationRef := pdb.client.Collection(locationsCollection).Doc(req.LocationId)
	err := pdb.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		postRef := pdb.client.Collection(postsCollection).NewDoc()
		postId = postRef.ID
		if err := tx.Create(postRef, map[string]interface{}{
			"userId":       req.UserId,
			"locationId":   req.LocationId,
			"locationName": req.LocationName,
			"category":     req.Category,
			"title":        req.Title,
			"content":      req.Content,
			"authorName":   req.AuthorName,
			"createdAt":    firestore.ServerTimestamp,
			"likes":        0,
			"hypeCount":    0,
		}); err != nil {
			return err
		}
		// Update fails with NotFound for a missing location, aborting the whole transaction.
		return tx.Update(locationRef, []firestore.Update{
			{Path: "postCount", Value: firestore.Increment(1)},
		})
	})
	if err != nil {
		return "", translateErr(err)
	}
	return postId, nil
}

func (pdb *PostDB) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	doc, err := pdb.client.Collection(postsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, translateErr(err)
	}
	return postFromDoc(doc)
}

// GetPosts leaves ordering to the caller; ordering an "in" query needs a composite index.
func (pdb *PostDB) GetPosts(ctx context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	q := pdb.client.Collection(postsCollection).Query
	if query != nil {
		q = q.Where("locationId", "in", query.LocationIds)
	}
	docs, err := q.Documents(ctx).GetAll()
	if err != nil {
		return nil, translateErr(err)
	}
	posts := make([]*model.Post, 0, len(docs))
	for _, doc := range docs {
		post, err := postFromDoc(doc)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (pdb *PostDB) CountPosts(ctx context.Context) (int64, error) {
	return count(ctx, pdb.client.Collection(postsCollection).Query)
}

func postFromDoc(doc *firestore.DocumentSnapshot) (*model.Post, error) {
	var post model.Post
	if err := doc.DataTo(&post); err != nil {
		return nil, fmt.Errorf("decoding post %v: %w", doc.Ref.ID, err)
	}
	post.Id = doc.Ref.ID
	return &post, nil
}

func (pdb *PostDB) ToggleHype(ctx context.Context, postId, userId string) (bool, int64, error) {
	var (
		hyped     bool
		hypeCount int64
	)
	postRef := pdb.client.Collection(postsCollection).Doc(postId)
	hypeRef := postRef.Collection(hypesCollection).Doc(userId)
	err := pdb.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		postSnap, err := tx.Get(postRef)
		if err != nil {
			return err
		}
		var post model.Post
		if err := postSnap.DataTo(&post); err != nil {
			return err
		}

		_, err = tx.Get(hypeRef)
		switch {
		case err == nil:
			if err := tx.Delete(hypeRef); err != nil {
				return err
			}
			hyped, hypeCount = false, post.HypeCount-1
			return tx.Update(postRef, []firestore.Update{
				{Path: "hypeCount", Value: firestore.Increment(-1)},
			})
		case isNotFound(err):
			if err := tx.Set(hypeRef, map[string]interface{}{"createdAt": firestore.ServerTimestamp}); err != nil {
				return err
			}
			hyped, hypeCount = true, post.HypeCount+1
			return tx.Update(postRef, []firestore.Update{
				{Path: "hypeCount", Value: firestore.Increment(1)},
			})
		default:
			return err
		}
	})
	if err != nil {
		return false, 0, translateErr(err)
	}
	return hyped, hypeCount, nil
}

func (pdb *PostDB) GetHype(ctx context.Context, postId, userId string) (*model.Hype, error) {
	doc, err := pdb.client.Collection(postsCollection).Doc(postId).
		Collection(hypesCollection).Doc(userId).
		Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, translateErr(err)
	}
	var hype model.Hype
	if err := doc.DataTo(&hype); err != nil {
		return nil, err
	}
	hype.PostId, hype.UserId = postId, userId
	return &hype, nil
}
