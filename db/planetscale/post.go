package planetscale

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/groundsync/groundsync-be/model"
	"github.com/upper/db/v4"
)

type PostDB struct {
	sess db.Session
}

var postColumns = []interface{}{
	"id",
	"user_id",
	"location_id",
	"location_name",
	"category",
	"title",
	"content",
	"author_name",
	"created_at",
	"likes",
	"hype_count",
}

func (pdb *PostDB) CreatePost(ctx context.Context, req *appDb.CreatePost) (string, error) {
	postId := uuid.NewString()
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			InsertInto("post").
			Columns("id", "user_id", "location_id", "location_name", "category", "title", "content", "author_name", "likes", "hype_count").
			Values(postId, req.UserId, req.LocationId, req.LocationName, req.Category, req.Title, req.Content, req.AuthorName, 0, 0).
			ExecContext(ctx); err != nil {
			return err
		}
		res, err := sess.SQL().
			Update("location").
			Set("post_count = post_count + ?", 1).
			Where("id = ?", req.LocationId).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		return requireAffected(res, fmt.Sprintf("location %v", req.LocationId))
	}, nil)
	if err != nil {
		return "", err
	}
	return postId, nil
}

func requireAffected(res sql.Result, what string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%v: %w", what, appDb.ErrNotFound)
	}
	return nil
}

func (pdb *PostDB) GetPostById(ctx context.Context, id string) (*model.Post, error) {
	var post model.Post
	if err := pdb.sess.SQL().
		Select(postColumns...).
		From("post").
		Where("id = ?", id).
		IteratorContext(ctx).
		One(&post); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

func (pdb *PostDB) GetPosts(ctx context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	var where []interface{}
	if query != nil {
		where = []interface{}{"location_id IN ?", query.LocationIds}
	}
	posts := []*model.Post{}
	if err := pdb.sess.SQL().
		Select(postColumns...).
		From("post").
		Where(where...).
		IteratorContext(ctx).
		All(&posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (pdb *PostDB) CountPosts(ctx context.Context) (int64, error) {
	count, err := pdb.sess.WithContext(ctx).Collection("post").Find().Count()
	return int64(count), err
}

func (pdb *PostDB) ToggleHype(ctx context.Context, postId, userId string) (bool, int64, error) {
	var (
		hyped     bool
		hypeCount int64
	)
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx, `SELECT hype_count FROM post WHERE id = ? FOR UPDATE`, postId)
		if err != nil {
			return err
		}
		if err := row.Scan(&hypeCount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("post %v: %w", postId, appDb.ErrNotFound)
			}
			return err
		}

		res, err := sess.SQL().
			DeleteFrom("hype").
			Where("post_id = ? AND user_id = ?", postId, userId).
			ExecContext(ctx)
		if err != nil {
			return err
		}
		removed, err := res.RowsAffected()
		if err != nil {
			return err
		}

		delta := -1
		if removed == 0 {
			if _, err := sess.SQL().
				InsertInto("hype").
				Columns("post_id", "user_id").
				Values(postId, userId).
				ExecContext(ctx); err != nil {
				return err
			}
			delta = 1
		}
		hyped = delta > 0
		hypeCount += int64(delta)

		_, err = sess.SQL().
			Update("post").
			Set("hype_count = hype_count + ?", delta).
			Where("id = ?", postId).
			ExecContext(ctx)
		return err
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return false, 0, err
	}
	return hyped, hypeCount, nil
}

func (pdb *PostDB) GetHype(ctx context.Context, postId, userId string) (*model.Hype, error) {
	var hype model.Hype
	if err := pdb.sess.WithContext(ctx).
		Collection("hype").
		Find("post_id = ? AND user_id = ?", postId, userId).
		One(&hype); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &hype, nil
}
