// Package planetscale implements db.Database on MySQL through upper/db.
//
// Expected tables: location (name UNIQUE, utf8mb4_bin), post, follow (PRIMARY KEY user_id,
// location_id), discussion, hype (PRIMARY KEY post_id, user_id), person. created_at columns
// default to CURRENT_TIMESTAMP so the server assigns every timestamp.
package planetscale

import (
	"database/sql"
	"fmt"

	appDb "github.com/groundsync/groundsync-be/db"
	"github.com/upper/db/v4"
	"github.com/upper/db/v4/adapter/mysql"
)

type ConnectionConfig struct {
	User         string
	Password     string
	Host         string
	Name         string
	MaxOpenConns int
}

var _ appDb.Database = (*PlanetScaleDB)(nil)

type PlanetScaleDB struct {
	*LocationDB
	*PostDB
	*FollowDB
	*DiscussionDB
	*UserDB
	sess db.Session
}

func GetDatabase(cfg *ConnectionConfig) (appDb.Database, error) {
	sqlDB, err := sql.Open("mysql",
		fmt.Sprintf("%s:%s@tcp(%s)/%s?tls=true&parseTime=true",
			cfg.User, cfg.Password, cfg.Host, cfg.Name))
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxIdleTime(0)

	sess, err := mysql.New(sqlDB)
	if err != nil {
		return nil, err
	}
	return newFromSession(sess), nil
}

func newFromSession(sess db.Session) *PlanetScaleDB {
	return &PlanetScaleDB{
		LocationDB:   &LocationDB{sess},
		PostDB:       &PostDB{sess},
		FollowDB:     &FollowDB{sess},
		DiscussionDB: newDiscussionDB(sess),
		UserDB:       &UserDB{sess},
		sess:         sess,
	}
}

func (psdb *PlanetScaleDB) Close() error {
	psdb.DiscussionDB.hub.close()
	return psdb.sess.Close()
}
