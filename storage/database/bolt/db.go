// Package boltrepos implements the repositories on a bbolt file: one bucket per entity, JSON documents keyed by id.
package boltrepos

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var (
	usersBucket         = []byte("users")
	userEmailsBucket    = []byte("user_emails") // email -> id
	tasksBucket         = []byte("tasks")
	announcementsBucket = []byte("announcements")
	eventsBucket        = []byte("events")

	buckets = [][]byte{usersBucket, userEmailsBucket, tasksBucket, announcementsBucket, eventsBucket}
)

// Open opens (or creates) the bbolt file at `path` with every bucket.
func Open(path string) (*bbolt.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating database directory")
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "opening bolt database")
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return errors.Wrapf(err, "creating bucket %s", bucket)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// getDoc decodes the document stored under `id`, or returns `notFound`.
func getDoc[T any](tx *bbolt.Tx, bucket []byte, id string, notFound error) (T, error) {
	var doc T
	data := tx.Bucket(bucket).Get([]byte(id))
	if data == nil {
		return doc, notFound
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, errors.Wrapf(err, "decoding %s/%s", bucket, id)
	}
	return doc, nil
}

func putDoc(tx *bbolt.Tx, bucket []byte, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "encoding %s/%s", bucket, id)
	}
	return tx.Bucket(bucket).Put([]byte(id), data)
}

// deleteDoc removes the document stored under `id`, or returns `notFound`.
func deleteDoc(tx *bbolt.Tx, bucket []byte, id string, notFound error) error {
	b := tx.Bucket(bucket)
	if b.Get([]byte(id)) == nil {
		return notFound
	}
	return b.Delete([]byte(id))
}

// allDocs decodes every document of the bucket kept by `keep`.
func allDocs[T any](tx *bbolt.Tx, bucket []byte, keep func(T) bool) ([]T, error) {
	docs := make([]T, 0)
	err := tx.Bucket(bucket).ForEach(func(k, v []byte) error {
		var doc T
		if err := json.Unmarshal(v, &doc); err != nil {
			return errors.Wrapf(err, "decoding %s/%s", bucket, k)
		}
		if keep == nil || keep(doc) {
			docs = append(docs, doc)
		}
		return nil
	})
	return docs, err
}
