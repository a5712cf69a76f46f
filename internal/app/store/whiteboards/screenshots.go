// internal/app/store/whiteboards/screenshots.go
package whiteboardstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNoScreenshot is returned when a session has never been captured.
var ErrNoScreenshot = errors.New("no screenshot for this whiteboard")

// Screenshots keeps the latest PNG capture per session in GridFS, keyed by
// session ID as the file name.
type Screenshots struct {
	bucket *gridfs.Bucket
}

func NewScreenshots(db *mongo.Database) (*Screenshots, error) {
	b, err := gridfs.NewBucket(db, options.GridFSBucket().SetName("whiteboard_screenshots"))
	if err != nil {
		return nil, err
	}
	return &Screenshots{bucket: b}, nil
}

// Save uploads png as the session's screenshot and removes older captures.
func (s *Screenshots) Save(ctx context.Context, sessionID string, png []byte) error {
	if dl, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetWriteDeadline(dl); err != nil {
			return err
		}
	}
	id, err := s.bucket.UploadFromStream(sessionID, bytes.NewReader(png),
		options.GridFSUpload().SetMetadata(bson.M{"content_type": "image/png"}))
	if err != nil {
		return err
	}

	cur, err := s.bucket.GetFilesCollection().Find(ctx,
		bson.M{"filename": sessionID, "_id": bson.M{"$ne": id}})
	if err != nil {
		return err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var f struct {
			ID any `bson:"_id"`
		}
		if err := cur.Decode(&f); err != nil {
			return err
		}
		if err := s.bucket.Delete(f.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return err
		}
	}
	return cur.Err()
}

// Load returns the latest PNG for the session.
func (s *Screenshots) Load(ctx context.Context, sessionID string) ([]byte, error) {
	if dl, ok := ctx.Deadline(); ok {
		if err := s.bucket.SetReadDeadline(dl); err != nil {
			return nil, err
		}
	}
	stream, err := s.bucket.OpenDownloadStreamByName(sessionID)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNoScreenshot
	}
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return io.ReadAll(stream)
}
