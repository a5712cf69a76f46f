// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup in local backend mode. Each collection set is
idempotent. Errors are aggregated so every problem is visible at once and
startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	var problems []string
	for _, set := range indexSets() {
		if err := ensureIndexSet(ctx, db.Collection(set.collection), set.models, logger); err != nil {
			problems = append(problems, set.collection+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func named(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)}
}

func unique(name string, keys bson.D) mongo.IndexModel {
	return mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)}
}

func indexSets() []collectionIndexes {
	return []collectionIndexes{
		{"users", []mongo.IndexModel{
			unique("uniq_users_emailci", bson.D{{Key: "email_ci", Value: 1}}),
			// leaderboard: active students by points
			named("idx_users_role_status_points", bson.D{
				{Key: "role", Value: 1},
				{Key: "status", Value: 1},
				{Key: "points", Value: -1},
				{Key: "full_name_ci", Value: 1},
			}),
		}},
		{"study_groups", []mongo.IndexModel{
			unique("uniq_study_groups_nameci", bson.D{{Key: "name_ci", Value: 1}}),
			named("idx_study_groups_subject_nameci", bson.D{{Key: "subject", Value: 1}, {Key: "name_ci", Value: 1}}),
			named("idx_study_groups_members", bson.D{{Key: "member_ids", Value: 1}}),
		}},
		{"forum_posts", []mongo.IndexModel{
			named("idx_forum_posts_group_created", bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}),
			named("idx_forum_posts_created", bson.D{{Key: "created_at", Value: -1}}),
		}},
		{"conversations", []mongo.IndexModel{
			named("idx_conversations_participant_last", bson.D{{Key: "participant_ids", Value: 1}, {Key: "last_at", Value: -1}}),
		}},
		{"messages", []mongo.IndexModel{
			named("idx_messages_conversation_sent", bson.D{{Key: "conversation_id", Value: 1}, {Key: "sent_at", Value: 1}}),
		}},
		{"notes", []mongo.IndexModel{
			named("idx_notes_owner_updated", bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}}),
			named("idx_notes_collaborator", bson.D{{Key: "collaborators.user_id", Value: 1}}),
		}},
		{"whiteboard_sessions", []mongo.IndexModel{
			named("idx_wb_sessions_owner_updated", bson.D{{Key: "owner_id", Value: 1}, {Key: "updated_at", Value: -1}}),
			named("idx_wb_sessions_participants", bson.D{{Key: "participant_ids", Value: 1}}),
		}},
		{"whiteboard_interactions", []mongo.IndexModel{
			named("idx_wb_interactions_session_at", bson.D{{Key: "session_id", Value: 1}, {Key: "at", Value: 1}}),
		}},
		{"courses", []mongo.IndexModel{
			unique("uniq_courses_code", bson.D{{Key: "code", Value: 1}}),
			named("idx_courses_teacher_titleci", bson.D{{Key: "teacher_id", Value: 1}, {Key: "title_ci", Value: 1}}),
			named("idx_courses_students", bson.D{{Key: "student_ids", Value: 1}}),
		}},
		{"materials", []mongo.IndexModel{
			named("idx_materials_course_created", bson.D{{Key: "course_id", Value: 1}, {Key: "created_at", Value: 1}}),
		}},
		{"flashcards", []mongo.IndexModel{
			named("idx_flashcards_owner_deck", bson.D{{Key: "owner_id", Value: 1}, {Key: "deck", Value: 1}, {Key: "created_at", Value: 1}}),
		}},
	}
}

/* -------------------------------------------------------------------------- */
/* Reconcile a set of desired indexes for one collection                      */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func isUnique(b *bool) bool { return b != nil && *b }

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := map[string]existingIndex{}
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		out[keySig(idx.Key)] = idx
	}
	return out, cur.Err()
}

// ensureIndexSet creates missing indexes and recreates ones whose name or
// uniqueness drifted from the desired model.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel, logger *zap.Logger) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// A collection that does not exist yet has no indexes.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		name := *m.Options.Name
		wantUnique := isUnique(m.Options.Unique)
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()
		log := logger.With(
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", wantUnique))

		if ex, ok := existing[sig]; ok {
			if ex.Name == name && isUnique(ex.Unique) == wantUnique {
				log.Debug("reusing existing index")
				continue
			}
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				log.Warn("drop drifted index failed", zap.String("existing", ex.Name), zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s: drop %s failed: %v", name, ex.Name, err))
				continue
			}
			log.Info("dropped drifted index", zap.String("existing", ex.Name))
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if wafflemongo.IsDup(err) && wantUnique {
				errs = append(errs, fmt.Sprintf("%s: cannot create unique index (duplicates present)", name))
			} else {
				errs = append(errs, fmt.Sprintf("%s: %v", name, err))
			}
			log.Warn("index ensure failed", zap.Error(err))
			continue
		}
		log.Info("index ensured", zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
