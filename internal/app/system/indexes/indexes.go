// Package indexes reconciles the MongoDB indexes the invariants depend on.
//
// Several invariants are structural rather than advisory because of these:
// the globally unique user email, the one-ledger-row-per-(poll,user) vote
// guard, the one-profile-per-user rule, and the single non-terminal
// application per (email, school).
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each ensure* function is idempotent; errors
// are aggregated so every problem is visible and startup can fail fast.
func EnsureAll(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	var problems []string

	for _, e := range []struct {
		name string
		fn   func(context.Context, *mongo.Database, *zap.Logger) error
	}{
		{"users", ensureUsers},
		{"applications", ensureApplications},
		{"parents", ensureParents},
		{"teachers", ensureTeachers},
		{"schools", ensureSchools},
		{"events", ensureEvents},
		{"event_place_prefs", ensurePlacePrefs},
		{"polls", ensurePolls},
		{"poll_votes", ensurePollVotes},
		{"activities", ensureActivities},
		{"messages", ensureMessages},
		{"merchants", ensureMerchants},
		{"merchant_catalog", ensureMerchantCatalog},
	} {
		if err := e.fn(ctx, db, log); err != nil {
			problems = append(problems, e.name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensure(ctx context.Context, coll *mongo.Collection, log *zap.Logger, models []mongo.IndexModel) error {
	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// Same keys under a different name/options from an earlier release:
			// drop by name and recreate rather than failing startup.
			if strings.Contains(err.Error(), "IndexOptionsConflict") && name != "" {
				log.Warn("index options conflict, recreating",
					zap.String("collection", coll.Name()), zap.String("index", name))
				if _, derr := coll.Indexes().DropOne(ctx, name); derr != nil {
					return derr
				}
				if _, cerr := coll.Indexes().CreateOne(ctx, m); cerr != nil {
					return cerr
				}
				continue
			}
			return err
		}
	}
	return nil
}

func unique() *options.IndexOptions {
	return options.Index().SetUnique(true)
}

func ensureUsers(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("users"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique().SetName("uniq_email")},
		{Keys: bson.D{{Key: "role", Value: 1}}, Options: options.Index().SetName("by_role")},
	})
}

func ensureApplications(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	// At most one non-terminal application per (email, school). The partial
	// filter keeps rejected applications from blocking a re-application.
	partial := unique().
		SetName("uniq_open_per_email_school").
		SetPartialFilterExpression(bson.M{
			"status": bson.M{"$in": []string{"pending", "approved", "account_created"}},
		})

	return ensure(ctx, db.Collection("applications"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "parent.email", Value: 1}, {Key: "school_id", Value: 1}}, Options: partial},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "submitted_at", Value: -1}}, Options: options.Index().SetName("by_status_submitted")},
		{Keys: bson.D{{Key: "school_id", Value: 1}}, Options: options.Index().SetName("by_school")},
	})
}

func ensureParents(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("parents"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique().SetName("uniq_user")},
	})
}

func ensureTeachers(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("teachers"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique().SetName("uniq_user")},
		{Keys: bson.D{{Key: "school_id", Value: 1}}, Options: options.Index().SetName("by_school")},
	})
}

func ensureSchools(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("schools"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetName("by_active_name")},
		{Keys: bson.D{{Key: "city", Value: 1}}, Options: options.Index().SetName("by_city")},
	})
}

func ensureEvents(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("events"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}, Options: options.Index().SetName("by_owner_created")},
	})
}

func ensurePlacePrefs(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("event_place_prefs"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: unique().SetName("uniq_event")},
	})
}

func ensurePolls(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("polls"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetName("by_event")},
	})
}

func ensurePollVotes(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	// Structural duplicate-vote guard.
	return ensure(ctx, db.Collection("poll_votes"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "poll_id", Value: 1}, {Key: "user_id", Value: 1}}, Options: unique().SetName("uniq_poll_user")},
	})
}

func ensureActivities(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("activities"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "child_id", Value: 1}, {Key: "day", Value: -1}}, Options: options.Index().SetName("by_child_day")},
	})
}

func ensureMessages(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("messages"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "sent_at", Value: -1}}, Options: options.Index().SetName("by_conversation_sent")},
	})
}

func ensureMerchants(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	return ensure(ctx, db.Collection("merchants"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique().SetName("uniq_user")},
	})
}

func ensureMerchantCatalog(ctx context.Context, db *mongo.Database, log *zap.Logger) error {
	if err := ensure(ctx, db.Collection("merchant_services"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "merchant_id", Value: 1}}, Options: options.Index().SetName("by_merchant")},
	}); err != nil {
		return err
	}
	if err := ensure(ctx, db.Collection("merchant_products"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "merchant_id", Value: 1}}, Options: options.Index().SetName("by_merchant")},
	}); err != nil {
		return err
	}
	return ensure(ctx, db.Collection("merchant_coupons"), log, []mongo.IndexModel{
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: unique().SetName("uniq_code")},
		{Keys: bson.D{{Key: "merchant_id", Value: 1}}, Options: options.Index().SetName("by_merchant")},
	})
}
