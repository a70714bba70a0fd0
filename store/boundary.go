package store

import (
	"context"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tccmaps/atlas/schema"
)

// BoundaryPublisher - upsert destination boundaries
type BoundaryPublisher interface {
	PublishBoundaries(ctx context.Context, features []*schema.Feature) (int, error)
}

// PublishBoundaries upserts one boundary document per feature, keyed
// by catalog index. Re-publishing a build replaces the previous
// geometry in place.
func (m *mongoDB) PublishBoundaries(ctx context.Context, features []*schema.Feature) (int, error) {
	c := m.client.Database(m.database).Collection(schema.BoundaryCollection)

	count := 0
	for _, f := range features {
		doc, err := schema.NewBoundary(f)
		if err != nil {
			log.WithField("prefix", mongoLogPrefix).WithError(err).
				Warnf("skipping boundary %v", f.Properties["tcc_index"])
			continue
		}

		filter := bson.M{"tcc_index": doc.TccIndex}
		opts := options.Replace().SetUpsert(true)
		if _, err := c.ReplaceOne(ctx, filter, doc, opts); err != nil {
			return count, err
		}
		count++
	}

	log.WithField("prefix", mongoLogPrefix).Infof("published %d boundaries", count)
	return count, nil
}
