package validators

import "go.mongodb.org/mongo-driver/bson"

var eventSchema = bson.M{
	"bsonType":             "object",
	"required":             []string{"id", "name", "eventDate"},
	"additionalProperties": true,
	"properties": bson.M{
		"id": bson.M{
			"bsonType": "string",
			"pattern":  "^[A-Za-z0-9_-]{1,128}$",
		},
		"status": bson.M{
			"enum": []string{"pending", "approved", "rejected"},
		},
		"name": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 220,
		},
		"eventDate":            bson.M{"bsonType": "string"},
		"location":             bson.M{"bsonType": "string"},
		"reservationStartTime": bson.M{"bsonType": "string"},
		"reservationEndTime":   bson.M{"bsonType": "string"},
		"eventStartTime":       bson.M{"bsonType": "string"},
		"eventEndTime":         bson.M{"bsonType": "string"},
		"contactEmail":         bson.M{"bsonType": "string"},
		"isPartOfSeries":       bson.M{"bsonType": "bool"},
		"seriesIndex":          bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
		"seriesTotalCount":     bson.M{"bsonType": []string{"int", "long"}, "minimum": 1},
		"submittedAt":          bson.M{"bsonType": "date"},
		"approvedAt":           bson.M{"bsonType": "date"},
	},
}

// EventCollectionValidator checks the envelope of each stored event list
// and the shape of the events inside it.
var EventCollectionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "events", "revision", "lastUpdated"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{
				"enum": []string{"pending", "approved"},
			},
			"revision": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"events": bson.M{
				"bsonType": "array",
				"items":    eventSchema,
			},
			"count":       bson.M{"bsonType": []string{"int", "long"}},
			"version":     bson.M{"bsonType": "string"},
			"lastUpdated": bson.M{"bsonType": "date"},
			"metadata":    bson.M{"bsonType": "object"},
		},
	},
}
