package validators

import "go.mongodb.org/mongo-driver/bson"

const clockPattern = `^([01]\d|2[0-3]):[0-5]\d$`

var ScheduleValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"time_zone",
			"days",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "string",
			},

			"time_zone": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"days": bson.M{
				"bsonType": "array",
				"minItems": 7,
				"maxItems": 7,
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"weekday", "is_open"},
					"properties": bson.M{
						"weekday": bson.M{
							"enum": []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
						},
						"is_open":     bson.M{"bsonType": "bool"},
						"open_time":   bson.M{"bsonType": "string", "pattern": clockPattern},
						"close_time":  bson.M{"bsonType": "string", "pattern": clockPattern},
						"break_start": bson.M{"bsonType": "string", "pattern": clockPattern},
						"break_end":   bson.M{"bsonType": "string", "pattern": clockPattern},
					},
				},
			},

			"closed_dates": bson.M{
				"bsonType": "array",
				"maxItems": 366,
				"items": bson.M{
					"bsonType": "string",
					"pattern":  `^\d{4}-\d{2}-\d{2}$`,
				},
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
