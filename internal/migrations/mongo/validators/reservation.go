package validators

import "go.mongodb.org/mongo-driver/bson"

var ReservationValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"professional_id",
			"client_id",
			"start_at",
			"end_at",
			"status",
			"total_price",
			"currency",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id":             bson.M{"bsonType": "string"},
			"professional_id": bson.M{"bsonType": "string", "maxLength": 64},
			"client_id":       bson.M{"bsonType": "string", "maxLength": 64},
			"service_id":      bson.M{"bsonType": "string"},

			"start_at": bson.M{"bsonType": "date"},
			"end_at":   bson.M{"bsonType": "date"},

			"status": bson.M{
				"enum": []string{"PENDING", "CONFIRMED", "COMPLETED", "CANCELLED", "REJECTED"},
			},

			"total_price": bson.M{"bsonType": []string{"long", "int"}, "minimum": 1},
			"currency":    bson.M{"enum": []string{"ILS"}},
			"source":      bson.M{"enum": []string{"client", "manual"}},

			"created_at": bson.M{"bsonType": "date"},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
