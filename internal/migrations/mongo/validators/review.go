package validators

import "go.mongodb.org/mongo-driver/bson"

var ReviewValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "professional_id", "client_id", "rating", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":             bson.M{"bsonType": "string"},
			"professional_id": bson.M{"bsonType": "string"},
			"client_id":       bson.M{"bsonType": "string"},
			"rating":          bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 5},
			"comment":         bson.M{"bsonType": "string", "maxLength": 2000},
			"created_at":      bson.M{"bsonType": "date"},
		},
	},
}
