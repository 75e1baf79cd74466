package validators

import "go.mongodb.org/mongo-driver/bson"

var ServiceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "professional_id", "name", "duration_minutes", "price", "is_active"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":              bson.M{"bsonType": "string"},
			"professional_id":  bson.M{"bsonType": "string"},
			"name":             bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"duration_minutes": bson.M{"bsonType": []string{"int", "long"}, "minimum": 1, "maximum": 1440},
			"price":            bson.M{"bsonType": []string{"long", "int"}, "minimum": 0},
			"is_active":        bson.M{"bsonType": "bool"},
			"created_at":       bson.M{"bsonType": "date"},
		},
	},
}
