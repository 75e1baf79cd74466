package validators

import "go.mongodb.org/mongo-driver/bson"

var ProfessionalValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "phone", "hourly_rate", "time_zone", "created_at"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string"},
			"name":        bson.M{"bsonType": "string", "minLength": 2, "maxLength": 100},
			"phone":       bson.M{"bsonType": "string", "pattern": `^\+[1-9]\d{1,14}$`},
			"hourly_rate": bson.M{"bsonType": []string{"long", "int"}, "minimum": 0, "maximum": 100000000},
			"time_zone":   bson.M{"bsonType": "string"},
			"created_at":  bson.M{"bsonType": "date"},
		},
	},
}
