package domain

import "strings"

// Display names for the most common activity type keys. Keys follow the
// fitness platform's snake_case vocabulary.
var activityNames = map[string]string{
	"aerobics":          "Aerobics",
	"badminton":         "Badminton",
	"biking":            "Biking",
	"boxing":            "Boxing",
	"calisthenics":      "Calisthenics",
	"circuit_training":  "Circuit training",
	"crossfit":          "CrossFit",
	"dancing":           "Dancing",
	"elliptical":        "Elliptical",
	"gymnastics":        "Gymnastics",
	"hiking":            "Hiking",
	"martial_arts":      "Martial arts",
	"pilates":           "Pilates",
	"rowing":            "Rowing",
	"running":           "Running",
	"strength_training": "Strength training",
	"swimming":          "Swimming",
	"walking":           "Walking",
	"yoga":              "Yoga",
}

// ActivityDisplayName resolves an activity type key to a human-readable
// name, falling back to a cleaned-up form of the key itself.
func ActivityDisplayName(key string) string {
	if name, ok := activityNames[key]; ok {
		return name
	}
	cleaned := strings.ReplaceAll(key, "_", " ")
	if cleaned == "" {
		return "Workout"
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}
