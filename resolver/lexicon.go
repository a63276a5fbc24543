package resolver

import "strings"

// progressive maps canonical action verbs to their present-progressive form.
// It is read-only after package initialisation.
var progressive = map[string]string{
	"build":   "building",
	"copy":    "copying",
	"dance":   "dancing",
	"destroy": "destroying",
	"dig":     "digging",
	"fill":    "filling",
	"get":     "getting",
	"move":    "moving",
	"point":   "pointing",
	"resume":  "resuming",
	"spawn":   "spawning",
	"stop":    "stopping",
	"undo":    "undoing",
}

// Progressive returns the present-progressive form of an action verb
// ("Build" -> "building"). Lookup is case-insensitive.
func Progressive(action string) (string, bool) {
	v, ok := progressive[strings.ToLower(action)]
	return v, ok
}
