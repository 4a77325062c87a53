package utils

import "counselkit_go/models"

// Display labels used by the results-table export. UI shorthand for
// session modes mirrors what the counselors write by hand.
var ModeLabels = map[models.SessionMode]string{
	models.ModeRemote:  "비",
	models.ModeOffline: "오프",
}

// ModeLabel returns the display label for a mode, falling back to the
// raw code.
func ModeLabel(mode models.SessionMode) string {
	if label, ok := ModeLabels[mode]; ok {
		return label
	}
	return string(mode)
}

// LabelOrCode resolves a reference-data code against a label map,
// falling back to the code itself for unknown or stale references.
func LabelOrCode(labels map[string]string, code string) string {
	if code == "" {
		return ""
	}
	if label, ok := labels[code]; ok && label != "" {
		return label
	}
	return code
}

// BranchLabels builds a code→label map from branch rows.
func BranchLabels(branches []models.Branch) map[string]string {
	out := make(map[string]string, len(branches))
	for _, b := range branches {
		out[b.Code] = b.Label
	}
	return out
}

// TeamLabels builds a code→label map from team rows.
func TeamLabels(teams []models.Team) map[string]string {
	out := make(map[string]string, len(teams))
	for _, t := range teams {
		out[t.Code] = t.Label
	}
	return out
}
