package versions

import "github.com/Masterminds/semver/v3"

// IsNewerVersion reports whether newVersion is strictly greater than
// oldVersion. It uses semantic versioning for comparison when both strings
// are valid semver, and falls back to lexicographic string comparison
// otherwise. Release version strings in the registry are not required to
// be semver, so the fallback matters.
func IsNewerVersion(newVersion, oldVersion string) bool {
	newSemver, errNew := semver.NewVersion(newVersion)
	oldSemver, errOld := semver.NewVersion(oldVersion)

	if errNew != nil || errOld != nil {
		return newVersion > oldVersion
	}

	return newSemver.GreaterThan(oldSemver)
}

// Latest returns the newest version string out of an ordered release list,
// or the empty string for an empty list.
func Latest(versions []string) string {
	latest := ""
	for _, v := range versions {
		if latest == "" || IsNewerVersion(v, latest) {
			latest = v
		}
	}
	return latest
}
