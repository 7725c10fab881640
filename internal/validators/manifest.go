package validators

const (
	// ManifestVersionV3 is the only accepted manifest schema tag.
	ManifestVersionV3 = "ethpm/3"

	// forbiddenManifestKey is the obsolete v2 schema key that must not
	// appear in a v3 manifest.
	forbiddenManifestKey = "manifest_version"
)

// IsValidManifestVersion reports whether version is exactly the v3 schema
// tag ("ethpm/3"). Any other value, including the v2 key name, is rejected.
func IsValidManifestVersion(version string) bool {
	return version == ManifestVersionV3
}

// IsForbiddenManifestKey reports whether key is the legacy "manifest_version"
// key, which v3 manifests must not contain.
func IsForbiddenManifestKey(key string) bool {
	return key == forbiddenManifestKey
}
