package models

// ArtifactChange is published on every artifact write
type ArtifactChange struct {
	Key       string `json:"key"`
	Version   string `json:"version"`
	WrittenAt string `json:"writtenAt"`
}
