package media

import "time"

// Asset describes an imported media item as resolved by the import pipeline.
type Asset struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"source_path"`
	ProxyPath  string    `json:"proxy_path,omitempty"`
	Duration   float64   `json:"duration"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	FPS        float64   `json:"fps"`
	Codec      string    `json:"codec"`
	AudioCodec string    `json:"audio_codec,omitempty"`
	FileSize   int64     `json:"file_size"`
	HasAudio   bool      `json:"has_audio"`
	ImportedAt time.Time `json:"imported_at"`
}

// PlaybackPath prefers the transcoded proxy over the original source.
func (a Asset) PlaybackPath() string {
	if a.ProxyPath != "" {
		return a.ProxyPath
	}
	return a.SourcePath
}

// Library resolves assets by id.
type Library struct {
	assets map[string]Asset
}

// NewLibrary builds a library from the project's media list. Later entries
// with a duplicate id replace earlier ones.
func NewLibrary(assets []Asset) *Library {
	index := make(map[string]Asset, len(assets))
	for _, asset := range assets {
		index[asset.ID] = asset
	}
	return &Library{assets: index}
}

// Lookup resolves an asset by id.
func (l *Library) Lookup(id string) (Asset, bool) {
	if l == nil {
		return Asset{}, false
	}
	asset, ok := l.assets[id]
	return asset, ok
}

// Len reports the number of assets in the library.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.assets)
}
